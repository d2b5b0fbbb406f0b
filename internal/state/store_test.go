package state

import (
	"sync"
	"testing"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

func TestStoreDispatchAndSubscribe(t *testing.T) {
	store := NewStore(ChatState{}, ReduceChat)

	var mu sync.Mutex
	var seen []int
	unsub := store.Subscribe(func(s ChatState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, len(s.Messages))
	})

	store.Dispatch(AddOrUpdateMessage{ID: "1", Role: domain.RoleUser, Content: text("a")})
	store.Dispatch(
		AddOrUpdateMessage{ID: "2", Role: domain.RoleAssistant, Content: text("b")},
		SetSessionName{Name: "Lunch"},
	)
	unsub()
	store.Dispatch(AddOrUpdateMessage{ID: "3", Role: domain.RoleUser, Content: text("c")})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("unexpected notifications: %v", seen)
	}

	snap := store.Snapshot()
	if len(snap.Messages) != 3 || snap.SessionName != "Lunch" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	store := NewStore(KitchenState{}, ReduceKitchen)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(AddTimer{Timer: domain.Timer{Duration: 1, Label: "t"}})
		}()
	}
	wg.Wait()

	if got := len(store.Snapshot().Timers); got != 20 {
		t.Fatalf("expected 20 timers, got %d", got)
	}
}

func TestStoreDeliversSnapshotsInDispatchOrder(t *testing.T) {
	store := NewStore(KitchenState{}, ReduceKitchen)

	var mu sync.Mutex
	var seen []int
	store.Subscribe(func(s KitchenState) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, len(s.Timers))
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(AddTimer{Timer: domain.Timer{Duration: 1, Label: "t"}})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 50 {
		t.Fatalf("expected 50 notifications, got %d", len(seen))
	}
	for i, n := range seen {
		if n != i+1 {
			t.Fatalf("notification %d saw %d timers, want %d (seen=%v)", i, n, i+1, seen)
		}
	}
}

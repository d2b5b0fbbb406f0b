package state

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

func text(s string) domain.Content { return domain.Text{Content: s} }

func TestStreamingUpdateReplacesContent(t *testing.T) {
	s := ReduceChat(ChatState{}, AddOrUpdateMessage{ID: "a", Role: domain.RoleAssistant, Content: text("hi")})
	s = ReduceChat(s, AddOrUpdateMessage{ID: "a", Role: domain.RoleAssistant, Content: text("hi there")})

	if len(s.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.Messages))
	}
	if got := s.Messages[0].Content.(domain.Text).Content; got != "hi there" {
		t.Fatalf("content = %q, want %q", got, "hi there")
	}
}

func TestMessageClearsAgentStatus(t *testing.T) {
	s := ReduceChat(ChatState{}, SetAgentStatus{Text: "thinking..."})
	if s.AgentStatus != "thinking..." {
		t.Fatalf("status not set: %q", s.AgentStatus)
	}
	s = ReduceChat(s, AddOrUpdateMessage{ID: "m1", Role: domain.RoleAssistant, Content: text("done")})
	if s.AgentStatus != "" {
		t.Fatalf("status should be cleared, got %q", s.AgentStatus)
	}

	// A streaming update clears it too.
	s = ReduceChat(s, SetAgentStatus{Text: "still thinking"})
	s = ReduceChat(s, AddOrUpdateMessage{ID: "m1", Role: domain.RoleAssistant, Content: text("done!")})
	if s.AgentStatus != "" {
		t.Fatalf("status should be cleared by update, got %q", s.AgentStatus)
	}
}

func TestIDsUniqueAndLatestWins(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var s ChatState
		latest := map[string]string{}
		var order []string
		for i := 0; i < 40; i++ {
			id := fmt.Sprintf("m%d", rng.Intn(8))
			body := fmt.Sprintf("r%d-%d", round, i)
			if _, seen := latest[id]; !seen {
				order = append(order, id)
			}
			latest[id] = body
			s = ReduceChat(s, AddOrUpdateMessage{ID: id, Role: domain.RoleAssistant, Content: text(body)})
		}

		if len(s.Messages) != len(latest) {
			t.Fatalf("round %d: %d messages for %d ids", round, len(s.Messages), len(latest))
		}
		for i, m := range s.Messages {
			if m.ID != order[i] {
				t.Fatalf("round %d: position %d holds %s, want %s", round, i, m.ID, order[i])
			}
			if got := m.Content.(domain.Text).Content; got != latest[m.ID] {
				t.Fatalf("round %d: %s content %q, want %q", round, m.ID, got, latest[m.ID])
			}
		}
	}
}

func TestReducerDoesNotMutateInput(t *testing.T) {
	before := ReduceChat(ChatState{}, AddOrUpdateMessage{ID: "a", Role: domain.RoleUser, Content: text("one")})
	_ = ReduceChat(before, AddOrUpdateMessage{ID: "a", Role: domain.RoleUser, Content: text("two")})

	if got := before.Messages[0].Content.(domain.Text).Content; got != "one" {
		t.Fatalf("input state mutated: %q", got)
	}
}

func TestSessionNameAndHistory(t *testing.T) {
	s := ReduceChat(ChatState{}, SetSessionName{Name: "Pasta night"})
	if s.SessionName != "Pasta night" {
		t.Fatalf("name = %q", s.SessionName)
	}

	s = ReduceChat(s, LoadHistory{Messages: []domain.ChatMessage{
		{ID: "1", Role: domain.RoleUser, Content: text("a")},
		{ID: "2", Role: domain.RoleAssistant, Content: text("b")},
		{ID: "1", Role: domain.RoleUser, Content: text("a2")},
	}})
	if len(s.Messages) != 2 {
		t.Fatalf("expected deduped history of 2, got %d", len(s.Messages))
	}
	if m, _ := s.Message("1"); m.Content.(domain.Text).Content != "a2" {
		t.Fatalf("expected latest content for id 1, got %#v", m.Content)
	}
	if s.SessionName != "Pasta night" {
		t.Fatalf("empty history name should keep current name, got %q", s.SessionName)
	}

	if s = ReduceChat(s, ResetChat{}); len(s.Messages) != 0 || s.SessionName != "" {
		t.Fatalf("reset left state behind: %+v", s)
	}
}

func TestRemoveMessageKeepsOthersAndStatus(t *testing.T) {
	before := ReduceChat(ChatState{}, AddOrUpdateMessage{ID: "a", Role: domain.RoleUser, Content: text("one")})
	before = ReduceChat(before, AddOrUpdateMessage{ID: "b", Role: domain.RoleUser, Content: text("two")})
	before = ReduceChat(before, SetAgentStatus{Text: "thinking..."})

	after := ReduceChat(before, RemoveMessage{ID: "a"})
	if len(after.Messages) != 1 || after.Messages[0].ID != "b" {
		t.Fatalf("messages = %+v", after.Messages)
	}
	if after.AgentStatus != "thinking..." {
		t.Fatalf("remove should keep status, got %q", after.AgentStatus)
	}
	if len(before.Messages) != 2 || before.Messages[0].ID != "a" {
		t.Fatalf("input mutated: %+v", before.Messages)
	}

	if same := ReduceChat(after, RemoveMessage{ID: "missing"}); len(same.Messages) != 1 {
		t.Fatalf("unknown id changed messages: %+v", same.Messages)
	}
}

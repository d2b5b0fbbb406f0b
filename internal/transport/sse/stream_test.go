package sse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) handle(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func writeFrames(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, f := range frames {
		fmt.Fprint(w, f)
	}
	if fl, ok := w.(http.Flusher); ok {
		fl.Flush()
	}
}

func quiet() *logger.Logger { return logger.New(logger.LevelOff, nil) }

func TestStream_ForwardsEventsAndDropsPings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		writeFrames(w,
			": comment\n\n",
			"event: ping\ndata: {}\n\n",
			`data: {"type":"ping","data":null}`+"\n\n",
			`data: {"type":"session_created","data":{"id":"s1"}}`+"\n\n",
			"data: {broken\n\n",
			"event: session_deleted\n"+`data: {"data":{"id":"s1"}}`+"\n\n",
			"data: {\"type\":\"session_name_updated\",\n"+`data: "data":{"id":"s1","session_name":"Tacos"}}`+"\n\n",
		)
	}))
	defer srv.Close()

	var rec recorder
	s := New(srv.URL, rec.handle, quiet(), WithMaxRetries(0))
	err := s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{
		domain.EventSessionCreated,
		domain.EventSessionDeleted,
		domain.EventSessionNameUpdated,
	}, rec.types())
	assert.False(t, s.Connected())
}

func TestStream_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(srv.URL, nil, quiet(), WithMaxRetries(2), WithRetryInterval(5*time.Millisecond))
	err := s.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 2 retries")
	assert.Equal(t, int32(3), hits.Load())
	assert.False(t, s.Connected())
}

func TestStream_SuccessfulConnectResetsRetryBudget(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 2 {
			writeFrames(w, `data: {"type":"session_updated","data":{}}`+"\n\n")
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	var rec recorder
	s := New(srv.URL, rec.handle, quiet(), WithMaxRetries(2), WithRetryInterval(5*time.Millisecond))
	require.Error(t, s.Run(context.Background()))

	// fail, open+close (reset), fail, fail: four attempts in total.
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, []string{domain.EventSessionUpdated}, rec.types())
}

func TestStream_UnauthorizedIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := New(srv.URL, nil, quiet(), WithMaxRetries(0))
	err := s.Run(context.Background())
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
}

func TestStream_StopsOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrames(w)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	s := New(srv.URL, nil, quiet(), WithPath("/api/events"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, s.Connected, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

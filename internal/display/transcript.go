package display

import (
	"sync"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/state"
)

// Transcript turns chat state snapshots into printed lines. Each message is
// printed once per distinct rendering. A streaming assistant text is held
// back until it has been quiet for the settle window or a newer message
// arrives.
type Transcript struct {
	print    func(domain.ChatMessage)
	status   func(string)
	settle   time.Duration
	skipUser bool

	mu         sync.Mutex
	printed    map[string]string
	lastStatus string
	pending    *time.Timer
	latest     domain.ChatMessage
}

// TranscriptOption configures a Transcript.
type TranscriptOption func(*Transcript)

// WithSettle sets how long a streaming text must be idle before printing.
// Zero prints every update immediately.
func WithSettle(d time.Duration) TranscriptOption {
	return func(t *Transcript) { t.settle = d }
}

// WithStatus receives agent status changes ("thinking", ...).
func WithStatus(fn func(string)) TranscriptOption {
	return func(t *Transcript) { t.status = fn }
}

// SkipLiveUser drops user messages after Seed; the prompt already echoes them.
func SkipLiveUser() TranscriptOption {
	return func(t *Transcript) { t.skipUser = true }
}

// NewTranscript creates a transcript that prints through print.
func NewTranscript(printFn func(domain.ChatMessage), opts ...TranscriptOption) *Transcript {
	t := &Transcript{
		print:   printFn,
		settle:  400 * time.Millisecond,
		printed: make(map[string]string),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Seed prints every message in s not printed yet, including user messages.
// Call it once the session history has loaded.
func (t *Transcript) Seed(s state.ChatState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range s.Messages {
		t.emitLocked(m)
	}
}

// Observe handles one state snapshot.
func (t *Transcript) Observe(s state.ChatState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.AgentStatus != t.lastStatus {
		t.lastStatus = s.AgentStatus
		if s.AgentStatus != "" && t.status != nil {
			t.status(s.AgentStatus)
		}
	}

	if len(s.Messages) == 0 {
		t.stopLocked()
		clear(t.printed)
		return
	}

	last := len(s.Messages) - 1
	for i, m := range s.Messages {
		if t.skipUser && m.Role == domain.RoleUser {
			t.printed[m.ID] = FormatContent(m.Content)
			continue
		}
		if i == last && t.deferrable(m) {
			t.deferLocked(m)
			continue
		}
		t.emitLocked(m)
	}
}

// Flush prints a held-back message now.
func (t *Transcript) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	if t.latest.ID != "" {
		t.emitLocked(t.latest)
	}
}

func (t *Transcript) deferrable(m domain.ChatMessage) bool {
	if t.settle <= 0 || m.Role != domain.RoleAssistant {
		return false
	}
	_, isText := m.Content.(domain.Text)
	return isText
}

func (t *Transcript) deferLocked(m domain.ChatMessage) {
	if t.printed[m.ID] == FormatContent(m.Content) {
		return
	}
	t.stopLocked()
	t.latest = m
	t.pending = time.AfterFunc(t.settle, t.Flush)
}

func (t *Transcript) stopLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Transcript) emitLocked(m domain.ChatMessage) {
	rendered := FormatContent(m.Content)
	if prev, ok := t.printed[m.ID]; ok && prev == rendered {
		return
	}
	t.printed[m.ID] = rendered
	if t.latest.ID == m.ID {
		t.stopLocked()
		t.latest = domain.ChatMessage{}
	}
	t.print(m)
}

// Package timer computes kitchen timer countdowns and runs the background
// ticker that announces when they run out. Timers are never removed; an
// expired timer simply reads 0:00.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

// Source returns the current timer list. Timers are append-only, so a
// timer's index identifies it across ticks.
type Source func() []domain.Timer

// Option configures the ticker.
type Option func(*Ticker)

// WithTickInterval sets how often remaining times are recomputed.
func WithTickInterval(d time.Duration) Option {
	return func(t *Ticker) {
		t.tickInterval = d
	}
}

// WithReminderInterval sets how often running timers send periodic reminders.
// Zero disables reminders.
func WithReminderInterval(d time.Duration) Option {
	return func(t *Ticker) {
		t.reminderInterval = d
	}
}

// WithAlmostDoneThreshold sets how close to expiry a timer must be to
// trigger the "almost done" warning.
func WithAlmostDoneThreshold(d time.Duration) Option {
	return func(t *Ticker) {
		t.almostDoneThreshold = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Ticker) {
		t.now = now
	}
}

// tracked is the notification bookkeeping for one timer.
type tracked struct {
	fired          bool
	warnedAlmost   bool
	lastRemindedAt time.Time
}

// Ticker recomputes timer countdowns on a fixed tick and notifies once when
// a timer reaches zero.
type Ticker struct {
	source              Source
	notifier            domain.Notifier
	log                 *logger.Logger
	tickInterval        time.Duration
	reminderInterval    time.Duration
	almostDoneThreshold time.Duration
	now                 func() time.Time

	mu      sync.Mutex
	seen    []tracked
	running bool
	cancel  context.CancelFunc
}

// New creates a ticker over the given timer source.
func New(source Source, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Ticker {
	t := &Ticker{
		source:              source,
		notifier:            notifier,
		log:                 log.With("timer"),
		tickInterval:        1 * time.Second,
		reminderInterval:    2 * time.Minute,
		almostDoneThreshold: 30 * time.Second,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins the background tick loop. Non-blocking.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.log.Warn("ticker already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true

	go t.loop(childCtx)

	t.log.Debug("ticker started (tick=%s)", t.tickInterval)
}

// Stop shuts the loop down.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.cancel()
	t.running = false
	t.log.Debug("ticker stopped")
}

// Reset forgets notification state. Call it when the source starts
// describing a different timer list.
func (t *Ticker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = nil
}

func (t *Ticker) loop(ctx context.Context) {
	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick runs one cycle: recompute every timer and send due notifications.
func (t *Ticker) Tick(ctx context.Context) {
	timers := t.source()
	now := t.now()

	t.mu.Lock()
	for len(t.seen) < len(timers) {
		t.seen = append(t.seen, tracked{})
	}
	var urgent, normal []string
	for i, tm := range timers {
		st := &t.seen[i]
		if st.fired {
			continue
		}
		rem := Remaining(tm, now)

		if rem == 0 {
			st.fired = true
			urgent = append(urgent, fmt.Sprintf("[Timer] %s is up.", tm.Label))
			continue
		}

		if !st.warnedAlmost && rem <= t.almostDoneThreshold && tm.Length() > t.almostDoneThreshold*2 {
			st.warnedAlmost = true
			st.lastRemindedAt = now
			normal = append(normal, fmt.Sprintf("[Timer] %s: almost done, %s left.", tm.Label, Format(rem)))
			continue
		}

		if t.reminderInterval > 0 && tm.Length() > t.reminderInterval {
			last := st.lastRemindedAt
			if last.IsZero() {
				last = tm.StartedAt
			}
			if now.Sub(last) >= t.reminderInterval {
				st.lastRemindedAt = now
				normal = append(normal, fmt.Sprintf("[Timer] %s: %s remaining.", tm.Label, Format(rem)))
			}
		}
	}
	t.mu.Unlock()

	for _, msg := range urgent {
		if err := t.notifier.NotifyUrgent(ctx, msg); err != nil {
			t.log.Error("notifying timer expiry: %v", err)
		}
	}
	for _, msg := range normal {
		if err := t.notifier.Notify(ctx, msg); err != nil {
			t.log.Error("timer reminder: %v", err)
		}
	}
}

// Package sse consumes the backend's session-list event stream. Each frame's
// data is a JSON object {type, data}; pings are dropped and everything else
// is forwarded to a callback. Dropped streams are retried a bounded number
// of times.
package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

const (
	DefaultPath          = "/api/events"
	DefaultMaxRetries    = 5
	DefaultRetryInterval = 5 * time.Second

	maxLineSize = 1 << 20
)

var errStreamClosed = errors.New("stream closed by server")

// Handler receives decoded events in stream order.
type Handler func(domain.Event)

// Option configures a Stream.
type Option func(*Stream)

// WithPath overrides the stream path.
func WithPath(path string) Option {
	return func(s *Stream) { s.path = path }
}

// WithMaxRetries sets how many consecutive failures are retried before
// Run gives up.
func WithMaxRetries(n int) Option {
	return func(s *Stream) { s.maxRetries = n }
}

// WithRetryInterval sets the wait between attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Stream) { s.interval = d }
}

// WithHTTPClient sets the client used for the stream request. It must not
// have a Timeout, and should share the REST cookie jar.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Stream) { s.client = c }
}

// Stream is a retrying event-stream subscriber.
type Stream struct {
	base       string
	path       string
	client     *http.Client
	onEvent    Handler
	maxRetries int
	interval   time.Duration
	log        *logger.Logger

	connected atomic.Bool
}

// New creates a stream for the given API base URL.
func New(baseURL string, onEvent Handler, log *logger.Logger, opts ...Option) *Stream {
	s := &Stream{
		base:       strings.TrimRight(baseURL, "/"),
		path:       DefaultPath,
		client:     &http.Client{},
		onEvent:    onEvent,
		maxRetries: DefaultMaxRetries,
		interval:   DefaultRetryInterval,
		log:        log.With("sse"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Connected reports whether the stream is currently open.
func (s *Stream) Connected() bool {
	return s.connected.Load()
}

// Run subscribes until ctx is cancelled or the retry budget is spent. The
// budget counts consecutive failures; a successful connect resets it.
func (s *Stream) Run(ctx context.Context) error {
	failures := 0
	for {
		opened, err := s.consume(ctx)
		s.connected.Store(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if opened {
			failures = 0
		}
		failures++
		if failures > s.maxRetries {
			s.log.Error("giving up after %d retries: %v", s.maxRetries, err)
			return fmt.Errorf("sse: giving up after %d retries: %w", s.maxRetries, err)
		}
		s.log.Warn("stream error (retry %d/%d in %s): %v", failures, s.maxRetries, s.interval, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
}

// consume runs one connection. opened reports whether the server accepted it.
func (s *Stream) consume(ctx context.Context) (opened bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+s.path, nil)
	if err != nil {
		return false, fmt.Errorf("sse: build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("sse: %w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return false, fmt.Errorf("sse: %w", domain.ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("sse: unexpected status %d", resp.StatusCode)
	}

	s.connected.Store(true)
	s.log.Info("connected to %s", s.path)
	return true, s.read(resp.Body)
}

// read parses event-stream frames until the body ends.
func (s *Stream) read(body io.Reader) error {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		event string
		data  strings.Builder
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			s.dispatch(event, data.String())
			event = ""
			data.Reset()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("sse: read: %w", err)
	}
	return errStreamClosed
}

func (s *Stream) dispatch(event, data string) {
	if event == domain.EventPing || data == "" {
		return
	}
	var ev domain.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		s.log.Warn("dropping malformed event %q: %v", event, err)
		return
	}
	if ev.Type == "" {
		ev.Type = event
	}
	if ev.Type == domain.EventPing || ev.Type == "" {
		return
	}
	s.log.Debug("event %s", ev.Type)
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a kitchen timer status bar and an input prompt at
// the bottom of the terminal. All application output is printed above the
// rendered area via Program.Println / Printf, so socket callbacks and the
// timer ticker can write concurrently without garbling the display.
package display

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/timer"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// [UI.Println], [UI.Printf], and read from [UI.InputChan] at any time
// after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool

	mu     sync.RWMutex
	timers timer.Source
}

// NewUI creates the display. Call Run() to start.
func NewUI() *UI {
	return &UI{
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// SetTimerSource switches the timers shown in the status bar. nil hides
// the bar.
func (u *UI) SetTimerSource(src timer.Source) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.timers = src
}

func (u *UI) currentTimers() []domain.Timer {
	u.mu.RLock()
	src := u.timers
	u.mu.RUnlock()
	if src == nil {
		return nil
	}
	return src()
}

// Println prints a line above the prompt. Thread-safe. If the program has
// not started yet, falls back to fmt.Println.
func (u *UI) Println(a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line. Thread-safe.
func (u *UI) Printf(format string, a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintAssistant prints an assistant line.
func (u *UI) PrintAssistant(text string) {
	u.Println(assistantStyle.Render("  " + text))
}

// PrintCard prints a structured payload block.
func (u *UI) PrintCard(text string) {
	u.Println(cardStyle.Render(text))
}

// PrintInfo prints a plain informational line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a de-emphasised line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error or alert line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed line into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("otto") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// A plain-text prompt keeps the textinput width math correct; styled
	// prompts add ANSI bytes to its offset calculations.
	ti.Prompt = "otto> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		timers:  u.currentTimers,
		now:     time.Now,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn:  u.PrintUserInput,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	timers  func() []domain.Timer
	now     func() time.Time
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	bar     []timerInfo
	width   int
}

type timerInfo struct {
	label     string
	remaining time.Duration
	fired     bool
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo from a Cmd so Println never runs inside Update.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = 6 // "otto> "
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		m.bar = snapshotTimers(m.timers(), m.now())
		title := "Otto"
		if len(m.bar) > 0 {
			title = titleStr(m.bar)
		}
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(title))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// snapshotTimers computes the bar entries for now. Timers keep their start
// order so the bar does not shuffle between ticks.
func snapshotTimers(timers []domain.Timer, now time.Time) []timerInfo {
	out := make([]timerInfo, 0, len(timers))
	for _, t := range timers {
		out = append(out, timerInfo{
			label:     t.Label,
			remaining: timer.Remaining(t, now),
			fired:     timer.Expired(t, now),
		})
	}
	return out
}

func titleStr(bar []timerInfo) string {
	var p []string
	for _, t := range bar {
		if t.fired {
			p = append(p, t.label+": DONE!")
		} else {
			p = append(p, t.label+": "+timer.Format(t.remaining))
		}
	}
	return "Otto | " + strings.Join(p, " | ")
}

func (m model) View() string {
	var b strings.Builder

	if len(m.bar) > 0 {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string
	for _, t := range m.bar {
		if t.fired {
			parts = append(parts, timerDoneStyle.Render(t.label+": DONE!"))
		} else {
			parts = append(parts,
				labelStyle.Render(t.label+": ")+
					timerRunStyle.Render(timer.Format(t.remaining)))
		}
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

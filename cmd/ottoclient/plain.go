package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottoclient/internal/timer"
)

// plainScreen is the line-oriented screen used with -plain: stdin lines in,
// prefixed lines out. It has no status bar.
type plainScreen struct {
	mu   sync.Mutex
	out  io.Writer
	in   chan string
	quit chan struct{}
	once sync.Once
}

func newPlainScreen(r io.Reader, w io.Writer) *plainScreen {
	p := &plainScreen{
		out:  w,
		in:   make(chan string, 16),
		quit: make(chan struct{}),
	}
	go p.scan(r)
	return p
}

func (p *plainScreen) scan(r io.Reader) {
	defer close(p.in)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		select {
		case p.in <- sc.Text():
		case <-p.quit:
			return
		}
	}
}

func (p *plainScreen) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

func (p *plainScreen) Printf(format string, a ...any) {
	p.Println(fmt.Sprintf(format, a...))
}

func (p *plainScreen) PrintAssistant(text string) { p.Println(text) }
func (p *plainScreen) PrintInfo(text string)      { p.Println(text) }
func (p *plainScreen) PrintHint(text string)      { p.Println("  " + text) }
func (p *plainScreen) PrintUrgent(text string)    { p.Println("! " + text) }

func (p *plainScreen) PrintCard(text string) {
	p.Println(strings.TrimRight(text, "\n"))
}

func (p *plainScreen) InputChan() <-chan string { return p.in }

func (p *plainScreen) SetTimerSource(timer.Source) {}

func (p *plainScreen) WaitReady() {}

func (p *plainScreen) Quit() {
	p.once.Do(func() { close(p.quit) })
}

// Run blocks until Quit.
func (p *plainScreen) Run() error {
	<-p.quit
	return nil
}

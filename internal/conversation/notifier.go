package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/logger"
)

var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc prints one formatted line. Matches display.UI.Printf.
type PrintFunc func(format string, a ...any)

// CLINotifier writes timer notifications to the terminal. Consecutive
// identical urgent messages are printed once.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc

	mu         sync.Mutex
	lastUrgent string
}

// NewCLINotifier creates a terminal notifier. A nil printFn prints to stdout.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...any) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{log: log.With("notify"), printFn: printFn}
}

// Notify prints a heads-up in cyan.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	n.lastUrgent = ""
	n.mu.Unlock()

	n.log.Debug("notify: %s", message)
	n.printFn("%s%s~ %s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an alert in bold red. An identical alert directly
// following the previous one is dropped.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	dup := message == n.lastUrgent
	n.lastUrgent = message
	n.mu.Unlock()
	if dup {
		n.log.Debug("notify-urgent: dropped repeat %q", message)
		return nil
	}

	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s! %s%s", red, bold, message, reset)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/api"
	"github.com/hammamikhairi/ottoclient/internal/config"
	"github.com/hammamikhairi/ottoclient/internal/conversation"
	"github.com/hammamikhairi/ottoclient/internal/display"
	"github.com/hammamikhairi/ottoclient/internal/domain"
	"github.com/hammamikhairi/ottoclient/internal/engine"
	"github.com/hammamikhairi/ottoclient/internal/logger"
	"github.com/hammamikhairi/ottoclient/internal/recipe"
	"github.com/hammamikhairi/ottoclient/internal/sessions"
	"github.com/hammamikhairi/ottoclient/internal/storage"
	"github.com/hammamikhairi/ottoclient/internal/timer"
)

// screen is the terminal surface: the Bubble Tea UI or the plain line mode.
type screen interface {
	Println(a ...any)
	Printf(format string, a ...any)
	PrintAssistant(text string)
	PrintCard(text string)
	PrintInfo(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	InputChan() <-chan string
	SetTimerSource(src timer.Source)
	WaitReady()
	Quit()
	Run() error
}

var (
	_ screen = (*display.UI)(nil)
	_ screen = (*plainScreen)(nil)
)

type app struct {
	cfg      config.Config
	api      *api.Client
	manager  *sessions.Manager
	cache    *storage.MemoryCache
	library  *recipe.Library
	parser   *conversation.CommandParser
	notifier domain.Notifier
	ticker   *timer.Ticker
	dial     engine.Dialer
	ui       screen
	log      *logger.Logger

	mu      sync.Mutex
	current engine.Session
	unwatch func()
	listed  []domain.Session // last /list result, for numbered selection
}

func (a *app) run(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		a.open(ctx, sessionID)
	} else {
		a.listSessions(ctx)
	}

	in := a.ui.InputChan()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-in:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			cmd := a.parser.Parse(line)
			a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)
			if quit := a.handle(ctx, cmd); quit {
				return nil
			}
		}
	}
}

// handle executes one command and reports whether the client should exit.
func (a *app) handle(ctx context.Context, cmd domain.Command) bool {
	switch cmd.Type {
	case domain.CommandSend:
		a.send(cmd.Payload)
	case domain.CommandListSessions:
		a.listSessions(ctx)
	case domain.CommandNewSession:
		a.newSession(ctx, cmd.Payload)
	case domain.CommandOpenSession:
		if id, ok := a.resolve(cmd.Payload); ok {
			a.open(ctx, id)
		}
	case domain.CommandRenameSession:
		a.rename(ctx, cmd.Payload)
	case domain.CommandDeleteSession:
		if id, ok := a.resolve(cmd.Payload); ok {
			a.deleteSession(ctx, id)
		}
	case domain.CommandSaveRecipe:
		a.saveRecipe(ctx)
	case domain.CommandShowRecipe:
		a.showRecipe()
	case domain.CommandListRecipes:
		a.listRecipes(ctx, cmd.Payload)
	case domain.CommandShowTimers:
		a.showTimers()
	case domain.CommandShowIngredients:
		a.showIngredients()
	case domain.CommandFeatures:
		a.showFeatures(ctx)
	case domain.CommandReconnect:
		a.reconnect()
	case domain.CommandHelp:
		a.ui.PrintCard(strings.Join(conversation.Help(), "\n"))
	case domain.CommandQuit:
		a.ui.PrintInfo("Bye.")
		return true
	default:
		a.ui.PrintHint(fmt.Sprintf("Unknown command %q. Type /help for the list.", cmd.Payload))
	}
	return false
}

func (a *app) session() engine.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// timers feeds the ticker and the status bar from the open kitchen session.
func (a *app) timers() []domain.Timer {
	if k, ok := a.session().(*engine.Kitchen); ok {
		return k.Timers()
	}
	return nil
}

// ── Sessions ─────────────────────────────────────────────────────

// listSessions prints the cached list, which the event stream and socket
// renames keep current, and fetches it only on a cache miss.
func (a *app) listSessions(ctx context.Context) {
	list, ok := a.manager.Cached()
	if !ok {
		var err error
		if list, err = a.manager.List(ctx); err != nil {
			a.fail("Could not load sessions", err)
			return
		}
	}
	a.mu.Lock()
	a.listed = list
	a.mu.Unlock()
	a.ui.PrintCard(display.FormatSessions(list))
	if len(list) > 0 {
		a.ui.PrintHint("Open one with /open <number>, or start fresh with /new.")
	}
}

// watchSessions keeps the numbered selection in step with the cached list
// of the current family.
func (a *app) watchSessions() (unsubscribe func()) {
	return a.cache.Subscribe(a.manager.Family().Key, func(_ storage.Key, list []domain.Session) {
		a.mu.Lock()
		a.listed = list
		a.mu.Unlock()
		a.log.Debug("session list changed (%d sessions)", len(list))
	})
}

// resolve maps a list number or a raw id to a session id.
func (a *app) resolve(arg string) (string, bool) {
	a.mu.Lock()
	listed := a.listed
	a.mu.Unlock()

	id, err := pickSession(listed, arg)
	if err != nil {
		a.ui.PrintHint("Cannot pick a session: " + err.Error() + ".")
		return "", false
	}
	return id, true
}

func pickSession(listed []domain.Session, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("give a number from /list or an id")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(listed) {
			return "", fmt.Errorf("no session #%d, run /list first", n)
		}
		return listed[n-1].ID, nil
	}
	return arg, nil
}

func (a *app) newSession(ctx context.Context, name string) {
	s, err := a.manager.Create(ctx, name)
	if err != nil {
		a.fail("Could not create session", err)
		return
	}
	a.open(ctx, s.ID)
}

func (a *app) open(ctx context.Context, id string) {
	a.close()

	sess := engine.New(a.cfg.Surface, id, a.api, a.api, a.dial, a.log, engine.WithCache(a.cache))
	if err := sess.Open(ctx); err != nil {
		sess.Close()
		a.fail("Could not open session", err)
		return
	}

	tr := display.NewTranscript(a.printMessage,
		display.SkipLiveUser(),
		display.WithStatus(func(s string) { a.ui.PrintHint(s + "...") }),
	)
	tr.Seed(sess.ChatState())
	unwatch := sess.Watch(tr.Observe)

	if a.ticker != nil {
		a.ticker.Reset()
	}
	a.mu.Lock()
	a.current = sess
	a.unwatch = func() {
		unwatch()
		tr.Flush()
	}
	a.mu.Unlock()

	name := sess.ChatState().SessionName
	if name == "" {
		name = id
	}
	a.ui.PrintInfo(fmt.Sprintf("Opened %q (%s).", name, sess.Surface()))
}

// close detaches and disconnects the open session, if any.
func (a *app) close() {
	a.mu.Lock()
	sess, unwatch := a.current, a.unwatch
	a.current, a.unwatch = nil, nil
	a.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if sess != nil {
		sess.Close()
	}
}

func (a *app) rename(ctx context.Context, name string) {
	sess := a.session()
	if sess == nil {
		a.ui.PrintHint("No open session to rename.")
		return
	}
	if _, err := a.manager.UpdateName(ctx, sess.SessionID(), name); err != nil {
		a.fail("Rename failed", err)
		return
	}
	a.ui.PrintInfo(fmt.Sprintf("Renamed to %q.", name))
}

func (a *app) deleteSession(ctx context.Context, id string) {
	if err := a.manager.Delete(ctx, id); err != nil {
		a.fail("Delete failed", err)
		return
	}
	if sess := a.session(); sess != nil && sess.SessionID() == id {
		a.close()
	}
	a.ui.PrintInfo("Session deleted.")
}

// ── Chat ─────────────────────────────────────────────────────────

func (a *app) send(text string) {
	sess := a.session()
	if sess == nil {
		a.ui.PrintHint("No open session. Use /new or /open first.")
		return
	}
	if err := sess.Send(text); err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			a.ui.PrintUrgent("Not connected. Message not sent; try /reconnect.")
			return
		}
		a.fail("Send failed", err)
	}
}

func (a *app) reconnect() {
	sess := a.session()
	if sess == nil {
		a.ui.PrintHint("No open session.")
		return
	}
	if err := sess.Reconnect(); err != nil {
		a.fail("Reconnect failed", err)
	}
}

func (a *app) printMessage(m domain.ChatMessage) {
	line := display.FormatMessage(m)
	switch {
	case m.Role == domain.RoleUser:
		a.ui.PrintInfo(line)
	case m.Content != nil && m.Content.Type() == domain.ContentText:
		a.ui.PrintAssistant(line)
	default:
		a.ui.PrintCard(line)
	}
}

// ── Recipes ──────────────────────────────────────────────────────

func (a *app) recipeDoc() (*engine.RecipeDoc, bool) {
	doc, ok := a.session().(*engine.RecipeDoc)
	if !ok {
		a.ui.PrintHint("The open session has no recipe document.")
	}
	return doc, ok
}

func (a *app) showRecipe() {
	doc, ok := a.recipeDoc()
	if !ok {
		return
	}
	a.ui.PrintCard(display.FormatRecipe(doc.Recipe()))
}

func (a *app) saveRecipe(ctx context.Context) {
	doc, ok := a.recipeDoc()
	if !ok {
		return
	}
	saved, err := doc.SaveRecipe(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecipe) {
			a.ui.PrintHint("Nothing to save yet.")
			return
		}
		a.fail("Save failed", err)
		return
	}
	a.library.Put(saved)
	a.ui.PrintInfo(fmt.Sprintf("Saved %q to your recipes.", saved.Name))
}

func (a *app) listRecipes(ctx context.Context, query string) {
	var (
		list []domain.RecipeSummary
		err  error
	)
	if query == "" {
		list, err = a.library.List(ctx)
	} else {
		list, err = a.library.Search(ctx, query)
	}
	if err != nil {
		a.fail("Could not load recipes", err)
		return
	}
	a.ui.PrintCard(display.FormatSummaries(list))
}

// ── Kitchen ──────────────────────────────────────────────────────

func (a *app) kitchen() (*engine.Kitchen, bool) {
	k, ok := a.session().(*engine.Kitchen)
	if !ok {
		a.ui.PrintHint("Timers and ingredients live in kitchen sessions.")
	}
	return k, ok
}

func (a *app) showTimers() {
	k, ok := a.kitchen()
	if !ok {
		return
	}
	a.ui.PrintCard(display.FormatTimers(k.Timers(), time.Now()))
}

func (a *app) showIngredients() {
	k, ok := a.kitchen()
	if !ok {
		return
	}
	a.ui.PrintCard(display.FormatIngredients(k.Ingredients()))
}

// ── Misc ─────────────────────────────────────────────────────────

func (a *app) showFeatures(ctx context.Context) {
	f, err := a.api.Features(ctx)
	if err != nil {
		a.fail("Could not load features", err)
		return
	}
	a.ui.PrintCard(formatFeatures(f))
}

func formatFeatures(f domain.Features) string {
	if len(f) == 0 {
		return "No feature flags."
	}
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	slices.Sort(names)
	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		state := "off"
		if f[name] {
			state = "on"
		}
		fmt.Fprintf(&b, "  %-20s %s", name, state)
	}
	return b.String()
}

func (a *app) fail(what string, err error) {
	a.log.Error("%s: %v", what, err)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		// The unauthorized hook already told the user.
	case errors.Is(err, domain.ErrNotFound):
		a.ui.PrintUrgent(what + ": not found.")
	case errors.Is(err, domain.ErrNetwork):
		a.ui.PrintUrgent(what + ": the server is unreachable.")
	default:
		a.ui.PrintUrgent(fmt.Sprintf("%s: %v", what, err))
	}
}

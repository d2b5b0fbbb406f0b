// Otto client: a terminal front end for the Otto cooking assistant.
//
// Usage:
//
//	ottoclient [-verbose] [-quiet] [-config otto.yaml] [-surface kitchen] [-session id] [-plain]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

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
	"github.com/hammamikhairi/ottoclient/internal/transport/sse"
	"github.com/hammamikhairi/ottoclient/internal/transport/ws"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".otto-logs/client.log", "file to write logs to (use \"stderr\" to log to console)")
	cfgPath := flag.String("config", "", "optional YAML config file")
	surface := flag.String("surface", "", "session surface: kitchen, recipe_creator or meal_planner")
	sessionID := flag.String("session", "", "session id to open on start")
	plain := flag.Bool("plain", false, "line-oriented stdin/stdout instead of the full-screen prompt")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *surface != "" {
		cfg.Surface = domain.SessionType(*surface)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the prompt stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var ui screen
	if *plain {
		ui = newPlainScreen(os.Stdin, os.Stdout)
	} else {
		ui = display.NewUI()
	}

	client, err := api.New(cfg.APIURL, log,
		api.WithSessionCookie(cfg.CookieName, cfg.SessionCookie),
		api.WithHTTPTimeout(cfg.HTTPTimeout),
		api.WithFeaturesTTL(cfg.FeaturesTTL),
		api.WithOnUnauthorized(func() {
			ui.PrintUrgent("Not signed in: set OTTO_SESSION_COOKIE to a valid session cookie.")
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	userID := cfg.UserID
	if userID == "" {
		if me, err := client.Me(ctx); err != nil {
			log.Warn("could not resolve current user: %v", err)
		} else {
			userID = me.ID
			log.Info("signed in as %s", me.ID)
		}
	}

	// Session lists and the event stream that keeps them fresh.
	cache := storage.NewMemoryCache(log)
	family, ok := sessions.FamilyOf(cfg.Surface)
	if !ok {
		fmt.Fprintf(os.Stderr, "error: unknown surface %q\n", cfg.Surface)
		os.Exit(1)
	}
	manager := sessions.NewManager(client, cache, family, log)
	stream := sse.New(client.BaseURL(), sessions.NewSync(cache, log).Apply, log,
		sse.WithPath(cfg.SSEPath),
		sse.WithMaxRetries(cfg.SSEMaxRetries),
		sse.WithRetryInterval(cfg.SSERetryDelay),
		sse.WithHTTPClient(client.StreamClient()),
	)

	dial := func(id string, onMessage func(domain.Envelope)) (engine.Conn, error) {
		u, err := ws.SessionURL(cfg.APIURL, cfg.WSURL, id)
		if err != nil {
			return nil, err
		}
		return ws.New(u, onMessage, log,
			ws.WithJar(client.Jar()),
			ws.WithUserID(userID),
			ws.WithAutoReconnect(cfg.AutoReconnect),
			ws.WithReconnectDelay(cfg.ReconnectDelay),
			ws.WithStatusHandler(func(s ws.Status) {
				switch s {
				case ws.StatusOpen:
					ui.PrintHint("connected")
				case ws.StatusClosed, ws.StatusError:
					ui.PrintHint("connection " + s.String())
				}
			}),
		), nil
	}

	a := &app{
		cfg:      cfg,
		api:      client,
		manager:  manager,
		cache:    cache,
		library:  recipe.NewLibrary(client, log),
		parser:   conversation.NewCommandParser(log),
		notifier: conversation.NewCLINotifier(log, ui.Printf),
		dial:     dial,
		ui:       ui,
		log:      log.With("app"),
	}

	defer a.watchSessions()()

	a.ticker = timer.New(a.timers, a.notifier, log)
	ui.SetTimerSource(a.timers)
	a.ticker.Start(ctx)
	defer a.ticker.Stop()

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render(fmt.Sprintf("  %s mode. Type /help for commands, /quit to exit.", cfg.Surface)))
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := stream.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("session event stream stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		defer ui.Quit()
		ui.WaitReady()
		return a.run(gctx, *sessionID)
	})

	// The screen owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("%v", err)
	}
	a.close()
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/dmitrijs2005/babeledit/internal/client/config"
	"github.com/dmitrijs2005/babeledit/internal/client/credentials"
	"github.com/dmitrijs2005/babeledit/internal/client/services"
	"github.com/dmitrijs2005/babeledit/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	store   credentials.Store
	api     *client.HTTPClient
	health  *client.HealthChecker
	auth    services.AuthService
	catalog services.CatalogService
	uploads services.UploadService
	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer

	mu       sync.Mutex
	mode     Mode
	userName string
}

// NewApp opens the configured session store and wires the API client and
// services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, closer, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	app, err := newApp(c, log, store, bufio.NewReader(os.Stdin), os.Stdout)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func newApp(c *config.Config, log logging.Logger, store credentials.Store, in *bufio.Reader, out io.Writer) (*App, error) {
	api, err := client.New(c.APIURL, store,
		client.WithLogger(log),
		client.WithRequestTimeout(c.RequestTimeout),
		client.WithRetries(c.Retries),
		client.WithRetryDelay(c.RetryDelay),
		client.WithRefreshPath(c.RefreshPath),
	)
	if err != nil {
		return nil, err
	}

	health := client.NewHealthChecker(api,
		client.WithHealthPath(c.HealthPath),
		client.WithHealthTimeout(c.HealthTimeout),
		client.WithCheckInterval(c.OnlineCheckInterval),
	)

	return &App{
		config:  c,
		log:     log,
		store:   store,
		api:     api,
		health:  health,
		auth:    services.NewAuthService(api, store),
		catalog: services.NewCatalogService(api),
		uploads: services.NewUploadService(api),
		reader:  in,
		out:     out,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.auth.IsAuthenticated(ctx)
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.mode != "" {
		s += string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Run restores the previous session (if any), starts the connectivity
// watcher and blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.printf("Welcome to Babel Edit CLI (type 'help' for commands)\n")
	a.restoreSession(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// Close releases the session store.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Error(context.Background(), "failed to close", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) restoreSession(ctx context.Context) {
	info, err := a.auth.SessionInfo(ctx)
	if err != nil {
		return
	}
	a.setUser(info.Subject)
	a.printf("Restored session for %s\n", info.Subject)
}

// StartOnlineStatusWatcher keeps Mode in sync with server reachability
// until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context) {
	a.health.Watch(ctx, a.config.OnlineCheckInterval, func(available bool) {
		if available {
			a.setMode(ctx, ModeOnline)
		} else {
			a.setMode(ctx, ModeOffline)
		}
	})
}

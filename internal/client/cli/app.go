package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/config"
	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
	"github.com/rycusapp/rycus-cli/internal/client/services"
	"github.com/rycusapp/rycus-cli/internal/common"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

// App wires the session engine, entitlement gate, and notification poller
// behind an interactive terminal loop.
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	api      api.Client
	sessions *services.SessionStore
	gate     *services.EntitlementGate
	prefs    *services.Preferences
	poller   *services.NotificationPoller
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := kvstore.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to initialize local database", "path", cfg.DBPath, "error", err)
		return nil, err
	}

	clientID, err := services.EnsureClientID(ctx, db)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, clientID, log)
	sessions := services.NewSessionStore(apiClient, db, log)
	gate := services.NewEntitlementGate(sessions, apiClient, cfg.DevMode, cfg.VIPEmails, log)
	prefs := services.NewPreferences(db)

	app := &App{
		config:   cfg,
		log:      log,
		db:       db,
		api:      apiClient,
		sessions: sessions,
		gate:     gate,
		prefs:    prefs,
		reader:   bufio.NewReader(os.Stdin),
	}

	app.poller = services.NewNotificationPoller(sessions, apiClient, prefs, cfg.PollInterval, services.NotificationEvents{
		OnPulse: func() { fmt.Println("* New connection request!") },
		OnSound: func() { fmt.Print("\a") },
	}, log)

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.sessions.CurrentUser() != nil
}

// getStatus renders the prompt status segment.
func (a *App) getStatus() string {
	u := a.sessions.CurrentUser()
	if u == nil {
		return ""
	}
	c := a.poller.Counts()
	s := u.Email
	if c.UnreadMessages > 0 || c.PendingConnections > 0 {
		s = fmt.Sprintf("%s [%dm/%dc]", s, c.UnreadMessages, c.PendingConnections)
	}
	return "(" + s + ") "
}

// Run restores the previous session, starts the notification poller, and
// hands control to the REPL until EOF or exit.
func (a *App) Run(ctx context.Context) {
	a.sessions.Bootstrap(ctx)

	if u := a.sessions.CurrentUser(); u != nil {
		name := u.Name
		if name == "" {
			name = u.Email
		}
		fmt.Printf("Welcome back, %s!\n", name)
	}

	fmt.Println("Rycus CLI (type 'help' for commands)")

	a.poller.Start(ctx)
	defer a.poller.Stop()

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// currentUser returns the signed-in user or an error suitable for command
// handlers.
func (a *App) currentUser() (*models.User, error) {
	u := a.sessions.CurrentUser()
	if u == nil {
		return nil, common.ErrNoSession
	}
	return u, nil
}

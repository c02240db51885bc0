package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/client/client"
	"github.com/dmitrijs2005/tripkeeper/internal/client/config"
	"github.com/dmitrijs2005/tripkeeper/internal/client/reminder"
	"github.com/dmitrijs2005/tripkeeper/internal/client/services"
	"github.com/dmitrijs2005/tripkeeper/internal/client/session"
	"github.com/dmitrijs2005/tripkeeper/internal/identity"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/notify"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config

	apiClient   client.Client
	provider    identity.Provider
	controller  *session.Controller
	notifier    *notify.TimerScheduler
	feed        *reminder.Feed
	reminders   *reminder.Scheduler
	trips       services.TripService
	attachments services.AttachmentService

	Mode   Mode
	reader *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {

	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointAddr)
	provider := client.NewProvider(apiClient)
	docs := client.NewPollingStore(apiClient, logger, c.DocPollInterval)
	controller := session.NewController(provider, docs, repos.Settings, logger)

	notifier := notify.NewTimerScheduler()
	feed := reminder.NewFeed(apiClient, logger)
	reminders := reminder.NewScheduler(notifier, feed, logger)

	return &App{
		config:      c,
		apiClient:   apiClient,
		provider:    provider,
		controller:  controller,
		notifier:    notifier,
		feed:        feed,
		reminders:   reminders,
		trips:       services.NewTripService(apiClient, reminders, logger),
		attachments: services.NewAttachmentService(apiClient),
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.notifier.Close()
	defer a.apiClient.Close()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// isLoggedIn reports whether the user is past the verification gate.
func (a *App) isLoggedIn() bool {
	return a.controller.IsAuthenticated()
}

// needsVerification reports whether the user is signed in but held at the
// gate: email unverified and no acknowledgement given yet.
func (a *App) needsVerification() bool {
	s := a.controller.Snapshot()
	return s.IdentityConfirmed && !s.IsAuthenticated
}

func (a *App) getStatus() string {
	s := a.controller.Snapshot()
	status := ""
	if s.DisplayName != "" {
		status = s.DisplayName + " "
	}
	if a.Mode != "" {
		status += string(a.Mode)
	}
	if status != "" {
		status = "(" + status + ")"
	}
	return status
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.apiClient.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

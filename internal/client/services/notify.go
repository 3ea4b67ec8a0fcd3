package services

import (
	"context"
	"sync"
	"time"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

// NotificationEvents are optional callbacks fired from the poll loop.
// OnPulse fires on a rising edge of the pending-connections counter;
// OnSound fires with it unless the sound preference is off.
type NotificationEvents struct {
	OnCounts func(models.NotificationCounts)
	OnPulse  func()
	OnSound  func()
}

// NotificationPoller keeps the unread-message and pending-connection
// badges fresh while a user is signed in. The two counters are fetched
// independently: one endpoint failing zeroes only its own counter.
// Polling does not consult the entitlement gate; locked-out users still
// see their badges.
type NotificationPoller struct {
	sessions *SessionStore
	api      api.Client
	prefs    *Preferences
	events   NotificationEvents
	log      logging.Logger

	interval time.Duration

	mu          sync.Mutex
	counts      models.NotificationCounts
	prevPending int
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewNotificationPoller(sessions *SessionStore, apiClient api.Client, prefs *Preferences, interval time.Duration, events NotificationEvents, log logging.Logger) *NotificationPoller {
	return &NotificationPoller{
		sessions: sessions,
		api:      apiClient,
		prefs:    prefs,
		events:   events,
		log:      log,
		interval: interval,
	}
}

// Counts returns the last observed counter values.
func (p *NotificationPoller) Counts() models.NotificationCounts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts
}

// Start launches the poll loop: one immediate poll, then one per interval.
// Calling Start while already running is a no-op.
func (p *NotificationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.PollNow(ctx)
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p.PollNow(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. Safe when not running.
func (p *NotificationPoller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// PollNow fetches both counters once and fires the configured events.
// Without a signed-in user it resets the counters and returns.
func (p *NotificationPoller) PollNow(ctx context.Context) {
	u := p.sessions.CurrentUser()
	if u == nil || u.Email == "" {
		p.mu.Lock()
		p.counts = models.NotificationCounts{}
		p.prevPending = 0
		p.mu.Unlock()
		return
	}

	var next models.NotificationCounts

	if n, err := p.api.UnreadCount(ctx, u.Email); err == nil {
		next.UnreadMessages = n
	} else {
		p.log.Debug(ctx, "unread count fetch failed", "error", err)
	}

	if n, err := p.api.PendingConnections(ctx, u.Email); err == nil {
		next.PendingConnections = n
	} else {
		p.log.Debug(ctx, "pending connections fetch failed", "error", err)
	}

	p.mu.Lock()
	rising := next.PendingConnections > p.prevPending
	p.prevPending = next.PendingConnections
	p.counts = next
	p.mu.Unlock()

	if p.events.OnCounts != nil {
		p.events.OnCounts(next)
	}
	if rising {
		if p.events.OnPulse != nil {
			p.events.OnPulse()
		}
		if p.events.OnSound != nil && p.prefs.SoundEnabled(ctx) {
			p.events.OnSound()
		}
	}
}

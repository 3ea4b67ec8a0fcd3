package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
)

type pollRecorder struct {
	mu     sync.Mutex
	counts []models.NotificationCounts
	pulses int
	sounds int
}

func (r *pollRecorder) events() NotificationEvents {
	return NotificationEvents{
		OnCounts: func(c models.NotificationCounts) {
			r.mu.Lock()
			r.counts = append(r.counts, c)
			r.mu.Unlock()
		},
		OnPulse: func() {
			r.mu.Lock()
			r.pulses++
			r.mu.Unlock()
		},
		OnSound: func() {
			r.mu.Lock()
			r.sounds++
			r.mu.Unlock()
		},
	}
}

func (r *pollRecorder) snapshot() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counts), r.pulses, r.sounds
}

func newPollerFixture(t *testing.T, f *fakeAPI, rec *pollRecorder) (*SessionStore, *Preferences, *NotificationPoller) {
	t.Helper()
	db := newTestDB(t)
	s := NewSessionStore(f, db, testLogger())
	prefs := NewPreferences(db)
	p := NewNotificationPoller(s, f, prefs, 50*time.Millisecond, rec.events(), testLogger())
	return s, prefs, p
}

func TestPollWithoutUserResetsCounters(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{}
	rec := &pollRecorder{}
	_, _, p := newPollerFixture(t, f, rec)

	p.PollNow(ctx)

	assert.Equal(t, models.NotificationCounts{}, p.Counts())
	n, pulses, _ := rec.snapshot()
	assert.Zero(t, n, "no events while signed out")
	assert.Zero(t, pulses)
}

func TestPollFetchesBothCounters(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{
		unreadFn: func(ctx context.Context, email string) (int, error) {
			return 3, nil
		},
		pendingFn: func(ctx context.Context, email string) (int, error) {
			return 2, nil
		},
	}
	rec := &pollRecorder{}
	s, _, p := newPollerFixture(t, f, rec)
	s.Login(ctx, models.User{ID: 1, Email: "jane@acme.com"}, "jwt-abc")
	s.WaitRehydrated()

	p.PollNow(ctx)

	assert.Equal(t, models.NotificationCounts{UnreadMessages: 3, PendingConnections: 2}, p.Counts())
}

func TestPollCounterFailuresAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{
		unreadFn: func(ctx context.Context, email string) (int, error) {
			return 0, errors.New("messages endpoint down")
		},
		pendingFn: func(ctx context.Context, email string) (int, error) {
			return 4, nil
		},
	}
	rec := &pollRecorder{}
	s, _, p := newPollerFixture(t, f, rec)
	s.Login(ctx, models.User{ID: 1, Email: "jane@acme.com"}, "jwt-abc")
	s.WaitRehydrated()

	p.PollNow(ctx)

	got := p.Counts()
	assert.Zero(t, got.UnreadMessages, "failed counter reads as zero")
	assert.Equal(t, 4, got.PendingConnections, "healthy counter unaffected")
}

func TestPulseFiresOnRisingEdgeOnly(t *testing.T) {
	ctx := context.Background()

	var pending int
	var mu sync.Mutex
	f := &fakeAPI{
		pendingFn: func(ctx context.Context, email string) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			return pending, nil
		},
	}
	setPending := func(n int) {
		mu.Lock()
		pending = n
		mu.Unlock()
	}

	rec := &pollRecorder{}
	s, _, p := newPollerFixture(t, f, rec)
	s.Login(ctx, models.User{ID: 1, Email: "jane@acme.com"}, "jwt-abc")
	s.WaitRehydrated()

	setPending(2)
	p.PollNow(ctx)
	_, pulses, sounds := rec.snapshot()
	assert.Equal(t, 1, pulses, "0 to 2 is a rising edge")
	assert.Equal(t, 1, sounds)

	p.PollNow(ctx)
	_, pulses, _ = rec.snapshot()
	assert.Equal(t, 1, pulses, "steady count does not re-fire")

	setPending(1)
	p.PollNow(ctx)
	_, pulses, _ = rec.snapshot()
	assert.Equal(t, 1, pulses, "falling count does not fire")

	setPending(3)
	p.PollNow(ctx)
	_, pulses, _ = rec.snapshot()
	assert.Equal(t, 2, pulses, "1 to 3 is a rising edge")
}

func TestSoundPreferenceSilencesPulse(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{
		pendingFn: func(ctx context.Context, email string) (int, error) {
			return 5, nil
		},
	}
	rec := &pollRecorder{}
	s, prefs, p := newPollerFixture(t, f, rec)
	s.Login(ctx, models.User{ID: 1, Email: "jane@acme.com"}, "jwt-abc")
	s.WaitRehydrated()

	require.NoError(t, prefs.SetSoundEnabled(ctx, false))

	p.PollNow(ctx)

	_, pulses, sounds := rec.snapshot()
	assert.Equal(t, 1, pulses, "visual pulse is independent of the sound toggle")
	assert.Zero(t, sounds)
}

func TestPollerStartStop(t *testing.T) {
	ctx := context.Background()
	f := &fakeAPI{
		unreadFn: func(ctx context.Context, email string) (int, error) {
			return 1, nil
		},
	}
	rec := &pollRecorder{}
	s, _, p := newPollerFixture(t, f, rec)
	s.Login(ctx, models.User{ID: 1, Email: "jane@acme.com"}, "jwt-abc")
	s.WaitRehydrated()

	p.Start(ctx)
	p.Start(ctx) // second call is a no-op

	require.Eventually(t, func() bool {
		n, _, _ := rec.snapshot()
		return n >= 2
	}, 2*time.Second, 10*time.Millisecond, "immediate poll plus at least one tick")

	p.Stop()
	n1, _, _ := rec.snapshot()
	time.Sleep(150 * time.Millisecond)
	n2, _, _ := rec.snapshot()
	assert.Equal(t, n1, n2, "no polls after Stop")

	p.Stop() // safe when not running
}

func TestSoundPreferenceDefaultsOn(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	prefs := NewPreferences(db)

	assert.True(t, prefs.SoundEnabled(ctx))

	require.NoError(t, prefs.SetSoundEnabled(ctx, false))
	assert.False(t, prefs.SoundEnabled(ctx))

	require.NoError(t, prefs.SetSoundEnabled(ctx, true))
	assert.True(t, prefs.SoundEnabled(ctx))
}

func TestVisibilityDefaultsOn(t *testing.T) {
	ctx := context.Background()
	prefs := NewPreferences(newTestDB(t))

	v, err := prefs.Visibility(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, DefaultVisibility(), v)
	assert.True(t, v.PublicProfile)
	assert.True(t, v.Searchable)
}

func TestVisibilityPerAccount(t *testing.T) {
	ctx := context.Background()
	prefs := NewPreferences(newTestDB(t))

	require.NoError(t, prefs.SetVisibility(ctx, "Jane@Acme.com",
		Visibility{PublicProfile: false, Searchable: true}))

	// Reads are keyed by the lowercased email, so the mixed-case write
	// lands in the same slot.
	v, err := prefs.Visibility(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, v.PublicProfile)
	assert.True(t, v.Searchable)

	v, err = prefs.Visibility(ctx, "other@acme.com")
	require.NoError(t, err)
	assert.Equal(t, DefaultVisibility(), v)
}

func TestVisibilityTolerantOfBadEntries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	prefs := NewPreferences(db)
	repo := kvstore.NewSQLiteRepository(db)

	// A corrupt blob reads as the defaults instead of an error.
	mustSet(t, repo, VisibilityKey("jane@acme.com"), []byte("not json"))
	v, err := prefs.Visibility(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.Equal(t, DefaultVisibility(), v)

	// A partial blob only overrides the fields it carries.
	mustSet(t, repo, VisibilityKey("jane@acme.com"), []byte(`{"isSearchable":false}`))
	v, err = prefs.Visibility(ctx, "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, v.PublicProfile)
	assert.False(t, v.Searchable)
}

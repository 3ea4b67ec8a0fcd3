package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/client/repositories/kvstore"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := kvstore.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeAPI is a scriptable api.Client. Unset hooks answer with zero values.
type fakeAPI struct {
	mu    sync.Mutex
	token string

	currentUserFn func(ctx context.Context, email string) (models.Patch, error)
	billingFn     func(ctx context.Context, email string) (models.BillingStatus, error)
	unreadFn      func(ctx context.Context, email string) (int, error)
	pendingFn     func(ctx context.Context, email string) (int, error)

	currentUserCalls int
	billingCalls     int
}

var _ api.Client = (*fakeAPI)(nil)

func (f *fakeAPI) Login(ctx context.Context, email, password string) (models.User, string, error) {
	return models.User{Email: email}, "tok-" + email, nil
}

func (f *fakeAPI) Register(ctx context.Context, fullName, email, password string) (models.User, string, error) {
	return models.User{Email: email, Name: fullName}, "tok-" + email, nil
}

func (f *fakeAPI) CurrentUser(ctx context.Context, email string) (models.Patch, error) {
	f.mu.Lock()
	f.currentUserCalls++
	fn := f.currentUserFn
	f.mu.Unlock()
	if fn == nil {
		return models.Patch{}, nil
	}
	return fn(ctx, email)
}

func (f *fakeAPI) ChangeEmail(ctx context.Context, currentEmail, newEmail, password string) error {
	return nil
}

func (f *fakeAPI) BillingStatus(ctx context.Context, email string) (models.BillingStatus, error) {
	f.mu.Lock()
	f.billingCalls++
	fn := f.billingFn
	f.mu.Unlock()
	if fn == nil {
		return models.BillingStatus{}, nil
	}
	return fn(ctx, email)
}

func (f *fakeAPI) Checkout(ctx context.Context, email, returnTo string) (models.CheckoutSession, error) {
	return models.CheckoutSession{URL: "https://pay.example/session"}, nil
}

func (f *fakeAPI) UnreadCount(ctx context.Context, email string) (int, error) {
	f.mu.Lock()
	fn := f.unreadFn
	f.mu.Unlock()
	if fn == nil {
		return 0, nil
	}
	return fn(ctx, email)
}

func (f *fakeAPI) PendingConnections(ctx context.Context, email string) (int, error) {
	f.mu.Lock()
	fn := f.pendingFn
	f.mu.Unlock()
	if fn == nil {
		return 0, nil
	}
	return fn(ctx, email)
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAPI) ClearToken() {
	f.mu.Lock()
	f.token = ""
	f.mu.Unlock()
}

func (f *fakeAPI) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) CurrentUserCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUserCalls
}

func (f *fakeAPI) BillingCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.billingCalls
}

func testLogger() logging.Logger {
	return logging.NewDefault()
}

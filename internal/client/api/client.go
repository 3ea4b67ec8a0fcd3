package api

import (
	"context"

	"github.com/rycusapp/rycus-cli/internal/client/models"
)

// Client is the transport-agnostic contract the session engine uses to talk
// to the Rycus backend. Implementations attach the bearer token set via
// SetToken to every outbound request and must never log its value.
type Client interface {
	// Login and Register authenticate and return the recovered user plus the
	// bearer token. A response without a usable token fails with ErrNoToken;
	// a tokenless session is never treated as success.
	Login(ctx context.Context, email, password string) (models.User, string, error)
	Register(ctx context.Context, fullName, email, password string) (models.User, string, error)

	// CurrentUser returns the backend's authoritative profile fields for the
	// given email as a patch carrying only usable (non-blank) values.
	CurrentUser(ctx context.Context, email string) (models.Patch, error)

	// ChangeEmail asks the backend to move the account to a new address.
	ChangeEmail(ctx context.Context, currentEmail, newEmail, password string) error

	BillingStatus(ctx context.Context, email string) (models.BillingStatus, error)
	Checkout(ctx context.Context, email, returnTo string) (models.CheckoutSession, error)

	UnreadCount(ctx context.Context, email string) (int, error)
	PendingConnections(ctx context.Context, email string) (int, error)

	SetToken(token string)
	ClearToken()
}

package cli

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Activate starts a checkout session and prints the payment URL. The access
// decision is re-evaluated on the next sign-in, after the backend has
// processed the payment.
func (a *App) Activate(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	if a.gate.Resolve(ctx) {
		fmt.Println("Your plan is already active.")
		return nil
	}

	session, err := a.api.Checkout(ctx, u.Email, "/billing/success")
	if err != nil {
		return a.describeSessionError(ctx, err)
	}

	fmt.Println("Open this link to complete your payment:")
	fmt.Println("  " + session.URL)
	fmt.Println("Sign in again after paying to refresh your access.")
	return nil
}

// Status prints the session and access state, including when the current
// token expires. The token is decoded without signature verification; the
// expiry shown here is informational, the backend remains the authority.
func (a *App) Status(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", u.Email)
	if u.PlanType != "" {
		fmt.Printf("Plan: %s\n", u.PlanType)
	}
	if a.gate.IsVIP(u) {
		fmt.Println("Access: VIP")
	} else if a.gate.Resolve(ctx) {
		fmt.Println("Access: active")
	} else {
		fmt.Println("Access: inactive (run 'activate')")
	}

	if exp := tokenExpiry(a.sessions.Token()); exp != "" {
		fmt.Printf("Session expires: %s\n", exp)
	}
	return nil
}

// tokenExpiry extracts the exp claim from a JWT without verifying it.
// Returns "" when the token is absent, opaque, or carries no expiry.
func tokenExpiry(token string) string {
	if token == "" {
		return ""
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ""
	}
	return exp.Time.UTC().Format("2006-01-02 15:04 MST")
}

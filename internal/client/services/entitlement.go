package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rycusapp/rycus-cli/internal/client/api"
	"github.com/rycusapp/rycus-cli/internal/client/models"
	"github.com/rycusapp/rycus-cli/internal/logging"
)

// IsVIP is the single classification predicate shared by the gate and any
// UI badge: allow-listed owner email, lifetime-plan marker, or internal
// owner marker. The allow-list must hold lower-cased emails.
func IsVIP(u *models.User, allowlist map[string]struct{}) bool {
	if u == nil {
		return false
	}
	if _, ok := allowlist[strings.ToLower(strings.TrimSpace(u.Email))]; ok {
		return true
	}
	if models.IsLifetimePlan(u.PlanType) {
		return true
	}
	return u.IsOwner
}

// EntitlementGate decides whether the signed-in user may reach a protected
// destination. The decision is driven by a one-shot billingChecked flag:
// once the billing status is resolved (success or failure) it is not
// re-fetched on navigation, only after a fresh login.
//
// Rule order, first match wins: VIP short-circuit, development bypass,
// lifetime plan reported by the user lookup, then the dedicated billing
// lookup. A transport failure there resolves fail-closed: access control
// must never fail open.
type EntitlementGate struct {
	sessions *SessionStore
	api      api.Client
	log      logging.Logger

	devMode   bool
	allowlist map[string]struct{}

	mu      sync.Mutex
	checked bool
}

func NewEntitlementGate(sessions *SessionStore, apiClient api.Client, devMode bool, vipEmails []string, log logging.Logger) *EntitlementGate {
	allowlist := make(map[string]struct{}, len(vipEmails))
	for _, e := range vipEmails {
		allowlist[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	g := &EntitlementGate{
		sessions:  sessions,
		api:       apiClient,
		log:       log,
		devMode:   devMode,
		allowlist: allowlist,
	}
	sessions.OnLogin(g.Reset)
	return g
}

// Reset clears the one-shot check flag. Wired to SessionStore.OnLogin.
func (g *EntitlementGate) Reset() {
	g.mu.Lock()
	g.checked = false
	g.mu.Unlock()
}

// Checked reports whether the billing status has been resolved for this
// app-session.
func (g *EntitlementGate) Checked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checked
}

func (g *EntitlementGate) markChecked() {
	g.mu.Lock()
	g.checked = true
	g.mu.Unlock()
}

// IsVIP applies the central predicate to u with this gate's allow-list.
func (g *EntitlementGate) IsVIP(u *models.User) bool {
	return IsVIP(u, g.allowlist)
}

// cachedAccess is the decision surface once checked: VIP always has access,
// otherwise the locally stored hasAccess answers.
func (g *EntitlementGate) cachedAccess(u *models.User) bool {
	if g.IsVIP(u) || g.devMode {
		return true
	}
	return u.HasAccess != nil && *u.HasAccess
}

// Resolve computes whether the current user has access, issuing backend
// calls at most once per app-session. Without a signed-in user it returns
// false; unauthenticated routing applies then.
func (g *EntitlementGate) Resolve(ctx context.Context) bool {
	u := g.sessions.CurrentUser()
	if u == nil {
		return false
	}

	g.mu.Lock()
	if g.checked {
		g.mu.Unlock()
		return g.cachedAccess(u)
	}
	g.mu.Unlock()

	if g.IsVIP(u) {
		patch := models.Patch{HasAccess: models.Bool(true)}
		if u.PlanType == "" {
			patch.PlanType = models.String("owner")
		}
		if u.HasAccess == nil || !*u.HasAccess || u.PlanType == "" {
			g.sessions.UpdateUser(ctx, patch)
		}
		g.markChecked()
		return true
	}

	if g.devMode {
		if u.HasAccess == nil || !*u.HasAccess {
			g.sessions.UpdateUser(ctx, models.Patch{HasAccess: models.Bool(true)})
		}
		g.markChecked()
		return true
	}

	// Production, non-VIP, unchecked: resolve against the backend. The flag
	// flips whatever happens so the UI is never stuck on a loading state.
	defer g.markChecked()

	if patch, err := g.api.CurrentUser(ctx, u.Email); err == nil {
		if patch.PlanType != nil {
			g.sessions.UpdateUser(ctx, models.Patch{PlanType: patch.PlanType})
			if models.IsLifetimePlan(*patch.PlanType) {
				g.sessions.UpdateUser(ctx, models.Patch{HasAccess: models.Bool(true)})
				return true
			}
		}
	} else {
		g.log.Debug(ctx, "plan refresh failed, falling through to billing lookup", "error", err)
	}

	st, err := g.api.BillingStatus(ctx, u.Email)
	if err != nil {
		// Fail closed: a transient billing outage must not unlock access.
		g.log.Warn(ctx, "billing status unavailable, failing closed", "error", err)
		g.sessions.UpdateUser(ctx, models.Patch{HasAccess: models.Bool(false)})
		return false
	}

	access := true // explicit server answer carrying neither field
	switch {
	case st.HasAccess != nil:
		access = *st.HasAccess
	case st.Active != nil:
		access = *st.Active
	}

	patch := models.Patch{HasAccess: models.Bool(access)}
	if st.PlanType != "" {
		patch.PlanType = models.String(st.PlanType)
	}
	g.sessions.UpdateUser(ctx, patch)
	return access
}

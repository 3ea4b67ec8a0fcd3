package services

import "context"

// RouteSpec declares what a destination requires from the visitor.
type RouteSpec struct {
	RequiresAuth        bool
	RequiresEntitlement bool
}

// routeTable mirrors the application's navigation surface. Anything not
// listed is treated as auth-only, the safer default for unknown paths.
var routeTable = map[string]RouteSpec{
	"/":         {},
	"/login":    {},
	"/register": {},

	"/dashboard":       {RequiresAuth: true},
	"/profile":         {RequiresAuth: true},
	"/activate":        {RequiresAuth: true},
	"/billing/success": {RequiresAuth: true},
	"/billing/cancel":  {RequiresAuth: true},
	"/feed":            {RequiresAuth: true},

	"/customers":     {RequiresAuth: true, RequiresEntitlement: true},
	"/customers/new": {RequiresAuth: true, RequiresEntitlement: true},
	"/reviews":       {RequiresAuth: true, RequiresEntitlement: true},
	"/messages":      {RequiresAuth: true, RequiresEntitlement: true},
	"/network":       {RequiresAuth: true, RequiresEntitlement: true},
	"/map":           {RequiresAuth: true, RequiresEntitlement: true},
}

type RouteDecision int

const (
	RouteAllow RouteDecision = iota
	RouteWait
	RouteRedirectSignIn
	RouteRedirectActivate
)

func (d RouteDecision) String() string {
	switch d {
	case RouteAllow:
		return "allow"
	case RouteWait:
		return "wait"
	case RouteRedirectSignIn:
		return "redirect:/login"
	case RouteRedirectActivate:
		return "redirect:/activate"
	default:
		return "unknown"
	}
}

// GuardResult carries the decision plus the origin path so a later
// successful sign-in or activation can return the visitor where they
// were headed.
type GuardResult struct {
	Decision RouteDecision
	From     string
}

// GuardRoute decides whether the current user may open path. While the
// session is still bootstrapping every path gets RouteWait; nothing is
// admitted before the stored session has been read.
func (g *EntitlementGate) GuardRoute(ctx context.Context, path string) GuardResult {
	if g.sessions.Initializing() {
		return GuardResult{Decision: RouteWait, From: path}
	}

	spec, ok := routeTable[path]
	if !ok {
		spec = RouteSpec{RequiresAuth: true}
	}

	if !spec.RequiresAuth {
		return GuardResult{Decision: RouteAllow, From: path}
	}
	if g.sessions.CurrentUser() == nil {
		return GuardResult{Decision: RouteRedirectSignIn, From: path}
	}
	if spec.RequiresEntitlement && !g.Resolve(ctx) {
		return GuardResult{Decision: RouteRedirectActivate, From: path}
	}
	return GuardResult{Decision: RouteAllow, From: path}
}

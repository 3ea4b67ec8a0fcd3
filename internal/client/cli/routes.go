package cli

import (
	"context"
	"fmt"

	"github.com/rycusapp/rycus-cli/internal/client/services"
)

// Open simulates navigating to an application path and reports the guard's
// decision, mirroring what the web client would do.
func (a *App) Open(ctx context.Context, path string) error {
	res := a.gate.GuardRoute(ctx, path)

	switch res.Decision {
	case services.RouteAllow:
		fmt.Printf("Opened %s\n", path)
		// Route changes refresh the badges immediately, like the web client.
		if a.isLoggedIn() {
			a.poller.PollNow(ctx)
		}
	case services.RouteWait:
		fmt.Printf("Still restoring your session, try %s again in a moment\n", path)
	case services.RouteRedirectSignIn:
		fmt.Printf("%s requires an account, sign in first (login)\n", path)
	case services.RouteRedirectActivate:
		fmt.Printf("%s requires an active plan (activate)\n", path)
	default:
		return fmt.Errorf("unexpected guard decision %v", res.Decision)
	}
	return nil
}

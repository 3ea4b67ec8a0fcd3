package cli

import (
	"context"
	"fmt"
)

// Notifications forces an immediate poll and prints both counters.
func (a *App) Notifications(ctx context.Context) error {
	if _, err := a.currentUser(); err != nil {
		return err
	}

	a.poller.PollNow(ctx)
	c := a.poller.Counts()
	fmt.Printf("Unread messages:     %d\n", c.UnreadMessages)
	fmt.Printf("Pending connections: %d\n", c.PendingConnections)
	return nil
}

// Sound toggles the notification sound preference.
func (a *App) Sound(ctx context.Context, enabled bool) error {
	if err := a.prefs.SetSoundEnabled(ctx, enabled); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Notification sound on.")
	} else {
		fmt.Println("Notification sound off.")
	}
	return nil
}

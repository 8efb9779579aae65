package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

// Notifications opens the dropdown with a fresh fetch.
func (a *App) Notifications(ctx context.Context) error {
	if !a.tokenPresent(ctx) {
		a.navigate(ctx, guard.PathLogin)
		return nil
	}
	a.poller.SetOpen(true)
	err := a.poller.Refresh(ctx)
	a.println(a.poller.Render())
	return err
}

// Read marks one notification (by its number in the dropdown) or all of
// them as read.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: read <number>|all")
		return nil
	}
	if !a.tokenPresent(ctx) {
		a.navigate(ctx, guard.PathLogin)
		return nil
	}

	if args[0] == "all" {
		if err := a.poller.MarkAllRead(ctx); err != nil {
			a.log.Warn(ctx, "mark all read failed", "error", err)
			return a.fail("Failed to mark notifications as read")
		}
	} else {
		n, ok := a.pick(args[0])
		if !ok {
			return a.fail("No notification #" + args[0])
		}
		if err := a.poller.MarkRead(ctx, n.ID); err != nil {
			a.log.Warn(ctx, "mark read failed", "id", n.ID, "error", err)
			return a.fail("Failed to mark notification as read")
		}
	}
	a.println(a.poller.Render())
	return nil
}

// Open marks a notification read and jumps to its incident.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: open <number>")
		return nil
	}
	n, ok := a.pick(args[0])
	if !ok {
		return a.fail("No notification #" + args[0])
	}
	if path := a.poller.Open(ctx, n); path != "" {
		a.navigate(ctx, path)
	}
	return nil
}

// pick resolves a 1-based position in the last fetched list.
func (a *App) pick(arg string) (models.Notification, bool) {
	list := a.poller.Snapshot().Notifications
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > len(list) {
		return models.Notification{}, false
	}
	return list[i-1], true
}

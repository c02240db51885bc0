package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Feed refreshes the notification feed from the backend and prints it,
// newest first.
func (a *App) Feed(ctx context.Context) error {
	if err := a.feed.Refresh(ctx); err != nil {
		log.Printf("Could not refresh feed: %s", err.Error())
		return err
	}

	items := a.feed.Items()
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, item := range items {
		marker := "*"
		if item.Read {
			marker = " "
		}
		fmt.Printf("%s %s  %s — %s (%s)\n", marker, item.ID, item.Title, item.Message,
			item.OccurredAt.Local().Format(dateTimeLayout))
	}
	return nil
}

func (a *App) MarkRead(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Notification id", os.Stdout)
	if err != nil {
		return err
	}
	a.feed.MarkRead(ctx, id)
	return nil
}

func (a *App) ClearFeed(ctx context.Context) error {
	a.feed.Clear(ctx)
	fmt.Println("Feed cleared.")
	return nil
}

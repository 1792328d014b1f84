package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/clockd/clockd/internal/client/models"
)

func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Println("Please login first")
		return false
	}
	return true
}

// itemArg resolves a 1-based index from the last `list` output.
func (a *App) itemArg(ctx context.Context, args []string) (*models.Item, error) {
	if len(args) == 0 {
		return nil, errors.New("item number required (run 'list' to see numbers)")
	}
	if a.items == nil {
		if err := a.refreshItems(ctx); err != nil {
			return nil, err
		}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.items) {
		return nil, fmt.Errorf("invalid item number %q", args[0])
	}
	return &a.items[n-1], nil
}

func (a *App) refreshItems(ctx context.Context) error {
	items, err := a.local.ItemsByUser(ctx, a.userID)
	if err != nil {
		return err
	}
	a.items = items
	return nil
}

func (a *App) list(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	if err := a.refreshItems(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(a.items) == 0 {
		fmt.Println("No habits yet, use 'add'")
		return
	}
	for i, item := range a.items {
		desc := ""
		if item.Description != "" {
			desc = " - " + item.Description
		}
		fmt.Printf("%2d. %s%s (%d check-ins)\n", i+1, item.Name, desc, item.ClockInCount)
	}
}

func (a *App) addItem(ctx context.Context) {
	if !a.requireLogin() {
		return
	}

	name, err := GetSimpleText(a.reader, "Habit name", os.Stdout)
	if err != nil || name == "" {
		fmt.Println("Cancelled")
		return
	}
	description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		fmt.Println("Cancelled")
		return
	}

	item, err := a.local.InsertItem(ctx, a.userID, name, description)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a.items = nil
	fmt.Printf("Added %q\n", item.Name)
}

func (a *App) editItem(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	name, err := GetSimpleText(a.reader, fmt.Sprintf("New name [%s]", item.Name), os.Stdout)
	if err != nil {
		fmt.Println("Cancelled")
		return
	}
	if name == "" {
		name = item.Name
	}
	description, err := GetSimpleText(a.reader, fmt.Sprintf("New description [%s]", item.Description), os.Stdout)
	if err != nil {
		fmt.Println("Cancelled")
		return
	}
	if description == "" {
		description = item.Description
	}

	if err := a.local.UpdateItem(ctx, item.ItemID, name, description); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a.items = nil
	fmt.Println("Updated")
}

func (a *App) deleteItem(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := a.local.DeleteItem(ctx, item.ItemID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a.items = nil
	fmt.Printf("Deleted %q\n", item.Name)
}

func (a *App) clockIn(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if _, err := a.local.InsertRecord(ctx, a.userID, item.ItemID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a.items = nil
	fmt.Printf("Checked in on %q\n", item.Name)
}

func (a *App) withdraw(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := a.local.DeleteMostRecentRecord(ctx, a.userID, item.ItemID); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	a.items = nil
	fmt.Printf("Withdrew latest check-in on %q\n", item.Name)
}

func (a *App) listRecords(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	records, err := a.local.RecordsByItem(ctx, a.userID, item.ItemID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("No check-ins yet")
		return
	}
	for _, record := range records {
		ts := time.UnixMilli(record.Timestamp).Local()
		fmt.Printf("  %s\n", ts.Format("2006-01-02 15:04"))
	}
}

func (a *App) today(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	item, err := a.itemArg(ctx, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	done, err := a.local.HasClockInOnDay(ctx, a.userID, item.ItemID, time.Now())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if done {
		fmt.Printf("%q is done for today\n", item.Name)
	} else {
		fmt.Printf("%q is not done yet today\n", item.Name)
	}
}

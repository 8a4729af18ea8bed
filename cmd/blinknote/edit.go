package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/core"
)

var (
	editTitle         string
	editContent       string
	editColor         string
	editReminder      string
	editClearReminder bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit the title, content, color or reminder of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var p core.Patch
		if cmd.Flags().Changed("title") {
			p.Title = &editTitle
		}
		if cmd.Flags().Changed("content") {
			p.Content = &editContent
		}
		if cmd.Flags().Changed("color") {
			p.Color = &editColor
		}
		reminder, err := parseReminder(editReminder)
		if err != nil {
			fatal("Error parsing reminder", err)
		}
		p.Reminder = reminder
		p.ClearReminder = editClearReminder

		svc := openService()
		defer svc.Close()

		ctx := context.Background()
		id := mustResolve(ctx, svc, args[0])
		if _, err := svc.Update(ctx, id, p); err != nil {
			fatal("Error updating note", err)
		}
	},
}

// mustResolve maps an id or id prefix to a stored id, or exits.
func mustResolve(ctx context.Context, svc *core.Service, arg string) string {
	notes, err := svc.List(ctx)
	if err != nil {
		fatal("Error reading notes", err)
	}
	id, err := resolveID(notes, arg)
	if err != nil {
		fatal("Error resolving note", err)
	}
	return id
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title (blank resets to \""+core.UntitledNote+"\")")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
	editCmd.Flags().StringVar(&editColor, "color", "", "New card color")
	editCmd.Flags().StringVar(&editReminder, "reminder", "", "New reminder (RFC 3339 or YYYY-MM-DD)")
	editCmd.Flags().BoolVar(&editClearReminder, "clear-reminder", false, "Remove the reminder")
}

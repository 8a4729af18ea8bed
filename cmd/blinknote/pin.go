package main

import (
	"context"

	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin <id>...",
	Short: "Pin notes to the top of the list",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setPinned(args, true)
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <id>...",
	Short: "Unpin notes",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setPinned(args, false)
	},
}

func setPinned(args []string, pinned bool) {
	svc := openService()
	defer svc.Close()

	ctx := context.Background()
	ids := make([]string, len(args))
	for i, arg := range args {
		ids[i] = mustResolve(ctx, svc, arg)
	}
	if _, err := svc.SetPinned(ctx, ids, pinned); err != nil {
		fatal("Error pinning notes", err)
	}
}

func init() {
	rootCmd.AddCommand(pinCmd, unpinCmd)
}

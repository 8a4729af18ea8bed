package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteAll bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete notes",
	Run: func(cmd *cobra.Command, args []string) {
		if !deleteAll && len(args) == 0 {
			fatal("Error deleting notes", fmt.Errorf("no ids given (use --all to delete every note)"))
		}

		svc := openService()
		defer svc.Close()

		ctx := context.Background()
		if deleteAll {
			if err := svc.Clear(ctx); err != nil {
				fatal("Error clearing notes", err)
			}
			return
		}

		ids := make([]string, len(args))
		for i, arg := range args {
			ids[i] = mustResolve(ctx, svc, arg)
		}
		if _, err := svc.DeleteMany(ctx, ids); err != nil {
			fatal("Error deleting notes", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every note")
}

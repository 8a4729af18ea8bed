package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/export"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, err := export.ParseFormat(showFormat)
		if err != nil {
			fatal("Error parsing format", err)
		}

		svc := openService()
		defer svc.Close()

		ctx := context.Background()
		note, _, err := svc.Get(ctx, mustResolve(ctx, svc, args[0]))
		if err != nil {
			fatal("Error reading note", err)
		}

		out, err := export.Note(note, format)
		if err != nil {
			fatal("Error rendering note", err)
		}
		fmt.Print(string(out))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "md", "Output format: md, html or json")
}

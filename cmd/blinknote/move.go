package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/core"
)

var (
	moveOnto string
	moveTo   int
)

var moveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Reorder a note among the listed notes",
	Long: `Move a note to a position of the full list (--to, 0 is the top) or
onto another note (--onto). Only the manual order hint changes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if moveOnto == "" && !cmd.Flags().Changed("to") {
			fatal("Error moving note", fmt.Errorf("one of --to or --onto is required"))
		}

		svc := openService()
		defer svc.Close()

		ctx := context.Background()
		notes, err := svc.List(ctx)
		if err != nil {
			fatal("Error reading notes", err)
		}
		dragged, err := resolveID(notes, args[0])
		if err != nil {
			fatal("Error resolving note", err)
		}
		visible := core.IDs(notes)

		if moveOnto != "" {
			target, err := resolveID(notes, moveOnto)
			if err != nil {
				fatal("Error resolving target", err)
			}
			_, err = svc.ReorderOnto(ctx, visible, dragged, target)
		} else {
			_, err = svc.ReorderAtIndex(ctx, visible, dragged, moveTo)
		}
		if err != nil {
			fatal("Error moving note", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().StringVar(&moveOnto, "onto", "", "Drop onto this note")
	moveCmd.Flags().IntVar(&moveTo, "to", 0, "Drop in front of the note at this index")
}

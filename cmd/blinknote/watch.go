package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote"
	lcadapter "github.com/aretw0/blinknote/pkg/adapters/lifecycle"
	"github.com/aretw0/blinknote/pkg/core"
)

var watchRaw bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes made by other instances of the shared store",
	Long: `Keep a session open and print the collection each time another instance
changes it. Requires the shared backend (--dir or shared.dir in the config).
With --raw, print the backend change events instead.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts, err := serviceOptions()
		if err != nil {
			fatal("Error loading config", err)
		}
		session, err := blinknote.NewSession(opts...)
		if err != nil {
			fatal("Error initializing blinknote", err)
		}
		defer session.Service().Close()
		defer session.Close()

		if watchRaw {
			watchEvents(ctx, session.Service())
			return
		}

		notes, err := session.Load(ctx)
		if err != nil {
			fatal("Error loading notes", err)
		}
		printSummary(notes)

		unsubscribe := session.Subscribe(printSummary)
		defer unsubscribe()

		if err := session.Start(ctx); err != nil {
			if errors.Is(err, core.ErrNotObservable) {
				fatal("Error watching", fmt.Errorf("%w: configure a shared directory with --dir", err))
			}
			fatal("Error watching", err)
		}
		slog.Info("watching for changes, press Ctrl+C to stop")
		<-ctx.Done()
	},
}

// watchEvents prints every change of the configured key as a lifecycle event.
func watchEvents(ctx context.Context, svc *core.Service) {
	obs, ok := svc.Store().Backend().(core.Observable)
	if !ok {
		fatal("Error watching", core.ErrNotObservable)
	}
	changes, err := obs.Watch(ctx)
	if err != nil {
		fatal("Error watching", err)
	}
	source := lcadapter.NewSource(changes, svc.Store().Key())
	if err := source.Start(ctx); err != nil {
		fatal("Error starting event source", err)
	}
	for e := range source.Events() {
		fmt.Println(e.String())
	}
}

func printSummary(notes []core.Note) {
	pinned := 0
	for _, n := range notes {
		if n.Pinned {
			pinned++
		}
	}
	fmt.Printf("%d notes (%d pinned)\n", len(notes), pinned)
	for _, n := range notes {
		fmt.Printf("  %s %-5s %s\n", shortID(n.ID), n.Type, n.Title)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchRaw, "raw", false, "Print raw backend change events")
}

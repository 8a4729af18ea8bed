package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote"
	"github.com/aretw0/blinknote/internal/config"
	"github.com/aretw0/blinknote/pkg/core"
)

var (
	verbose    bool
	configPath string
	sharedDir  string
	localPath  string
	storageKey string
	adapter    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blinknote",
	Short: "Quick-capture notes kept in one shared collection",
	Long: `BlinkNote captures text, links and images into a single note collection.
Several instances can share a directory and follow each other's changes.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configPath, "config", "", "Config file (default <user config dir>/blinknote/config.yaml)")
	flags.StringVar(&sharedDir, "dir", "", "Shared directory (enables the shared backend)")
	flags.StringVar(&localPath, "db", "", "Local database file (fallback backend)")
	flags.StringVar(&storageKey, "key", "", "Storage key holding the collection")
	flags.StringVar(&adapter, "adapter", "", "Force a backend: auto, shared, local or memory")
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	path, optional := configPath, false
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			path = ""
		}
		optional = true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}
	if sharedDir != "" {
		cfg.Shared.Dir = sharedDir
	}
	if localPath != "" {
		cfg.Local.Path = localPath
	}
	if storageKey != "" {
		cfg.Key = storageKey
	}
	if adapter != "" {
		cfg.Adapter = adapter
	}
	if !verbose && cfg.Log.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
	return cfg, nil
}

func serviceOptions() ([]blinknote.Option, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts := append(cfg.Options(), blinknote.WithLogger(slog.Default()))
	return opts, nil
}

// openService builds the service or exits.
func openService() *core.Service {
	opts, err := serviceOptions()
	if err != nil {
		fatal("Error loading config", err)
	}
	svc, err := blinknote.New(opts...)
	if err != nil {
		fatal("Error initializing blinknote", err)
	}
	return svc
}

// resolveID returns the note whose id equals arg or, failing that, starts with it.
func resolveID(notes []core.Note, arg string) (string, error) {
	var match string
	for _, n := range notes {
		if n.ID == arg {
			return n.ID, nil
		}
		if len(arg) >= 4 && len(n.ID) > len(arg) && n.ID[:len(arg)] == arg {
			if match != "" {
				return "", fmt.Errorf("ambiguous id prefix %q", arg)
			}
			match = n.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("note %q not found", arg)
	}
	return match, nil
}

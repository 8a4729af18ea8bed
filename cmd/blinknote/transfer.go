package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/export"
)

var (
	exportFormat string
	exportOut    string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a note, or the whole collection with --all",
	Long: `Export a single note as md, html or json, or (with --all) the whole
collection as an importable JSON document. With --out and a note id,
the note is written to <out>/<id>.<format>.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if exportAll == (len(args) == 1) {
			fatal("Error exporting", fmt.Errorf("give either a note id or --all"))
		}

		svc := openService()
		defer svc.Close()

		ctx := context.Background()
		if exportAll {
			notes, err := svc.List(ctx)
			if err != nil {
				fatal("Error reading notes", err)
			}
			data, err := export.Collection(notes, svc.Now())
			if err != nil {
				fatal("Error exporting notes", err)
			}
			writeOutput(exportOut, data)
			return
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			fatal("Error parsing format", err)
		}
		note, _, err := svc.Get(ctx, mustResolve(ctx, svc, args[0]))
		if err != nil {
			fatal("Error reading note", err)
		}
		data, err := export.Note(note, format)
		if err != nil {
			fatal("Error exporting note", err)
		}
		out := exportOut
		if out != "" {
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, export.Filename(note, format))
			}
		}
		writeOutput(out, data)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Replace the collection with an exported document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fatal("Error reading import file", err)
		}

		svc := openService()
		defer svc.Close()

		notes, err := svc.Import(context.Background(), data)
		if err != nil {
			fatal("Error importing notes", err)
		}
		fmt.Printf("Imported %d notes\n", len(notes))
	},
}

func writeOutput(path string, data []byte) {
	if path == "" || path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatal("Error writing output", err)
		}
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatal("Error writing output", err)
	}
	slog.Info("exported", "path", path, "bytes", len(data))
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Note format: md, html or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (default stdout)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export the whole collection")
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/core"
)

var (
	addTitle    string
	addType     string
	addColor    string
	addReminder string
	addSource   string
)

var addCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a note (reads stdin when no content is given)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := argOrStdin(args)
		if err != nil {
			fatal("Error reading content", err)
		}
		reminder, err := parseReminder(addReminder)
		if err != nil {
			fatal("Error parsing reminder", err)
		}

		svc := openService()
		defer svc.Close()

		note, _, err := svc.Append(context.Background(), core.Draft{
			Title:     addTitle,
			Content:   content,
			Type:      core.Type(addType),
			Color:     addColor,
			Reminder:  reminder,
			SourceURL: addSource,
		})
		if err != nil {
			fatal("Error adding note", err)
		}
		fmt.Println(note.ID)
	},
}

var (
	captureKind string
	capturePage string
)

var captureCmd = &cobra.Command{
	Use:   "capture [selection|image-url]",
	Short: "Capture a selection, a page link or an image from a page",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := core.Capture{Kind: core.CaptureKind(captureKind), PageURL: capturePage}
		switch c.Kind {
		case core.CaptureSelection:
			text, err := argOrStdin(args)
			if err != nil {
				fatal("Error reading selection", err)
			}
			c.SelectionText = text
		case core.CaptureImage:
			if len(args) == 0 {
				fatal("Error capturing image", fmt.Errorf("image url required"))
			}
			c.SrcURL = args[0]
		}

		svc := openService()
		defer svc.Close()

		note, _, err := svc.Capture(context.Background(), c)
		if err != nil {
			fatal("Error capturing note", err)
		}
		fmt.Println(note.ID)
	},
}

var attachSource string

var attachCmd = &cobra.Command{
	Use:   "attach <image-file|->",
	Short: "Attach an image file as an inline note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				fatal("Error opening image", err)
			}
			defer f.Close()
			r = f
		}

		svc := openService()
		defer svc.Close()

		note, _, err := svc.AttachImage(context.Background(), r, attachSource)
		if err != nil {
			fatal("Error attaching image", err)
		}
		fmt.Println(note.ID)
	},
}

func argOrStdin(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseReminder accepts RFC 3339 or a calendar day (YYYY-MM-DD, UTC).
func parseReminder(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if t, err = time.Parse(core.DayLayout, value); err != nil {
			return nil, fmt.Errorf("expected RFC 3339 or %s, got %q", core.DayLayout, value)
		}
	}
	ms := t.UnixMilli()
	return &ms, nil
}

func init() {
	rootCmd.AddCommand(addCmd, captureCmd, attachCmd)

	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Note title")
	addCmd.Flags().StringVar(&addType, "type", "", "Note type: text, link or image (detected when empty)")
	addCmd.Flags().StringVar(&addColor, "color", "", "Card color")
	addCmd.Flags().StringVar(&addReminder, "reminder", "", "Reminder (RFC 3339 or YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addSource, "source", "", "Source page URL")

	captureCmd.Flags().StringVar(&captureKind, "kind", string(core.CaptureSelection), "Capture kind: selection, page or image")
	captureCmd.Flags().StringVar(&capturePage, "page", "", "URL of the page the capture comes from")

	attachCmd.Flags().StringVar(&attachSource, "source", "", "Source page URL")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/blinknote/pkg/core"
)

var (
	listJSON   bool
	listType   string
	listSearch string
	listDate   string
	listSource string
	listDays   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes in display order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		notes, err := svc.List(context.Background())
		if err != nil {
			fatal("Error listing notes", err)
		}

		if listDays {
			printDays(core.CountByDay(notes))
			return
		}

		notes = core.OfType(notes, core.Type(listType))
		notes = core.OnDate(notes, listDate)
		if listSearch != "" {
			notes = core.Search(notes, listSearch)
		}
		if listSource != "" {
			if notes, err = core.FromSource(notes, listSource); err != nil {
				fatal("Error filtering by source", err)
			}
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, n := range notes {
			pin := " "
			if n.Pinned {
				pin = "*"
			}
			fmt.Printf("%s %s %-5s %s - %s\n", pin, shortID(n.ID), n.Type, n.Title, preview(n))
		}
	},
}

func printDays(counts map[string]int) {
	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	for _, day := range days {
		fmt.Printf("%s %d\n", day, counts[day])
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func preview(n core.Note) string {
	if n.Type == core.TypeImage && strings.HasPrefix(n.Content, "data:") {
		return "[inline image]"
	}
	line, _, _ := strings.Cut(n.Content, "\n")
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listType, "type", "", "Filter by type: text, link, image or all")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by title or content")
	listCmd.Flags().StringVar(&listDate, "date", "", "Filter by day (YYYY-MM-DD, reminder or creation)")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by source page glob, e.g. \"github.com/**\"")
	listCmd.Flags().BoolVar(&listDays, "days", false, "Print the number of notes per day instead")
}

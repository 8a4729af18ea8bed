package blinknote_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/blinknote"
	"github.com/aretw0/blinknote/pkg/core"
)

// Example_basic demonstrates how to open a store, capture a note and list it.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "blinknote-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := blinknote.New(blinknote.WithSharedDir(tmpDir))
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()

	// 1. Capture a link
	note, _, err := svc.Append(ctx, core.Draft{Content: "https://go.dev"})
	if err != nil {
		log.Fatal(err)
	}

	// 2. List the collection
	notes, err := svc.List(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %s (%d notes)\n", note.Type, note.Title, len(notes))
	// Output:
	// link: Link (1 notes)
}

// Example_session demonstrates two instances sharing a store.
func Example_session() {
	tmpDir, err := os.MkdirTemp("", "blinknote-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	dir := filepath.Join(tmpDir, "shared")
	ctx := context.Background()

	writer, err := blinknote.New(blinknote.WithSharedDir(dir))
	if err != nil {
		log.Fatal(err)
	}
	reader, err := blinknote.NewSession(blinknote.WithSharedDir(dir))
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	if _, err := writer.Append(ctx, core.Draft{Content: "remember the milk"}); err != nil {
		log.Fatal(err)
	}
	notes, err := reader.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(notes[0].Content)
	// Output:
	// remember the milk
}

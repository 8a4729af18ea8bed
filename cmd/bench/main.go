package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/blinknote"
	"github.com/aretw0/blinknote/pkg/core"
)

// Every operation rewrites the whole collection, so the cost of a single
// append grows with the number of stored notes. This measures it per backend.
func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()
	if *count < 1 {
		*count = 1
	}

	benchDir, err := os.MkdirTemp("", "blinknote_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	backends := []struct {
		name string
		opts []blinknote.Option
	}{
		{"shared", []blinknote.Option{blinknote.WithAdapter(blinknote.AdapterShared), blinknote.WithSharedDir(filepath.Join(benchDir, "shared"))}},
		{"local", []blinknote.Option{blinknote.WithAdapter(blinknote.AdapterLocal), blinknote.WithLocalPath(filepath.Join(benchDir, "local.db"))}},
		{"memory", []blinknote.Option{blinknote.WithAdapter(blinknote.AdapterMemory)}},
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes):\n", *count)
	for _, b := range backends {
		svc, err := blinknote.New(append(b.opts, blinknote.WithLogger(logger))...)
		if err != nil {
			panic(err)
		}
		seed, list, appendOne, pin := run(svc, *count)
		svc.Close()

		fmt.Printf("  %-7s seed: %v  list: %v  append: %v  pin: %v\n", b.name, seed, list, appendOne, pin)
	}
	fmt.Printf("--------------------------------------------------\n")
}

func run(svc *core.Service, count int) (seed, list, appendOne, pin time.Duration) {
	ctx := context.Background()

	raws := make([]core.RawNote, count)
	for i := range raws {
		raws[i] = core.RawNote{
			ID:      fmt.Sprintf("note-%06d", i),
			Content: fmt.Sprintf("Benchmark note %d https://example.com/%d", i, i),
		}
	}

	start := time.Now()
	if _, err := svc.ImportNotes(ctx, raws); err != nil {
		panic(err)
	}
	seed = time.Since(start)

	start = time.Now()
	notes, err := svc.List(ctx)
	if err != nil {
		panic(err)
	}
	list = time.Since(start)

	start = time.Now()
	if _, _, err := svc.Append(ctx, core.Draft{Content: "one more"}); err != nil {
		panic(err)
	}
	appendOne = time.Since(start)

	start = time.Now()
	if _, err := svc.TogglePin(ctx, notes[len(notes)-1].ID); err != nil {
		panic(err)
	}
	pin = time.Since(start)
	return seed, list, appendOne, pin
}

// Package blinknote is the Composition Root for BlinkNote, a quick-capture
// note store.
//
// It connects the core collection logic with the storage backends using the
// Hexagonal Architecture pattern.
//
// Philosophy:
//
// Every note lives in one JSON array under one storage key. Each operation
// reads the whole collection, transforms it and writes it back. Several open
// instances may share a store; each one follows the others through the
// backend's change feed and never reloads its own writes.
//
// Features:
//
//   - **Lenient Normalization**: Any stored record, however partial, becomes a valid Note.
//   - **Dual Backend**: A shared directory watched with fsnotify when available,
//     a local bbolt file otherwise. The choice is made once, by a probe.
//   - **Loop-free Sync**: Sessions recognize their own writes by payload digest.
//   - **Capture**: Text, links and images, with the source page kept as provenance.
//   - **Export/Import**: Markdown, HTML and JSON export; full-collection import.
//
// Usage:
//
//	svc, err := blinknote.New(
//		blinknote.WithSharedDir("/path/to/notes"),
//		blinknote.WithLogger(logger),
//	)
//
//	note, notes, err := svc.Append(ctx, core.Draft{Content: "https://go.dev"})
package blinknote

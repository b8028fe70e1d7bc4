package loader

import (
	"fmt"
	"log/slog"
	"strings"
)

// Stats is a snapshot of the collection sizes.
type Stats struct {
	Unloaded   int
	Reading    int
	Generating int
	Rendering  int
	Loaded     int
	Queued     int   // encoded chunks waiting for a save worker
	Saving     int64 // chunks inside running save tasks
	FailedSave int64 // chunks dropped after MaxSaveAttempts
}

// Stats returns the current counts.
func (l *Loader) Stats() Stats {
	return Stats{
		Unloaded:   l.unloaded.Len(),
		Reading:    l.reading.Len(),
		Generating: l.generating.Len(),
		Rendering:  l.rendering.Len(),
		Loaded:     l.loaded.Len(),
		Queued:     l.saves.queue.Len(),
		Saving:     l.saves.counter.Load(),
		FailedSave: l.saves.failed.Load(),
	}
}

// String renders the stats the way the debug overlay prints them.
func (s Stats) String() string {
	var b strings.Builder
	b.WriteString("Chunks:\n")
	fmt.Fprintf(&b, "\tUnloaded: %d\n", s.Unloaded)
	fmt.Fprintf(&b, "\tReading: %d\n", s.Reading)
	fmt.Fprintf(&b, "\tGenerating: %d\n", s.Generating)
	fmt.Fprintf(&b, "\tRendering: %d\n", s.Rendering)
	fmt.Fprintf(&b, "\tLoaded: %d\n", s.Loaded)
	fmt.Fprintf(&b, "\tQueued: %d\n", s.Queued)
	fmt.Fprintf(&b, "\tSaving: %d\n", s.Saving)
	fmt.Fprintf(&b, "\tFailed saves: %d\n", s.FailedSave)
	return b.String()
}

// LogValue lets Stats be passed straight to a slog call.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("unloaded", s.Unloaded),
		slog.Int("reading", s.Reading),
		slog.Int("generating", s.Generating),
		slog.Int("rendering", s.Rendering),
		slog.Int("loaded", s.Loaded),
		slog.Int("queued", s.Queued),
		slog.Int64("saving", s.Saving),
		slog.Int64("failed_saves", s.FailedSave),
	)
}

package engine

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivlev/photoreel/internal/config"
	"github.com/ivlev/photoreel/internal/system"
)

// Report is the performance summary of one run.
type Report struct {
	Build   string
	Input   string
	Images  int
	Steps   []StepResult
	Total   time.Duration
	Encoder string
	Memory  system.MemorySnapshot

	// FrameBytes is the raster size of one reel frame buffer.
	FrameBytes     uint64
	ReelBytes      uint64
	ReelDuration   time.Duration
	ProbedDuration time.Duration
}

// Step returns the result for kind, if it ran.
func (r *Report) Step(kind config.Kind) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Kind == kind {
			return s, true
		}
	}
	return StepResult{}, false
}

// Print writes the human-readable report.
func (r *Report) Print(w io.Writer) {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Images: %d\n", r.Images)
	for _, s := range r.Steps {
		status := "ok"
		if s.Err != nil {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "%-9s %6.2fs  %3d files  %s\n", s.Kind+":", s.Elapsed.Seconds(), len(s.Paths), status)
	}
	if r.ReelBytes > 0 {
		fmt.Fprintf(&b, "Reel: %s via %s, %.2fs", humanize.Bytes(r.ReelBytes), r.Encoder, r.ReelDuration.Seconds())
		if r.ProbedDuration > 0 {
			fmt.Fprintf(&b, " (probed %.2fs)", r.ProbedDuration.Seconds())
		}
		b.WriteString("\n")
	}
	if r.FrameBytes > 0 {
		fmt.Fprintf(&b, "Frame buffer: %s\n", humanize.Bytes(r.FrameBytes))
	}
	fmt.Fprintf(&b, "Memory: RSS %s, available %s of %s\n",
		humanize.Bytes(r.Memory.RSS), humanize.Bytes(r.Memory.Available), humanize.Bytes(r.Memory.Total))
	fmt.Fprintf(&b, "Total Time: %.2fs\n", r.Total.Seconds())
	b.WriteString("----------------------------\n")
	io.WriteString(w, b.String())
}

// Line is the one-line benchmark.log entry.
func (r *Report) Line(now time.Time) string {
	var parts []string
	for _, s := range r.Steps {
		parts = append(parts, fmt.Sprintf("%s: %.2fs", s.Kind, s.Elapsed.Seconds()))
	}
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Images: %d | %s | Total: %.2fs | RSS: %s\n",
		now.Format("2006-01-02 15:04:05"),
		r.Build,
		r.Input,
		r.Images,
		strings.Join(parts, " | "),
		r.Total.Seconds(),
		humanize.Bytes(r.Memory.RSS),
	)
}

// Append adds Line to the log file at path.
func (r *Report) Append(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(r.Line(time.Now())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

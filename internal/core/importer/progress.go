package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// ProgressCallback defines the interface for progress reporting
type ProgressCallback interface {
	Update(name string, detail string)
	Finish()
}

// ProgressReporter handles progress feedback during import
type ProgressReporter struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
	lastMsg   string
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(w io.Writer, total int) *ProgressReporter {
	return &ProgressReporter{
		writer:    w,
		total:     total,
		current:   0,
		startTime: time.Now(),
	}
}

// Update advances the bar by one file
func (p *ProgressReporter) Update(name string, detail string) {
	p.current++
	if p.total <= 0 {
		return
	}

	pct := float64(p.current) / float64(p.total) * 100

	// 40 chars wide
	barWidth := 40
	filled := min(barWidth, int(float64(barWidth)*float64(p.current)/float64(p.total)))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	displayText := name
	if detail != "" {
		displayText += " (" + detail + ")"
	}
	displayText = runewidth.Truncate(displayText, 60, "...")

	_, _ = fmt.Fprintf(p.writer, "\r[%s] %3.0f%% (%d/%d) | %s",
		bar, pct, p.current, p.total, displayText)

	p.lastMsg = displayText
}

// Finish completes the progress display
func (p *ProgressReporter) Finish() {
	if p.total <= 0 {
		return
	}
	elapsed := time.Since(p.startTime)
	_, _ = fmt.Fprintf(p.writer, "\nRead %d files in %s\n", p.current, elapsed.Round(time.Millisecond))
}

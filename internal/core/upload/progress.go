package upload

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressReporter draws upload progress as a single rewritten terminal line
type ProgressReporter struct {
	writer    io.Writer
	name      string
	size      int64
	startTime time.Time
	last      int
}

// NewProgressReporter creates a reporter for a file of the given size
func NewProgressReporter(w io.Writer, name string, size int64) *ProgressReporter {
	return &ProgressReporter{
		writer:    w,
		name:      name,
		size:      size,
		startTime: time.Now(),
		last:      -1,
	}
}

// Update redraws the bar. Repeated percentages are skipped.
func (p *ProgressReporter) Update(percent int) {
	percent = max(0, min(100, percent))
	if percent == p.last {
		return
	}
	p.last = percent

	// 40 chars wide
	barWidth := 40
	filled := barWidth * percent / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	displayName := p.name
	if len(displayName) > 40 {
		displayName = displayName[:37] + "..."
	}

	sent := uint64(p.size) * uint64(percent) / 100
	_, _ = fmt.Fprintf(p.writer, "\r[%s] %3d%% %s / %s | %s",
		bar, percent, humanize.Bytes(sent), humanize.Bytes(uint64(p.size)), displayName)
}

// Finish completes the progress display
func (p *ProgressReporter) Finish(err error) {
	elapsed := time.Since(p.startTime)
	if err != nil {
		_, _ = fmt.Fprintf(p.writer, "\nUpload failed after %s: %v\n", elapsed.Round(time.Millisecond), err)
		return
	}
	_, _ = fmt.Fprintf(p.writer, "\nUploaded %s (%s) in %s\n", p.name, humanize.Bytes(uint64(p.size)), elapsed.Round(time.Millisecond))
}

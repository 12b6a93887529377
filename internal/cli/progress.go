package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// IndexProgress reports fixture indexing progress on a terminal bar.
type IndexProgress struct {
	bar  *progressbar.ProgressBar
	done int
}

// NewIndexProgress creates a bar for total records.
func NewIndexProgress(w io.Writer, total int) *IndexProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Indexing records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &IndexProgress{bar: bar}
}

// Update moves the bar to indexed records. It matches index.ProgressFunc.
func (p *IndexProgress) Update(indexed int) {
	if indexed <= p.done {
		return
	}
	if err := p.bar.Add(indexed - p.done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	p.done = indexed
}

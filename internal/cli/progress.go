package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// batchProgress reports batch generation with a progress bar.
type batchProgress struct {
	quiet     bool
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
}

func newBatchProgress(out io.Writer, quiet bool) *batchProgress {
	return &batchProgress{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (p *batchProgress) OnDiscoveryComplete(sources int) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "Generating headers for %d source files\n", sources)

	if sources == 0 {
		return
	}
	p.bar = progressbar.NewOptions(sources,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Generating headers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

// OnFileProcessed is safe for concurrent use; the bar serializes updates.
func (p *batchProgress) OnFileProcessed() {
	if p.quiet || p.bar == nil {
		return
	}
	p.bar.Add(1)
}

func (p *batchProgress) OnComplete(result *batchResult) {
	if p.quiet {
		return
	}
	if p.bar != nil {
		p.bar.Finish()
	}

	elapsed := time.Since(p.startTime).Seconds()
	if len(result.Failures) == 0 {
		fmt.Fprintf(p.out, "✓ Generated headers for %d files in %.1fs\n", result.Generated, elapsed)
		return
	}
	fmt.Fprintf(p.out, "✗ Generated headers for %d files, %d failed (%.1fs)\n",
		result.Generated, len(result.Failures), elapsed)
}

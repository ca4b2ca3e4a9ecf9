package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/symsplit/internal/assembler"
)

// CLIProgressReporter implements assembler.ProgressReporter with progress bars on stderr
// and a summary on out.
type CLIProgressReporter struct {
	out        io.Writer
	analyzeBar *progressbar.ProgressBar
	writeBar   *progressbar.ProgressBar
	skipped    []string
}

// NewCLIProgressReporter creates a progress reporter, or a silent one when quiet is set.
func NewCLIProgressReporter(out io.Writer, quiet bool) assembler.ProgressReporter {
	if quiet {
		return &assembler.NoOpProgressReporter{}
	}
	return &CLIProgressReporter{out: out}
}

func newBar(total int, description, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (c *CLIProgressReporter) OnAnalyzeStart(totalFiles int) {
	c.skipped = nil
	c.analyzeBar = newBar(totalFiles, "Parsing buckets", "files/s")
}

func (c *CLIProgressReporter) OnFileAnalyzed(file string) {
	if c.analyzeBar != nil {
		c.analyzeBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnWriteStart(totalFiles int) {
	if c.analyzeBar != nil {
		c.analyzeBar.Finish()
		c.analyzeBar = nil
	}
	c.writeBar = newBar(totalFiles, "Writing files", "files/s")
}

func (c *CLIProgressReporter) OnFileWritten(path string) {
	if c.writeBar != nil {
		c.writeBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnFileSkipped(file string) {
	c.skipped = append(c.skipped, file)
}

func (c *CLIProgressReporter) OnComplete(stats *assembler.Stats) {
	if c.writeBar != nil {
		c.writeBar.Finish()
		c.writeBar = nil
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Conversion complete: %s files, %s lines in %.1fs\n",
		formatNumber(stats.Files), formatNumber(stats.Lines), stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Cross-file references: %s\n", formatNumber(stats.Edges))
	for _, file := range c.skipped {
		fmt.Fprintf(c.out, "  Skipped: %s\n", file)
	}
}

// formatNumber formats integer with thousand separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

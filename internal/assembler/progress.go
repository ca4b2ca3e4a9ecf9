package assembler

import "time"

// Stats summarises one assembly run.
type Stats struct {
	Files    int
	Lines    int
	Skipped  int
	Edges    int
	Duration time.Duration
}

// ProgressReporter provides callbacks for reporting assembly progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnAnalyzeStart is called before the buckets are parsed for prototypes and calls.
	OnAnalyzeStart(totalFiles int)

	// OnFileAnalyzed is called after each bucket is parsed.
	OnFileAnalyzed(file string)

	// OnWriteStart is called before output files are written.
	OnWriteStart(totalFiles int)

	// OnFileWritten is called after each source/header pair is written.
	OnFileWritten(path string)

	// OnFileSkipped is called for each bucket excluded by a skip pattern.
	OnFileSkipped(file string)

	// OnComplete is called when the run completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnAnalyzeStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileAnalyzed(file string)    {}
func (n *NoOpProgressReporter) OnWriteStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileWritten(path string)     {}
func (n *NoOpProgressReporter) OnFileSkipped(file string)     {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)       {}

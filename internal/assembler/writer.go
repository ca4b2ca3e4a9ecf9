package assembler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const tempDirName = ".symsplit-tmp"

// AtomicWriter writes files into a target directory using the temp -> rename pattern,
// so a reader never sees a half-written file.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates the target directory and a clean temp directory inside it.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, tempDirName)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files from an interrupted run
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// WriteFile writes data to rel, a slash-separated path under the output directory.
func (w *AtomicWriter) WriteFile(rel string, data []byte) error {
	local := filepath.FromSlash(rel)

	tempPath := filepath.Join(w.tempDir, local)
	if err := os.MkdirAll(filepath.Dir(tempPath), 0755); err != nil {
		return fmt.Errorf("failed to create temp directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := filepath.Join(w.outputDir, local)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// WriteJSON marshals v with indentation and writes it atomically.
func (w *AtomicWriter) WriteJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", rel, err)
	}
	return w.WriteFile(rel, append(data, '\n'))
}

// Close removes the temp directory.
func (w *AtomicWriter) Close() error {
	if err := os.RemoveAll(w.tempDir); err != nil {
		return fmt.Errorf("failed to remove temp directory: %w", err)
	}
	return nil
}

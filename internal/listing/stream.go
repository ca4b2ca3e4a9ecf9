package listing

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single line; decompiler output can carry very long initialisers.
const maxLineSize = 16 * 1024 * 1024

// Stream is the immutable, indexable line sequence every offset refers to.
type Stream struct {
	lines []string
}

// NewStream copies lines into a new Stream.
func NewStream(lines []string) *Stream {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Stream{lines: cp}
}

// ReadStream reads r line by line. Line terminators (LF or CRLF) are dropped.
func ReadStream(r io.Reader) (*Stream, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}
	return &Stream{lines: lines}, nil
}

// ReadFile opens path and reads it as a Stream.
func ReadFile(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()
	return ReadStream(f)
}

// Len returns the number of lines.
func (s *Stream) Len() int {
	return len(s.lines)
}

// Line returns line i. It panics when i is out of range.
func (s *Stream) Line(i int) string {
	return s.lines[i]
}

// Slice returns lines [from, to). The result has its capacity clipped so appending to
// it never writes into the stream.
func (s *Stream) Slice(from, to int) []string {
	return s.lines[from:to:to]
}

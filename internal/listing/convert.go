// Package listing reconstructs per-file groupings from a symbol-annotated decompiler listing.
//
// A listing is a flat pseudo-C file with a forward declarations block, a global data block
// and one chunk per function, each opened by a boundary rule such as
//
//	//----- (80010000) --------------------------------------------------------
//
// Chunks may carry "Function file" and "Function name" annotations emitted by the symbol
// loader. Chunks without a file annotation are attributed to the entry file.
package listing

import (
	"go.uber.org/zap"
)

// Result is everything derived from one listing. It is read-only once returned.
type Result struct {
	Stream       *Stream
	Bounds       Bounds
	Chunks       []*Chunk
	EntryPoint   string
	EntryFile    string
	Groups       *Groups
	Declarations map[string]string
	Variables    []string
}

// Converter runs the segmentation and attribution pipeline.
// It holds no mutable state and may be shared between goroutines.
type Converter struct {
	grammar     *Grammar
	defaultFile string
	logger      *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithGrammar sets the annotation grammar.
func WithGrammar(g *Grammar) Option {
	return func(c *Converter) {
		c.grammar = g
	}
}

// WithDefaultEntryFile sets the file id used when the entry function is unattributed.
func WithDefaultEntryFile(file string) Option {
	return func(c *Converter) {
		if file != "" {
			c.defaultFile = file
		}
	}
}

// WithLogger sets the logger. The pipeline only logs at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConverter creates a Converter accepting any annotation tag and defaulting to MAIN.C.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		grammar:     NewGrammar(""),
		defaultFile: DefaultEntryFile,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert locates, segments, attributes and groups s. entryPoint names the function whose
// origin file becomes the fallback for unattributed chunks.
func (c *Converter) Convert(s *Stream, entryPoint string) (*Result, error) {
	bounds, err := Locate(s)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Located listing sections",
		zap.Int("decl_start", bounds.DeclStart),
		zap.Int("var_start", bounds.VarStart),
		zap.Int("first_func", bounds.FirstFunc),
		zap.Int("end", bounds.End))

	chunks, err := Segment(s, bounds.FirstFunc, bounds.End)
	if err != nil {
		return nil, err
	}
	if err := c.grammar.Attribute(chunks); err != nil {
		return nil, err
	}
	anonymous := 0
	for _, ch := range chunks {
		if ch.Anonymous() {
			anonymous++
		}
	}
	c.logger.Debug("Segmented functions",
		zap.String("annotation_tag", c.grammar.Tag()),
		zap.Int("chunks", len(chunks)),
		zap.Int("unattributed", anonymous))

	entryFile := ResolveEntry(chunks, entryPoint, c.defaultFile)
	c.logger.Debug("Resolved entry file", zap.String("entry_point", entryPoint), zap.String("file", entryFile))

	groups := Group(chunks, entryFile)
	c.logger.Debug("Grouped functions by file",
		zap.Strings("files", groups.Files()),
		zap.Int("lines", groups.TotalLines()))

	return &Result{
		Stream:       s,
		Bounds:       bounds,
		Chunks:       chunks,
		EntryPoint:   entryPoint,
		EntryFile:    entryFile,
		Groups:       groups,
		Declarations: Declarations(s, bounds),
		Variables:    Variables(s, bounds),
	}, nil
}

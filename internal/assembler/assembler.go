// Package assembler turns grouped listing buckets into C source and header files.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/symsplit/internal/cparse"
	"github.com/mvp-joe/symsplit/internal/listing"
	"github.com/mvp-joe/symsplit/internal/refgraph"
)

// HeaderMode selects what goes into generated headers.
type HeaderMode string

const (
	// HeadersPrototypes writes variable externs and function prototypes.
	HeadersPrototypes HeaderMode = "prototypes"
	// HeadersPlaceholder writes only the include guard.
	HeadersPlaceholder HeaderMode = "placeholder"
)

// IncludeMode selects which headers a source file includes.
type IncludeMode string

const (
	IncludeAll        IncludeMode = "all"
	IncludeReferenced IncludeMode = "referenced"
	IncludeNone       IncludeMode = "none"
)

// ErrInvalidOptions is returned by New for unknown modes or bad skip patterns.
var ErrInvalidOptions = errors.New("invalid assembler options")

// Options controls output rendering.
type Options struct {
	Headers       HeaderMode
	HeaderExt     string
	Includes      IncludeMode
	EntryIncludes []string
	Skip          []string
	Manifest      bool
}

// DefaultOptions mirrors the default configuration.
func DefaultOptions() Options {
	return Options{
		Headers:       HeadersPrototypes,
		HeaderExt:     ".H",
		Includes:      IncludeAll,
		EntryIncludes: []string{"defs.h", "types.h"},
		Skip:          []string{},
		Manifest:      true,
	}
}

// Assembler renders and writes output files. It is safe to reuse across runs.
type Assembler struct {
	opts     Options
	skip     []glob.Glob
	parser   cparse.Extractor
	workers  int
	logger   *zap.Logger
	progress ProgressReporter
	now      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithExtractor replaces the default tree-sitter parser, e.g. with a cparse.CachedParser.
func WithExtractor(e cparse.Extractor) Option {
	return func(a *Assembler) {
		if e != nil {
			a.parser = e
		}
	}
}

// WithWorkers sets how many buckets are parsed concurrently.
func WithWorkers(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(a *Assembler) {
		if p != nil {
			a.progress = p
		}
	}
}

// New validates opts and creates an Assembler.
func New(opts Options, options ...Option) (*Assembler, error) {
	switch opts.Headers {
	case HeadersPrototypes, HeadersPlaceholder:
	default:
		return nil, fmt.Errorf("%w: unknown header mode %q", ErrInvalidOptions, opts.Headers)
	}
	switch opts.Includes {
	case IncludeAll, IncludeReferenced, IncludeNone:
	default:
		return nil, fmt.Errorf("%w: unknown include mode %q", ErrInvalidOptions, opts.Includes)
	}
	if opts.HeaderExt == "" {
		opts.HeaderExt = ".H"
	}

	a := &Assembler{
		opts:     opts,
		parser:   cparse.NewParser(),
		workers:  runtime.NumCPU(),
		logger:   zap.NewNop(),
		progress: &NoOpProgressReporter{},
		now:      time.Now,
	}
	for _, pattern := range opts.Skip {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: skip pattern %q: %v", ErrInvalidOptions, pattern, err)
		}
		a.skip = append(a.skip, g)
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// FileAnalysis is the parsed view of one bucket.
// HeaderOnly is set when the file id already carries the header extension; the bucket is
// then written as that header and gets no companion.
type FileAnalysis struct {
	File       string
	Path       string
	Header     string // equals Path when HeaderOnly
	HeaderOnly bool
	Group      *listing.FileGroup
	Extraction *cparse.Extraction
}

// Analysis holds the parsed buckets and the file reference graph.
type Analysis struct {
	Files []*FileAnalysis
	Graph *refgraph.Graph
}

// Analyze normalises every bucket's path, parses the buckets concurrently and links the
// reference graph. Results keep bucket order. Buckets whose id already names a header are
// marked HeaderOnly; ids landing on the manifest or the temp directory are rejected.
func (a *Assembler) Analyze(ctx context.Context, res *listing.Result) (*Analysis, error) {
	groups := res.Groups.All()
	a.progress.OnAnalyzeStart(len(groups))

	files := make([]*FileAnalysis, len(groups))
	// Keyed case-insensitively; the target may live on a case-insensitive filesystem.
	claimed := make(map[string]string)
	for i, fg := range groups {
		p, err := NormalizePath(fg.File)
		if err != nil {
			return nil, err
		}
		fa := &FileAnalysis{File: fg.File, Path: p, Header: HeaderPath(p, a.opts.HeaderExt), Group: fg}
		outs := []string{p, fa.Header}
		if strings.EqualFold(fa.Header, p) {
			fa.Header, fa.HeaderOnly = p, true
			outs = outs[:1]
		}
		for _, out := range outs {
			if reservedPath(out) {
				return nil, fmt.Errorf("%w: %q maps to reserved path %s", ErrPathConflict, fg.File, out)
			}
			key := strings.ToLower(out)
			if other, ok := claimed[key]; ok {
				return nil, fmt.Errorf("%w: %q and %q both map to %s", ErrPathConflict, other, fg.File, out)
			}
			claimed[key] = fg.File
		}
		files[i] = fa
	}

	// Each goroutine owns files[i]; progress callbacks stay on this goroutine.
	done := make(chan string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, fa := range files {
		g.Go(func() error {
			ex, err := a.parser.ParseLines(gctx, fa.Group.Lines)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", fa.File, err)
			}
			fa.Extraction = ex
			done <- fa.File
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(done)
	for file := range done {
		a.progress.OnFileAnalyzed(file)
	}

	an := &Analysis{Files: files, Graph: refgraph.New()}
	for _, fa := range files {
		if err := an.Graph.AddFile(fa.File, fa.Group.Functions(), fa.Extraction.Calls); err != nil {
			return nil, err
		}
		a.logger.Debug("analyzed bucket",
			zap.String("file", fa.File),
			zap.String("path", fa.Path),
			zap.Int("definitions", len(fa.Extraction.Functions)),
			zap.Int("calls", len(fa.Extraction.Calls)))
	}

	if err := an.Graph.Link(); err != nil {
		return nil, err
	}

	for _, fa := range files {
		for _, fn := range fa.Group.Functions() {
			if owner, ok := an.Graph.Owner(fn); ok && owner != fa.File {
				a.logger.Debug("function defined in more than one file",
					zap.String("function", fn),
					zap.String("file", fa.File),
					zap.String("owner", owner))
			}
		}
	}
	return an, nil
}

// reservedPath reports whether p collides with the manifest or the writer's temp directory.
func reservedPath(p string) bool {
	lower := strings.ToLower(p)
	tmp := strings.ToLower(tempDirName)
	return lower == strings.ToLower(ManifestName) || lower == tmp || strings.HasPrefix(lower, tmp+"/")
}

// OutputFile is one rendered source/header pair.
type OutputFile struct {
	File         string
	Path         string
	HeaderPath   string
	Source       []byte
	Header       []byte
	Functions    []string
	Lines        int
	Includes     []string
	Dependencies []string
	HeaderOnly   bool // Source is the header; Header is nil
}

// Plan is the complete rendered output of a run, ready to be written.
type Plan struct {
	Files    []*OutputFile
	Skipped  []string
	Manifest *Manifest
	Analysis *Analysis
}

// Plan renders every bucket of res. Nothing is written.
func (a *Assembler) Plan(ctx context.Context, res *listing.Result, input string) (*Plan, error) {
	an, err := a.Analyze(ctx, res)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Files: []*OutputFile{}, Skipped: []string{}, Analysis: an}
	kept := make(map[string]*FileAnalysis)
	var order []*FileAnalysis
	for _, fa := range an.Files {
		if a.skipped(fa.Path) {
			plan.Skipped = append(plan.Skipped, fa.File)
			a.logger.Debug("skipping bucket", zap.String("file", fa.File))
			a.progress.OnFileSkipped(fa.File)
			continue
		}
		kept[fa.File] = fa
		order = append(order, fa)
	}

	for _, fa := range order {
		deps, err := an.Graph.Dependencies(fa.File)
		if err != nil {
			return nil, err
		}

		out := &OutputFile{
			File:         fa.File,
			Path:         fa.Path,
			HeaderPath:   fa.Header,
			Functions:    fa.Group.Functions(),
			Lines:        len(fa.Group.Lines),
			Dependencies: deps,
			HeaderOnly:   fa.HeaderOnly,
		}
		if fa.HeaderOnly {
			out.Source = renderHeaderOnly(fa.Group.Lines)
			if fa.File == res.EntryFile {
				a.logger.Debug("entry file is a header, variable externs are not written", zap.String("file", fa.File))
			}
		} else {
			out.Includes = a.includes(fa, deps, order, kept)
			out.Source = renderSource(out.Includes, fa.Group.Lines)
			out.Header = a.header(fa, res)
		}
		plan.Files = append(plan.Files, out)
	}

	plan.Manifest = a.manifest(plan, res, input)
	return plan, nil
}

// Write writes a plan into targetDir and, when enabled, the manifest.
func (a *Assembler) Write(ctx context.Context, plan *Plan, targetDir string) (*Stats, error) {
	start := a.now()

	w, err := NewAtomicWriter(targetDir)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	a.progress.OnWriteStart(len(plan.Files))

	stats := &Stats{Skipped: len(plan.Skipped)}
	if plan.Analysis != nil {
		stats.Edges = plan.Analysis.Graph.EdgeCount()
	}

	for _, f := range plan.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.HeaderOnly {
			if err := w.WriteFile(f.HeaderPath, f.Header); err != nil {
				return nil, err
			}
		}
		if err := w.WriteFile(f.Path, f.Source); err != nil {
			return nil, err
		}
		stats.Files++
		stats.Lines += f.Lines
		a.logger.Debug("wrote file", zap.String("source", f.Path), zap.String("header", f.HeaderPath))
		a.progress.OnFileWritten(f.Path)
	}

	if a.opts.Manifest && plan.Manifest != nil {
		if err := w.WriteJSON(ManifestName, plan.Manifest); err != nil {
			return nil, err
		}
	}

	stats.Duration = time.Since(start)
	a.progress.OnComplete(stats)
	return stats, nil
}

func (a *Assembler) skipped(p string) bool {
	for _, g := range a.skip {
		if g.Match(p) {
			return true
		}
	}
	return false
}

func (a *Assembler) includes(fa *FileAnalysis, deps []string, order []*FileAnalysis, kept map[string]*FileAnalysis) []string {
	switch a.opts.Includes {
	case IncludeNone:
		return nil
	case IncludeReferenced:
		includes := []string{fa.Header}
		for _, dep := range deps {
			if other, ok := kept[dep]; ok {
				includes = append(includes, other.Header)
			}
		}
		return includes
	default:
		includes := make([]string, 0, len(order))
		for _, other := range order {
			includes = append(includes, other.Header)
		}
		return includes
	}
}

func (a *Assembler) header(fa *FileAnalysis, res *listing.Result) []byte {
	if a.opts.Headers == HeadersPlaceholder {
		return renderPlaceholderHeader()
	}

	h := headerContent{isEntry: fa.File == res.EntryFile}
	if h.isEntry {
		h.entryIncludes = a.opts.EntryIncludes
		h.variables = res.Variables
	}

	seen := make(map[string]bool)
	for _, name := range fa.Group.Functions() {
		if seen[name] {
			continue
		}
		seen[name] = true

		if decl, ok := res.Declarations[name]; ok {
			h.prototypes = append(h.prototypes, decl)
			continue
		}
		if fn, ok := fa.Extraction.Function(name); ok {
			h.prototypes = append(h.prototypes, fn.Signature+";")
			continue
		}
		a.logger.Debug("no prototype found", zap.String("function", name), zap.String("file", fa.File))
	}
	return renderHeader(h)
}

func (a *Assembler) manifest(plan *Plan, res *listing.Result, input string) *Manifest {
	m := &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: a.now().UTC(),
		Input:       input,
		EntryPoint:  res.EntryPoint,
		EntryFile:   res.EntryFile,
		Headers:     a.opts.Headers,
		Includes:    a.opts.Includes,
		Files:       make([]ManifestFile, 0, len(plan.Files)),
		Skipped:     plan.Skipped,
	}
	for _, f := range plan.Files {
		header := f.HeaderPath
		if f.HeaderOnly {
			header = ""
		}
		m.Files = append(m.Files, ManifestFile{
			File:         f.File,
			Source:       f.Path,
			Header:       header,
			Functions:    f.Functions,
			Lines:        f.Lines,
			Dependencies: f.Dependencies,
		})
	}
	return m
}

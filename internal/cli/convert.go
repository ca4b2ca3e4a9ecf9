package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/symsplit/internal/assembler"
	"github.com/mvp-joe/symsplit/internal/config"
	"github.com/mvp-joe/symsplit/internal/cparse"
	"github.com/mvp-joe/symsplit/internal/listing"
	"github.com/mvp-joe/symsplit/internal/watcher"
)

var (
	quietFlag    bool
	watchFlag    bool
	dryRunFlag   bool
	headersFlag  string
	includesFlag string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <source> <target> [entry]",
	Short: "Split a listing into per-file sources and headers",
	Long: `Convert reads a decompiler listing, groups its functions by the file named in
their annotations and writes one source and one header per file under target.

The entry point (default from listing.entry_point, usually "main") decides which
file receives the functions that carry no file annotation.

Examples:
  # Split into ./out using main as the entry point
  symsplit convert GAME.c out

  # Use a different entry point and only include headers that are used
  symsplit convert GAME.c out start --includes referenced

  # Show what would be written
  symsplit convert GAME.c out --dry-run

  # Rerun whenever the listing changes
  symsplit convert GAME.c out --watch
`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	convertCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the listing and convert again on every change")
	convertCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the planned files without writing them")
	convertCmd.Flags().StringVar(&headersFlag, "headers", "", "Header content: prototypes or placeholder (overrides config)")
	convertCmd.Flags().StringVar(&includesFlag, "includes", "", "Source includes: all, referenced or none (overrides config)")
}

// convertRequest is one fully resolved conversion.
type convertRequest struct {
	Source     string
	Target     string
	EntryPoint string
	DryRun     bool
	Quiet      bool
	Listing    []listing.Option
	Options    assembler.Options
	Extractor  cparse.Extractor // optional; shared across watch reruns
}

func newConvertRequest(c *config.Config, args []string) convertRequest {
	req := convertRequest{
		Source:     args[0],
		Target:     args[1],
		EntryPoint: c.Listing.EntryPoint,
		DryRun:     dryRunFlag,
		Quiet:      quietFlag,
		Listing:    c.ConverterOptions(),
		Options:    c.AssemblerOptions(),
	}
	if len(args) > 2 {
		req.EntryPoint = args[2]
	}
	if headersFlag != "" {
		req.Options.Headers = assembler.HeaderMode(headersFlag)
	}
	if includesFlag != "" {
		req.Options.Includes = assembler.IncludeMode(includesFlag)
	}
	return req
}

func runConvert(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	req := newConvertRequest(cfg, args)
	out := cmd.OutOrStdout()

	if !watchFlag {
		_, err := convert(ctx, req, out, logger)
		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("conversion cancelled")
		}
		return err
	}

	return watchConvert(ctx, req, out, logger)
}

// convert runs the listing pipeline and the assembler for one request. Nothing is written
// when the listing is malformed.
func convert(ctx context.Context, req convertRequest, out io.Writer, log *zap.Logger) (*assembler.Plan, error) {
	s, err := listing.ReadFile(req.Source)
	if err != nil {
		return nil, err
	}

	opts := append(append([]listing.Option{}, req.Listing...), listing.WithLogger(log))
	res, err := listing.NewConverter(opts...).Convert(s, req.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", req.Source, err)
	}

	progress := NewCLIProgressReporter(out, req.Quiet || req.DryRun)
	asm, err := assembler.New(req.Options,
		assembler.WithLogger(log),
		assembler.WithProgress(progress),
		assembler.WithExtractor(req.Extractor))
	if err != nil {
		return nil, err
	}

	plan, err := asm.Plan(ctx, res, req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble output: %w", err)
	}

	if req.DryRun {
		printPlan(out, plan, req.Target)
		return plan, nil
	}

	stats, err := asm.Write(ctx, plan, req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	log.Info("conversion complete",
		zap.String("source", req.Source),
		zap.String("target", req.Target),
		zap.String("entry_file", res.EntryFile),
		zap.Int("files", stats.Files),
		zap.Int("lines", stats.Lines))

	// Progress reporter already printed the summary unless quiet
	if req.Quiet {
		fmt.Fprintf(out, "Conversion complete: %d files, %d lines in %.2fs\n",
			stats.Files, stats.Lines, stats.Duration.Seconds())
	}
	return plan, nil
}

// watchCacheSize bounds the parsed buckets kept between watch reruns.
const watchCacheSize = 4096

// watchConvert converts once, then again after every change to the source until ctx ends.
// Failures are logged and the previous output is left in place.
func watchConvert(ctx context.Context, req convertRequest, out io.Writer, log *zap.Logger) error {
	cache, err := cparse.NewCachedParser(watchCacheSize)
	if err != nil {
		return err
	}
	defer cache.Close()
	req.Extractor = cache

	// Stopped before the cache is closed; the callback uses it.
	fw, err := watcher.New(req.Source, watcher.WithLogger(log))
	if err != nil {
		return err
	}
	defer fw.Stop()

	rerun := func() {
		if _, err := convert(ctx, req, out, log); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("conversion failed", zap.String("source", req.Source), zap.Error(err))
		}
	}

	rerun()

	if err := fw.Start(ctx, rerun); err != nil {
		return err
	}
	if !req.Quiet {
		fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", fw.Path())
	}

	<-ctx.Done()

	if !req.Quiet {
		fmt.Fprintln(out, "Watch mode stopped")
	}
	return nil
}

func printPlan(out io.Writer, plan *assembler.Plan, target string) {
	fmt.Fprintf(out, "Would write %d files to %s:\n", len(plan.Files), target)
	for _, f := range plan.Files {
		files := f.Path + " + " + f.HeaderPath
		if f.HeaderOnly {
			files = f.Path
		}
		fmt.Fprintf(out, "  %s (%d functions, %s lines)\n",
			files, len(f.Functions), formatNumber(f.Lines))
	}
	for _, file := range plan.Skipped {
		fmt.Fprintf(out, "  skipped %s\n", file)
	}
}

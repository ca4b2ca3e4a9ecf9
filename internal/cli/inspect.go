package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/symsplit/internal/assembler"
	"github.com/mvp-joe/symsplit/internal/config"
	"github.com/mvp-joe/symsplit/internal/listing"
)

var inspectJSON bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <source> [entry]",
	Short: "Show how a listing would be split, without writing anything",
	Long: `Inspect locates the listing sections, attributes every function and prints
the resulting files with their functions and the files they call into.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := cfg.Listing.EntryPoint
		if len(args) > 1 {
			entry = args[1]
		}

		report, err := inspect(cmd.Context(), cfg, args[0], entry, logger)
		if err != nil {
			return err
		}
		if inspectJSON {
			return writeReportJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the report as JSON")
}

// InspectReport describes the grouping of one listing.
type InspectReport struct {
	Source       string          `json:"source"`
	Bounds       listing.Bounds  `json:"bounds"`
	EntryPoint   string          `json:"entry_point"`
	EntryFile    string          `json:"entry_file"`
	Functions    int             `json:"functions"`
	Declarations int             `json:"declarations"`
	Variables    int             `json:"variables"`
	Files        []InspectedFile `json:"files"`
}

// InspectedFile is one output file of the report.
type InspectedFile struct {
	File         string   `json:"file"`
	Path         string   `json:"path"`
	Lines        int      `json:"lines"`
	Functions    []string `json:"functions"`
	Dependencies []string `json:"dependencies"`
	CalledFrom   []string `json:"called_from"`
}

func inspect(ctx context.Context, c *config.Config, source, entry string, log *zap.Logger) (*InspectReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := listing.ReadFile(source)
	if err != nil {
		return nil, err
	}

	opts := append(c.ConverterOptions(), listing.WithLogger(log))
	res, err := listing.NewConverter(opts...).Convert(s, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", source, err)
	}

	asm, err := assembler.New(c.AssemblerOptions(), assembler.WithLogger(log))
	if err != nil {
		return nil, err
	}
	an, err := asm.Analyze(ctx, res)
	if err != nil {
		return nil, err
	}

	report := &InspectReport{
		Source:       source,
		Bounds:       res.Bounds,
		EntryPoint:   res.EntryPoint,
		EntryFile:    res.EntryFile,
		Functions:    len(res.Chunks),
		Declarations: len(res.Declarations),
		Variables:    len(res.Variables),
		Files:        make([]InspectedFile, 0, len(an.Files)),
	}
	for _, fa := range an.Files {
		deps, err := an.Graph.Dependencies(fa.File)
		if err != nil {
			return nil, err
		}
		callers, err := an.Graph.Dependents(fa.File)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, InspectedFile{
			File:         fa.File,
			Path:         fa.Path,
			Lines:        len(fa.Group.Lines),
			Functions:    fa.Group.Functions(),
			Dependencies: deps,
			CalledFrom:   callers,
		})
	}
	return report, nil
}

func writeReportJSON(out io.Writer, report *InspectReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printReport(out io.Writer, r *InspectReport) {
	fmt.Fprintf(out, "Listing: %s\n", r.Source)
	fmt.Fprintf(out, "  Declarations:   line %d (%d functions)\n", r.Bounds.DeclStart+1, r.Declarations)
	fmt.Fprintf(out, "  Data:           line %d (%d variables)\n", r.Bounds.VarStart+1, r.Variables)
	fmt.Fprintf(out, "  Implementation: lines %d-%d (%d functions)\n", r.Bounds.FirstFunc+1, r.Bounds.End, r.Functions)
	fmt.Fprintf(out, "  Entry point:    %s in %s\n", r.EntryPoint, r.EntryFile)
	fmt.Fprintln(out)

	for _, f := range r.Files {
		fmt.Fprintf(out, "%s -> %s (%s lines)\n", f.File, f.Path, formatNumber(f.Lines))
		for _, fn := range f.Functions {
			fmt.Fprintf(out, "    %s\n", fn)
		}
		for _, dep := range f.Dependencies {
			fmt.Fprintf(out, "  calls into %s\n", dep)
		}
		for _, caller := range f.CalledFrom {
			fmt.Fprintf(out, "  called from %s\n", caller)
		}
	}
}

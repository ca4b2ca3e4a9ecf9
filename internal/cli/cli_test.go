package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mvp-joe/symsplit/internal/assembler"
	"github.com/mvp-joe/symsplit/internal/config"
	"github.com/mvp-joe/symsplit/internal/listing"
)

// Test Plan for CLI:
// - convert writes sources, headers and the manifest for the sample listing
// - convert --dry-run prints the plan and writes nothing
// - convert on a malformed listing fails and writes nothing
// - Command-line entry point and --headers/--includes override config
// - watch mode converts immediately, reconverts after a change, and stops on cancel
// - inspect reports bounds, entry file, functions, dependencies and callers, also as JSON
// - config init writes a loadable config and refuses to overwrite without --force
// - newLogger honours level, format and --verbose
// - formatNumber inserts thousand separators

const sampleListing = "../../testdata/listing/sample.c"

func sampleRequest(t *testing.T) convertRequest {
	t.Helper()

	c := config.Default()
	return convertRequest{
		Source:     sampleListing,
		Target:     filepath.Join(t.TempDir(), "out"),
		EntryPoint: "main",
		Quiet:      true,
		Listing:    c.ConverterOptions(),
		Options:    c.AssemblerOptions(),
	}
}

func TestConvert_WritesFiles(t *testing.T) {
	t.Parallel()

	req := sampleRequest(t)
	var out bytes.Buffer

	plan, err := convert(context.Background(), req, &out, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, plan.Files, 3)

	for _, rel := range []string{"MAIN.C", "MAIN.H", "C/PSX/SRC/GAME.C", "C/PSX/SRC/GAME.H", "C/PSX/SRC/PAD.C", assembler.ManifestName} {
		_, err := os.Stat(filepath.Join(req.Target, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
	assert.Contains(t, out.String(), "Conversion complete: 3 files, 41 lines")
}

func TestConvert_DryRun(t *testing.T) {
	t.Parallel()

	req := sampleRequest(t)
	req.DryRun = true
	var out bytes.Buffer

	_, err := convert(context.Background(), req, &out, zap.NewNop())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Would write 3 files")
	assert.Contains(t, out.String(), "MAIN.C + MAIN.H (2 functions, 16 lines)")
	_, err = os.Stat(req.Target)
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")
}

func TestConvert_MalformedListingWritesNothing(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "broken.c")
	require.NoError(t, os.WriteFile(src, []byte("// Function declarations\nvoid f();\n"), 0644))

	req := sampleRequest(t)
	req.Source = src

	_, err := convert(context.Background(), req, io.Discard, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, listing.ErrMalformedInput)

	_, err = os.Stat(req.Target)
	assert.True(t, os.IsNotExist(err))
}

func TestNewConvertRequest_Overrides(t *testing.T) {
	// Mutates package-level flags, so not parallel
	headersFlag, includesFlag = "placeholder", "none"
	defer func() { headersFlag, includesFlag = "", "" }()

	c := config.Default()
	c.Listing.EntryPoint = "start"

	req := newConvertRequest(c, []string{"in.c", "out"})
	assert.Equal(t, "start", req.EntryPoint)
	assert.Equal(t, assembler.HeadersPlaceholder, req.Options.Headers)
	assert.Equal(t, assembler.IncludeNone, req.Options.Includes)

	req = newConvertRequest(c, []string{"in.c", "out", "boot"})
	assert.Equal(t, "boot", req.EntryPoint)
	assert.Equal(t, "in.c", req.Source)
	assert.Equal(t, "out", req.Target)
}

func TestWatchConvert(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(sampleListing)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "listing.c")
	require.NoError(t, os.WriteFile(src, raw, 0644))

	req := sampleRequest(t)
	req.Source = src

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchConvert(ctx, req, io.Discard, zap.NewNop()) }()

	padPath := filepath.Join(req.Target, "C", "PSX", "SRC", "PAD.C")
	require.Eventually(t, func() bool {
		_, err := os.Stat(padPath)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "initial conversion")

	changed := strings.ReplaceAll(string(raw), `C:\PSX\SRC\PAD.C`, `C:\PSX\SRC\INPUT.C`)
	require.NoError(t, os.WriteFile(src, []byte(changed), 0644))

	inputPath := filepath.Join(req.Target, "C", "PSX", "SRC", "INPUT.C")
	require.Eventually(t, func() bool {
		_, err := os.Stat(inputPath)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "reconversion after change")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop")
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	report, err := inspect(context.Background(), config.Default(), sampleListing, "main", zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, listing.Bounds{DeclStart: 10, VarStart: 19, FirstFunc: 29, End: 70}, report.Bounds)
	assert.Equal(t, "MAIN.C", report.EntryFile)
	assert.Equal(t, 5, report.Functions)
	assert.Equal(t, 5, report.Declarations)
	assert.Equal(t, 4, report.Variables)
	require.Len(t, report.Files, 3)
	assert.Equal(t, "MAIN.C", report.Files[1].File)
	assert.Equal(t, []string{"main", "sub_80010300"}, report.Files[1].Functions)
	assert.Equal(t, []string{`C:\PSX\SRC\GAME.C`, `C:\PSX\SRC\PAD.C`}, report.Files[1].Dependencies)
	assert.Equal(t, []string{"MAIN.C"}, report.Files[0].CalledFrom)
	assert.Empty(t, report.Files[1].CalledFrom)

	var text bytes.Buffer
	printReport(&text, report)
	assert.Contains(t, text.String(), "Entry point:    main in MAIN.C")
	assert.Contains(t, text.String(), "MAIN.C -> MAIN.C (16 lines)")
	assert.Contains(t, text.String(), `calls into C:\PSX\SRC\PAD.C`)
	assert.Contains(t, text.String(), "called from MAIN.C")

	var js bytes.Buffer
	require.NoError(t, writeReportJSON(&js, report))
	var decoded InspectReport
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, *report, decoded)
}

func TestRunConfigInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runConfigInit(&out, dir, false))
	assert.Contains(t, out.String(), "✓ Wrote")

	_, err := config.LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.ErrorIs(t, runConfigInit(io.Discard, dir, false), config.ErrConfigExists)
	assert.NoError(t, runConfigInit(io.Discard, dir, true))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	l, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = newLogger(config.LoggingConfig{Level: "warn", Format: "console"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LoggingConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-4200:   "-4,200",
	}
	for n, want := range tests {
		assert.Equal(t, want, formatNumber(n))
	}
}

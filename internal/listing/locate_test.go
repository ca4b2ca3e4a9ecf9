package listing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Boundary Locator:
// - Locate() finds all four markers in a well-formed listing
// - Locate() defaults End to the stream length when the terminator is absent
// - Locate() fails with MalformedInputError when a mandatory marker is missing
// - Locate() fails with MalformedInputError when markers are out of order
// - Locate() uses the first occurrence of each marker
// - Marker predicates match whole lines only

func TestLocate_FindsAllMarkers(t *testing.T) {
	t.Parallel()

	s, err := ReadFile(sampleListing)
	require.NoError(t, err)

	b, err := Locate(s)
	require.NoError(t, err)

	assert.Equal(t, Bounds{DeclStart: 10, VarStart: 19, FirstFunc: 29, End: 70}, b)
	assert.Equal(t, 41, b.Lines())
}

func TestLocate_MissingTerminatorDefaultsToStreamLength(t *testing.T) {
	t.Parallel()

	s := NewStream(buildListing(false, testFunc{addr: "80010000", name: "main"}))

	b, err := Locate(s)
	require.NoError(t, err)
	assert.Equal(t, s.Len(), b.End)
}

func TestLocate_MissingMandatoryMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		drop   func(string) bool
		marker Marker
	}{
		{"function declarations", IsDeclarationsStart, DeclarationsStart},
		{"data declarations", IsVariablesStart, VariablesStart},
		{"first function", IsBoundary, FirstFunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var lines []string
			for _, line := range buildListing(true, testFunc{addr: "80010000", name: "main"}) {
				if !tt.drop(line) {
					lines = append(lines, line)
				}
			}

			_, err := Locate(NewStream(lines))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedInput)

			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.marker, malformed.Marker)
			assert.Equal(t, -1, malformed.Line)
		})
	}
}

func TestLocate_OutOfOrderMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		marker Marker
	}{
		{
			name:   "data before functions declarations",
			lines:  []string{"// Data declarations", "// Function declarations", rule("80010000"), "// nfuncs=1"},
			marker: VariablesStart,
		},
		{
			name:   "boundary before data declarations",
			lines:  []string{"// Function declarations", rule("80010000"), "// Data declarations", "// nfuncs=1"},
			marker: FirstFunction,
		},
		{
			name:   "terminator before first function",
			lines:  []string{"// Function declarations", "// Data declarations", "// nfuncs=0", rule("80010000")},
			marker: EndOfListing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Locate(NewStream(tt.lines))
			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed), "expected MalformedInputError, got %v", err)
			assert.Equal(t, tt.marker, malformed.Marker)
			assert.GreaterOrEqual(t, malformed.Line, 0)
		})
	}
}

func TestLocate_UsesFirstOccurrence(t *testing.T) {
	t.Parallel()

	lines := buildListing(true,
		testFunc{addr: "80010000", name: "a"},
		testFunc{addr: "80010100", name: "b"},
	)
	// A second terminator inside the trailer must not move End.
	lines = append(lines, "// nfuncs=99")

	b, err := Locate(NewStream(lines))
	require.NoError(t, err)
	assert.True(t, IsTerminator(lines[b.End]))
	assert.Equal(t, len(lines)-3, b.End)
}

func TestMarkerPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDeclarationsStart("// Function declarations"))
	assert.False(t, IsDeclarationsStart("// Function declarations "))
	assert.False(t, IsDeclarationsStart("  // Function declarations"))

	assert.True(t, IsVariablesStart("// Data declarations"))
	assert.False(t, IsVariablesStart("// Data declarations follow"))

	assert.True(t, IsBoundary(rule("8001ABCD")))
	assert.False(t, IsBoundary(rule("8001abcd")), "lowercase hex is not a boundary")
	assert.False(t, IsBoundary("//----- (8001ABC) ----"), "address must be 8 digits")
	assert.False(t, IsBoundary("//-------------------------------------------------------------------------"))
	assert.False(t, IsBoundary("//----- (8001ABCD) "+strings.Repeat("-", 55)), "rule is 56 dashes wide")
	assert.False(t, IsBoundary("//----- (8001ABCD) "+strings.Repeat("-", 57)), "rule is 56 dashes wide")

	addr, ok := BoundaryAddress(rule("80012345"))
	require.True(t, ok)
	assert.Equal(t, "80012345", addr)

	assert.True(t, IsTerminator("// nfuncs=1234 queued=1234"))
	assert.False(t, IsTerminator("// nfuncs="))
	assert.False(t, IsTerminator("x // nfuncs=3"))
}

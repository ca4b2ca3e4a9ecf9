package listing

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker identifies one of the structural boundaries of a listing.
type Marker int

const (
	DeclarationsStart Marker = iota
	VariablesStart
	FirstFunction
	EndOfListing
)

func (m Marker) String() string {
	switch m {
	case DeclarationsStart:
		return "function declarations"
	case VariablesStart:
		return "data declarations"
	case FirstFunction:
		return "first function"
	case EndOfListing:
		return "end of listing"
	default:
		return fmt.Sprintf("marker(%d)", int(m))
	}
}

const (
	declarationsText = "// Function declarations"
	variablesText    = "// Data declarations"

	// SyntheticNamePrefix prefixes names derived from a boundary address.
	SyntheticNamePrefix = "sub_"
)

var (
	boundaryRe   = regexp.MustCompile(`^//-{5} \(([0-9A-F]{8})\) -{56}$`)
	terminatorRe = regexp.MustCompile(`^// nfuncs=\d+`)
)

// Grammar holds the annotation patterns of a listing. The structural markers are fixed;
// only the bracketed annotation tag varies between symbol loaders.
type Grammar struct {
	tag    string
	fileRe *regexp.Regexp
	nameRe *regexp.Regexp
}

// NewGrammar builds the annotation patterns for tag. An empty tag accepts any
// bracketed tag, e.g. "[PSX-MND-SYM]".
func NewGrammar(tag string) *Grammar {
	t := `[^\]]+`
	if tag != "" {
		t = regexp.QuoteMeta(strings.Trim(tag, "[]"))
	}
	return &Grammar{
		tag:    tag,
		fileRe: regexp.MustCompile(`^// \[` + t + `\] Function file = (\S+)$`),
		nameRe: regexp.MustCompile(`^// \[` + t + `\] Function name = (\w+)$`),
	}
}

// Tag returns the annotation tag the grammar was built for.
func (g *Grammar) Tag() string {
	return g.tag
}

// FileAnnotation returns the origin path of a file annotation line.
func (g *Grammar) FileAnnotation(line string) (string, bool) {
	m := g.fileRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NameAnnotation returns the identifier of a name annotation line.
func (g *Grammar) NameAnnotation(line string) (string, bool) {
	m := g.nameRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsDeclarationsStart reports whether line opens the forward declarations block.
func IsDeclarationsStart(line string) bool {
	return line == declarationsText
}

// IsVariablesStart reports whether line opens the global data declarations block.
func IsVariablesStart(line string) bool {
	return line == variablesText
}

// IsBoundary reports whether line is a function boundary rule.
func IsBoundary(line string) bool {
	return boundaryRe.MatchString(line)
}

// BoundaryAddress returns the 8-digit hex address embedded in a boundary rule.
func BoundaryAddress(line string) (string, bool) {
	m := boundaryRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsTerminator reports whether line is the "// nfuncs=N" summary that ends the listing.
func IsTerminator(line string) bool {
	return terminatorRe.MatchString(line)
}

// SyntheticName formats the fallback name for a function known only by its address.
func SyntheticName(address string) string {
	return SyntheticNamePrefix + address
}

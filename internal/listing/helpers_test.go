package listing

import (
	"fmt"
	"strings"
)

const sampleListing = "../../testdata/listing/sample.c"

// testFunc describes one function chunk of a synthetic listing.
type testFunc struct {
	addr string
	file string // empty: no file annotation
	name string // empty: no name annotation
	body []string
}

func rule(addr string) string {
	return fmt.Sprintf("//----- (%s) %s", addr, strings.Repeat("-", 56))
}

// buildListing renders a well-formed listing with a header, both declaration blocks,
// the given functions and, when terminate is set, an nfuncs terminator.
func buildListing(terminate bool, funcs ...testFunc) []string {
	lines := []string{
		"/* This file was generated by the Hex-Rays decompiler. */",
		"",
		"// Function declarations",
		"",
	}
	for _, f := range funcs {
		if f.name != "" {
			lines = append(lines, fmt.Sprintf("void %s();", f.name))
		}
	}
	lines = append(lines, "", "// Data declarations", "", "int gValue; // weak", "")
	for _, f := range funcs {
		lines = append(lines, rule(f.addr))
		if f.file != "" {
			lines = append(lines, "// [PSX-MND-SYM] Function file = "+f.file)
		}
		if f.name != "" {
			lines = append(lines, "// [PSX-MND-SYM] Function name = "+f.name)
		}
		body := f.body
		if body == nil {
			body = []string{"void f()", "{", "}", ""}
		}
		lines = append(lines, body...)
	}
	if terminate {
		lines = append(lines, fmt.Sprintf("// nfuncs=%d queued=%d decompiled=%d", len(funcs), len(funcs), len(funcs)))
		lines = append(lines, "// ALL OK")
	}
	return lines
}

func chunkLines(chunks []*Chunk) int {
	n := 0
	for _, c := range chunks {
		n += c.Len()
	}
	return n
}

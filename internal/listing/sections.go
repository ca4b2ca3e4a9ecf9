package listing

import (
	"regexp"
	"strings"
)

var (
	declarationNameRe = regexp.MustCompile(`^.*?(\w+)\(.*\);`)
	variableDeclRe    = regexp.MustCompile(`^(.{2,}?)\s*[=;]`)
)

// Declarations maps function names to their forward declaration line, taken from the
// [DeclStart, VarStart) block. The first declaration of a name wins.
func Declarations(s *Stream, b Bounds) map[string]string {
	decls := make(map[string]string)
	for _, line := range s.Slice(b.DeclStart+1, b.VarStart) {
		if skipDeclarationLine(line) {
			continue
		}
		m := declarationNameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, seen := decls[m[1]]; !seen {
			decls[m[1]] = strings.TrimSpace(line)
		}
	}
	return decls
}

// Variables returns the declaration part (text before the first '=' or ';') of every
// global variable line in the [VarStart, FirstFunc) block, in listing order.
func Variables(s *Stream, b Bounds) []string {
	var vars []string
	for _, line := range s.Slice(b.VarStart+1, b.FirstFunc) {
		if skipDeclarationLine(line) {
			continue
		}
		m := variableDeclRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		vars = append(vars, strings.TrimSpace(m[1]))
	}
	return vars
}

// skipDeclarationLine filters blanks, comments, preprocessor lines and indented
// continuation lines of multi-line initialisers.
func skipDeclarationLine(line string) bool {
	if line == "" {
		return true
	}
	switch line[0] {
	case ' ', '\t', '/', '#', '}':
		return true
	}
	return false
}

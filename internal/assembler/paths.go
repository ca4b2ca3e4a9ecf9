package assembler

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrPathInvalid is returned when a file id cannot be placed inside the target directory.
var ErrPathInvalid = errors.New("invalid output path")

// ErrPathConflict is returned when two file ids normalise to the same output path.
var ErrPathConflict = errors.New("conflicting output path")

// NormalizePath turns a file id from the listing into a slash-separated path relative to
// the target directory. Volume separators are dropped (C:\SRC\A.C becomes C/SRC/A.C).
func NormalizePath(file string) (string, error) {
	p := strings.ReplaceAll(file, ":", "")
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("%w: empty file id", ErrPathInvalid)
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathInvalid, file)
	}

	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q escapes the target directory", ErrPathInvalid, file)
	}
	return p, nil
}

// HeaderPath swaps the extension of a normalised source path for ext, or appends ext
// when the path has none.
func HeaderPath(source, ext string) string {
	if e := path.Ext(source); e != "" {
		return strings.TrimSuffix(source, e) + ext
	}
	return source + ext
}

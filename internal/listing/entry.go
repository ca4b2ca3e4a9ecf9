package listing

import "strings"

// DefaultEntryFile is the entry file used when the entry function carries no file annotation.
const DefaultEntryFile = "MAIN.C"

// ResolveEntry returns the origin file of the first chunk named entryPoint (case-insensitive).
// If that chunk is anonymous, or no chunk matches, it returns defaultFile.
// Only the first match is considered, even when a later namesake is annotated.
func ResolveEntry(chunks []*Chunk, entryPoint, defaultFile string) string {
	for _, c := range chunks {
		if !strings.EqualFold(c.Name, entryPoint) {
			continue
		}
		if c.File != "" {
			return c.File
		}
		break
	}
	return defaultFile
}

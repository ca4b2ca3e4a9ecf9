package assembler

import "time"

// ManifestName is the file the manifest is written to, at the root of the target directory.
const ManifestName = "symsplit-manifest.json"

// Manifest records what one run produced.
type Manifest struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Input       string         `json:"input,omitempty"`
	EntryPoint  string         `json:"entry_point"`
	EntryFile   string         `json:"entry_file"`
	Headers     HeaderMode     `json:"headers"`
	Includes    IncludeMode    `json:"includes"`
	Files       []ManifestFile `json:"files"`
	Skipped     []string       `json:"skipped,omitempty"`
}

// ManifestFile describes one source/header pair.
type ManifestFile struct {
	File         string   `json:"file"`
	Source       string   `json:"source"`
	Header       string   `json:"header,omitempty"` // empty when the file id is itself a header
	Functions    []string `json:"functions"`
	Lines        int      `json:"lines"`
	Dependencies []string `json:"dependencies,omitempty"`
}

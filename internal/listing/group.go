package listing

// FileGroup is the bucket of lines attributed to one origin file.
type FileGroup struct {
	File   string
	Lines  []string
	Chunks []*Chunk
}

// Groups maps origin files to their buckets, enumerated in first-seen order.
type Groups struct {
	order  []*FileGroup
	byFile map[string]*FileGroup
}

// Group folds chunks into buckets keyed by chunk.File, or by entryFile for anonymous chunks.
// Lines are appended in chunk order, so every input line lands in exactly one bucket.
func Group(chunks []*Chunk, entryFile string) *Groups {
	g := &Groups{byFile: make(map[string]*FileGroup)}
	for _, c := range chunks {
		key := c.File
		if c.Anonymous() {
			key = entryFile
		}
		g.bucket(key).add(c)
	}
	return g
}

func (g *Groups) bucket(file string) *FileGroup {
	if fg, ok := g.byFile[file]; ok {
		return fg
	}
	fg := &FileGroup{File: file}
	g.byFile[file] = fg
	g.order = append(g.order, fg)
	return fg
}

func (fg *FileGroup) add(c *Chunk) {
	fg.Lines = append(fg.Lines, c.Lines...)
	fg.Chunks = append(fg.Chunks, c)
}

// Len returns the number of buckets.
func (g *Groups) Len() int {
	return len(g.order)
}

// Files returns the file ids in first-seen order.
func (g *Groups) Files() []string {
	files := make([]string, len(g.order))
	for i, fg := range g.order {
		files[i] = fg.File
	}
	return files
}

// Get returns the bucket for file.
func (g *Groups) Get(file string) (*FileGroup, bool) {
	fg, ok := g.byFile[file]
	return fg, ok
}

// All returns the buckets in first-seen order.
func (g *Groups) All() []*FileGroup {
	out := make([]*FileGroup, len(g.order))
	copy(out, g.order)
	return out
}

// TotalLines returns the number of lines across all buckets.
func (g *Groups) TotalLines() int {
	n := 0
	for _, fg := range g.order {
		n += len(fg.Lines)
	}
	return n
}

// Functions returns the chunk names of the bucket in order.
func (fg *FileGroup) Functions() []string {
	names := make([]string, len(fg.Chunks))
	for i, c := range fg.Chunks {
		names[i] = c.Name
	}
	return names
}

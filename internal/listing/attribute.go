package listing

// File returns the origin path of the first file annotation in lines, or "".
func (g *Grammar) File(lines []string) string {
	for _, line := range lines {
		if path, ok := g.FileAnnotation(line); ok {
			return path
		}
	}
	return ""
}

// Name returns the first annotated function name in lines. Without one it falls back
// to the synthetic name of the first boundary address found in lines.
func (g *Grammar) Name(lines []string) (string, bool) {
	for _, line := range lines {
		if name, ok := g.NameAnnotation(line); ok {
			return name, true
		}
	}
	for _, line := range lines {
		if addr, ok := BoundaryAddress(line); ok {
			return SyntheticName(addr), true
		}
	}
	return "", false
}

// Resolve extracts the origin file and name of a chunk. A missing file is not an error;
// a missing name is an *UnresolvedFunctionError.
func (g *Grammar) Resolve(c *Chunk) (file, name string, err error) {
	file = g.File(c.Lines)
	name, ok := g.Name(c.Lines)
	if !ok {
		return "", "", &UnresolvedFunctionError{Start: c.Start}
	}
	return file, name, nil
}

// Attribute resolves every chunk in place and stops at the first unresolved one.
func (g *Grammar) Attribute(chunks []*Chunk) error {
	for _, c := range chunks {
		file, name, err := g.Resolve(c)
		if err != nil {
			return err
		}
		c.File = file
		c.Name = name
	}
	return nil
}

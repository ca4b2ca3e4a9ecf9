package listing

// Chunk is one decompiled function: the boundary rule line through the line before the
// next boundary (or the end of the listing).
type Chunk struct {
	Start   int      // index of the boundary line
	End     int      // exclusive
	Address string   // hex address from the boundary rule
	File    string   // origin file from the annotation, empty when absent
	Name    string   // annotated name, or synthetic name from Address
	Lines   []string // lines [Start, End), shared with the stream
}

// Len returns the number of lines in the chunk.
func (c *Chunk) Len() int {
	return c.End - c.Start
}

// Anonymous reports whether the chunk carried no file annotation.
func (c *Chunk) Anonymous() bool {
	return c.File == ""
}

// Segment partitions [firstFunc, end) of s into chunks at every boundary rule.
// The returned chunks have Start, End, Address and Lines set; attribution is left to Resolve.
func Segment(s *Stream, firstFunc, end int) ([]*Chunk, error) {
	if firstFunc < 0 || end > s.Len() || firstFunc >= end {
		return nil, &MalformedInputError{Marker: FirstFunction, Line: firstFunc, Reason: "implementation region is empty"}
	}
	if !IsBoundary(s.Line(firstFunc)) {
		return nil, &MalformedInputError{Marker: FirstFunction, Line: firstFunc, Reason: "region does not start at a function boundary"}
	}

	boundaries := make([]int, 0, 64)
	for i := firstFunc; i < end; i++ {
		if IsBoundary(s.Line(i)) {
			boundaries = append(boundaries, i)
		}
	}
	boundaries = append(boundaries, end)

	chunks := make([]*Chunk, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		start, stop := boundaries[i], boundaries[i+1]
		addr, _ := BoundaryAddress(s.Line(start))
		chunks = append(chunks, &Chunk{
			Start:   start,
			End:     stop,
			Address: addr,
			Lines:   s.Slice(start, stop),
		})
	}
	return chunks, nil
}

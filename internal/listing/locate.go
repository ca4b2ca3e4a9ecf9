package listing

// Bounds holds the line offsets of the structural markers of a listing.
// End is exclusive: it is the terminator line or Len() when the listing has none.
type Bounds struct {
	DeclStart int `json:"decl_start"`
	VarStart  int `json:"var_start"`
	FirstFunc int `json:"first_func"`
	End       int `json:"end"`
}

// Locate scans s once and resolves the four markers.
func Locate(s *Stream) (Bounds, error) {
	b := Bounds{DeclStart: -1, VarStart: -1, FirstFunc: -1, End: -1}

	for i, line := range s.lines {
		switch {
		case b.DeclStart < 0 && IsDeclarationsStart(line):
			b.DeclStart = i
		case b.VarStart < 0 && IsVariablesStart(line):
			b.VarStart = i
		case b.FirstFunc < 0 && IsBoundary(line):
			b.FirstFunc = i
		case b.End < 0 && IsTerminator(line):
			b.End = i
		}
	}

	if b.DeclStart < 0 {
		return Bounds{}, missing(DeclarationsStart)
	}
	if b.VarStart < 0 {
		return Bounds{}, missing(VariablesStart)
	}
	if b.FirstFunc < 0 {
		return Bounds{}, missing(FirstFunction)
	}
	if b.End < 0 {
		b.End = s.Len()
	}

	if err := b.validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// validate asserts DeclStart < VarStart < FirstFunc < End.
func (b Bounds) validate() error {
	if b.VarStart <= b.DeclStart {
		return &MalformedInputError{Marker: VariablesStart, Line: b.VarStart, Reason: "data declarations precede function declarations"}
	}
	if b.FirstFunc <= b.VarStart {
		return &MalformedInputError{Marker: FirstFunction, Line: b.FirstFunc, Reason: "first function precedes data declarations"}
	}
	if b.End <= b.FirstFunc {
		return &MalformedInputError{Marker: EndOfListing, Line: b.End, Reason: "listing terminator precedes first function"}
	}
	return nil
}

// Lines returns the number of lines in the implementation region.
func (b Bounds) Lines() int {
	return b.End - b.FirstFunc
}

package problem

// Snapshot is the problem context attached to a single chat request.
// Fields that were missing on the problem stay empty and are omitted on the wire.
type Snapshot struct {
	Title            string      `json:"title,omitempty"`
	Description      string      `json:"description,omitempty"`
	VisibleTestCases []TestCase  `json:"testCases,omitempty"`
	StartCode        []StartCode `json:"startCode,omitempty"`
}

// BuildSnapshot captures the current state of p. A nil problem yields an
// empty snapshot; no placeholder text is ever substituted.
func BuildSnapshot(p *Problem) Snapshot {
	if p == nil {
		return Snapshot{}
	}
	return Snapshot{
		Title:            p.Title,
		Description:      p.Description,
		VisibleTestCases: cloneSlice(p.VisibleTestCases),
		StartCode:        cloneSlice(p.StartCode),
	}
}

// IsEmpty reports whether the snapshot carries no problem context at all
func (s Snapshot) IsEmpty() bool {
	return s.Title == "" && s.Description == "" && len(s.VisibleTestCases) == 0 && len(s.StartCode) == 0
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

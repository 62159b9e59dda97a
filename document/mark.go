package document

import "sort"

// Mark is an inline annotation applied to a run of text. Attrs hold
// JSON-primitive values only (string, bool, float64, int).
type Mark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Equal reports structural equality by type and attrs.
func (m Mark) Equal(o Mark) bool {
	return m.Type == o.Type && attrsEqual(m.Attrs, o.Attrs)
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// AddMark returns marks with m added. A mark of the same type is replaced,
// keeping set semantics (one mark per type).
func AddMark(marks []Mark, m Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	for _, x := range marks {
		if x.Type != m.Type {
			out = append(out, x)
		}
	}
	out = append(out, m)
	sortMarks(out)
	return out
}

// RemoveMarkType returns marks without any mark of type t.
func RemoveMarkType(marks []Mark, t MarkType) []Mark {
	var out []Mark
	for _, x := range marks {
		if x.Type != t {
			out = append(out, x)
		}
	}
	return out
}

// HasMarkType reports whether marks contain a mark of type t.
func HasMarkType(marks []Mark, t MarkType) bool {
	for _, x := range marks {
		if x.Type == t {
			return true
		}
	}
	return false
}

// SameMarks reports whether two mark sets are structurally equal,
// ignoring order.
func SameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		found := false
		for _, o := range b {
			if m.Equal(o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CloneMarks returns a shallow copy of the mark slice. Marks themselves are
// treated as immutable values.
func CloneMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]Mark, len(marks))
	copy(out, marks)
	return out
}

func sortMarks(marks []Mark) {
	sort.Slice(marks, func(i, j int) bool { return marks[i].Type < marks[j].Type })
}

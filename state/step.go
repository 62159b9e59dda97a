package state

import (
	"unicode/utf8"

	"notectl/document"
)

// Step is an atomic, invertible edit primitive. Apply never mutates its
// argument; it returns a Result carrying either the transformed document or
// a failure message. Invert takes the document as it was before the step
// applied and produces the exact step that undoes it.
//
// A failed step is a local no-op from the reducer's point of view: the
// transaction proceeds and the failure is logged, never silently corrupting
// the tree.
type Step interface {
	Apply(doc *document.Document) Result
	Invert(pre *document.Document) Step
}

// Result is the outcome of applying a step: a new document on success, a
// failure message otherwise.
type Result struct {
	Doc    *document.Document
	Failed string
}

// OK wraps a successfully transformed document.
func OK(doc *document.Document) Result {
	return Result{Doc: doc}
}

// Fail describes why a step could not apply.
func Fail(msg string) Result {
	return Result{Failed: msg}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// clampOffset clamps off to [0, length]. Out-of-range offsets clamp rather
// than reject; the reducer logs when clamping occurred.
func clampOffset(off, length int) int {
	if off < 0 {
		return 0
	}
	if off > length {
		return length
	}
	return off
}

func clampSpan(from, to, length int) (int, int) {
	from = clampOffset(from, length)
	to = clampOffset(to, length)
	if to < from {
		to = from
	}
	return from, to
}

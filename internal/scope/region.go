// Package scope finds the image reference or colour literal under a cursor.
//
// The host editor's scope engine is abstracted as a Matcher: given document
// text and a selector, it returns the regions the selector matches. The
// Classifier queries it once per configured selector and picks the region to
// preview. PatternMatcher is a regular-expression Matcher for hosts without a
// scope engine, and doubles as the plain-text fallback for explicit
// invocations on a selection.
//
// Offsets are byte offsets into the document text. Regions are half-open
// [Start, End), but a position equal to End still counts as inside, so a
// cursor resting just after a token classifies it.
package scope

// Tag is the classification of a matched region.
type Tag string

const (
	TagImage Tag = "image"
	TagColor Tag = "color"
)

// Region is a span of the document.
type Region struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pos lies inside r, end inclusive.
func (r Region) Contains(pos int) bool {
	return r.Start <= pos && pos <= r.End
}

// Len returns the length of r in bytes.
func (r Region) Len() int {
	return r.End - r.Start
}

// Empty reports whether r covers no text.
func (r Region) Empty() bool {
	return r.End <= r.Start
}

// Overlaps reports whether r and o share at least one byte or touch.
func (r Region) Overlaps(o Region) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// ScopeRegion is a classified region together with its text.
type ScopeRegion struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Tag   Tag    `json:"tag"`
}

// Region returns the span of s.
func (s ScopeRegion) Region() Region {
	return Region{Start: s.Start, End: s.End}
}

// Selectors names the scopes that hold images and colours.
type Selectors struct {
	Image string `json:"image"`
	Color string `json:"color"`
}

// Matcher is the host's scope-matching capability.
type Matcher interface {
	// Match returns every region of text that selector matches, in document order.
	Match(text, selector string) []Region
}

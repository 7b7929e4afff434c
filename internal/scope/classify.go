package scope

import (
	"strings"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// Classifier decides what, if anything, lies under a position.
type Classifier struct {
	// Matcher is the host scope engine.
	Matcher Matcher

	// Plain finds references in text outside any recognized scope. It is used
	// only for explicit invocations. Nil means a default PatternMatcher.
	Plain Matcher
}

// NewClassifier returns a Classifier backed by m.
func NewClassifier(m Matcher) *Classifier {
	return &Classifier{Matcher: m, Plain: NewPatternMatcher()}
}

// Classify returns the smallest region containing pos that matches the image
// or colour selector. When both selectors match overlapping regions the image
// region wins. No match is a KindClassifyMiss failure.
func (c *Classifier) Classify(pos int, text string, sel Selectors) (*ScopeRegion, error) {
	if pos < 0 || pos > len(text) {
		return nil, failure.New(failure.KindClassifyMiss, "position %d outside document", pos)
	}
	img, imgOK := smallestContaining(c.Matcher.Match(text, sel.Image), pos, sel.Image)
	col, colOK := smallestContaining(c.Matcher.Match(text, sel.Color), pos, sel.Color)

	switch {
	case imgOK && (!colOK || img.Overlaps(col) || img.Len() <= col.Len()):
		return newScopeRegion(text, img, TagImage), nil
	case colOK:
		return newScopeRegion(text, col, TagColor), nil
	}
	return nil, failure.ClassifyMiss
}

// ClassifySelection classifies an explicit invocation.
//
// The start of the selection is first classified by scope, as a hover
// would be. Failing that, it is searched as plain text, image references
// first. An empty selection is a cursor: the line holding it is searched and
// the match must contain it. A selection spanning several lines is a
// KindParse failure.
func (c *Classifier) ClassifySelection(selection Region, text string, sel Selectors) (*ScopeRegion, error) {
	selection = clampRegion(selection, len(text))
	if strings.ContainsAny(text[selection.Start:selection.End], "\r\n") {
		return nil, failure.New(failure.KindParse, "selection spans multiple lines")
	}

	cursor := selection.Start
	empty := selection.Empty()
	if empty {
		selection = lineAt(text, cursor)
	}

	if r, err := c.Classify(cursor, text, sel); err == nil {
		return r, nil
	}

	plain := c.Plain
	if plain == nil {
		plain = NewPatternMatcher()
	}
	sub := text[selection.Start:selection.End]
	for _, p := range []struct {
		selector string
		tag      Tag
	}{
		{DefaultImageSelector, TagImage},
		{DefaultColorSelector, TagColor},
	} {
		for _, m := range plain.Match(sub, p.selector) {
			abs := Region{Start: selection.Start + m.Start, End: selection.Start + m.End}
			if !empty || abs.Contains(cursor) {
				return newScopeRegion(text, abs, p.tag), nil
			}
		}
	}
	return nil, failure.ClassifyMiss
}

func smallestContaining(regions []Region, pos int, selector string) (Region, bool) {
	if strings.TrimSpace(selector) == "" {
		return Region{}, false
	}
	var best Region
	found := false
	for _, r := range regions {
		if !r.Contains(pos) || r.Empty() {
			continue
		}
		if !found || r.Len() < best.Len() {
			best, found = r, true
		}
	}
	return best, found
}

func newScopeRegion(text string, r Region, tag Tag) *ScopeRegion {
	return &ScopeRegion{Start: r.Start, End: r.End, Text: text[r.Start:r.End], Tag: tag}
}

func clampRegion(r Region, n int) Region {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = max(0, min(r.Start, n))
	r.End = max(0, min(r.End, n))
	return r
}

// lineAt returns the line holding pos, without its terminator.
func lineAt(text string, pos int) Region {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := len(text)
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		end = pos + i
	}
	if end > start && text[end-1] == '\r' {
		end--
	}
	return Region{Start: start, End: end}
}

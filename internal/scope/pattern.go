package scope

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ironsheep/quick-view-mcp/internal/colors"
)

// Selectors registered by NewPatternMatcher.
const (
	DefaultImageSelector = "markup.underline.link.image"
	DefaultColorSelector = "constant.other.color"
)

const imageExtensions = `(?i:png|jpe?g|gif|bmp|svgz?|webp|avif)`

// imagePattern matches data URIs, web URLs, file:// URLs and paths ending in an
// image extension. Web URLs need no extension; the resolver decides whether an
// extensionless URL is worth probing.
var imagePattern = `\bdata:image/(?:png|jpeg|gif|bmp|svg\+xml|webp|avif)(?:;[\w=.-]+)*,[A-Za-z0-9+/=%._~-]+` +
	`|\bhttps?://[A-Za-z0-9\-._~:/?#\[\]@!$&'*+,;%=]+[A-Za-z0-9/_=#-]` +
	`|\bfile://[^\s"'<>|()]+\.` + imageExtensions + `\b` +
	`|(?:[A-Za-z]:)?[^\s:*?"'<>|()=,;` + "`" + `]+\.` + imageExtensions + `\b`

// colorPattern matches hex literals, colour functions, variable references
// (including colour scheme var(name)) and bare words. Bare words are kept only
// when they are CSS colour keywords.
var colorPattern = `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3,4})\b` +
	`|\b(?i:rgba?|hsla?|hwb)\([^()]*\)` +
	`|\bvar\(\s*--[A-Za-z_][\w-]*\s*(?:,[^()]*(?:\([^()]*\))?[^()]*)?\)` +
	`|\bvar\(\s*[A-Za-z_][\w.-]*\s*\)` +
	`|(?:--|\$|@)[A-Za-z_][\w-]*` +
	`|\b[A-Za-z]{3,}\b`

// Accept filters candidate matches. It receives the whole document and the match.
type Accept func(text string, r Region) bool

type rule struct {
	re     *regexp.Regexp
	accept Accept
}

// PatternMatcher is a Matcher backed by regular expressions, one per selector.
// A selector of the form "a | b" matches the union of its alternatives.
type PatternMatcher struct {
	mu    sync.RWMutex
	rules map[string]rule
}

// NewPatternMatcher returns a matcher with the default image and colour
// selectors registered.
func NewPatternMatcher() *PatternMatcher {
	m := &PatternMatcher{rules: make(map[string]rule)}
	m.MustRegister(DefaultImageSelector, imagePattern, nil)
	m.MustRegister(DefaultColorSelector, colorPattern, acceptColor)
	return m
}

// Register binds selector to pattern. accept may be nil.
func (m *PatternMatcher) Register(selector, pattern string, accept Accept) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern for selector %q: %w", selector, err)
	}
	m.mu.Lock()
	m.rules[strings.TrimSpace(selector)] = rule{re: re, accept: accept}
	m.mu.Unlock()
	return nil
}

// MustRegister is like Register but panics on an invalid pattern.
func (m *PatternMatcher) MustRegister(selector, pattern string, accept Accept) {
	if err := m.Register(selector, pattern, accept); err != nil {
		panic(err)
	}
}

// Match implements Matcher. Unknown selectors match nothing.
func (m *PatternMatcher) Match(text, selector string) []Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Region
	for _, alt := range strings.Split(selector, "|") {
		r, ok := m.rules[strings.TrimSpace(alt)]
		if !ok {
			continue
		}
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			reg := Region{Start: loc[0], End: loc[1]}
			if r.accept == nil || r.accept(text, reg) {
				out = append(out, reg)
			}
		}
	}
	return out
}

// acceptColor drops bare words that are not colour keywords or that are part of
// a longer identifier, and hex literals that are HTML character references.
func acceptColor(text string, r Region) bool {
	tok := text[r.Start:r.End]
	var prev, next byte
	if r.Start > 0 {
		prev = text[r.Start-1]
	}
	if r.End < len(text) {
		next = text[r.End]
	}
	switch tok[0] {
	case '#':
		return prev != '&'
	case '$', '@', '-':
		return true
	}
	if strings.Contains(tok, "(") {
		return true
	}
	if strings.IndexByte("-#&$@.", prev) >= 0 {
		return false
	}
	if next == '-' || next == '(' {
		return false
	}
	return colors.IsNamed(tok)
}

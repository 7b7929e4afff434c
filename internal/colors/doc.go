// Package colors parses CSS-style colour literals into a normalized sRGB value.
//
// The parser accepts hex literals, rgb()/rgba()/hsl()/hsla()/hwb() functional
// notation in both legacy (comma) and modern (space and slash) syntax, the CSS
// named colour table, and variable references.
//
// # Variables
//
// References such as var(--accent), $accent or @accent are resolved against a
// VarIndex built from the whole document. Resolution requires exactly one
// definition: a missing or ambiguous variable is a parse failure, never a guess.
//
// # Clamping
//
// Out-of-range channel values are clamped rather than rejected, so
// rgb(300, 0, 0) parses as {255, 0, 0, 1}.
package colors

package colors

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// definitionPattern matches CSS custom property, Sass and Less variable
// definitions: "--name: value", "$name: value", "@name: value".
// The value runs to the next ';', '}' or line end.
var definitionPattern = regexp.MustCompile(`(?m)(?:^|[\s{;])((?:--|\$|@)[A-Za-z_][\w-]*)[ \t]*:[ \t]*([^;}\r\n]*)`)

// schemeNamePattern matches colour scheme variable names, which carry no sigil:
// var(accent) refers to "accent" in the scheme's "variables" object.
var schemeNamePattern = regexp.MustCompile(`^[A-Za-z_][\w.-]*$`)

// Definition is one textual definition of a variable.
type Definition struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Offset int    `json:"offset"` // byte offset of the name in the document
}

// VarIndex maps variable names to every definition found in a document.
//
// The index is not aware of CSS rule scopes, inheritance, or imports, so a
// variable only resolves when the document defines it exactly once.
type VarIndex struct {
	defs map[string][]Definition
}

// IndexVariables scans a whole document for variable definitions.
//
// A document that is a JSON object with a "variables" object, such as a
// colour scheme, also contributes each of its string members as a definition
// of a sigil-free name. Non-string members are recorded with an empty value.
func IndexVariables(text string) *VarIndex {
	idx := &VarIndex{defs: make(map[string][]Definition)}
	for _, m := range definitionPattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		value := cleanValue(text[m[4]:m[5]])
		idx.defs[name] = append(idx.defs[name], Definition{Name: name, Value: value, Offset: m[2]})
	}
	idx.indexScheme(text)
	return idx
}

// schemeDocument is the part of a colour scheme holding named colours.
type schemeDocument struct {
	Variables map[string]json.RawMessage `json:"variables"`
}

func (x *VarIndex) indexScheme(text string) {
	if !strings.HasPrefix(strings.TrimSpace(text), "{") {
		return
	}
	var doc schemeDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return
	}
	for name, raw := range doc.Variables {
		if !schemeNamePattern.MatchString(name) {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = ""
		}
		x.defs[name] = append(x.defs[name], Definition{
			Name:   name,
			Value:  strings.TrimSpace(value),
			Offset: strings.Index(text, strconv.Quote(name)),
		})
	}
}

// cleanValue strips trailing priority and Sass flags from a definition value.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	for _, flag := range []string{"!important", "!default", "!global"} {
		if i := strings.Index(strings.ToLower(v), flag); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
	}
	return v
}

// Count returns the number of definitions of name.
func (x *VarIndex) Count(name string) int {
	if x == nil {
		return 0
	}
	return len(x.defs[name])
}

// Definitions returns every definition of name in document order.
func (x *VarIndex) Definitions(name string) []Definition {
	if x == nil {
		return nil
	}
	return x.defs[name]
}

// Lookup returns the value of the unique definition of name.
// Zero definitions and more than one definition are both parse failures.
func (x *VarIndex) Lookup(name string) (string, error) {
	switch n := x.Count(name); {
	case n == 0:
		return "", failure.New(failure.KindParse, "no definition found for variable %s", name)
	case n > 1:
		return "", failure.New(failure.KindParse, "more than one definition found for variable %s (%d)", name, n)
	}
	v := x.defs[name][0].Value
	if v == "" {
		return "", failure.New(failure.KindParse, "empty definition for variable %s", name)
	}
	return v, nil
}

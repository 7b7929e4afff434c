package colors

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// maxVarDepth bounds variable-to-variable indirection.
const maxVarDepth = 8

// Context carries what the parser needs beyond the token itself.
type Context struct {
	// Vars resolves variable references. A nil index has no definitions, so only
	// var() fallbacks resolve.
	Vars *VarIndex

	// BareHex accepts a hex literal without its leading '#'. Some syntaxes scope
	// only the digits of a colour literal.
	BareHex bool
}

var (
	functionPattern = regexp.MustCompile(`(?is)^([a-z]+)\s*\((.*)\)$`)
	hexPattern      = regexp.MustCompile(`^#?([0-9a-f]{3}|[0-9a-f]{4}|[0-9a-f]{6}|[0-9a-f]{8})$`)
	varNamePattern  = regexp.MustCompile(`^(?:--|\$|@)[A-Za-z_][\w-]*$`)
)

// Parse converts a colour token into a normalized Value.
//
// Accepted syntaxes:
//   - hex: #rgb, #rgba, #rrggbb, #rrggbbaa
//   - functional: rgb(), rgba(), hsl(), hsla(), hwb() with legacy comma
//     syntax or modern space/slash syntax
//   - CSS colour keywords, including "transparent"
//   - variables: var(--x), var(--x, fallback), --x, $x (Sass), @x (Less),
//     and var(name) for colour scheme variables
//
// Channel values outside their range are clamped, not rejected. Alpha defaults to 1.
// Failures are *failure.Error values of kind KindParse.
func Parse(token string, ctx Context) (Value, error) {
	return parse(token, ctx, 0)
}

func parse(token string, ctx Context, depth int) (Value, error) {
	raw := strings.TrimSpace(token)
	t := strings.ToLower(raw)
	if t == "" {
		return Value{}, failure.New(failure.KindParse, "empty colour token")
	}

	if m := hexPattern.FindStringSubmatch(t); m != nil && (strings.HasPrefix(t, "#") || ctx.BareHex) {
		return parseHex(m[1]), nil
	}
	if strings.HasPrefix(t, "#") {
		return Value{}, failure.New(failure.KindParse, "invalid hex colour %q", raw)
	}

	// Variable names are case-sensitive, so they are taken from raw.
	if varNamePattern.MatchString(raw) {
		return resolveVar(raw, "", ctx, depth)
	}

	if m := functionPattern.FindStringSubmatch(raw); m != nil {
		name, args := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		switch name {
		case "rgb", "rgba":
			return parseRGB(strings.ToLower(args), raw)
		case "hsl", "hsla":
			return parseHSL(strings.ToLower(args), raw)
		case "hwb":
			return parseHWB(strings.ToLower(args), raw)
		case "var":
			ref, fallback, _ := strings.Cut(args, ",")
			return resolveVar(strings.TrimSpace(ref), strings.TrimSpace(fallback), ctx, depth)
		}
		return Value{}, failure.New(failure.KindParse, "unsupported colour function %q", name)
	}

	if v, ok := lookupNamed(t); ok {
		return v, nil
	}
	return Value{}, failure.New(failure.KindParse, "not a colour: %q", raw)
}

func parseHex(digits string) Value {
	if len(digits) <= 4 {
		var b strings.Builder
		for _, c := range digits {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		digits = b.String()
	}
	n, _ := strconv.ParseUint(digits, 16, 32)
	if len(digits) == 8 {
		return Value{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: float64(uint8(n)) / 255}
	}
	return Value{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 1}
}

// splitArgs splits functional notation arguments into three channel values and
// an optional alpha. Both "a, b, c, d" and "a b c / d" are accepted.
func splitArgs(args string) (channels []string, alpha string, ok bool) {
	if strings.Contains(args, ",") {
		parts := strings.Split(args, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch len(parts) {
		case 3:
			return parts, "", true
		case 4:
			return parts[:3], parts[3], true
		}
		return nil, "", false
	}
	main, a, hasAlpha := strings.Cut(args, "/")
	channels = strings.Fields(main)
	if len(channels) != 3 {
		return nil, "", false
	}
	alpha = strings.TrimSpace(a)
	if hasAlpha && alpha == "" {
		return nil, "", false
	}
	return channels, alpha, true
}

func parseRGB(args, token string) (Value, error) {
	ch, a, ok := splitArgs(args)
	if !ok {
		return Value{}, failure.New(failure.KindParse, "malformed rgb() arguments in %q", token)
	}
	var rgb [3]uint8
	for i, s := range ch {
		n, pct, err := number(s)
		if err != nil {
			return Value{}, failure.Wrap(failure.KindParse, "rgb() channel", err)
		}
		if pct {
			n = n * 255 / 100
		}
		rgb[i] = uint8(math.Round(clamp(n, 0, 255)))
	}
	alpha, err := parseAlpha(a)
	if err != nil {
		return Value{}, err
	}
	return Value{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, nil
}

func parseHSL(args, token string) (Value, error) {
	ch, a, ok := splitArgs(args)
	if !ok {
		return Value{}, failure.New(failure.KindParse, "malformed hsl() arguments in %q", token)
	}
	h, err := hue(ch[0])
	if err != nil {
		return Value{}, err
	}
	s, err := fraction(ch[1])
	if err != nil {
		return Value{}, err
	}
	l, err := fraction(ch[2])
	if err != nil {
		return Value{}, err
	}
	alpha, err := parseAlpha(a)
	if err != nil {
		return Value{}, err
	}
	return fromColorful(colorful.Hsl(h, s, l), alpha), nil
}

func parseHWB(args, token string) (Value, error) {
	ch, a, ok := splitArgs(args)
	if !ok || strings.Contains(args, ",") {
		return Value{}, failure.New(failure.KindParse, "malformed hwb() arguments in %q", token)
	}
	h, err := hue(ch[0])
	if err != nil {
		return Value{}, err
	}
	w, err := fraction(ch[1])
	if err != nil {
		return Value{}, err
	}
	bl, err := fraction(ch[2])
	if err != nil {
		return Value{}, err
	}
	alpha, err := parseAlpha(a)
	if err != nil {
		return Value{}, err
	}
	if w+bl >= 1 {
		g := uint8(math.Round(w / (w + bl) * 255))
		return Value{R: g, G: g, B: g, A: alpha}, nil
	}
	v := 1 - bl
	return fromColorful(colorful.Hsv(h, 1-w/v, v), alpha), nil
}

// number parses a plain number or a percentage. "none" is zero.
func number(s string) (n float64, percent bool, err error) {
	if s == "none" {
		return 0, false, nil
	}
	if strings.HasSuffix(s, "%") {
		s, percent = strings.TrimSuffix(s, "%"), true
	}
	n, err = strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false, failure.New(failure.KindParse, "invalid number %q", s)
	}
	return n, percent, nil
}

// fraction parses a saturation/lightness/whiteness/blackness component into [0, 1].
// Bare numbers are read as percentages, as modern syntax allows.
func fraction(s string) (float64, error) {
	n, _, err := number(s)
	if err != nil {
		return 0, err
	}
	return clamp(n/100, 0, 1), nil
}

func hue(s string) (float64, error) {
	units := []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 0.9},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	scale := 1.0
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s, scale = strings.TrimSuffix(s, u.suffix), u.scale
			break
		}
	}
	n, pct, err := number(s)
	if err != nil || pct {
		return 0, failure.New(failure.KindParse, "invalid hue %q", s)
	}
	h := math.Mod(n*scale, 360)
	if h < 0 {
		h += 360
	}
	return h, nil
}

func parseAlpha(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	n, pct, err := number(s)
	if err != nil {
		return 0, err
	}
	if pct {
		n /= 100
	}
	return clamp(n, 0, 1), nil
}

func resolveVar(name, fallback string, ctx Context, depth int) (Value, error) {
	if depth >= maxVarDepth {
		return Value{}, failure.New(failure.KindParse, "variable %s nests too deeply", name)
	}
	if !varNamePattern.MatchString(name) && !schemeNamePattern.MatchString(name) {
		return Value{}, failure.New(failure.KindParse, "invalid variable reference %q", name)
	}
	// A nil index has no definitions, so the fallback applies.
	if fallback != "" && ctx.Vars.Count(name) == 0 {
		return parse(fallback, ctx, depth+1)
	}
	value, err := ctx.Vars.Lookup(name)
	if err != nil {
		return Value{}, err
	}
	v, err := parse(value, Context{Vars: ctx.Vars}, depth+1)
	if err != nil {
		return Value{}, failure.Wrap(failure.KindParse, "variable "+name, err)
	}
	return v, nil
}

package colors

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

func TestParse_Hex(t *testing.T) {
	tests := []struct {
		token string
		want  Value
	}{
		{"#f00", Value{255, 0, 0, 1}},
		{"#F00", Value{255, 0, 0, 1}},
		{"#f008", Value{255, 0, 0, float64(0x88) / 255}},
		{"#336699", Value{0x33, 0x66, 0x99, 1}},
		{"#33669980", Value{0x33, 0x66, 0x99, float64(0x80) / 255}},
		{"  #abcdef  ", Value{0xab, 0xcd, 0xef, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, Context{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_HexRoundTrip(t *testing.T) {
	// Walk a spread of channel values rather than all 16M.
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 51 {
				token := fmt.Sprintf("#%02x%02x%02x", r, g, b)
				got, err := Parse(token, Context{})
				if err != nil {
					t.Fatalf("Parse(%s) failed: %v", token, err)
				}
				if int(got.R) != r || int(got.G) != g || int(got.B) != b || got.A != 1 {
					t.Fatalf("Parse(%s) = %+v", token, got)
				}
				if got.Hex() != token {
					t.Fatalf("Hex() = %s, want %s", got.Hex(), token)
				}
			}
		}
	}
}

func TestParse_BareHex(t *testing.T) {
	if _, err := Parse("ff0000", Context{}); err == nil {
		t.Error("bare hex should fail without BareHex")
	}
	got, err := Parse("ff0000", Context{BareHex: true})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != (Value{255, 0, 0, 1}) {
		t.Errorf("got %+v", got)
	}
}

func TestParse_RGB(t *testing.T) {
	tests := []struct {
		token string
		want  Value
	}{
		{"rgb(255,0,0)", Value{255, 0, 0, 1}},
		{"rgb( 12 , 34 , 56 )", Value{12, 34, 56, 1}},
		{"rgba(12, 34, 56, 0.5)", Value{12, 34, 56, 0.5}},
		{"rgb(12 34 56)", Value{12, 34, 56, 1}},
		{"rgb(12 34 56 / 25%)", Value{12, 34, 56, 0.25}},
		{"RGB(100%, 0%, 50%)", Value{255, 0, 128, 1}},
		{"rgb(300,0,0)", Value{255, 0, 0, 1}},
		{"rgb(-20, 0, 0)", Value{0, 0, 0, 1}},
		{"rgba(0, 0, 0, 2)", Value{0, 0, 0, 1}},
		{"rgb(none 10 20)", Value{0, 10, 20, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, Context{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_RGBRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 5 {
		g, b := 255-r, (r*7)%256
		token := fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
		got, err := Parse(token, Context{})
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", token, err)
		}
		if int(got.R) != r || int(got.G) != g || int(got.B) != b {
			t.Fatalf("Parse(%s) = %+v", token, got)
		}
		if want := fmt.Sprintf("rgb(%d, %d, %d)", r, g, b); got.CSS() != want {
			t.Fatalf("CSS() = %s, want %s", got.CSS(), want)
		}
	}
}

func TestParse_HSL(t *testing.T) {
	tests := []struct {
		token string
		want  Value
	}{
		{"hsl(0, 100%, 50%)", Value{255, 0, 0, 1}},
		{"hsl(120deg 100% 50%)", Value{0, 255, 0, 1}},
		{"hsl(240, 100%, 50%)", Value{0, 0, 255, 1}},
		{"hsla(0, 0%, 100%, 0.5)", Value{255, 255, 255, 0.5}},
		{"hsl(0.5turn 100% 50% / 50%)", Value{0, 255, 255, 0.5}},
		{"hsl(360, 100%, 50%)", Value{255, 0, 0, 1}},
		{"hsl(0, 200%, 50%)", Value{255, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, Context{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_HWB(t *testing.T) {
	tests := []struct {
		token string
		want  Value
	}{
		{"hwb(0 0% 0%)", Value{255, 0, 0, 1}},
		{"hwb(0 100% 0%)", Value{255, 255, 255, 1}},
		{"hwb(0 50% 50%)", Value{128, 128, 128, 1}},
		{"hwb(120 0% 0% / 0.5)", Value{0, 255, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, Context{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_Named(t *testing.T) {
	tests := []struct {
		token string
		want  Value
	}{
		{"red", Value{255, 0, 0, 1}},
		{"RebeccaPurple", Value{0x66, 0x33, 0x99, 1}},
		{"transparent", Value{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, Context{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tokens := []string{
		"",
		"#12",
		"#ggg",
		"#12345",
		"notacolor",
		"rgb(1,2)",
		"rgb(1 2 3 4)",
		"rgb(a,b,c)",
		"rgb(1 2 3 /)",
		"hsl(10%, 50%, 50%)",
		"lab(50% 20 30)",
		"var(--missing)",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token, Context{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, failure.Parse) {
				t.Errorf("expected parse failure, got %v", err)
			}
		})
	}
}

func TestParse_Variables(t *testing.T) {
	doc := `
:root {
	--accent: #ff0000;
	--Mixed: rgb(0 0 255) !important;
	--alias: var(--accent);
	--dup: red;
}
.a { --dup: blue; color: var(--accent); }
$brand: hsl(120, 100%, 50%) !default;
@link: #00f;
--loop-a: var(--loop-b);
--loop-b: var(--loop-a);
`
	ctx := Context{Vars: IndexVariables(doc)}

	tests := []struct {
		token   string
		want    Value
		wantErr bool
	}{
		{"var(--accent)", Value{255, 0, 0, 1}, false},
		{"var( --accent )", Value{255, 0, 0, 1}, false},
		{"--accent", Value{255, 0, 0, 1}, false},
		{"var(--Mixed)", Value{0, 0, 255, 1}, false},
		{"var(--mixed)", Value{}, true},
		{"var(--alias)", Value{255, 0, 0, 1}, false},
		{"$brand", Value{0, 255, 0, 1}, false},
		{"@link", Value{0, 0, 255, 1}, false},
		{"var(--dup)", Value{}, true},
		{"var(--none)", Value{}, true},
		{"var(--none, #0f0)", Value{0, 255, 0, 1}, false},
		{"var(--dup, #0f0)", Value{}, true},
		{"var(--loop-a)", Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, failure.Parse) {
					t.Errorf("expected parse failure, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParse_FallbackWithoutIndex(t *testing.T) {
	got, err := Parse("var(--none, #0f0)", Context{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != (Value{0, 255, 0, 1}) {
		t.Errorf("got %+v, want {0 255 0 1}", got)
	}
	if _, err := Parse("var(--none)", Context{}); !errors.Is(err, failure.Parse) {
		t.Errorf("expected parse failure without fallback, got %v", err)
	}
}

func TestParse_SchemeVariables(t *testing.T) {
	doc := `{
	"name": "Example",
	"variables": {
		"accent": "#ff8800",
		"faded": "rgba(0, 0, 255, 0.5)",
		"link": "var(accent)",
		"bad": "color(var(accent) alpha(0.5))",
		"size": 12
	},
	"globals": {"caret": "var(accent)"}
}`
	ctx := Context{Vars: IndexVariables(doc)}

	tests := []struct {
		token   string
		want    Value
		wantErr bool
	}{
		{"var(accent)", Value{255, 136, 0, 1}, false},
		{"var(faded)", Value{0, 0, 255, 0.5}, false},
		{"var(link)", Value{255, 136, 0, 1}, false},
		{"var(bad)", Value{}, true},
		{"var(size)", Value{}, true},
		{"var(missing)", Value{}, true},
		{"var(missing, red)", Value{255, 0, 0, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token, ctx)
			if tt.wantErr {
				if !errors.Is(err, failure.Parse) {
					t.Errorf("expected parse failure, got %+v, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	// Outside a JSON document a sigil-free name has no definition.
	if _, err := Parse("var(accent)", Context{Vars: IndexVariables("a { color: var(accent); }")}); !errors.Is(err, failure.Parse) {
		t.Errorf("expected parse failure for CSS document, got %v", err)
	}
}

func TestValue_Formats(t *testing.T) {
	v := Value{R: 255, G: 128, B: 0, A: 0.5}
	if v.Opaque() {
		t.Error("half alpha should not be opaque")
	}
	if got := v.Hex(); got != "#ff800080" {
		t.Errorf("Hex: got %s, want #ff800080", got)
	}
	if got := v.CSS(); got != "rgba(255, 128, 0, 0.5)" {
		t.Errorf("CSS: got %s", got)
	}
	if got := v.NRGBA(); got.A != 128 {
		t.Errorf("NRGBA alpha: got %d, want 128", got.A)
	}

	hsl := Value{R: 255, G: 0, B: 0, A: 1}.HSL()
	if hsl.H != 0 || hsl.S != 100 || hsl.L != 50 {
		t.Errorf("HSL: got %+v, want {0 100 50}", hsl)
	}
	gray := Value{R: 128, G: 128, B: 128, A: 1}.HSL()
	if gray.S != 0 || math.Abs(float64(gray.L)-50) > 1 {
		t.Errorf("HSL gray: got %+v", gray)
	}
}

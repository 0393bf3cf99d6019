package img2grid

import (
	"errors"
	"math/rand"
	"testing"
)

func TestToRaw(t *testing.T) {
	t.Parallel()

	g := Grid{{Light, Dark}, {Accent, Light}}
	if got := ToRaw(g); got != "_#\n$_\n" {
		t.Errorf("ToRaw = %q, want %q", got, "_#\n$_\n")
	}
	if got := ToRaw(Grid{}); got != "" {
		t.Errorf("ToRaw of empty grid = %q, want empty", got)
	}
}

func TestToPretty(t *testing.T) {
	t.Parallel()

	g := Grid{{Light, Dark}, {Accent, Light}}
	want := "[\n  [\n    \"_\",\n    \"#\"\n  ],\n  [\n    \"$\",\n    \"_\"\n  ]\n]"
	if got := ToPretty(g); got != want {
		t.Errorf("ToPretty = %q, want %q", got, want)
	}
	if got := ToPretty(Grid{}); got != "[]" {
		t.Errorf("ToPretty of empty grid = %q, want []", got)
	}
}

func TestToEscaped(t *testing.T) {
	t.Parallel()

	g := Grid{{Light, Dark}, {Accent, Light}}
	want := `"[[\"_\",\"#\"],[\"$\",\"_\"]]"`
	if got := ToEscaped(g); got != want {
		t.Errorf("ToEscaped = %s, want %s", got, want)
	}

	// HTML sensitive characters are not escaped, matching JSON.stringify.
	if got := ToEscaped(Grid{{'<'}}); got != `"[[\"<\"]]"` {
		t.Errorf("ToEscaped of < = %s", got)
	}
}

func TestParseRaw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Grid
	}{
		{"_#\n$_\n", Grid{{Light, Dark}, {Accent, Light}}},
		{"  \n_#\r\n$_\r\n\n", Grid{{Light, Dark}, {Accent, Light}}},
		{"__\n#", Grid{{Light, Light}, {Dark}}},
		{"_\n\n#", Grid{{Light}, {Dark}}},
		{"", Grid{}},
		{"   \n\t", Grid{}},
	}

	for _, test := range tests {
		got := ParseRaw(test.in)
		if !got.Equal(test.want) {
			t.Errorf("ParseRaw(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestFromEscaped(t *testing.T) {
	t.Parallel()

	g, err := FromEscaped(`  "[[\"_\",\"#\"],[\"$\",\"_\"]]"` + "\n")
	if err != nil {
		t.Fatalf("FromEscaped failed: %v", err)
	}
	if !g.Equal(Grid{{Light, Dark}, {Accent, Light}}) {
		t.Errorf("FromEscaped = %q", g)
	}

	g, err = FromEscaped(`"[]"`)
	if err != nil || g.Height() != 0 {
		t.Errorf("FromEscaped of empty array = %q, %v", g, err)
	}
}

func TestFromEscapedErrors(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"not json",
		`[["_","#"]]`,               // only encoded once
		`"not json inside"`,         // inner layer invalid
		`"[\"_\",\"#\"]"`,           // flat array
		`"{\"a\":1}"`,               // object
		`"\"_\""`,                   // string
		`"[[\"_\"],\"#\"]"`,         // row that is not an array
		`"[[\"__\"]]"`,              // multi character cell
		`"[[\"\"]]"`,                // empty cell
		`"[[1]]"`,                   // number cell
		`"[[\"_\"],[\"_\",\"#\"]]"`, // ragged
	}

	for _, in := range inputs {
		g, err := FromEscaped(in)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("FromEscaped(%q) error = %v, want DecodeError", in, err)
		}
		if g != nil {
			t.Errorf("FromEscaped(%q) returned grid %q alongside error", in, g)
		}
	}
}

func randomGrid(rng *rand.Rand, width, height int) Grid {
	symbols := []Symbol{Light, Dark, Accent}
	g := make(Grid, height)
	for y := range g {
		g[y] = make([]Symbol, width)
		for x := range g[y] {
			g[y][x] = symbols[rng.Intn(len(symbols))]
		}
	}
	return g
}

func TestRoundTrips(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		g := randomGrid(rng, 1+rng.Intn(25), 1+rng.Intn(25))

		decoded, err := FromEscaped(ToEscaped(g))
		if err != nil {
			t.Fatalf("FromEscaped(ToEscaped(g)) failed: %v", err)
		}
		if !decoded.Equal(g) {
			t.Fatalf("Escaped round trip changed grid:\n%s\nto\n%s", ToRaw(g), ToRaw(decoded))
		}

		if raw := ParseRaw(ToRaw(g)); !raw.Equal(g) {
			t.Fatalf("Raw round trip changed grid:\n%s\nto\n%s", ToRaw(g), ToRaw(raw))
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	g := Grid{{Accent}}
	v := Render(g)
	if v.Raw != "$\n" || v.Pretty != "[\n  [\n    \"$\"\n  ]\n]" || v.Escaped != `"[[\"$\"]]"` {
		t.Errorf("Render = %+v", v)
	}
}

package img2grid

import (
	"strings"
	"testing"
)

func TestRenderANSI(t *testing.T) {
	t.Parallel()

	got := RenderANSI(Grid{{Light, Light, Dark}, {Accent}})
	want := ESC + "[30;107m__" + ESC + "[30;100m#" + ESC + "[0m\n" +
		ESC + "[30;103m$" + ESC + "[0m\n"
	if got != want {
		t.Errorf("RenderANSI = %q, want %q", got, want)
	}
}

func TestRenderANSIUnknownSymbol(t *testing.T) {
	t.Parallel()

	got := RenderANSI(Grid{{'x', 'y', Light}})
	if !strings.HasPrefix(got, ESC+"[0mxy"+ESC+"[30;107m_") {
		t.Errorf("Unknown symbols should share one default run, got %q", got)
	}
	if RenderANSI(Grid{}) != "" {
		t.Error("Empty grid should render nothing")
	}
}

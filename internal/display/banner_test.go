package display

import (
	"strings"
	"testing"
)

func TestRenderBannerCentresBlock(t *testing.T) {
	art := "ab\nabcd\n"
	out := renderBanner(art, 10)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	// Both rows share the left edge of the 4-wide block: 3 columns in.
	for _, l := range lines {
		plain := stripStyle(l)
		if !strings.HasPrefix(plain, "   a") {
			t.Fatalf("line %q not centred", plain)
		}
	}
}

func TestRenderBannerNarrowTerminal(t *testing.T) {
	out := renderBanner("abcdef", 3)
	if got := stripStyle(strings.TrimRight(out, "\n")); got != "abcdef" {
		t.Fatalf("got %q", got)
	}
	if renderBanner("\n", 80) != "" {
		t.Fatal("empty art should render nothing")
	}
}

func stripStyle(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if r == 'm' {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

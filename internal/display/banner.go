package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art centred for the current terminal.
func RenderBanner() string {
	return renderBanner(bannerRaw, termWidth())
}

func renderBanner(art string, width int) string {
	art = strings.TrimRight(art, "\n")
	if art == "" {
		return ""
	}
	lines := strings.Split(art, "\n")

	// Pad to a common width so the block centres as one piece.
	block := lipgloss.NewStyle().Width(lipgloss.Width(art)).Render(art)
	if width > lipgloss.Width(block) {
		block = lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
	}

	var b strings.Builder
	for i, l := range strings.Split(block, "\n") {
		if i >= len(lines) {
			break
		}
		b.WriteString(BannerStyle.Render(strings.TrimRight(l, " ")))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the terminal column count, or 80.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}

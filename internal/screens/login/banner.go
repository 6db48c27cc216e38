package login

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/amcprep/internal/ui/theme"
)

const bannerArt = `
  █████╗ ███╗   ███╗ ██████╗    ██████╗ ██████╗ ███████╗██████╗
 ██╔══██╗████╗ ████║██╔════╝    ██╔══██╗██╔══██╗██╔════╝██╔══██╗
 ███████║██╔████╔██║██║         ██████╔╝██████╔╝█████╗  ██████╔╝
 ██╔══██║██║╚██╔╝██║██║         ██╔═══╝ ██╔══██╗██╔══╝  ██╔═══╝
 ██║  ██║██║ ╚═╝ ██║╚██████╗    ██║     ██║  ██║███████╗██║
 ╚═╝  ╚═╝╚═╝     ╚═╝ ╚═════╝    ╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝`

const bannerCompact = "A M C   P R E P"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 68

// RenderBanner returns the banner styled in the primary color, or the
// compact form on narrow or short terminals.
func RenderBanner(width, height int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth || height < 22 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

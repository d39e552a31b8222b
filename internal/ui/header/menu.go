// Package header is the adaptive top bar, bottom bar and hamburger menu
// shown on every signed-in screen.
package header

import "github.com/mindfulplus/mindful/internal/ui"

// MenuState is the hamburger menu. The open presentation is picked when
// the menu opens and kept until it closes.
type MenuState int

const (
	MenuClosed MenuState = iota
	MenuSheet
	MenuDropdown
)

func (s MenuState) String() string {
	switch s {
	case MenuSheet:
		return "sheet"
	case MenuDropdown:
		return "dropdown"
	default:
		return "closed"
	}
}

func (s MenuState) Open() bool { return s != MenuClosed }

// Toggle is a hamburger tap. A closed menu opens as a bottom sheet on
// small viewports and as a dropdown otherwise; an open menu closes.
func Toggle(s MenuState, width int, forceMobile bool) MenuState {
	if s.Open() {
		return MenuClosed
	}
	if IsSmall(width, forceMobile) {
		return MenuSheet
	}
	return MenuDropdown
}

// Dismiss is a scrim tap, an entry tap or a programmatic close.
func Dismiss(MenuState) MenuState { return MenuClosed }

// IsSmall reports whether the compact layout applies.
func IsSmall(width int, forceMobile bool) bool {
	return forceMobile || ui.IsMobileWidth(width)
}

package ui

import "github.com/mindfulplus/mindful/internal/ui/theme"

const (
	// DefaultWidth stands in for an unknown viewport width.
	DefaultWidth = 1024
	// MobileBreakpoint is the widest viewport treated as a phone.
	MobileBreakpoint = 600
)

// NormalizeWidth maps an unknown (non-positive) width to DefaultWidth.
func NormalizeWidth(w int) int {
	if w <= 0 {
		return DefaultWidth
	}
	return w
}

func IsMobileWidth(w int) bool { return NormalizeWidth(w) <= MobileBreakpoint }

// ScrollPadding is the page padding of ScrollView for width.
func ScrollPadding(width int) int {
	switch w := NormalizeWidth(width); {
	case w < 480:
		return 10
	case w < 860:
		return 14
	default:
		return 20
	}
}

// ScrollView is the scrollable body of a screen.
func ScrollView(width int, children ...*Node) *Node {
	return Column(children...).WithPadding(ScrollPadding(width)).WithKey("scroll")
}

// HeaderSizes returns the title and subtitle sizes of ShellHeader.
func HeaderSizes(width int) (title, subtitle int) {
	switch w := NormalizeWidth(width); {
	case w < 480:
		return 16, 11
	case w < 860:
		return 18, 12
	default:
		return 20, 12
	}
}

// ShellHeader is the title block at the top of a screen. An empty
// subtitle is omitted.
func ShellHeader(title, subtitle string, width int) *Node {
	ts, ss := HeaderSizes(width)
	col := Column(Text(title, ts).WithColor(theme.Ink).WithKey("shell.title"))
	if subtitle != "" {
		col.Children = append(col.Children, Text(subtitle, ss).WithColor(theme.Muted).WithKey("shell.subtitle"))
	}
	return col.WithKey("shell")
}

// GridColumns is 1 below MobileBreakpoint and 2 otherwise.
func GridColumns(width int) int {
	if NormalizeWidth(width) < MobileBreakpoint {
		return 1
	}
	return 2
}

// TwoColGrid lays items out in rows of two, or stacks them when narrow.
// An odd last item keeps its half width.
func TwoColGrid(items []*Node, width int) *Node {
	grid := Column().WithKey("grid")
	if GridColumns(width) == 1 {
		grid.Children = append(grid.Children, items...)
		return grid
	}
	for i := 0; i < len(items); i += 2 {
		row := Row(items[i])
		if i+1 < len(items) {
			row.Children = append(row.Children, items[i+1])
		}
		grid.Children = append(grid.Children, row)
	}
	return grid
}

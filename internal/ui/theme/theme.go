// Package theme holds the Mindful+ colour and spacing tokens.
package theme

const (
	Background = "#F7F5FF"
	Ink        = "#1F1B2E"
	Muted      = "#6B6780"
	Card       = "#EDE7FF"
	Accent     = "#6C5CE7"
	ActiveNav  = "#5A00D0"
	FilterTint = "#7C3AED"
	Danger     = "#E5484D"
	Success    = "#2ECC71"
	Scrim      = "rgba(0,0,0,0.5)"
)

const (
	CardRadius  = 16
	GridSpacing = 12
	ColumnGap   = 14
)

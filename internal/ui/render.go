package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mindfulplus/mindful/internal/ui/theme"
)

type RenderOptions struct {
	// ANSI enables terminal colours for theme colours.
	ANSI bool
}

var ansiCodes = map[string]string{
	theme.Muted:      "\x1b[2m",
	theme.Accent:     "\x1b[35m",
	theme.ActiveNav:  "\x1b[1;35m",
	theme.FilterTint: "\x1b[35m",
	theme.Danger:     "\x1b[31m",
	theme.Success:    "\x1b[32m",
}

const ansiReset = "\x1b[0m"

var toastPrefix = map[ToastLevel]string{
	ToastInfo:    "(i)",
	ToastSuccess: "(ok)",
	ToastWarn:    "(!)",
	ToastError:   "(x)",
}

type textWriter struct {
	w    io.Writer
	opts RenderOptions
	err  error
}

func (t *textWriter) line(depth int, s string) {
	if t.err != nil {
		return
	}
	pad := strings.Repeat("  ", depth)
	for _, l := range strings.Split(s, "\n") {
		if _, err := fmt.Fprintln(t.w, pad+l); err != nil {
			t.err = err
			return
		}
	}
}

func (t *textWriter) paint(color, s string) string {
	if !t.opts.ANSI {
		return s
	}
	if code, ok := ansiCodes[color]; ok {
		return code + s + ansiReset
	}
	return s
}

// Render draws the page as text: header, content, bottom bar, then the
// overlay and the pending toasts, which are drained.
func Render(w io.Writer, p *Page, opts RenderOptions) error {
	t := &textWriter{w: w, opts: opts}
	for _, name := range []string{SlotHeader, SlotContent, SlotBottom} {
		n := p.Slot(name)
		if n == nil || n.Hidden {
			continue
		}
		t.node(0, n)
		t.line(0, "")
	}
	if o := p.Overlay(); o != nil {
		t.line(0, strings.Repeat("=", 32))
		t.node(1, o)
		t.line(0, strings.Repeat("=", 32))
	}
	for _, toast := range p.DrainToasts() {
		color := ""
		switch toast.Level {
		case ToastSuccess:
			color = theme.Success
		case ToastWarn, ToastError:
			color = theme.Danger
		}
		t.line(0, t.paint(color, toastPrefix[toast.Level]+" "+toast.Text))
	}
	return t.err
}

// RenderNode draws a single tree.
func RenderNode(w io.Writer, n *Node, opts RenderOptions) error {
	t := &textWriter{w: w, opts: opts}
	t.node(0, n)
	return t.err
}

func (t *textWriter) node(depth int, n *Node) {
	if n == nil || n.Hidden {
		return
	}
	switch n.Kind {
	case KindColumn:
		for _, c := range n.Children {
			t.node(depth, c)
		}
	case KindRow:
		t.line(depth, t.inline(n))
	case KindCard:
		t.line(depth, "+"+strings.Repeat("-", 30))
		for _, c := range n.Children {
			t.node(depth+1, c)
		}
		if n.Action != "" && n.OnTap != nil {
			t.line(depth+1, t.paint(theme.Accent, "("+n.Action+")"))
		}
		t.line(depth, "+"+strings.Repeat("-", 30))
	case KindDivider:
		t.line(depth, strings.Repeat("-", 32))
	default:
		t.line(depth, t.inline(n))
	}
}

func (t *textWriter) inline(n *Node) string {
	if n == nil || n.Hidden {
		return ""
	}
	switch n.Kind {
	case KindText:
		return t.paint(n.Color, n.Text)
	case KindButton:
		label := strings.TrimSpace(n.Icon + " " + n.Text)
		return t.paint(n.Color, "["+label+"]") + t.paint(theme.Muted, "("+n.Action+")")
	case KindDivider:
		return "|"
	}
	sep := "  "
	if n.Kind == KindColumn || n.Kind == KindCard {
		sep = " / "
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		if s := t.inline(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/ui/async"
	"github.com/mindfulplus/mindful/internal/ui/events"
)

const (
	SlotHeader  = "header"
	SlotContent = "content"
	SlotBottom  = "bottom"
)

// ErrNoAction is returned by Tap when no visible node carries the action.
var ErrNoAction = errors.New("no such action on screen")

// Sessions is the identity summary the page hands to views.
// *session.Manager implements it.
type Sessions interface {
	Current() *models.Session
	Ensure(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
}

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarn
	ToastError
)

type Toast struct {
	Level ToastLevel
	Text  string
}

type overlay struct {
	node      *Node
	onDismiss func()
}

// PageOptions are the page's collaborators. Zero values are replaced by
// no-op implementations.
type PageOptions struct {
	Width    int
	Sessions Sessions
	Loop     *async.Loop
	Log      logging.Logger
	// Navigate is told every route change.
	Navigate func(route string)
	// Launch opens an external URL, in a browser when one is available.
	Launch func(url string) error
	// Redraw is called by Update.
	Redraw func()
}

// Page is the host of one screen. All of its state is mutex guarded so
// REPL commands and loop callbacks may call it from any goroutine.
type Page struct {
	mu      sync.Mutex
	width   int
	route   string
	slots   map[string]*Node
	overlay *overlay
	toasts  []Toast

	sessions Sessions
	loop     *async.Loop
	log      logging.Logger
	navigate func(string)
	launch   func(string) error
	redraw   func()

	resize events.Registry[int]
}

func NewPage(opts PageOptions) *Page {
	p := &Page{
		width:    NormalizeWidth(opts.Width),
		slots:    make(map[string]*Node),
		sessions: opts.Sessions,
		loop:     opts.Loop,
		log:      opts.Log,
		navigate: opts.Navigate,
		launch:   opts.Launch,
		redraw:   opts.Redraw,
	}
	if p.sessions == nil {
		p.sessions = noSessions{}
	}
	if p.log == nil {
		p.log = logging.Nop()
	}
	if p.navigate == nil {
		p.navigate = func(string) {}
	}
	if p.launch == nil {
		p.launch = func(string) error { return nil }
	}
	if p.redraw == nil {
		p.redraw = func() {}
	}
	return p
}

func (p *Page) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

func (p *Page) IsMobile() bool { return IsMobileWidth(p.Width()) }

// SetWidth records a new viewport width and notifies resize listeners.
func (p *Page) SetWidth(w int) {
	w = NormalizeWidth(w)
	p.mu.Lock()
	p.width = w
	p.mu.Unlock()
	p.resize.Emit(w)
}

// OnResize registers fn for width changes and returns its remover.
func (p *Page) OnResize(fn func(width int)) (remove func()) { return p.resize.Add(fn) }

// ResizeListeners is the number of registered resize listeners.
func (p *Page) ResizeListeners() int { return p.resize.Len() }

func (p *Page) Route() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.route
}

// Go switches to route. The previous screen's slots and overlay are
// dropped; the navigator builds the new one.
func (p *Page) Go(route string) {
	p.mu.Lock()
	p.route = route
	p.overlay = nil
	p.mu.Unlock()
	p.log.Debug(context.Background(), "navigate", "route", route)
	p.navigate(route)
}

func (p *Page) Sessions() Sessions      { return p.sessions }
func (p *Page) Loop() *async.Loop       { return p.loop }
func (p *Page) Log() logging.Logger     { return p.log }
func (p *Page) Launch(url string) error { return p.launch(url) }

// Session returns the signed-in user, restoring it from the client cache
// if needed, or nil. Cache failures are logged and treated as signed out.
func (p *Page) Session(ctx context.Context) *models.Session {
	s, err := p.sessions.Ensure(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNoSession) {
			p.log.Warn(ctx, "session restore failed", "error", err)
		}
		return nil
	}
	return s
}

// Update asks the host to redraw.
func (p *Page) Update() { p.redraw() }

func (p *Page) SetSlot(name string, n *Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n == nil {
		delete(p.slots, name)
		return
	}
	p.slots[name] = n
}

func (p *Page) Slot(name string) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots[name]
}

// ClearSlots removes every slot tree.
func (p *Page) ClearSlots() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots = make(map[string]*Node)
}

// ShowOverlay puts n above the page. onDismiss runs when the scrim is
// tapped through DismissOverlay.
func (p *Page) ShowOverlay(n *Node, onDismiss func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overlay = &overlay{node: n, onDismiss: onDismiss}
}

func (p *Page) Overlay() *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.overlay == nil {
		return nil
	}
	return p.overlay.node
}

// CloseOverlay removes the overlay without running its dismiss handler.
func (p *Page) CloseOverlay() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overlay = nil
}

// DismissOverlay is a scrim tap. It reports whether an overlay was shown.
func (p *Page) DismissOverlay() bool {
	p.mu.Lock()
	o := p.overlay
	p.overlay = nil
	p.mu.Unlock()
	if o == nil {
		return false
	}
	if o.onDismiss != nil {
		o.onDismiss()
	}
	return true
}

func (p *Page) Toast(level ToastLevel, text string) {
	p.mu.Lock()
	p.toasts = append(p.toasts, Toast{Level: level, Text: text})
	p.mu.Unlock()
}

// DrainToasts returns and forgets the pending toasts.
func (p *Page) DrainToasts() []Toast {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.toasts
	p.toasts = nil
	return out
}

// Tap runs the handler of the first visible node bound to action. The
// overlay is searched first since it covers the page.
func (p *Page) Tap(ctx context.Context, action string) error {
	for _, root := range p.roots() {
		if n := root.FindAction(action); n != nil {
			n.OnTap(ctx)
			return nil
		}
	}
	return ErrNoAction
}

// Actions lists every tappable action currently on screen.
func (p *Page) Actions() []string {
	var out []string
	for _, root := range p.roots() {
		out = append(out, root.Actions()...)
	}
	return out
}

func (p *Page) roots() []*Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Node
	if p.overlay != nil {
		out = append(out, p.overlay.node)
	}
	for _, name := range []string{SlotHeader, SlotContent, SlotBottom} {
		if n := p.slots[name]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

type noSessions struct{}

func (noSessions) Current() *models.Session { return nil }

func (noSessions) Ensure(context.Context) (*models.Session, error) { return nil, common.ErrNoSession }

func (noSessions) Clear(context.Context) error { return nil }

package header

import (
	"context"
	"errors"
	"sync"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/notify"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/async"
	"github.com/mindfulplus/mindful/internal/ui/theme"
)

const title = "Mindful+"

// Notifier is the push-notification activation service.
// *notify.Client implements it.
type Notifier interface {
	ActivationURL(sessionID, uid, role, token string) string
	Poll(ctx context.Context, sessionID string) error
}

// TokenSigner mints the optional token passed to the notification
// service. *mindful.Service implements it.
type TokenSigner interface {
	CustomToken(uid string, claims map[string]any) (string, error)
}

var newSessionID = notify.NewSessionID

type Options struct {
	ActiveRoute string
	ForceMobile bool
	Notifier    Notifier
	Signer      TokenSigner
}

// Header owns the top bar, the bottom bar and the menu overlay of one
// screen. Close it when the screen goes away.
type Header struct {
	page *ui.Page
	opts Options
	log  logging.Logger

	mu     sync.Mutex
	state  MenuState
	remove func()
}

// New builds both bars into the page and starts following resizes.
func New(ctx context.Context, page *ui.Page, opts Options) *Header {
	h := &Header{
		page: page,
		opts: opts,
		log:  page.Log().With("component", "header"),
	}
	h.Rebuild(ctx)
	h.remove = page.OnResize(func(int) {
		h.Rebuild(context.Background())
		page.Update()
	})
	return h
}

// Close stops following resizes and drops the menu if it is open.
func (h *Header) Close() {
	h.mu.Lock()
	remove := h.remove
	h.remove = nil
	open := h.state.Open()
	h.state = MenuClosed
	h.mu.Unlock()

	if remove != nil {
		remove()
	}
	if open {
		h.page.CloseOverlay()
	}
}

func (h *Header) State() MenuState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Rebuild replaces the top and bottom bars for the current width. An open
// menu overlay is left as it is.
func (h *Header) Rebuild(ctx context.Context) {
	w := h.page.Width()
	signedIn := h.page.Session(ctx) != nil
	h.page.SetSlot(ui.SlotHeader, h.topBar(w, signedIn))
	h.page.SetSlot(ui.SlotBottom, h.bottomBar(w))
}

// TitleSize is the brand title size of the top bar.
func TitleSize(width int) int {
	if ui.NormalizeWidth(width) >= 760 {
		return 18
	}
	return 16
}

// BottomIconSize is the icon size of the bottom bar.
func BottomIconSize(width int) int {
	if ui.NormalizeWidth(width) < 480 {
		return 20
	}
	return 22
}

func (h *Header) topBar(width int, signedIn bool) *ui.Node {
	bar := ui.Row(
		ui.Button("", "menu", h.ToggleMenu).WithIcon("☰").WithKey("header.menu"),
		ui.Text(title, TitleSize(width)).WithColor(theme.Ink).WithKey("header.title"),
	).WithKey("header.top")
	if signedIn {
		bar.Children = append(bar.Children,
			ui.Button("", "notify", h.ActivatePush).WithIcon("🔔").WithColor(theme.ActiveNav).WithKey("header.push"))
	}
	return bar
}

func (h *Header) bottomBar(width int) *ui.Node {
	w := ui.NormalizeWidth(width)
	icon := BottomIconSize(w)
	bar := ui.Row().WithKey("header.bottom").WithHidden(!IsSmall(w, h.opts.ForceMobile))
	for _, e := range NavItems[:bottomItems] {
		e := e
		label := e.Label
		if w < 360 {
			label = ""
		}
		b := ui.Button(label, "nav."+e.ID, func(ctx context.Context) { h.GoTo(ctx, e.Route) }).
			WithIcon(e.Icon).WithSize(icon).WithKey("bottom." + e.ID)
		if e.ID == h.opts.ActiveRoute {
			b.WithColor(theme.ActiveNav)
		}
		bar.Children = append(bar.Children, b)
	}
	return bar
}

func (h *Header) menu(state MenuState) *ui.Node {
	list := ui.Column().WithKey("menu." + state.String())
	for _, e := range MenuEntries {
		e := e
		list.Children = append(list.Children,
			ui.Button(e.Label, "menu."+e.ID, func(ctx context.Context) { h.Select(ctx, e) }).WithIcon(e.Icon))
	}
	list.Children = append(list.Children, ui.Button("Close", "menu.scrim", func(context.Context) { h.DismissMenu() }))
	return list
}

// ToggleMenu is the hamburger tap.
func (h *Header) ToggleMenu(ctx context.Context) {
	h.mu.Lock()
	next := Toggle(h.state, h.page.Width(), h.opts.ForceMobile)
	h.state = next
	h.mu.Unlock()

	if next.Open() {
		h.page.ShowOverlay(h.menu(next), h.DismissMenu)
	} else {
		h.page.CloseOverlay()
	}
	h.page.Update()
}

// DismissMenu closes the menu.
func (h *Header) DismissMenu() {
	h.mu.Lock()
	h.state = Dismiss(h.state)
	h.mu.Unlock()
	h.page.CloseOverlay()
	h.page.Update()
}

// Select closes the menu and follows e.
func (h *Header) Select(ctx context.Context, e Entry) {
	h.DismissMenu()
	if e.Logout {
		h.Logout(ctx)
		return
	}
	h.GoTo(ctx, e.Route)
}

// GoTo navigates to route. Non-public routes need a session, restored from
// the client cache if necessary; without one the user is sent to the
// login screen. It reports whether route was opened.
func (h *Header) GoTo(ctx context.Context, route string) bool {
	return Navigate(ctx, h.page, route)
}

// Navigate is GoTo for screens without a header.
func Navigate(ctx context.Context, page *ui.Page, route string) bool {
	if !IsPublic(route) && page.Session(ctx) == nil {
		page.Toast(ui.ToastWarn, "Log in first")
		page.Go(RouteLogin)
		return false
	}
	page.Go(route)
	return true
}

// Logout drops the session, in process and in the client cache, and goes
// to the login screen.
func (h *Header) Logout(ctx context.Context) {
	if err := h.page.Sessions().Clear(ctx); err != nil {
		h.log.Error(ctx, "logout: clear session", "error", err)
	}
	h.mu.Lock()
	h.state = MenuClosed
	h.mu.Unlock()
	h.page.CloseOverlay()
	h.page.Go(RouteLogin)
}

// ActivatePush opens the activation page for a fresh session id and waits
// for the service to confirm it in the background.
func (h *Header) ActivatePush(ctx context.Context) {
	s := h.page.Session(ctx)
	if s == nil || s.UID == "" {
		h.page.Toast(ui.ToastWarn, "Your session was not found. Please log in again.")
		h.page.Go(RouteLogin)
		return
	}
	if h.opts.Notifier == nil {
		h.page.Toast(ui.ToastError, "Notifications are not available.")
		return
	}

	role := RoleFor(s, h.page.Route())
	sid := newSessionID()
	link := h.opts.Notifier.ActivationURL(sid, s.UID, string(role), h.token(ctx, s, role))
	if err := h.page.Launch(link); err != nil {
		h.log.Warn(ctx, "open activation page", "error", err)
		h.page.Toast(ui.ToastError, "Could not start the activation: "+err.Error())
		return
	}
	h.page.Toast(ui.ToastInfo, "Open the tab and allow notifications. Waiting for confirmation…")
	h.log.Info(ctx, "push activation started", "session", sid)

	async.Go(ctx, h.page.Loop(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.opts.Notifier.Poll(ctx, sid)
	}, func(_ struct{}, err error) {
		if err != nil {
			h.log.Info(ctx, "push activation not confirmed", "session", sid, "error", err)
			h.page.Toast(ui.ToastWarn, "Activation was not confirmed (timed out).")
		} else {
			h.page.Toast(ui.ToastSuccess, "Notifications activated")
		}
		h.page.Update()
	})
}

func (h *Header) token(ctx context.Context, s *models.Session, role models.Role) string {
	if h.opts.Signer == nil {
		return ""
	}
	tok, err := h.opts.Signer.CustomToken(s.UID, map[string]any{"role": string(role)})
	if err != nil {
		if !errors.Is(err, common.ErrNotConfigured) {
			h.log.Warn(ctx, "custom token", "error", err)
		}
		return ""
	}
	return tok
}

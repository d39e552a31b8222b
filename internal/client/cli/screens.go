package cli

import (
	"context"
	"strings"

	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/header"
	"github.com/mindfulplus/mindful/internal/ui/home"
	"github.com/mindfulplus/mindful/internal/ui/notes"
	"github.com/mindfulplus/mindful/internal/ui/theme"
)

// placeholders are the screens this client lists in the menu but does
// not implement.
var placeholders = map[string]string{
	"/diagnostic":      "How do you feel today?",
	"/recommendations": "Recommendations for you",
	"/tellme":          "Talk to your Mindful+ assistant",
	"/help":            "Find a professional",
	"/stats":           "Your progress",
}

// mount is the page navigator: it tears down the previous screen and
// builds the one for route.
func (a *App) mount(route string) {
	ctx := context.Background()

	a.mu.Lock()
	a.unmountLocked()
	a.page.ClearSlots()

	if header.IsPublic(route) {
		a.page.SetSlot(ui.SlotContent, a.authScreen())
		a.mu.Unlock()
		a.page.Update()
		return
	}

	a.header = header.New(ctx, a.page, header.Options{
		ActiveRoute: strings.TrimPrefix(route, "/"),
		ForceMobile: a.forceMobile,
		Notifier:    a.notifier,
		Signer:      a.backend,
	})

	var load func(context.Context)
	switch route {
	case header.RouteHome:
		a.home = home.New(a.page, a.backend, home.Options{
			Navigate: func(ctx context.Context, route string) { header.Navigate(ctx, a.page, route) },
		})
		load = a.home.Load
	case "/notes":
		a.notes = notes.New(a.page, a.backend, notes.Options{
			Location: a.backend.Location(),
			Now:      a.backend.Now,
			Compose:  a.compose,
			Confirm:  a.confirm,
			AskRange: a.askRange,
		})
		load = a.notes.Load
	default:
		subtitle, ok := placeholders[route]
		if !ok {
			subtitle = "Page not found"
		}
		title := strings.TrimPrefix(route, "/")
		if title != "" {
			title = strings.ToUpper(title[:1]) + title[1:]
		}
		a.page.SetSlot(ui.SlotContent, ui.ScrollView(a.page.Width(),
			ui.ShellHeader(title, subtitle, a.page.Width()),
			ui.Text("This screen is not available in the terminal client.", 13).WithColor(theme.Muted),
		))
	}
	a.mu.Unlock()

	if load != nil {
		load(ctx)
	}
	a.page.Update()
}

func (a *App) unmountLocked() {
	if a.header != nil {
		a.header.Close()
		a.header = nil
	}
	if a.home != nil {
		a.home.Close()
		a.home = nil
	}
	if a.notes != nil {
		a.notes.Close()
		a.notes = nil
	}
}

func (a *App) authScreen() *ui.Node {
	w := a.page.Width()
	return ui.ScrollView(w,
		ui.ShellHeader("Mindful+", "Your space to feel better", w),
		ui.Button("Log in", "auth.login", func(ctx context.Context) { a.report(a.Login(ctx)) }),
		ui.Button("Create account", "auth.register", func(ctx context.Context) { a.report(a.Register(ctx, false)) }),
		ui.Button("I am a professional", "auth.registerPro", func(ctx context.Context) { a.report(a.Register(ctx, true)) }),
		ui.Text("Type google <id_token> to continue with Google.", 12).WithColor(theme.Muted),
	).WithKey("auth")
}

// report surfaces a command error as an error toast.
func (a *App) report(err error) {
	if err != nil {
		a.page.Toast(ui.ToastError, err.Error())
	}
}

// Notes is the mounted notes screen or nil.
func (a *App) Notes() *notes.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notes
}

func (a *App) Home() *home.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.home
}

func (a *App) Header() *header.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.header
}

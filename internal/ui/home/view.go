// Package home is the landing screen: greeting, quote of the day and the
// shortcuts to the main features.
package home

import (
	"context"
	"sync"

	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/async"
	"github.com/mindfulplus/mindful/internal/ui/theme"
)

// Diagnostics looks up today's diagnostic. *mindful.Service implements it.
type Diagnostics interface {
	TodayDiagnostic(ctx context.Context, uid string) (*models.Diagnostic, error)
}

type Outcome int

const (
	QuoteLoading Outcome = iota
	QuoteSignedOut
	QuoteNoDiagnostic
	QuotePending
	QuoteReady
	QuoteError
)

type Quote struct {
	Outcome Outcome
	Text    string
}

const (
	msgLoading      = "Loading…"
	msgSignedOut    = "Log in to see your quote of the day."
	msgNoDiagnostic = "You have not done a diagnostic today. Do one to get your quote."
	msgPending      = "You saved today's diagnostic. Your quote is being prepared…"
)

// LookupQuote resolves the quote of the day for s. Store errors are turned
// into an inline message instead of being returned.
func LookupQuote(ctx context.Context, store Diagnostics, s *models.Session) Quote {
	if s == nil || s.UID == "" {
		return Quote{Outcome: QuoteSignedOut, Text: msgSignedOut}
	}
	d, err := store.TodayDiagnostic(ctx, s.UID)
	if err != nil {
		return Quote{Outcome: QuoteError, Text: "Could not load the quote: " + err.Error()}
	}
	if d == nil {
		return Quote{Outcome: QuoteNoDiagnostic, Text: msgNoDiagnostic}
	}
	if d.Phrase == "" {
		return Quote{Outcome: QuotePending, Text: msgPending}
	}
	return Quote{Outcome: QuoteReady, Text: d.Phrase}
}

type shortcut struct {
	id, emoji, title, subtitle, route string
}

var shortcuts = []shortcut{
	{id: "diagnostic", emoji: "📝", title: "How do you feel?", subtitle: "Talk and express everything you feel", route: "/diagnostic"},
	{id: "notes", emoji: "📒", title: "My notes", subtitle: "Writing down what you feel is a good thing", route: "/notes"},
	{id: "recommendations", emoji: "💡", title: "Recommendations", subtitle: "What can I do to feel better?", route: "/recommendations"},
	{id: "tellme", emoji: "✨", title: "Tell Me +", subtitle: "Talk to your Mindful+ assistant", route: "/tellme"},
}

type Options struct {
	// Navigate opens a route. Defaults to the page's own navigation.
	Navigate func(ctx context.Context, route string)
}

type View struct {
	page  *ui.Page
	store Diagnostics
	opts  Options
	log   logging.Logger

	mu     sync.Mutex
	quote  Quote
	closed bool
	remove func()
}

func New(page *ui.Page, store Diagnostics, opts Options) *View {
	if opts.Navigate == nil {
		opts.Navigate = func(_ context.Context, route string) { page.Go(route) }
	}
	v := &View{
		page:  page,
		store: store,
		opts:  opts,
		log:   page.Log().With("component", "home"),
		quote: Quote{Outcome: QuoteLoading, Text: msgLoading},
	}
	v.remove = page.OnResize(func(int) {
		v.render(context.Background())
		page.Update()
	})
	v.render(context.Background())
	return v
}

func (v *View) Close() {
	v.mu.Lock()
	remove := v.remove
	v.remove = nil
	v.closed = true
	v.mu.Unlock()
	if remove != nil {
		remove()
	}
}

func (v *View) Quote() Quote {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quote
}

// Load refreshes the quote of the day in the background.
func (v *View) Load(ctx context.Context) {
	s := v.page.Session(ctx)
	v.setQuote(ctx, Quote{Outcome: QuoteLoading, Text: msgLoading})
	async.Go(ctx, v.page.Loop(), func(ctx context.Context) (Quote, error) {
		return LookupQuote(ctx, v.store, s), nil
	}, func(q Quote, _ error) {
		if q.Outcome == QuoteError {
			v.log.Warn(ctx, "quote lookup failed", "message", q.Text)
		}
		v.setQuote(ctx, q)
		v.page.Update()
	})
}

func (v *View) setQuote(ctx context.Context, q Quote) {
	v.mu.Lock()
	v.quote = q
	v.mu.Unlock()
	v.render(ctx)
}

func (v *View) render(ctx context.Context) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}
	v.page.SetSlot(ui.SlotContent, v.Node(ctx))
}

// Node builds the screen for the current width and quote.
func (v *View) Node(ctx context.Context) *ui.Node {
	w := v.page.Width()
	mobile := ui.IsMobileWidth(w)
	q := v.Quote()

	quoteTitle, quoteSize := 18, 13
	if mobile {
		quoteTitle, quoteSize = 20, 15
	}
	quote := ui.Card("", nil,
		ui.Text("Quote of the day ✨", quoteTitle).WithColor(theme.Ink),
		ui.Text(q.Text, quoteSize).WithColor(theme.Muted).WithKey("home.quote"),
	).WithPadding(theme.CardRadius).WithKey("home.quoteCard")

	cards := make([]*ui.Node, 0, len(shortcuts))
	for _, sc := range shortcuts {
		cards = append(cards, v.card(sc, mobile))
	}

	name := v.page.Session(ctx).DisplayName()
	return ui.ScrollView(w,
		ui.ShellHeader("Hello "+name, "Your space to feel better", w),
		quote,
		ui.TwoColGrid(cards, w),
	)
}

func (v *View) card(sc shortcut, mobile bool) *ui.Node {
	titleSize, subtitleSize, pad := 15, 12, 16
	if mobile {
		titleSize, subtitleSize, pad = 16, 13, 20
	}
	route := sc.route
	return ui.Card("home."+sc.id, func(ctx context.Context) { v.opts.Navigate(ctx, route) },
		ui.Text(sc.emoji+" "+sc.title, titleSize).WithColor(theme.Ink),
		ui.Text(sc.subtitle, subtitleSize).WithColor(theme.Muted),
	).WithPadding(pad).WithColor(theme.Card).WithKey("card." + sc.id)
}

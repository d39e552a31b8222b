package notes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/mindful"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/timex"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/async"
	"github.com/mindfulplus/mindful/internal/ui/theme"
)

const (
	titleLimit   = 120
	previewLimit = 200
)

var (
	ErrDeleteNotAllowed = errors.New("only notes created today can be deleted")
	ErrEditNotAllowed   = errors.New("only notes created today can be edited")
	ErrSignedOut        = errors.New("not signed in")
)

// Store is the slice of the data-access wrapper the screen needs.
// *mindful.Service implements it.
type Store interface {
	QueryNotes(ctx context.Context, uid string, q mindful.NoteQuery) ([]models.Note, error)
	GetNote(ctx context.Context, uid, id string) (*models.Note, error)
	AddNote(ctx context.Context, uid, title, content string) (string, error)
	UpdateNote(ctx context.Context, uid, id, title, content string) error
	DeleteNote(ctx context.Context, uid, id string) error
}

type Options struct {
	// FilterField is the timestamp the filter ranges apply to.
	FilterField string
	// GroupField is the timestamp notes are bucketed by.
	GroupField string
	Location   *time.Location
	Now        timex.Clock

	// Compose asks for the title and body of a new note, or an edit of n.
	Compose func(ctx context.Context, n *models.Note) (title, content string, ok bool)
	// Confirm asks a yes/no question.
	Confirm func(ctx context.Context, prompt string) bool
	// AskRange asks for a custom YYYY-MM-DD range.
	AskRange func(ctx context.Context) (start, end string, ok bool)
}

func (o *Options) defaults() {
	if o.FilterField == "" {
		o.FilterField = FieldUpdatedAt
	}
	if o.GroupField == "" {
		o.GroupField = FieldCreatedAt
	}
	if o.Location == nil {
		o.Location, _ = timex.LoadLocation(timex.DefaultZone)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

type View struct {
	page  *ui.Page
	store Store
	opts  Options
	log   logging.Logger
	seq   async.Sequence

	// renderMu orders building a node and publishing it.
	renderMu sync.Mutex

	mu      sync.Mutex
	filter  Filter
	groups  []Group
	loaded  bool
	status  string
	removed bool
	remove  func()
}

// New mounts the notes screen into the page content slot. Call Load to
// fetch the notes.
func New(page *ui.Page, store Store, opts Options) *View {
	opts.defaults()
	v := &View{
		page:   page,
		store:  store,
		opts:   opts,
		log:    page.Log().With("component", "notes"),
		filter: AllNotes(),
	}
	v.remove = page.OnResize(func(int) {
		v.render()
		page.Update()
	})
	v.render()
	return v
}

// Close detaches the screen from the page.
func (v *View) Close() {
	v.mu.Lock()
	remove := v.remove
	v.remove = nil
	v.removed = true
	v.mu.Unlock()
	if remove != nil {
		remove()
	}
}

func (v *View) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View) Groups() []Group {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Group(nil), v.groups...)
}

// refreshFilter moves the end of a preset filter up to now, so notes
// written after the filter was chosen stay in the list. Custom ranges are
// kept as entered.
func (v *View) refreshFilter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.filter.Kind {
	case FilterToday, FilterWeek, FilterMonth:
		if f, err := QuickFilter(v.filter.Kind, v.opts.Now(), v.opts.Location); err == nil {
			v.filter = f
		}
	}
	return v.filter
}

func (v *View) uid(ctx context.Context) (string, error) {
	s := v.page.Session(ctx)
	if s == nil || s.UID == "" {
		return "", ErrSignedOut
	}
	return s.UID, nil
}

// Load fetches the notes for the active filter in the background. Only the
// most recent load may replace what is on screen.
func (v *View) Load(ctx context.Context) {
	uid, err := v.uid(ctx)
	if err != nil {
		v.setStatus("Log in to continue")
		return
	}
	token := v.seq.Next()
	f := v.refreshFilter()
	q := Query(f, v.opts.FilterField)
	v.setStatus("Loading notes…")
	v.log.Debug(ctx, "loading notes", "filter", string(f.Kind), "seq", token)

	async.Go(ctx, v.page.Loop(), func(ctx context.Context) ([]models.Note, error) {
		return v.store.QueryNotes(ctx, uid, q)
	}, func(list []models.Note, err error) {
		if !v.seq.IsCurrent(token) {
			v.log.Debug(ctx, "stale notes response dropped", "seq", token)
			return
		}
		if err != nil {
			v.log.Error(ctx, "load notes", "error", err)
			v.page.Toast(ui.ToastError, "Could not load notes: "+err.Error())
			v.setStatus("")
			v.page.Update()
			return
		}
		groups := GroupNotes(list, v.opts.GroupField, v.opts.Now(), v.opts.Location)
		v.mu.Lock()
		v.groups = groups
		v.loaded = true
		v.status = ""
		v.mu.Unlock()
		v.log.Info(ctx, "notes loaded", "count", len(list), "filter", string(f.Kind))
		v.render()
		v.page.Update()
	})
}

// ApplyFilter makes f active, closes the filter sheet and reloads.
func (v *View) ApplyFilter(ctx context.Context, f Filter) {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	v.page.CloseOverlay()
	v.Load(ctx)
}

// ApplyQuick applies one of the preset filters.
func (v *View) ApplyQuick(ctx context.Context, kind FilterKind) error {
	f, err := QuickFilter(kind, v.opts.Now(), v.opts.Location)
	if err != nil {
		return err
	}
	v.ApplyFilter(ctx, f)
	return nil
}

// ApplyCustom validates a custom range before any query is issued.
func (v *View) ApplyCustom(ctx context.Context, start, end string) error {
	f, err := ParseCustomRange(start, end, v.opts.Location)
	if err != nil {
		v.page.Toast(ui.ToastError, RangeMessage(err))
		return err
	}
	v.ApplyFilter(ctx, f)
	return nil
}

// Create adds a note and reloads.
func (v *View) Create(ctx context.Context, title, content string) error {
	uid, err := v.uid(ctx)
	if err != nil {
		return err
	}
	v.setStatus("Saving…")
	async.Go(ctx, v.page.Loop(), func(ctx context.Context) (string, error) {
		return v.store.AddNote(ctx, uid, title, content)
	}, func(_ string, err error) {
		v.afterWrite(ctx, "Note saved", "Could not save the note: ", err)
	})
	return nil
}

// Edit rewrites a note created today.
func (v *View) Edit(ctx context.Context, id, title, content string) error {
	uid, n, err := v.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !CanModify(*n, v.opts.Now(), v.opts.Location) {
		v.page.Toast(ui.ToastWarn, "You can only edit notes on the day they were created.")
		return ErrEditNotAllowed
	}
	v.setStatus("Saving…")
	async.Go(ctx, v.page.Loop(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, v.store.UpdateNote(ctx, uid, id, title, content)
	}, func(_ struct{}, err error) {
		v.afterWrite(ctx, "Note updated", "Could not update the note: ", err)
	})
	return nil
}

// Delete removes a note created today. Any other note is refused before
// the store is asked to delete anything.
func (v *View) Delete(ctx context.Context, id string) error {
	uid, n, err := v.lookup(ctx, id)
	if err != nil {
		return err
	}
	now := v.opts.Now()
	if !CanModify(*n, now, v.opts.Location) {
		v.log.Warn(ctx, "delete refused", "note", id,
			"created", CreatedKey(*n, now, v.opts.Location), "today", timex.DayKey(now, v.opts.Location))
		v.page.Toast(ui.ToastWarn, "You can only delete notes on the day they were created.")
		return ErrDeleteNotAllowed
	}
	v.setStatus("Deleting…")
	async.Go(ctx, v.page.Loop(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, v.store.DeleteNote(ctx, uid, id)
	}, func(_ struct{}, err error) {
		v.afterWrite(ctx, "Note deleted", "Could not delete the note: ", err)
	})
	return nil
}

func (v *View) afterWrite(ctx context.Context, ok, failPrefix string, err error) {
	v.setStatus("")
	if err != nil {
		v.log.Error(ctx, "note write", "error", err)
		v.page.Toast(ui.ToastError, failPrefix+err.Error())
		v.page.Update()
		return
	}
	v.page.Toast(ui.ToastSuccess, ok)
	v.Load(ctx)
}

// lookup finds a note among the loaded ones, asking the store when it is
// not on screen.
func (v *View) lookup(ctx context.Context, id string) (string, *models.Note, error) {
	uid, err := v.uid(ctx)
	if err != nil {
		return "", nil, err
	}
	v.mu.Lock()
	for _, g := range v.groups {
		for i := range g.Notes {
			if g.Notes[i].ID == id {
				n := g.Notes[i]
				v.mu.Unlock()
				return uid, &n, nil
			}
		}
	}
	v.mu.Unlock()

	n, err := v.store.GetNote(ctx, uid, id)
	if err != nil {
		return "", nil, err
	}
	if n == nil {
		return "", nil, common.ErrorNotFound
	}
	return uid, n, nil
}

func (v *View) setStatus(s string) {
	v.mu.Lock()
	v.status = s
	v.mu.Unlock()
	v.render()
}

func (v *View) render() {
	v.renderMu.Lock()
	defer v.renderMu.Unlock()
	v.mu.Lock()
	closed := v.removed
	v.mu.Unlock()
	if closed {
		return
	}
	v.page.SetSlot(ui.SlotContent, v.Node())
}

// DisplayTitle is the list title of n.
func DisplayTitle(n models.Note) string {
	t := strings.TrimSpace(n.Title)
	if t == "" {
		t = models.DefaultTitle
	}
	return common.Truncate(t, titleLimit)
}

// Preview is the list excerpt of n.
func Preview(n models.Note) string {
	c := strings.TrimSpace(n.Content)
	if len([]rune(c)) > previewLimit {
		return common.Truncate(c, previewLimit) + "…"
	}
	return c
}

// Node builds the screen for the current state.
func (v *View) Node() *ui.Node {
	v.mu.Lock()
	f, groups, loaded, status := v.filter, v.groups, v.loaded, v.status
	v.mu.Unlock()

	w := v.page.Width()
	now := v.opts.Now()

	list := ui.Column().WithKey("notes.list")
	if loaded && len(groups) == 0 {
		list.Children = append(list.Children,
			ui.Text("No notes for this period", 14).WithColor(theme.Muted).WithKey("notes.empty"))
	}
	for _, g := range groups {
		list.Children = append(list.Children, ui.Text(g.Label, 16).WithColor(theme.Ink).WithKey("group."+g.Key))
		for _, n := range g.Notes {
			list.Children = append(list.Children, v.noteCard(n, now))
		}
	}

	actions := ui.Row(
		ui.Button("New note", "notes.new", v.tapNew),
		ui.Button(f.Label, "notes.filter", v.OpenFilterSheet).WithIcon("⚲").WithColor(theme.FilterTint).WithKey("notes.filter"),
	)
	body := []*ui.Node{
		ui.ShellHeader("My notes", "Writing down how you feel is a good thing", w),
		actions,
		list,
	}
	if status != "" {
		body = append(body, ui.Text(status, 12).WithColor(theme.Muted).WithKey("notes.status"))
	}
	return ui.ScrollView(w, body...)
}

func (v *View) noteCard(n models.Note, now time.Time) *ui.Node {
	var actions *ui.Node
	if CanModify(n, now, v.opts.Location) {
		actions = ui.Row(
			ui.Button("Edit", "note.edit."+n.ID, func(ctx context.Context) { v.tapEdit(ctx, n) }).WithIcon("✎"),
			ui.Button("Delete", "note.delete."+n.ID, func(ctx context.Context) { v.tapDelete(ctx, n) }).WithIcon("🗑"),
		)
	} else {
		actions = ui.Row(
			ui.Button("View", "note.view."+n.ID, func(ctx context.Context) { v.ShowDetail(n) }).WithIcon("👁"),
		)
	}
	return ui.Card("", nil,
		ui.Text(DisplayTitle(n), 16).WithColor(theme.Ink),
		ui.Text(Preview(n), 12).WithColor(theme.Muted),
		actions,
	).WithKey("note." + n.ID).WithPadding(14)
}

// ShowDetail opens the full note in an overlay.
func (v *View) ShowDetail(n models.Note) {
	v.page.ShowOverlay(ui.Column(
		ui.Text(DisplayTitle(n), 18).WithColor(theme.Ink),
		ui.Text(strings.TrimSpace(n.Content), 14),
		ui.Button("Close", "note.close", func(context.Context) { v.page.CloseOverlay() }),
	).WithKey("note.detail"), nil)
	v.page.Update()
}

// OpenFilterSheet shows the filter choices.
func (v *View) OpenFilterSheet(context.Context) {
	quick := func(kind FilterKind) func(context.Context) {
		return func(ctx context.Context) { _ = v.ApplyQuick(ctx, kind) }
	}
	v.page.ShowOverlay(ui.Column(
		ui.Text("Filter notes", 16).WithColor(theme.Ink),
		ui.Button("All notes", "filter.all", quick(FilterAll)),
		ui.Button("Today", "filter.today", quick(FilterToday)),
		ui.Button("This week", "filter.week", quick(FilterWeek)),
		ui.Button("This month", "filter.month", quick(FilterMonth)),
		ui.Divider(),
		ui.Text("Custom range", 14).WithColor(theme.Ink),
		ui.Button("Choose dates", "filter.custom", v.tapCustom),
		ui.Button("Close", "filter.close", func(context.Context) { v.page.CloseOverlay() }),
	).WithKey("notes.sheet"), nil)
	v.page.Update()
}

func (v *View) tapNew(ctx context.Context) {
	if v.opts.Compose == nil {
		return
	}
	title, content, ok := v.opts.Compose(ctx, nil)
	if !ok {
		return
	}
	if err := v.Create(ctx, title, content); err != nil {
		v.log.Warn(ctx, "create note", "error", err)
	}
}

func (v *View) tapEdit(ctx context.Context, n models.Note) {
	if v.opts.Compose == nil {
		return
	}
	title, content, ok := v.opts.Compose(ctx, &n)
	if !ok {
		return
	}
	if err := v.Edit(ctx, n.ID, title, content); err != nil {
		v.log.Warn(ctx, "edit note", "error", err)
	}
}

func (v *View) tapDelete(ctx context.Context, n models.Note) {
	if !CanModify(n, v.opts.Now(), v.opts.Location) {
		_ = v.Delete(ctx, n.ID)
		return
	}
	if v.opts.Confirm != nil && !v.opts.Confirm(ctx, "Delete note? This cannot be undone.") {
		return
	}
	if err := v.Delete(ctx, n.ID); err != nil {
		v.log.Warn(ctx, "delete note", "error", err)
	}
}

func (v *View) tapCustom(ctx context.Context) {
	if v.opts.AskRange == nil {
		return
	}
	start, end, ok := v.opts.AskRange(ctx)
	if !ok {
		return
	}
	_ = v.ApplyCustom(ctx, start, end)
}

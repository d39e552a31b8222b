package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/header"
	"github.com/mindfulplus/mindful/internal/ui/notes"
)

var (
	getMultiline = GetMultiline
	confirm      = Confirm
)

// errNotHere is returned by commands that need a screen that is not open.
var errNotHere = errors.New("not available on this screen")

// Open navigates to route, asking for a login on protected routes.
func (a *App) Open(ctx context.Context, route string) error {
	if route == "" || route[0] != '/' {
		route = "/" + route
	}
	header.Navigate(ctx, a.page, route)
	return nil
}

// Menu toggles the navigation menu.
func (a *App) Menu(ctx context.Context) error {
	h := a.Header()
	if h == nil {
		return errNotHere
	}
	h.ToggleMenu(ctx)
	return nil
}

// Notify starts push-notification activation.
func (a *App) Notify(ctx context.Context) error {
	h := a.Header()
	if h == nil {
		return errNotHere
	}
	h.ActivatePush(ctx)
	return nil
}

// Filter applies a quick notes filter by name.
func (a *App) Filter(ctx context.Context, kind string) error {
	v := a.Notes()
	if v == nil {
		return errNotHere
	}
	if notes.FilterKind(kind) == notes.FilterCustom {
		v.OpenFilterSheet(ctx)
		return a.page.Tap(ctx, "filter.custom")
	}
	return v.ApplyQuick(ctx, notes.FilterKind(kind))
}

// Range applies a custom YYYY-MM-DD range to the notes screen.
func (a *App) Range(ctx context.Context, start, end string) error {
	v := a.Notes()
	if v == nil {
		return errNotHere
	}
	if err := v.ApplyCustom(ctx, start, end); err != nil && !errors.Is(err, notes.ErrInvalidRange) {
		return err
	}
	return nil
}

// AddNote is the new-note button.
func (a *App) AddNote(ctx context.Context) error {
	if a.Notes() == nil {
		return errNotHere
	}
	return a.page.Tap(ctx, "notes.new")
}

// TapNote runs verb (edit, delete or view) on the card of note id.
func (a *App) TapNote(ctx context.Context, verb, id string) error {
	if a.Notes() == nil {
		return errNotHere
	}
	err := a.page.Tap(ctx, "note."+verb+"."+id)
	if errors.Is(err, ui.ErrNoAction) {
		return fmt.Errorf("note %s cannot be %s here", id, verbPast(verb))
	}
	return err
}

func verbPast(verb string) string {
	switch verb {
	case "edit":
		return "edited"
	case "delete":
		return "deleted"
	}
	return "opened"
}

// Tap runs any action on screen.
func (a *App) Tap(ctx context.Context, action string) error {
	return a.page.Tap(ctx, action)
}

// Scrim dismisses the overlay, like tapping outside it.
func (a *App) Scrim(context.Context) error {
	if !a.page.DismissOverlay() {
		return errNotHere
	}
	return nil
}

// Resize changes the viewport width.
func (a *App) Resize(_ context.Context, width string) error {
	w, err := strconv.Atoi(width)
	if err != nil || w <= 0 {
		return fmt.Errorf("%w: width must be a positive number", common.ErrorValidation)
	}
	a.page.SetWidth(w)
	return nil
}

// Refresh reloads the data of the current screen.
func (a *App) Refresh(ctx context.Context) error {
	switch {
	case a.Notes() != nil:
		a.Notes().Load(ctx)
	case a.Home() != nil:
		a.Home().Load(ctx)
	default:
		a.page.Go(a.page.Route())
	}
	return nil
}

// compose asks for the note fields; n is the note being edited or nil.
func (a *App) compose(_ context.Context, n *models.Note) (title, content string, ok bool) {
	titlePrompt, bodyPrompt := "Title", "Content"
	if n != nil {
		titlePrompt = "Title (empty keeps \"" + n.Title + "\")"
		bodyPrompt = "Content (empty keeps the current text)"
	}
	title, err := getSimpleText(a.reader, titlePrompt, a.out)
	if err != nil {
		return "", "", false
	}
	content, err = getMultiline(a.reader, bodyPrompt, a.out)
	if err != nil {
		return "", "", false
	}
	if n != nil {
		if title == "" {
			title = n.Title
		}
		if content == "" {
			content = n.Content
		}
	}
	return title, content, true
}

func (a *App) confirm(_ context.Context, prompt string) bool {
	ok, err := confirm(a.reader, prompt, a.out)
	return err == nil && ok
}

func (a *App) askRange(context.Context) (start, end string, ok bool) {
	start, err := getSimpleText(a.reader, "Start date (YYYY-MM-DD)", a.out)
	if err != nil {
		return "", "", false
	}
	end, err = getSimpleText(a.reader, "End date (YYYY-MM-DD)", a.out)
	if err != nil {
		return "", "", false
	}
	return start, end, true
}

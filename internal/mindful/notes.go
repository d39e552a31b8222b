package mindful

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/models"
)

const (
	DefaultNotesLimit = 100
	// MaxNoteQuery caps every filtered or unfiltered notes listing.
	MaxNoteQuery = 500
)

// NoteQuery selects notes by an inclusive range on Field. A zero From or To
// leaves that side open. Results are ordered by Field, newest first.
type NoteQuery struct {
	Field string
	From  time.Time
	To    time.Time
	Limit int
}

func noteFields(title, content string) map[string]any {
	title = common.Truncate(strings.TrimSpace(title), models.MaxTitleLen)
	if title == "" {
		title = models.DefaultTitle
	}
	return map[string]any{
		"title":   title,
		"content": common.Truncate(strings.TrimSpace(content), models.MaxContentLen),
	}
}

// AddNote trims and truncates title and content; a blank title becomes
// models.DefaultTitle.
func (s *Service) AddNote(ctx context.Context, uid, title, content string) (string, error) {
	doc := noteFields(title, content)
	doc["createdAt"] = docstore.ServerTimestamp
	doc["updatedAt"] = docstore.ServerTimestamp
	return s.store.Add(ctx, notesCol(uid), doc)
}

func (s *Service) UpdateNote(ctx context.Context, uid, id, title, content string) error {
	doc := noteFields(title, content)
	doc["updatedAt"] = docstore.ServerTimestamp
	return s.store.Update(ctx, docstore.Join(notesCol(uid), id), doc)
}

func (s *Service) DeleteNote(ctx context.Context, uid, id string) error {
	return s.store.Delete(ctx, docstore.Join(notesCol(uid), id))
}

// GetNote returns nil, nil when the note does not exist.
func (s *Service) GetNote(ctx context.Context, uid, id string) (*models.Note, error) {
	doc, err := s.store.Get(ctx, docstore.Join(notesCol(uid), id))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	n := noteFromDoc(doc)
	return &n, nil
}

// ListNotes returns the most recently updated notes. limit <= 0 uses
// DefaultNotesLimit.
func (s *Service) ListNotes(ctx context.Context, uid string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = DefaultNotesLimit
	}
	return s.QueryNotes(ctx, uid, NoteQuery{Field: "updatedAt", Limit: limit})
}

// QueryNotes runs q, never returning more than MaxNoteQuery notes.
func (s *Service) QueryNotes(ctx context.Context, uid string, q NoteQuery) ([]models.Note, error) {
	field := q.Field
	if field == "" {
		field = "updatedAt"
	}
	limit := q.Limit
	if limit <= 0 || limit > MaxNoteQuery {
		limit = MaxNoteQuery
	}
	dq := docstore.Query{
		Collection: notesCol(uid),
		OrderBy:    field,
		Descending: true,
		Limit:      limit,
	}
	if !q.From.IsZero() {
		dq = dq.Where(field, docstore.OpGTE, q.From.UTC())
	}
	if !q.To.IsZero() {
		dq = dq.Where(field, docstore.OpLTE, q.To.UTC())
	}
	docs, err := s.store.Query(ctx, dq)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, len(docs))
	for i := range docs {
		out = append(out, noteFromDoc(&docs[i]))
	}
	return out, nil
}

func noteFromDoc(doc *docstore.Document) models.Note {
	return models.Note{
		ID:        doc.ID,
		Title:     doc.String("title"),
		Content:   doc.String("content"),
		CreatedAt: doc.Time("createdAt"),
		UpdatedAt: doc.Time("updatedAt"),
	}
}

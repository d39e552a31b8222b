package mindful

import (
	"context"

	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/timex"
)

const DefaultDiagnosticsLimit = 30

// AddDiagnostic stores data with a server creation time and returns the id.
func (s *Service) AddDiagnostic(ctx context.Context, uid string, data map[string]any) (string, error) {
	doc := make(map[string]any, len(data)+1)
	for k, v := range data {
		doc[k] = v
	}
	doc["createdAt"] = docstore.ServerTimestamp
	return s.store.Add(ctx, diagnosticsCol(uid), doc)
}

// UpdateDiagnostic adds or changes fields of an existing diagnostic.
func (s *Service) UpdateDiagnostic(ctx context.Context, uid, id string, data map[string]any) error {
	return s.store.Update(ctx, docstore.Join(diagnosticsCol(uid), id), data)
}

// ListDiagnostics returns the newest diagnostics first. limit <= 0 uses
// DefaultDiagnosticsLimit.
func (s *Service) ListDiagnostics(ctx context.Context, uid string, limit int) ([]models.Diagnostic, error) {
	if limit <= 0 {
		limit = DefaultDiagnosticsLimit
	}
	docs, err := s.store.Query(ctx, docstore.Query{
		Collection: diagnosticsCol(uid),
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Diagnostic, 0, len(docs))
	for i := range docs {
		out = append(out, diagnosticFromDoc(&docs[i]))
	}
	return out, nil
}

// TodayDiagnostic returns the latest diagnostic created between local
// midnight and the next local midnight, or nil.
func (s *Service) TodayDiagnostic(ctx context.Context, uid string) (*models.Diagnostic, error) {
	start := timex.StartOfDay(s.now(), s.loc)
	next := start.AddDate(0, 0, 1)
	docs, err := s.store.Query(ctx, docstore.Query{
		Collection: diagnosticsCol(uid),
		OrderBy:    "createdAt",
		Descending: true,
		Limit:      1,
	}.Where("createdAt", docstore.OpGTE, start.UTC()).Where("createdAt", docstore.OpLT, next.UTC()))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	d := diagnosticFromDoc(&docs[0])
	return &d, nil
}

func diagnosticFromDoc(doc *docstore.Document) models.Diagnostic {
	fields := make(map[string]any, len(doc.Data))
	for k, v := range doc.Data {
		if k == "createdAt" || k == "phrase" {
			continue
		}
		fields[k] = v
	}
	return models.Diagnostic{
		ID:        doc.ID,
		CreatedAt: doc.Time("createdAt"),
		Phrase:    doc.String("phrase"),
		Fields:    fields,
	}
}

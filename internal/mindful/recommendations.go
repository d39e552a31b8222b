package mindful

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/timex"
)

const DefaultRecommendationsLimit = 60

// PartialDeleteError reports a bulk delete that stopped after some batches
// were committed.
type PartialDeleteError struct {
	Deleted   int
	Remaining int
	Err       error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("deleted %d recommendations, %d remaining: %v", e.Deleted, e.Remaining, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

func (s *Service) recommendationDoc(uid, date string) (string, error) {
	if _, err := timex.ParseDay(date, s.loc); err != nil {
		return "", fmt.Errorf("%w: recommendation date %q", common.ErrorValidation, date)
	}
	return docstore.Join(recommendationsCol(uid), date), nil
}

// UpsertRecommendationForDate replaces the recommendation of date entirely.
// Fields of a previous version do not survive; nil meta is stored as {}.
func (s *Service) UpsertRecommendationForDate(ctx context.Context, uid, date, text string, meta map[string]any) error {
	p, err := s.recommendationDoc(uid, date)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return s.store.Set(ctx, p, map[string]any{
		"date":      date,
		"text":      strings.TrimSpace(text),
		"meta":      meta,
		"updatedAt": docstore.ServerTimestamp,
		"createdAt": docstore.ServerTimestamp,
	}, false)
}

// MergeRecommendationForDate merges text and meta into the recommendation
// of date, keeping existing meta keys and the original creation time.
func (s *Service) MergeRecommendationForDate(ctx context.Context, uid, date, text string, meta map[string]any) error {
	p, err := s.recommendationDoc(uid, date)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = map[string]any{}
	}
	data := map[string]any{
		"date":      date,
		"text":      strings.TrimSpace(text),
		"meta":      meta,
		"updatedAt": docstore.ServerTimestamp,
	}
	if _, err := s.store.Get(ctx, p); errors.Is(err, common.ErrorNotFound) {
		data["createdAt"] = docstore.ServerTimestamp
	} else if err != nil {
		return err
	}
	return s.store.Set(ctx, p, data, true)
}

// GetRecommendationForDate returns nil, nil when there is none.
func (s *Service) GetRecommendationForDate(ctx context.Context, uid, date string) (*models.Recommendation, error) {
	p, err := s.recommendationDoc(uid, date)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Get(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	r := recommendationFromDoc(doc)
	return &r, nil
}

// ListRecommendations returns history by date, newest first. limit <= 0
// uses DefaultRecommendationsLimit.
func (s *Service) ListRecommendations(ctx context.Context, uid string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationsLimit
	}
	docs, err := s.store.Query(ctx, docstore.Query{
		Collection: recommendationsCol(uid),
		OrderBy:    "date",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Recommendation, 0, len(docs))
	for i := range docs {
		out = append(out, recommendationFromDoc(&docs[i]))
	}
	return out, nil
}

func (s *Service) DeleteRecommendation(ctx context.Context, uid, date string) error {
	p, err := s.recommendationDoc(uid, date)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, p)
}

// DeleteRecommendationsAll removes every recommendation of uid in batches of
// at most docstore.MaxBatchOps. Batches are atomic; the whole operation is
// not. It returns the number of deleted documents.
func (s *Service) DeleteRecommendationsAll(ctx context.Context, uid string) (int, error) {
	docs, err := s.store.Query(ctx, docstore.Query{Collection: recommendationsCol(uid)})
	if err != nil {
		return 0, err
	}
	paths := make([]string, len(docs))
	for i := range docs {
		paths[i] = docs[i].Path
	}

	deleted := 0
	for start := 0; start < len(paths); start += docstore.MaxBatchOps {
		end := min(start+docstore.MaxBatchOps, len(paths))
		if err := s.store.DeleteBatch(ctx, paths[start:end]); err != nil {
			return deleted, &PartialDeleteError{Deleted: deleted, Remaining: len(paths) - deleted, Err: err}
		}
		deleted = end
	}
	if deleted > 0 {
		s.log.Info(ctx, "recommendations deleted", "uid", uid, "count", deleted)
	}
	return deleted, nil
}

func recommendationFromDoc(doc *docstore.Document) models.Recommendation {
	meta := doc.Map("meta")
	if meta == nil {
		meta = map[string]any{}
	}
	return models.Recommendation{
		ID:        doc.ID,
		Date:      doc.String("date"),
		Text:      doc.String("text"),
		Meta:      meta,
		CreatedAt: doc.Time("createdAt"),
		UpdatedAt: doc.Time("updatedAt"),
	}
}

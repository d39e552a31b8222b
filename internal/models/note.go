package models

import "time"

const (
	MaxTitleLen   = 80
	MaxContentLen = 4000
	DefaultTitle  = "Untitled"
)

type Note struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Diagnostic is one self-assessment. Phrase is filled in later by the
// backend, so an empty Phrase means "still processing".
type Diagnostic struct {
	ID        string
	CreatedAt time.Time
	Phrase    string
	Fields    map[string]any
}

// Recommendation is keyed by its Date (YYYY-MM-DD), one per day.
type Recommendation struct {
	ID        string
	Date      string
	Text      string
	Meta      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

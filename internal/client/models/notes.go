package models

import (
	"encoding/json"
	"time"
)

type MeditationNote struct {
	Meta
	Title        string          `json:"title"`
	Passage      string          `json:"passage"`
	Content      string          `json:"content"`
	Applications []ChecklistItem `json:"applications"`
}

// UnmarshalJSON folds the legacy "application"/"applyChecked"/
// "applyCheckedAt" trio into Applications when the note predates the
// checklist.
func (n *MeditationNote) UnmarshalJSON(b []byte) error {
	type plain MeditationNote
	var aux struct {
		plain
		Application    json.RawMessage `json:"application"`
		ApplyChecked   json.RawMessage `json:"applyChecked"`
		ApplyCheckedAt *time.Time      `json:"applyCheckedAt"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*n = MeditationNote(aux.plain)

	if len(n.Applications) > 0 {
		return nil
	}
	lines, err := decodeLegacyLines(aux.Application)
	if err != nil {
		return err
	}
	checked, err := decodeLegacyChecked(aux.ApplyChecked, len(lines))
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		n.Applications = legacyChecklist(lines, checked, aux.ApplyCheckedAt)
	}
	return nil
}

type PrayerNote struct {
	Meta
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Answered       bool       `json:"answered"`
	AnsweredAt     *time.Time `json:"answeredAt"`
	AnsweredDetail string     `json:"answeredDetail"`
}

// SetAnswered flips the answered flag, stamping AnsweredAt only on the
// false to true transition and clearing it on the way back.
func (p *PrayerNote) SetAnswered(answered bool, now time.Time) {
	switch {
	case answered && !p.Answered:
		at := now
		p.AnsweredAt = &at
	case !answered:
		p.AnsweredAt = nil
	}
	p.Answered = answered
}

type GratitudeNote struct {
	Meta
	Items []string `json:"items"`
}

type Diary struct {
	Meta
	Content string `json:"content"`
}

// CustomRecord belongs to a user category and carries whichever fields that
// category declares.
type CustomRecord struct {
	Meta
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Title        string          `json:"title,omitempty"`
	Passage      string          `json:"passage,omitempty"`
	Content      string          `json:"content,omitempty"`
	Applications []ChecklistItem `json:"applications,omitempty"`
	Answered     bool            `json:"answered,omitempty"`
}

// UnmarshalJSON accepts "application" as a string or list with a parallel
// "applyChecked" bool, list or index map.
func (r *CustomRecord) UnmarshalJSON(b []byte) error {
	type plain CustomRecord
	var aux struct {
		plain
		Application  json.RawMessage `json:"application"`
		ApplyChecked json.RawMessage `json:"applyChecked"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = CustomRecord(aux.plain)

	if len(r.Applications) > 0 {
		return nil
	}
	lines, err := decodeLegacyLines(aux.Application)
	if err != nil {
		return err
	}
	checked, err := decodeLegacyChecked(aux.ApplyChecked, len(lines))
	if err != nil {
		return err
	}
	if len(lines) > 0 {
		r.Applications = legacyChecklist(lines, checked, nil)
	}
	return nil
}

// VisibleFields is what a record shows under its category as the category
// stands now. Storage is never re-validated against it. Orphaned records
// (category deleted) show every field that holds data.
func (r *CustomRecord) VisibleFields(c *Category) []Field {
	if c != nil {
		return append([]Field(nil), c.Fields...)
	}
	var out []Field
	if r.Title != "" {
		out = append(out, FieldTitle)
	}
	if r.Passage != "" {
		out = append(out, FieldPassage)
	}
	if r.Content != "" {
		out = append(out, FieldContent)
	}
	if len(r.Applications) > 0 {
		out = append(out, FieldApplication)
	}
	if r.Answered {
		out = append(out, FieldAnswered)
	}
	return out
}

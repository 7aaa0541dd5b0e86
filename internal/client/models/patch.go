package models

import (
	"slices"
	"time"
)

// Patches carry only the fields a caller wants to change; nil means leave
// as is. Apply never touches the envelope, the store does that.

type MeditationPatch struct {
	Title        *string          `json:"title,omitempty"`
	Passage      *string          `json:"passage,omitempty"`
	Content      *string          `json:"content,omitempty"`
	Applications *[]ChecklistItem `json:"applications,omitempty"`
}

func (p MeditationPatch) Apply(n *MeditationNote, now time.Time) {
	setIf(&n.Title, p.Title)
	setIf(&n.Passage, p.Passage)
	setIf(&n.Content, p.Content)
	if p.Applications != nil {
		n.Applications = stampChecklist(n.Applications, *p.Applications, now)
	}
}

type PrayerPatch struct {
	Title          *string `json:"title,omitempty"`
	Content        *string `json:"content,omitempty"`
	Answered       *bool   `json:"answered,omitempty"`
	AnsweredDetail *string `json:"answeredDetail,omitempty"`
}

func (p PrayerPatch) Apply(n *PrayerNote, now time.Time) {
	setIf(&n.Title, p.Title)
	setIf(&n.Content, p.Content)
	setIf(&n.AnsweredDetail, p.AnsweredDetail)
	if p.Answered != nil {
		n.SetAnswered(*p.Answered, now)
	}
}

type GratitudePatch struct {
	Items *[]string `json:"items,omitempty"`
}

func (p GratitudePatch) Apply(n *GratitudeNote, _ time.Time) {
	if p.Items != nil {
		n.Items = slices.Clone(*p.Items)
	}
}

type DiaryPatch struct {
	Content *string `json:"content,omitempty"`
}

func (p DiaryPatch) Apply(n *Diary, _ time.Time) {
	setIf(&n.Content, p.Content)
}

type RecordPatch struct {
	Title        *string          `json:"title,omitempty"`
	Passage      *string          `json:"passage,omitempty"`
	Content      *string          `json:"content,omitempty"`
	Applications *[]ChecklistItem `json:"applications,omitempty"`
	Answered     *bool            `json:"answered,omitempty"`
}

func (p RecordPatch) Apply(r *CustomRecord, now time.Time) {
	setIf(&r.Title, p.Title)
	setIf(&r.Passage, p.Passage)
	setIf(&r.Content, p.Content)
	setIf(&r.Answered, p.Answered)
	if p.Applications != nil {
		r.Applications = stampChecklist(r.Applications, *p.Applications, now)
	}
}

type CategoryPatch struct {
	Name          *string  `json:"name,omitempty"`
	Color         *string  `json:"color,omitempty"`
	Icon          *string  `json:"icon,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Fields        *[]Field `json:"fields,omitempty"`
	IncludeInGoal *bool    `json:"includeInGoal,omitempty"`
	ActiveDays    *[]int   `json:"activeDays,omitempty"`
}

func (p CategoryPatch) Apply(c *Category, _ time.Time) {
	setIf(&c.Name, p.Name)
	setIf(&c.Color, p.Color)
	setIf(&c.Icon, p.Icon)
	setIf(&c.Description, p.Description)
	setIf(&c.IncludeInGoal, p.IncludeInGoal)
	if p.Fields != nil {
		c.Fields = slices.Clone(*p.Fields)
	}
	if p.ActiveDays != nil {
		c.ActiveDays = slices.Clone(*p.ActiveDays)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// stampChecklist sets CheckedAt on items that became checked, keeps the
// previous stamp on items that stayed checked and clears it on unchecked
// ones. Items are matched by position.
func stampChecklist(old, next []ChecklistItem, now time.Time) []ChecklistItem {
	out := slices.Clone(next)
	for i := range out {
		switch {
		case !out[i].Checked:
			out[i].CheckedAt = nil
		case i < len(old) && old[i].Checked && old[i].CheckedAt != nil:
			out[i].CheckedAt = old[i].CheckedAt
		case out[i].CheckedAt == nil:
			at := now
			out[i].CheckedAt = &at
		}
	}
	return out
}

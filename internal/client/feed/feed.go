// Package feed answers read-only questions across kinds: the unified
// timeline, per-day lookups, today's goal, the streak and search. It holds
// no state of its own and reads the stores on every call.
package feed

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// Entry is the common shape of a record in the timeline.
type Entry struct {
	ID         string      `json:"id"`
	Type       models.Kind `json:"type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Date       string      `json:"date"`
	CategoryID string      `json:"categoryId,omitempty"`

	// Fields are the fields a custom record shows under its category.
	Fields []models.Field `json:"fields,omitempty"`
}

type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Sources are the stores the feed reads. Categories must list the
// built-ins too.
type Sources struct {
	Meditations Lister[models.MeditationNote]
	Prayers     Lister[models.PrayerNote]
	Gratitudes  Lister[models.GratitudeNote]
	Diaries     Lister[models.Diary]
	Records     Lister[models.CustomRecord]
	Categories  Lister[models.Category]
}

type Feed struct {
	src   Sources
	clock timex.Clock
	loc   *time.Location
}

// New builds a feed that computes calendar days in loc. A nil loc means
// time.Local.
func New(src Sources, clock timex.Clock, loc *time.Location) *Feed {
	if loc == nil {
		loc = time.Local
	}
	return &Feed{src: src, clock: clock, loc: loc}
}

// Today is the current local calendar day.
func (f *Feed) Today() string {
	return timex.DayOf(f.clock.Now(), f.loc)
}

// ListAllRecords merges the four core kinds, newest first.
func (f *Feed) ListAllRecords(ctx context.Context) ([]Entry, error) {
	var out []Entry

	meds, err := f.src.Meditations.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range meds {
		out = append(out, f.entry(n.Meta, models.KindMeditation, n.Title, n.Content))
	}

	prayers, err := f.src.Prayers.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range prayers {
		out = append(out, f.entry(n.Meta, models.KindPrayer, n.Title, n.Content))
	}

	grats, err := f.src.Gratitudes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range grats {
		out = append(out, f.entry(n.Meta, models.KindGratitude, "", strings.Join(n.Items, "\n")))
	}

	diaries, err := f.src.Diaries.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range diaries {
		out = append(out, f.entry(n.Meta, models.KindDiary, "", n.Content))
	}

	sortNewestFirst(out)
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

// ListCustomRecords maps custom records to entries, newest first. Only the
// fields the record's category shows make it into the entry; a record whose
// category is gone shows whatever it holds.
func (f *Feed) ListCustomRecords(ctx context.Context) ([]Entry, error) {
	recs, err := f.src.Records.List(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := f.src.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}

	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		fields := r.VisibleFields(byID[r.CategoryID])

		var title string
		var parts []string
		for _, fl := range fields {
			switch fl {
			case models.FieldTitle:
				title = r.Title
			case models.FieldPassage:
				parts = append(parts, r.Passage)
			case models.FieldContent:
				parts = append(parts, r.Content)
			case models.FieldApplication:
				parts = append(parts, models.ChecklistText(r.Applications))
			}
		}
		if title == "" {
			title = r.CategoryName
		}

		e := f.entry(r.Meta, models.KindRecord, title, strings.Join(slices.DeleteFunc(parts, func(p string) bool { return p == "" }), "\n"))
		e.CategoryID = r.CategoryID
		e.Fields = fields
		out = append(out, e)
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *Feed) entry(m models.Meta, k models.Kind, title, content string) Entry {
	if title == "" {
		title = k.Label()
	}
	return Entry{
		ID:        m.ID,
		Type:      k,
		Title:     title,
		Content:   content,
		CreatedAt: m.CreatedAt,
		Date:      timex.DayOf(m.CreatedAt, f.loc),
	}
}

func sortNewestFirst(es []Entry) {
	slices.SortStableFunc(es, func(a, b Entry) int { return b.CreatedAt.Compare(a.CreatedAt) })
}

// RecordsOnDate returns the core entries dated day (YYYY-MM-DD).
func (f *Feed) RecordsOnDate(ctx context.Context, day string) ([]Entry, error) {
	all, err := f.ListAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	return filter(all, func(e Entry) bool { return e.Date == day }), nil
}

// HasRecordOnDate reports whether day has a core entry, of kind k when k
// is not empty.
func (f *Feed) HasRecordOnDate(ctx context.Context, day string, k models.Kind) (bool, error) {
	on, err := f.RecordsOnDate(ctx, day)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(on, func(e Entry) bool { return k == "" || e.Type == k }), nil
}

// SearchRecords matches query against title and content without regard to
// case, after narrowing to kind k when k is not empty.
func (f *Feed) SearchRecords(ctx context.Context, query string, k models.Kind) ([]Entry, error) {
	all, err := f.ListAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return filter(all, func(e Entry) bool {
		if k != "" && e.Type != k {
			return false
		}
		return strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Content), q)
	}), nil
}

func filter(es []Entry, keep func(Entry) bool) []Entry {
	out := []Entry{}
	for _, e := range es {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

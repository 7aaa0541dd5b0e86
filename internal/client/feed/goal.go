package feed

import (
	"context"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/timex"
)

// Goal is today's progress: categories due today and how many of them
// already have a record.
type Goal struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TodayGoalCount counts categories that are in the goal and active on
// today's weekday. A built-in is completed by any record of its kind
// today, a user category by a custom record filed under it.
func (f *Feed) TodayGoalCount(ctx context.Context) (Goal, error) {
	now := f.clock.Now().In(f.loc)
	today := timex.DayOf(now, f.loc)

	cats, err := f.src.Categories.List(ctx)
	if err != nil {
		return Goal{}, err
	}
	core, err := f.RecordsOnDate(ctx, today)
	if err != nil {
		return Goal{}, err
	}
	custom, err := f.ListCustomRecords(ctx)
	if err != nil {
		return Goal{}, err
	}

	doneKinds := make(map[models.Kind]bool)
	for _, e := range core {
		doneKinds[e.Type] = true
	}
	doneCats := make(map[string]bool)
	for _, e := range custom {
		if e.Date == today {
			doneCats[e.CategoryID] = true
		}
	}

	var g Goal
	for _, c := range cats {
		if !c.IncludeInGoal || !c.ActiveOn(now.Weekday()) {
			continue
		}
		g.Total++
		if k, ok := models.BuiltinKind(c.ID); ok {
			if doneKinds[k] {
				g.Completed++
			}
			continue
		}
		if doneCats[c.ID] {
			g.Completed++
		}
	}
	return g, nil
}

// StreakDays counts consecutive days with at least one record, core or
// custom, walking back from today. An empty today means 0.
func (f *Feed) StreakDays(ctx context.Context) (int, error) {
	core, err := f.ListAllRecords(ctx)
	if err != nil {
		return 0, err
	}
	custom, err := f.ListCustomRecords(ctx)
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool, len(core)+len(custom))
	for _, e := range core {
		days[e.Date] = true
	}
	for _, e := range custom {
		days[e.Date] = true
	}

	streak := 0
	day := f.Today()
	for days[day] {
		streak++
		if day, err = timex.PrevDay(day); err != nil {
			return 0, err
		}
	}
	return streak, nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/timex"
)

func (s *Shell) AddMeditation(ctx context.Context) error {
	title, err := s.ask("Title")
	if err != nil {
		return err
	}
	passage, err := s.ask("Passage")
	if err != nil {
		return err
	}
	content, err := getMultiline(s.reader, "Meditation", s.out)
	if err != nil {
		return err
	}
	apps, err := getLines(s.reader, "Applications, one per line", s.out)
	if err != nil {
		return err
	}

	n, err := s.app.Meditations.Create(ctx, models.MeditationNote{
		Title:        title,
		Passage:      passage,
		Content:      content,
		Applications: models.NewChecklist(apps...),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s\n", shortID(n.ID))
	return nil
}

func (s *Shell) AddPrayer(ctx context.Context) error {
	title, err := s.ask("Prayer topic")
	if err != nil {
		return err
	}
	content, err := getMultiline(s.reader, "Prayer", s.out)
	if err != nil {
		return err
	}

	p, err := s.app.Prayers.Create(ctx, models.PrayerNote{Title: title, Content: content})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s\n", shortID(p.ID))
	return nil
}

// AnswerPrayer marks a prayer answered; it then sinks below the open ones.
func (s *Shell) AnswerPrayer(ctx context.Context, id string) error {
	prayers, err := s.app.Prayers.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(prayers))
	for i, p := range prayers {
		ids[i] = p.ID
	}
	full, err := expandID(id, ids)
	if err != nil {
		return err
	}

	detail, err := s.ask("How was it answered? (optional)")
	if err != nil {
		return err
	}
	answered := true
	p, err := s.app.Prayers.Update(ctx, full, models.PrayerPatch{Answered: &answered, AnsweredDetail: &detail})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Answered: %s\n", p.Title)
	return nil
}

func (s *Shell) AddGratitude(ctx context.Context) error {
	items, err := getLines(s.reader, "What are you thankful for? One per line", s.out)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Nothing saved")
		return nil
	}

	g, err := s.app.Gratitudes.Create(ctx, models.GratitudeNote{Items: items})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s\n", shortID(g.ID))
	return nil
}

func (s *Shell) AddDiary(ctx context.Context) error {
	content, err := getMultiline(s.reader, "Today's diary", s.out)
	if err != nil {
		return err
	}

	d, err := s.app.Diaries.Create(ctx, models.Diary{Content: content})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s\n", shortID(d.ID))
	return nil
}

// AddRecord files a record under a user category, asking only for the
// fields that category uses.
func (s *Shell) AddRecord(ctx context.Context, categoryID string) error {
	if models.IsBuiltinCategory(categoryID) {
		return fmt.Errorf("%w: %s is built in, use its own command", common.ErrorValidation, categoryID)
	}
	custom, err := s.app.Categories.Custom(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(custom))
	for i, c := range custom {
		ids[i] = c.ID
	}
	full, err := expandID(categoryID, ids)
	if err != nil {
		return err
	}
	cat, err := s.app.Categories.Get(ctx, full)
	if err != nil {
		return err
	}

	r := models.CustomRecord{CategoryID: cat.ID, CategoryName: cat.Name}
	for _, f := range r.VisibleFields(&cat) {
		switch f {
		case models.FieldTitle:
			r.Title, err = s.ask("Title")
		case models.FieldPassage:
			r.Passage, err = s.ask("Passage")
		case models.FieldContent:
			r.Content, err = getMultiline(s.reader, "Content", s.out)
		case models.FieldApplication:
			var lines []string
			lines, err = getLines(s.reader, "Applications, one per line", s.out)
			r.Applications = models.NewChecklist(lines...)
		case models.FieldAnswered:
			var answer string
			answer, err = s.ask("Answered? (y/N)")
			r.Answered = strings.EqualFold(answer, "y")
		}
		if err != nil {
			return err
		}
	}

	out, err := s.app.Records.Create(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s under %s\n", shortID(out.ID), cat.Name)
	return nil
}

// Today prints today's entries and goal progress.
func (s *Shell) Today(ctx context.Context) error {
	if err := s.List(ctx, ""); err != nil {
		return err
	}
	g, err := s.app.Feed.TodayGoalCount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Goal: %d/%d\n", g.Completed, g.Total)
	return nil
}

// List prints the entries of day, today when day is empty.
func (s *Shell) List(ctx context.Context, day string) error {
	if day == "" {
		day = s.app.Feed.Today()
	}
	if _, err := timex.ParseDay(day); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrorValidation)
	}

	es, err := s.app.Feed.RecordsOnDate(ctx, day)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, day)
	s.printEntries(es)
	return nil
}

func (s *Shell) Search(ctx context.Context, query string) error {
	es, err := s.app.Feed.SearchRecords(ctx, query, "")
	if err != nil {
		return err
	}
	s.printEntries(es)
	return nil
}

func (s *Shell) Streak(ctx context.Context) error {
	n, err := s.app.Feed.StreakDays(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d day streak\n", n)
	return nil
}

func (s *Shell) Categories(ctx context.Context) error {
	cats, err := s.app.Categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		mark := " "
		if c.IncludeInGoal {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %-10s %s\n", mark, shortID(c.ID), c.Name)
	}
	return nil
}

func (s *Shell) AddCategory(ctx context.Context) error {
	name, err := s.ask("Category name")
	if err != nil {
		return err
	}
	fields, err := s.ask("Fields: title, passage, content, application, answered (blank for title, content)")
	if err != nil {
		return err
	}
	goal, err := s.ask("Count toward the daily goal? (Y/n)")
	if err != nil {
		return err
	}

	c, err := s.app.Categories.Create(ctx, models.Category{
		Name:          name,
		Fields:        parseFields(fields),
		IncludeInGoal: !strings.EqualFold(goal, "n"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Created %s (%s)\n", c.Name, c.ID)
	return nil
}

func (s *Shell) Cards(ctx context.Context) error {
	cards, err := s.app.Cards.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		fmt.Fprintln(s.out, "No cards yet.")
		return nil
	}
	for _, c := range cards {
		fmt.Fprintf(s.out, "%s  %-5s %s  %s\n", shortID(c.ID), c.Ratio, c.Ref, c.Text)
	}
	return nil
}

// parseFields splits a comma or space separated field list. Unknown names
// are left for the category validation to reject.
func parseFields(s string) []models.Field {
	var out []models.Field
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, models.Field(strings.ToLower(f)))
	}
	return out
}

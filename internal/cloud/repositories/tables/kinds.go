package tables

import (
	"database/sql"

	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
)

var Meditations = Mapping[models.MeditationNote]{
	Name:    "meditations",
	Columns: []string{"title", "passage", "content", "applications"},
	Values: func(v *models.MeditationNote) ([]any, error) {
		apps, err := jsonText(nonNil(v.Applications))
		if err != nil {
			return nil, err
		}
		return []any{v.Title, v.Passage, v.Content, apps}, nil
	},
	Dest: func(v *models.MeditationNote) []any {
		return []any{&v.Title, &v.Passage, &v.Content, jsonInto(&v.Applications)}
	},
}

var Prayers = Mapping[models.PrayerNote]{
	Name:    "prayers",
	Columns: []string{"title", "content", "answered", "answered_at", "answered_detail"},
	Values: func(v *models.PrayerNote) ([]any, error) {
		var at any
		if v.AnsweredAt != nil {
			at = *v.AnsweredAt
		}
		return []any{v.Title, v.Content, v.Answered, at, v.AnsweredDetail}, nil
	},
	Dest: func(v *models.PrayerNote) []any {
		return []any{&v.Title, &v.Content, &v.Answered, &v.AnsweredAt, &v.AnsweredDetail}
	},
}

var Gratitudes = Mapping[models.GratitudeNote]{
	Name:    "gratitudes",
	Columns: []string{"items"},
	Values: func(v *models.GratitudeNote) ([]any, error) {
		items, err := jsonText(nonNil(v.Items))
		if err != nil {
			return nil, err
		}
		return []any{items}, nil
	},
	Dest: func(v *models.GratitudeNote) []any {
		return []any{jsonInto(&v.Items)}
	},
}

var Diaries = Mapping[models.Diary]{
	Name:    "diaries",
	Columns: []string{"content"},
	Values: func(v *models.Diary) ([]any, error) {
		return []any{v.Content}, nil
	},
	Dest: func(v *models.Diary) []any {
		return []any{&v.Content}
	},
}

var Records = Mapping[models.CustomRecord]{
	Name:    "custom_records",
	Columns: []string{"category_id", "category_name", "title", "passage", "content", "applications", "answered"},
	Values: func(v *models.CustomRecord) ([]any, error) {
		apps, err := jsonText(nonNil(v.Applications))
		if err != nil {
			return nil, err
		}
		return []any{v.CategoryID, v.CategoryName, v.Title, v.Passage, v.Content, apps, v.Answered}, nil
	},
	Dest: func(v *models.CustomRecord) []any {
		return []any{&v.CategoryID, &v.CategoryName, &v.Title, &v.Passage, &v.Content, jsonInto(&v.Applications), &v.Answered}
	},
}

var Categories = Mapping[models.Category]{
	Name:    "categories",
	Columns: []string{"name", "color", "icon", "description", "fields", "include_in_goal", "active_days"},
	Values: func(v *models.Category) ([]any, error) {
		fields, err := jsonText(nonNil(v.Fields))
		if err != nil {
			return nil, err
		}
		days, err := jsonText(nonNil(v.ActiveDays))
		if err != nil {
			return nil, err
		}
		return []any{v.Name, v.Color, v.Icon, v.Description, fields, v.IncludeInGoal, days}, nil
	},
	Dest: func(v *models.Category) []any {
		return []any{&v.Name, &v.Color, &v.Icon, &v.Description, jsonInto(&v.Fields), &v.IncludeInGoal, jsonInto(&v.ActiveDays)}
	},
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

// All builds the remote tables of every synced kind.
func All(db *sql.DB) client.Tables {
	return client.Tables{
		Meditations: New[models.MeditationNote](db, Meditations),
		Prayers:     New[models.PrayerNote](db, Prayers),
		Gratitudes:  New[models.GratitudeNote](db, Gratitudes),
		Diaries:     New[models.Diary](db, Diaries),
		Records:     New[models.CustomRecord](db, Records),
		Categories:  New[models.Category](db, Categories),
	}
}

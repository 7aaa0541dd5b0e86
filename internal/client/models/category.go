package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dailygrace/dailygrace/internal/common"
)

// Field is a record attribute a category can expose.
type Field string

const (
	FieldTitle       Field = "title"
	FieldPassage     Field = "passage"
	FieldContent     Field = "content"
	FieldApplication Field = "application"
	FieldAnswered    Field = "answered"
)

var knownFields = []Field{FieldTitle, FieldPassage, FieldContent, FieldApplication, FieldAnswered}

// AllWeekdays is Sunday (0) through Saturday (6).
var AllWeekdays = []int{0, 1, 2, 3, 4, 5, 6}

// DefaultFields is what a user category records when none are chosen.
var DefaultFields = []Field{FieldTitle, FieldContent}

type Category struct {
	Meta
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Icon          string  `json:"icon"`
	Description   string  `json:"description"`
	Fields        []Field `json:"fields"`
	IncludeInGoal bool    `json:"includeInGoal"`
	ActiveDays    []int   `json:"activeDays"`
}

// Built-in category ids. They double as the kind each one counts.
const (
	BuiltinQT        = "qt"
	BuiltinPrayer    = "prayer"
	BuiltinGratitude = "gratitude"
	BuiltinDiary     = "diary"
)

var builtinKinds = map[string]Kind{
	BuiltinQT:        KindMeditation,
	BuiltinPrayer:    KindPrayer,
	BuiltinGratitude: KindGratitude,
	BuiltinDiary:     KindDiary,
}

// Builtins returns fresh copies of the four fixed categories in display
// order.
func Builtins() []Category {
	days := func() []int { return slices.Clone(AllWeekdays) }
	return []Category{
		{Meta: Meta{ID: BuiltinQT}, Name: "QT", Color: "#7C9A6D", Icon: "book-open",
			Fields:        []Field{FieldTitle, FieldPassage, FieldContent, FieldApplication},
			IncludeInGoal: true, ActiveDays: days(), Description: "말씀 묵상"},
		{Meta: Meta{ID: BuiltinPrayer}, Name: "기도", Color: "#6D8BB5", Icon: "hands",
			Fields:        []Field{FieldTitle, FieldContent, FieldAnswered},
			IncludeInGoal: true, ActiveDays: days(), Description: "기도 제목"},
		{Meta: Meta{ID: BuiltinGratitude}, Name: "감사", Color: "#E0A458", Icon: "heart",
			Fields:        []Field{FieldContent},
			IncludeInGoal: true, ActiveDays: days(), Description: "감사 일기"},
		{Meta: Meta{ID: BuiltinDiary}, Name: "일기", Color: "#A88BB5", Icon: "pen",
			Fields:        []Field{FieldContent},
			IncludeInGoal: true, ActiveDays: days(), Description: "하루 일기"},
	}
}

func IsBuiltinCategory(id string) bool {
	_, ok := builtinKinds[id]
	return ok
}

// BuiltinKind maps a built-in category id to the record kind it counts.
func BuiltinKind(id string) (Kind, bool) {
	k, ok := builtinKinds[id]
	return k, ok
}

func (c *Category) IsBuiltin() bool { return IsBuiltinCategory(c.ID) }

// ActiveOn reports whether the category is due on wd. A category saved
// without active days is due every day.
func (c *Category) ActiveOn(wd time.Weekday) bool {
	if len(c.ActiveDays) == 0 {
		return true
	}
	return slices.Contains(c.ActiveDays, int(wd))
}

// SameName compares names case-insensitively, ignoring surrounding space.
func (c *Category) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}

// Normalize trims the name, defaults active days and sorts/dedupes them.
func (c *Category) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.ActiveDays == nil {
		c.ActiveDays = slices.Clone(AllWeekdays)
	}
	if len(c.Fields) == 0 {
		c.Fields = slices.Clone(DefaultFields)
	}
	slices.Sort(c.ActiveDays)
	c.ActiveDays = slices.Compact(c.ActiveDays)
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", common.ErrorValidation)
	}
	for _, d := range c.ActiveDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: active day %d out of range", common.ErrorValidation, d)
		}
	}
	for _, f := range c.Fields {
		if !slices.Contains(knownFields, f) {
			return fmt.Errorf("%w: unknown field %q", common.ErrorValidation, f)
		}
	}
	return nil
}

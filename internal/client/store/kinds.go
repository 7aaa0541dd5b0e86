package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/timex"
)

type (
	Meditations = Store[models.MeditationNote, *models.MeditationNote]
	Prayers     = Store[models.PrayerNote, *models.PrayerNote]
	Gratitudes  = Store[models.GratitudeNote, *models.GratitudeNote]
	Diaries     = Store[models.Diary, *models.Diary]
	Records     = Store[models.CustomRecord, *models.CustomRecord]
)

func NewMeditations(db *sql.DB, clock timex.Clock, m Mirror[models.MeditationNote]) *Meditations {
	return New[models.MeditationNote](models.KindMeditation, db, clock, m, Hooks[models.MeditationNote]{})
}

// NewPrayers orders unanswered prayers first (newest created first), then
// answered ones by most recent answer.
func NewPrayers(db *sql.DB, clock timex.Clock, m Mirror[models.PrayerNote]) *Prayers {
	return New[models.PrayerNote](models.KindPrayer, db, clock, m, Hooks[models.PrayerNote]{
		Compare: comparePrayers,
		OnCreate: func(p *models.PrayerNote, now time.Time) {
			if p.Answered && p.AnsweredAt == nil {
				at := now
				p.AnsweredAt = &at
			}
			if !p.Answered {
				p.AnsweredAt = nil
			}
		},
	})
}

func comparePrayers(a, b models.PrayerNote) int {
	if a.Answered != b.Answered {
		if !a.Answered {
			return -1
		}
		return 1
	}
	if !a.Answered {
		return b.CreatedAt.Compare(a.CreatedAt)
	}
	return answeredAt(b).Compare(answeredAt(a))
}

func answeredAt(p models.PrayerNote) time.Time {
	if p.AnsweredAt == nil {
		return time.Time{}
	}
	return *p.AnsweredAt
}

func NewGratitudes(db *sql.DB, clock timex.Clock, m Mirror[models.GratitudeNote]) *Gratitudes {
	return New[models.GratitudeNote](models.KindGratitude, db, clock, m, Hooks[models.GratitudeNote]{})
}

func NewDiaries(db *sql.DB, clock timex.Clock, m Mirror[models.Diary]) *Diaries {
	return New[models.Diary](models.KindDiary, db, clock, m, Hooks[models.Diary]{})
}

// NewRecords requires every custom record to name its category. The
// category itself is not checked: records outlive deleted categories.
func NewRecords(db *sql.DB, clock timex.Clock, m Mirror[models.CustomRecord]) *Records {
	return New[models.CustomRecord](models.KindRecord, db, clock, m, Hooks[models.CustomRecord]{
		Validate: func(_ []models.CustomRecord, r *models.CustomRecord) error {
			if r.CategoryID == "" {
				return fmt.Errorf("%w: record needs a category", common.ErrorValidation)
			}
			return nil
		},
	})
}

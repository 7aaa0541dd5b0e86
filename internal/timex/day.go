package timex

import "time"

// DateLayout is the YYYY-MM-DD form used for calendar days.
const DateLayout = "2006-01-02"

// DayOf returns the calendar day t falls on in loc, formatted as
// YYYY-MM-DD. A record made at 23:50 local time stays on that local day
// even when UTC has already rolled over.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// PrevDay returns the YYYY-MM-DD string of the day before day. Calendar
// arithmetic avoids DST-length days.
func PrevDay(day string) (string, error) {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(DateLayout), nil
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DateLayout, day)
}

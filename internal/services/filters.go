package services

import (
	"strings"
	"time"

	"github.com/sjperalta/bufete-api/internal/models"
)

// DateLayout is the calendar-day format accepted by date filters
const DateLayout = "2006-01-02"

// parseEnum validates a raw enum filter. Empty and "all" mean no filter.
func parseEnum[E ~string](field, raw string, valid func(E) bool) (*E, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == models.FilterAll {
		return nil, nil
	}
	v := E(raw)
	if !valid(v) {
		return nil, &InvalidFilterValueError{Field: field, Value: raw}
	}
	return &v, nil
}

// DateRange is an inclusive calendar-day range. Start is midnight of the first
// day and End the last instant of the last day, both in the filter location.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

func parseDateRange(startRaw, endRaw string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	var r DateRange

	if s := strings.TrimSpace(startRaw); s != "" {
		day, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, &InvalidFilterValueError{Field: "start_date", Value: startRaw}
		}
		r.Start = &day
	}

	if s := strings.TrimSpace(endRaw); s != "" {
		day, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return DateRange{}, &InvalidFilterValueError{Field: "end_date", Value: endRaw}
		}
		end := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
		r.End = &end
	}

	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return DateRange{}, &InvalidFilterValueError{Field: "date_range", Value: startRaw + ".." + endRaw}
	}
	return r, nil
}

// Active reports whether either bound is set
func (r DateRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// normalizeText prepares a free-text query for case-insensitive matching
func normalizeText(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// containsText reports whether any field contains needle. needle must already be
// normalized; matching lower-cases each field with strings.ToLower only.
func containsText(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sameDay reports whether a and b fall on the same calendar day in loc
func sameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

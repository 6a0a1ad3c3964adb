package domain

import "time"

// DisplayDateLayout is the date format used in user-facing rule messages.
const DisplayDateLayout = "01/02/2006"

// Env carries the acting user, company and clock reading into rules that need them.
type Env struct {
	UserID    string
	CompanyID string
	Now       time.Time
}

// Today returns the calendar date of Env.Now.
func (e Env) Today() time.Time {
	return DateOf(e.Now)
}

// Location is the zone calendar days are read in: the one Env.Now carries,
// UTC when Now is unset.
func (e Env) Location() *time.Location {
	if e.Now.IsZero() {
		return time.UTC
	}
	return e.Now.Location()
}

// LocalDate returns the calendar day of the instant t as seen in Env.Location.
// Use it for timestamps; stored dates already are calendar days.
func (e Env) LocalDate(t time.Time) time.Time {
	return DateOf(t.In(e.Location()))
}

// DateOf truncates t to midnight of its calendar day, in UTC, so dates from
// different zones compare by their wall-clock day only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to the date-truncated value of t, or nil.
func DatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

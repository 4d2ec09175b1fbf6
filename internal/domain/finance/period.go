package finance

import "time"

// Period describes how time is cut into consecutive buckets.
// Bucket boundaries follow the location of the reference time.
type Period struct {
	Name  string
	start func(t time.Time) time.Time
	next  func(start time.Time, n int) time.Time
}

var (
	// Day buckets by calendar day
	Day = Period{
		Name:  "day",
		start: StartOfDay,
		next:  func(s time.Time, n int) time.Time { return s.AddDate(0, 0, n) },
	}

	// Week buckets by calendar week starting Monday
	Week = Period{
		Name: "week",
		start: func(t time.Time) time.Time {
			d := StartOfDay(t)
			offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
			return d.AddDate(0, 0, -offset)
		},
		next: func(s time.Time, n int) time.Time { return s.AddDate(0, 0, 7*n) },
	}

	// Month buckets by calendar month
	Month = Period{
		Name: "month",
		start: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		},
		next: func(s time.Time, n int) time.Time { return s.AddDate(0, n, 0) },
	}
)

// Bounds returns the [start, end) range of the bucket containing t
func (p Period) Bounds(t time.Time) (time.Time, time.Time) {
	s := p.start(t)
	return s, p.next(s, 1)
}

// PriorBounds returns the [start, end) range of the bucket before the one containing t
func (p Period) PriorBounds(t time.Time) (time.Time, time.Time) {
	s := p.start(t)
	return p.next(s, -1), s
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

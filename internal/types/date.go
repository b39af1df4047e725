package types

import "time"

// NextValidDate returns the date the next recurring collection should be
// placed at.
//
// When lastCollection falls in the same calendar week as from (weeks start on
// Sunday) the result is the Monday after lastCollection, so two collections
// never share an operational week. Otherwise the result is the day after
// from, pushed to the following Monday when it lands on a weekend.
func NextValidDate(from time.Time, lastCollection *time.Time) time.Time {
	if lastCollection != nil && IsSameWeek(from, *lastCollection) {
		return NextMonday(*lastCollection)
	}

	next := from.AddDate(0, 0, 1)
	if IsWeekend(next) {
		return NextMonday(next)
	}
	return next
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// NextMonday returns the first Monday strictly after t, keeping the time of day.
func NextMonday(t time.Time) time.Time {
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}

// IsSameWeek reports whether a and b fall in the same Sunday-based week,
// evaluated in a's location.
func IsSameWeek(a, b time.Time) bool {
	return StartOfWeek(a).Equal(StartOfWeek(b.In(a.Location())))
}

// StartOfWeek returns midnight of the Sunday starting t's week.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(t.Weekday()))
}

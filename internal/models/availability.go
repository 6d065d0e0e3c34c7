package models

import (
	"sort"
	"time"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

// Contains reports whether d falls inside the range. Both bounds count.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

func (r DateRange) Overlaps(o DateRange) bool {
	return !r.From.After(o.To) && !o.From.After(r.To)
}

// Days is the inclusive number of days in the range.
func (r DateRange) Days() int {
	return r.From.DaysUntil(r.To) + 1
}

// AvailabilityBlocker is anything that takes dates of a space off the calendar.
// Reservations block only while committed; blackouts always do.
type AvailabilityBlocker interface {
	BlockedRange() (DateRange, bool)
}

// Availability is the set of committed ranges for one space.
type Availability struct {
	Committed []DateRange `json:"committed"`
}

func NewAvailability(blockers ...AvailabilityBlocker) Availability {
	a := Availability{Committed: make([]DateRange, 0, len(blockers))}
	for _, b := range blockers {
		a.Add(b)
	}
	return a
}

// BuildAvailability collects the committed ranges of bookings and blackouts.
func BuildAvailability(bookings []*Booking, blackouts []*Blackout) Availability {
	a := Availability{Committed: make([]DateRange, 0, len(bookings)+len(blackouts))}
	for _, b := range bookings {
		if b != nil {
			a.Add(b)
		}
	}
	for _, b := range blackouts {
		if b != nil {
			a.Add(b)
		}
	}
	return a
}

func (a *Availability) Add(b AvailabilityBlocker) {
	if b == nil {
		return
	}
	if r, ok := b.BlockedRange(); ok && r.Valid() {
		a.Committed = append(a.Committed, r)
	}
}

// IsDateUnavailable returns true if d is inside any committed range.
func (a Availability) IsDateUnavailable(d Date) bool {
	for _, r := range a.Committed {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

// Conflict returns the first committed range that overlaps r.
func (a Availability) Conflict(r DateRange) (DateRange, bool) {
	for _, c := range a.Committed {
		if c.Overlaps(r) {
			return c, true
		}
	}
	return DateRange{}, false
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarSnapshot returns a map[dayOfMonth]unavailable for the requested month.
func (a Availability) CalendarSnapshot(year int, month time.Month) map[int]bool {
	days := daysIn(month, year)
	out := make(map[int]bool, days)
	for day := 1; day <= days; day++ {
		out[day] = a.IsDateUnavailable(NewDate(year, month, day))
	}
	return out
}

// DisabledDates lists, in ascending order, every unavailable day in window.
func (a Availability) DisabledDates(window DateRange) []Date {
	out := []Date{}
	if !window.Valid() {
		return out
	}
	for d := window.From; !d.After(window.To); d = d.AddDays(1) {
		if a.IsDateUnavailable(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

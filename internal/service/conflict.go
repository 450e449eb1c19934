package service

import (
	"time"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// session is one concrete meeting of a class, as a half-open interval.
type session struct {
	start time.Time
	end   time.Time
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sessions expands a weekly class into its meetings on dates within both the class's own
// date range and [from, to]. Clock time is taken from StartTime's wall clock.
func sessions(c models.Class, from, to time.Time) []session {
	first, last := dateOnly(c.StartDate), dateOnly(c.EndDate)
	if f := dateOnly(from); f.After(first) {
		first = f
	}
	if l := dateOnly(to); l.Before(last) {
		last = l
	}
	if first.After(last) {
		return nil
	}

	clock := c.StartTime
	offset := (int(clock.Weekday()) - int(first.Weekday()) + 7) % 7
	var out []session
	for day := first.AddDate(0, 0, offset); !day.After(last); day = day.AddDate(0, 0, 7) {
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
		out = append(out, session{start: start, end: start.Add(c.Duration())})
	}
	return out
}

// classesOverlap reports whether any meeting of a overlaps any meeting of b. Each range is
// widened by a day on either side of the other so sessions running past midnight still
// count against a neighbour that starts the next day.
func classesOverlap(a, b models.Class) bool {
	as := sessions(a, b.StartDate.AddDate(0, 0, -1), b.EndDate.AddDate(0, 0, 1))
	if len(as) == 0 {
		return false
	}
	bs := sessions(b, a.StartDate.AddDate(0, 0, -1), a.EndDate.AddDate(0, 0, 1))

	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		if as[i].start.Before(bs[j].end) && bs[j].start.Before(as[i].end) {
			return true
		}
		if as[i].end.Before(bs[j].end) {
			i++
		} else {
			j++
		}
	}
	return false
}

// findConflict returns the first existing class that overlaps candidate, or nil.
func findConflict(candidate models.Class, existing []models.Class) *models.Class {
	for i := range existing {
		if existing[i].ID != "" && existing[i].ID == candidate.ID {
			continue
		}
		if classesOverlap(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}

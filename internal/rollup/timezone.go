package rollup

import "time"

var santiagoLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		// Fallback to the Chilean standard offset if tzdata is unavailable
		loc = time.FixedZone("CLT", -4*60*60)
	}
	santiagoLocation = loc
}

// Location returns the store civil timezone. All bucketing is done in this
// zone, never in the host timezone.
func Location() *time.Location {
	return santiagoLocation
}

// window is a half-open civil-time interval [From, To).
type window struct {
	From time.Time
	To   time.Time
}

func (w window) contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// startOfDay truncates an instant to midnight of its Santiago civil day.
func startOfDay(t time.Time) time.Time {
	t = t.In(santiagoLocation)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, santiagoLocation)
}

// bucketWindows derives the four reporting windows from the reference
// instant. Every window ends at the midnight following the reference day, so
// a sale stamped 23:59:59.999 on the reference day is still inside it.
func bucketWindows(ref time.Time) (today, yesterday, last7, month window) {
	dayStart := startOfDay(ref)
	dayEnd := dayStart.AddDate(0, 0, 1)

	today = window{From: dayStart, To: dayEnd}
	yesterday = window{From: dayStart.AddDate(0, 0, -1), To: dayStart}
	last7 = window{From: dayStart.AddDate(0, 0, -6), To: dayEnd}

	r := ref.In(santiagoLocation)
	monthStart := time.Date(r.Year(), r.Month(), 1, 0, 0, 0, 0, santiagoLocation)
	month = window{From: monthStart, To: dayEnd}
	return today, yesterday, last7, month
}

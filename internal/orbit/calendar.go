package orbit

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// CalendarDate returns the UTC date reached day days after the date of epoch.
// The lookup is done at noon so that day boundaries never straddle the
// Julian day rollover.
func CalendarDate(epoch time.Time, day int64) time.Time {
	e := epoch.UTC()
	noon := time.Date(e.Year(), e.Month(), e.Day(), 12, 0, 0, 0, time.UTC)
	y, m, d := julian.JDToCalendar(julian.TimeToJD(noon) + float64(day))
	return time.Date(y, time.Month(m), int(d), 0, 0, 0, 0, time.UTC)
}

package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Rome")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Rome since the portal reports all dates in
// local school time, comparing them against server-local "today"
// breaks the date gates whenever the process runs in another zone
func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay truncates t to midnight in the portal's timezone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

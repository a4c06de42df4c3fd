package postgres

import "time"

// storedTime is the current time at the precision Postgres keeps, so values
// returned by a write compare equal to what a later read scans back.
func storedTime() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

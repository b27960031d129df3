package pr

import (
	"time"

	lo "github.com/samber/lo"
)

// Filter returns the records whose created_at falls inside r. The input is
// never modified; with an open range a copy of all records is returned.
func Filter(records []Record, r DateRange, loc *time.Location) []Record {
	if r.IsOpen() {
		return append([]Record(nil), records...)
	}
	return lo.Filter(records, func(rec Record, _ int) bool {
		t, ok := ParseTime(rec.Get(ColCreatedAt), loc)
		if !ok {
			return false
		}
		return !t.Before(*r.Start) && !t.After(*r.End)
	})
}

package utils

import "time"

const dateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD, the layout used for historical price
// lookups.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

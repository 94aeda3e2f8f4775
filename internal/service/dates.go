package service

import "time"

const dateLayout = "2006-01-02"

// isDate reports whether s is a calendar date in YYYY-MM-DD form.
func isDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

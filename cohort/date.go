package cohort

import (
	"fmt"
	"strconv"
	"time"
)

// dateLayout is the fixed-width YYYYMMDD layout used throughout the claims files.
const dateLayout = "20060102"

// Date is a claims date in fixed-width YYYYMMDD form. Ordering is plain string
// ordering, which equals chronological ordering for same-width values.
type Date string

// ParseDate checks that s is exactly eight digits and returns it as a Date.
// The pipeline never calls it on scanned values; it exists for callers that
// build criteria or fixtures from user input.
func ParseDate(s string) (Date, error) {
	if len(s) != len(dateLayout) {
		return "", &DateError{Value: s}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", &DateError{Value: s}
		}
	}
	return Date(s), nil
}

func (d Date) String() string { return string(d) }

// Before reports whether d sorts strictly before o.
func (d Date) Before(o Date) bool { return d < o }

// After reports whether d sorts strictly after o.
func (d Date) After(o Date) bool { return d > o }

// Year returns the leading four characters.
func (d Date) Year() string {
	if len(d) < 4 {
		return string(d)
	}
	return string(d[:4])
}

// PlusYear increments the leading four-character year and keeps the month/day
// suffix untouched, so 20080229 becomes 20090229. No calendar normalisation
// happens here; cohort membership depends on that.
func (d Date) PlusYear() (Date, error) {
	if len(d) < 4 {
		return "", &DateError{Value: string(d)}
	}
	y, err := strconv.Atoi(string(d[:4]))
	if err != nil {
		return "", &DateError{Value: string(d), Err: err}
	}
	return Date(strconv.Itoa(y+1) + string(d[4:])), nil
}

// Calendar converts d to a UTC calendar date. This is the only place a claims
// date is parsed.
func (d Date) Calendar() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, &DateError{Value: string(d), Err: err}
	}
	return t, nil
}

// DaysBetween returns the whole number of days from start to end.
func DaysBetween(start, end Date) (int, error) {
	s, err := start.Calendar()
	if err != nil {
		return 0, fmt.Errorf("start date: %w", err)
	}
	e, err := end.Calendar()
	if err != nil {
		return 0, fmt.Errorf("end date: %w", err)
	}
	return int(e.Sub(s) / (24 * time.Hour)), nil
}

package transaction

import (
	"strings"

	"cloud.google.com/go/civil"
)

// DateRange is an inclusive, optionally open-ended range of calendar dates
type DateRange struct {
	Start *civil.Date
	End   *civil.Date
}

// ParseDateRange builds a range from optional query values; empty means unbounded
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange

	if strings.TrimSpace(start) != "" {
		d, err := ParseDate(start)
		if err != nil {
			return DateRange{}, err
		}
		r.Start = &d
	}

	if strings.TrimSpace(end) != "" {
		d, err := ParseDate(end)
		if err != nil {
			return DateRange{}, err
		}
		r.End = &d
	}

	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return DateRange{}, ErrInvalidDateRange
	}

	return r, nil
}

// Contains reports whether d falls inside the range, bounds included
func (r DateRange) Contains(d civil.Date) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// StartString returns the start bound as YYYY-MM-DD, or "" when open
func (r DateRange) StartString() string {
	if r.Start == nil {
		return ""
	}
	return r.Start.String()
}

// EndString returns the end bound as YYYY-MM-DD, or "" when open
func (r DateRange) EndString() string {
	if r.End == nil {
		return ""
	}
	return r.End.String()
}

// Key identifies the range in cache keys
func (r DateRange) Key() string {
	return r.StartString() + ".." + r.EndString()
}

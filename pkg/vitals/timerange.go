package vitals

import (
	"strings"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
)

// TimeRange is a dashboard time filter token.
type TimeRange string

const (
	Range1D  TimeRange = "1D"
	Range1W  TimeRange = "1W"
	Range1M  TimeRange = "1M"
	Range3M  TimeRange = "3M"
	Range6M  TimeRange = "6M"
	Range1Y  TimeRange = "1Y"
	RangeAll TimeRange = "ALL"
)

// TimeRanges lists every token in selector order.
var TimeRanges = []TimeRange{Range1D, Range1W, Range1M, Range3M, Range6M, Range1Y, RangeAll}

const day = 24 * time.Hour

// ParseTimeRange parses a token case-insensitively. Empty input is [RangeAll].
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RangeAll, nil
	}
	tr := TimeRange(s)
	if !tr.Valid() {
		return "", errors.New(errors.ErrCodeInvalidTimeRange, "invalid time range: %q (must be one of: 1D, 1W, 1M, 3M, 6M, 1Y, ALL)", s)
	}
	return tr, nil
}

// Valid reports whether tr is a known token.
func (tr TimeRange) Valid() bool {
	switch tr {
	case Range1D, Range1W, Range1M, Range3M, Range6M, Range1Y, RangeAll:
		return true
	}
	return false
}

// Duration is the length of the window. ALL covers the three days the mock
// dataset is centred on.
func (tr TimeRange) Duration() time.Duration {
	switch tr {
	case Range1D:
		return day
	case Range1W:
		return 7 * day
	case Range1M:
		return 30 * day
	case Range3M:
		return 90 * day
	case Range6M:
		return 180 * day
	case Range1Y:
		return 365 * day
	}
	return 3 * day
}

// Window returns [now-Duration, now].
func (tr TimeRange) Window(now time.Time) (start, end time.Time) {
	return now.Add(-tr.Duration()), now
}

// Next returns the following token, wrapping after ALL.
func (tr TimeRange) Next() TimeRange {
	for i, r := range TimeRanges {
		if r == tr {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return TimeRanges[0]
}

// Label formats a bucket timestamp for chart axes: time of day for 1D,
// day and hour for 1W and 1M, day only otherwise.
func (tr TimeRange) Label(t time.Time) string {
	switch tr {
	case Range1D:
		return t.Format("03:04 PM")
	case Range1W, Range1M:
		return t.Format("Jan 2, 03 PM")
	}
	return t.Format("Jan 2")
}

// Days is the market-data lookback for the range ("max" for ALL).
func (tr TimeRange) Days() string {
	switch tr {
	case Range1D:
		return "1"
	case Range1W:
		return "7"
	case Range1M:
		return "30"
	case Range3M:
		return "90"
	case Range6M:
		return "180"
	case Range1Y:
		return "365"
	}
	return "max"
}

func (tr TimeRange) String() string { return string(tr) }

package vitals

import (
	"strings"
	"time"
)

// Filter selects records. Zero fields match everything; From and To are
// inclusive.
type Filter struct {
	From       time.Time
	To         time.Time
	Browser    string
	DeviceType string
	Country    string
}

// Match reports whether r passes the filter. Browser names compare
// case-insensitively.
func (f Filter) Match(r Record) bool {
	if !f.From.IsZero() && r.Datetime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Datetime.After(f.To) {
		return false
	}
	if f.Browser != "" && !strings.EqualFold(r.Metadata.Browser.Name, f.Browser) {
		return false
	}
	if f.DeviceType != "" && r.Metadata.Device.Type != f.DeviceType {
		return false
	}
	if f.Country != "" && r.Metadata.Location.Country != f.Country {
		return false
	}
	return true
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// BrowserCounts counts records per browser name in first-seen order.
func BrowserCounts(records []Record) []NameCount {
	idx := make(map[string]int)
	var out []NameCount
	for _, r := range records {
		name := r.Metadata.Browser.Name
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, NameCount{Name: name})
		}
		out[i].Count++
	}
	return out
}

// NameCount is one bar of a distribution.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

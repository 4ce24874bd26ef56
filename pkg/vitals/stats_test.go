package vitals

import (
	"testing"
	"time"
)

func rec(ts time.Time, lcp, cls float64) Record {
	return Record{Datetime: ts, Data: Metrics{LCP: lcp, CLS: cls, FID: lcp / 10}}
}

func TestComputeStats(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var records []Record
	for i, v := range []float64{400, 100, 300, 200} {
		records = append(records, rec(base.Add(time.Duration(i)*time.Minute), v, 0))
	}

	s := ComputeStats(records)
	if s.TotalRecords != 4 {
		t.Errorf("total = %d", s.TotalRecords)
	}
	lcp := s.Metrics["LCP"]
	want := MetricStats{Avg: 250, Median: 250, Min: 100, Max: 400, P75: 400, P90: 400, P95: 400}
	if lcp != want {
		t.Errorf("LCP stats = %+v, want %+v", lcp, want)
	}
}

func TestComputeStatsOddAndRounding(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{rec(base, 1, 0), rec(base, 2, 0), rec(base, 2, 0)}
	lcp := ComputeStats(records).Metrics["LCP"]
	if lcp.Avg != 1.67 {
		t.Errorf("avg = %v, want 1.67", lcp.Avg)
	}
	if lcp.Median != 2 {
		t.Errorf("median = %v, want 2", lcp.Median)
	}
	if lcp.P75 != 2 {
		t.Errorf("p75 = %v, want sorted[2] = 2", lcp.P75)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)
	if s.TotalRecords != 0 || s.Metrics["LCP"] != (MetricStats{}) {
		t.Errorf("stats = %+v", s)
	}
}

func TestHourlySeries(t *testing.T) {
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	records := []Record{
		rec(base.Add(70*time.Minute), 3001, 0.2),
		rec(base.Add(5*time.Minute), 1000, 0.1),
		rec(base.Add(50*time.Minute), 2001, 0.05),
		rec(base.Add(65*time.Minute), 3000, 0.1),
	}
	pts := HourlySeries(records, time.UTC)
	if len(pts) != 2 {
		t.Fatalf("points = %d, want 2", len(pts))
	}
	if !pts[0].Timestamp.Equal(base) || pts[0].Count != 2 {
		t.Errorf("first point = %+v", pts[0])
	}
	if pts[0].Metrics.LCP != 1501 {
		t.Errorf("first LCP = %v, want 1501 (rounded 1500.5)", pts[0].Metrics.LCP)
	}
	if pts[0].Metrics.CLS != 0.075 {
		t.Errorf("first CLS = %v, want 0.075", pts[0].Metrics.CLS)
	}
	if pts[1].Metrics.LCP != 3001 || pts[1].Metrics.CLS != 0.15 {
		t.Errorf("second point = %+v", pts[1].Metrics)
	}
}

func TestRatings(t *testing.T) {
	tests := []struct {
		metric string
		value  float64
		want   Rating
	}{
		{"LCP", 2500, RatingGood},
		{"LCP", 2501, RatingNeedsImprovement},
		{"LCP", 4001, RatingPoor},
		{"FID", 100, RatingGood},
		{"FID", 300, RatingNeedsImprovement},
		{"FID", 301, RatingPoor},
		{"CLS", 0.1, RatingGood},
		{"CLS", 0.25, RatingNeedsImprovement},
		{"CLS", 0.3, RatingPoor},
		{"INP", 200, RatingGood},
		{"INP", 500, RatingNeedsImprovement},
		{"INP", 501, RatingPoor},
		{"TTFB", 1, ""},
	}
	for _, tt := range tests {
		if got := Rate(tt.metric, tt.value); got != tt.want {
			t.Errorf("Rate(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(h int, browser, device, country string) Record {
		r := rec(base.Add(time.Duration(h)*time.Hour), 1, 0)
		r.Metadata.Browser.Name = browser
		r.Metadata.Device.Type = device
		r.Metadata.Location.Country = country
		return r
	}
	records := []Record{
		mk(0, "Chrome", "desktop", "US"),
		mk(1, "Firefox", "mobile", "DE"),
		mk(2, "Chrome", "mobile", "US"),
	}

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"all", Filter{}, 3},
		{"browser case-insensitive", Filter{Browser: "chrome"}, 2},
		{"device", Filter{DeviceType: "mobile"}, 2},
		{"country", Filter{Country: "DE"}, 1},
		{"window inclusive", Filter{From: base.Add(time.Hour), To: base.Add(2 * time.Hour)}, 2},
		{"combined", Filter{Browser: "Chrome", DeviceType: "mobile"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.f.Apply(records)); got != tt.want {
				t.Errorf("matched %d, want %d", got, tt.want)
			}
		})
	}

	counts := BrowserCounts(records)
	if len(counts) != 2 || counts[0] != (NameCount{"Chrome", 2}) || counts[1] != (NameCount{"Firefox", 1}) {
		t.Errorf("browser counts = %+v", counts)
	}
}

func TestTimeRange(t *testing.T) {
	for _, s := range []string{"1d", " 1W ", "ALL", ""} {
		if _, err := ParseTimeRange(s); err != nil {
			t.Errorf("ParseTimeRange(%q): %v", s, err)
		}
	}
	if _, err := ParseTimeRange("2W"); err == nil {
		t.Error("ParseTimeRange(2W) should fail")
	}

	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	if from, _ := RangeAll.Window(now); !from.Equal(now.Add(-3 * day)) {
		t.Errorf("ALL window starts %s", from)
	}
	if from, _ := Range1Y.Window(now); !from.Equal(now.Add(-365 * day)) {
		t.Errorf("1Y window starts %s", from)
	}
	if RangeAll.Next() != Range1D || Range1D.Next() != Range1W {
		t.Error("Next does not cycle")
	}
	if RangeAll.Days() != "max" || Range3M.Days() != "90" {
		t.Error("Days mapping wrong")
	}

	ts := time.Date(2026, 1, 5, 15, 4, 0, 0, time.UTC)
	labels := map[TimeRange]string{Range1D: "03:04 PM", Range1W: "Jan 5, 03 PM", Range3M: "Jan 5"}
	for tr, want := range labels {
		if got := tr.Label(ts); got != want {
			t.Errorf("%s label = %q, want %q", tr, got, want)
		}
	}
}

package vitals

import (
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// Bundle is one fetch worth of chart rows, keyed by the chart that shows them.
type Bundle struct {
	Source     string     `json:"source"`
	Range      TimeRange  `json:"range"`
	Records    int        `json:"records"`
	Bar        []tile.Row `json:"bar"`
	Browsers   []tile.Row `json:"browsers,omitempty"`
	Line       []tile.Row `json:"line"`
	Area       []tile.Row `json:"area"`
	Scatter    []tile.Row `json:"scatter,omitempty"`
	LastUpdate time.Time  `json:"lastUpdate"`
}

// Empty reports whether the bundle carries no bar rows. Empty bundles are
// not reconciled into tiles.
func (b Bundle) Empty() bool { return len(b.Bar) == 0 }

// maxScatterPoints caps the scatter rows so large windows stay drawable.
const maxScatterPoints = 200

// BuildBundle aggregates records for tr. Series labels are formatted in loc.
func BuildBundle(source string, tr TimeRange, records []Record, loc *time.Location, now time.Time) Bundle {
	b := Bundle{Source: source, Range: tr, Records: len(records), LastUpdate: now}
	if len(records) == 0 {
		return b
	}
	if loc == nil {
		loc = time.UTC
	}

	stats := ComputeStats(records)
	b.Bar = StatsBarRows(stats)

	for _, p := range HourlySeries(records, loc) {
		label := tr.Label(p.Timestamp)
		b.Line = append(b.Line, tile.Row{"name": label, "LCP": p.Metrics.LCP, "FCP": p.Metrics.FCP, "TTFB": p.Metrics.TTFB})
		b.Area = append(b.Area, tile.Row{"name": label, "TTI": p.Metrics.TTI, "SI": p.Metrics.SI, "TBT": p.Metrics.TBT})
	}

	for _, c := range BrowserCounts(records) {
		b.Browsers = append(b.Browsers, tile.Row{"name": c.Name, "count": float64(c.Count)})
	}

	step := max(1, len(records)/maxScatterPoints)
	for i := 0; i < len(records); i += step {
		m := records[i].Data
		b.Scatter = append(b.Scatter, tile.Row{"lcp": m.LCP, "fid": m.FID, "cls": m.CLS})
	}

	b.LastUpdate = records[len(records)-1].Datetime
	return b
}

// StatsBarRows are the Core Web Vitals bars: average LCP, FID, CLS (scaled
// by 1000 to share the axis) and INP, each with its rating.
func StatsBarRows(s Stats) []tile.Row {
	lcp, fid, cls, inp := s.Metrics["LCP"].Avg, s.Metrics["FID"].Avg, s.Metrics["CLS"].Avg, s.Metrics["INP"].Avg
	return []tile.Row{
		{"name": "LCP", "value": lcp, "rating": string(RateLCP(lcp))},
		{"name": "FID", "value": fid, "rating": string(RateFID(fid))},
		{"name": "CLS", "value": round(cls*1000, 2), "rating": string(RateCLS(cls))},
		{"name": "INP", "value": inp, "rating": string(RateINP(inp))},
	}
}

// LiveBarRows are the Core Web Vitals bars for a single real-time record.
func LiveBarRows(m Metrics) []tile.Row {
	return []tile.Row{
		{"name": "LCP", "value": m.LCP},
		{"name": "FID", "value": m.FID},
		{"name": "CLS", "value": round(m.CLS*1000, 2)},
		{"name": "INP", "value": m.INP},
	}
}

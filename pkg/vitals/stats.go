package vitals

import (
	"math"
	"slices"
	"time"
)

// MetricStats summarizes one metric over a set of records.
type MetricStats struct {
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
}

// Stats summarizes every metric.
type Stats struct {
	TotalRecords int                    `json:"totalRecords"`
	Metrics      map[string]MetricStats `json:"metrics"`
}

// ComputeStats aggregates records. Average and median are rounded to two
// decimals; percentiles take sorted[floor(n*p)]. An empty input yields
// zero stats.
func ComputeStats(records []Record) Stats {
	s := Stats{TotalRecords: len(records), Metrics: make(map[string]MetricStats, len(MetricNames))}
	for _, name := range MetricNames {
		s.Metrics[name] = metricStats(records, name)
	}
	return s
}

func metricStats(records []Record, name string) MetricStats {
	n := len(records)
	if n == 0 {
		return MetricStats{}
	}
	values := make([]float64, n)
	sum := 0.0
	for i, r := range records {
		values[i], _ = r.Data.Get(name)
		sum += values[i]
	}
	slices.Sort(values)

	median := values[n/2]
	if n%2 == 0 {
		median = (values[n/2-1] + values[n/2]) / 2
	}
	pct := func(p float64) float64 { return values[int(math.Floor(float64(n)*p))] }

	return MetricStats{
		Avg:    round(sum/float64(n), 2),
		Median: round(median, 2),
		Min:    values[0],
		Max:    values[n-1],
		P75:    pct(0.75),
		P90:    pct(0.90),
		P95:    pct(0.95),
	}
}

// SeriesPoint is the average of all records in one hour.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Metrics   Metrics   `json:"metrics"`
}

// HourlySeries groups records by wall-clock hour in loc and averages each
// group. Timings are rounded to whole milliseconds and CLS to three
// decimals. Points are sorted by time.
func HourlySeries(records []Record, loc *time.Location) []SeriesPoint {
	if loc == nil {
		loc = time.UTC
	}
	groups := make(map[time.Time][]Record)
	for _, r := range records {
		t := r.Datetime.In(loc)
		key := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
		groups[key] = append(groups[key], r)
	}

	points := make([]SeriesPoint, 0, len(groups))
	for ts, group := range groups {
		var avg Metrics
		for _, name := range MetricNames {
			sum := 0.0
			for _, r := range group {
				v, _ := r.Data.Get(name)
				sum += v
			}
			mean := sum / float64(len(group))
			if name == "CLS" {
				avg.set(name, round(mean, 3))
			} else {
				avg.set(name, math.Round(mean))
			}
		}
		points = append(points, SeriesPoint{Timestamp: ts, Count: len(group), Metrics: avg})
	}
	slices.SortFunc(points, func(a, b SeriesPoint) int { return a.Timestamp.Compare(b.Timestamp) })
	return points
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

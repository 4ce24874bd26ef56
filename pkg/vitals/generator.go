package vitals

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// DatasetVersion is stamped on generated datasets.
const DatasetVersion = "1.0.0"

// Scenario is the performance class a generated record is drawn from.
type Scenario int

const (
	ScenarioGood Scenario = iota
	ScenarioNeedsImprovement
	ScenarioPoor
)

// metricRange is an inclusive value range; decimals > 0 draws a float.
type metricRange struct {
	min, max float64
	decimals int
}

var scenarioRanges = map[Scenario]map[string]metricRange{
	ScenarioGood: {
		"LCP": {1200, 2500, 0}, "FID": {50, 100, 0}, "CLS": {0.01, 0.1, 3},
		"FCP": {800, 1800, 0}, "TTFB": {200, 600, 0}, "INP": {80, 200, 0},
		"TBT": {150, 400, 0}, "SI": {1500, 2500, 0}, "TTI": {2000, 3500, 0},
	},
	ScenarioNeedsImprovement: {
		"LCP": {2500, 4000, 0}, "FID": {100, 300, 0}, "CLS": {0.1, 0.25, 3},
		"FCP": {1800, 3000, 0}, "TTFB": {600, 1500, 0}, "INP": {200, 500, 0},
		"TBT": {400, 800, 0}, "SI": {2500, 4500, 0}, "TTI": {3500, 6000, 0},
	},
	ScenarioPoor: {
		"LCP": {4000, 8000, 0}, "FID": {300, 600, 0}, "CLS": {0.25, 0.5, 3},
		"FCP": {3000, 5000, 0}, "TTFB": {1500, 3000, 0}, "INP": {500, 1000, 0},
		"TBT": {800, 1500, 0}, "SI": {4500, 8000, 0}, "TTI": {6000, 10000, 0},
	},
}

type browserSpec struct {
	name     string
	versions []string
	engine   string
}

var browsers = []browserSpec{
	{"Chrome", []string{"120.0.0", "119.0.0", "118.0.0"}, "Blink"},
	{"Firefox", []string{"121.0", "120.0", "119.0"}, "Gecko"},
	{"Safari", []string{"17.2", "17.1", "17.0"}, "WebKit"},
	{"Edge", []string{"120.0.0", "119.0.0"}, "Blink"},
}

var locations = []Location{
	{Country: "US", City: "New York", Region: "NY", Timezone: "America/New_York"},
	{Country: "US", City: "Los Angeles", Region: "CA", Timezone: "America/Los_Angeles"},
	{Country: "US", City: "Chicago", Region: "IL", Timezone: "America/Chicago"},
	{Country: "GB", City: "London", Region: "England", Timezone: "Europe/London"},
	{Country: "DE", City: "Berlin", Region: "Berlin", Timezone: "Europe/Berlin"},
	{Country: "FR", City: "Paris", Region: "Île-de-France", Timezone: "Europe/Paris"},
	{Country: "JP", City: "Tokyo", Region: "Tokyo", Timezone: "Asia/Tokyo"},
	{Country: "AU", City: "Sydney", Region: "NSW", Timezone: "Australia/Sydney"},
	{Country: "BR", City: "São Paulo", Region: "SP", Timezone: "America/Sao_Paulo"},
	{Country: "CA", City: "Toronto", Region: "ON", Timezone: "America/Toronto"},
}

var (
	deviceTypes       = []string{"desktop", "mobile", "tablet"}
	osTypes           = []string{"macOS", "Windows", "Linux", "iOS", "Android"}
	connectionTypes   = []string{"4g", "3g", "wifi", "5g"}
	liveCountries     = []string{"US", "GB", "DE", "FR", "JP", "AU", "BR", "CA"}
	screenResolutions = []string{"1920x1080", "1366x768", "1440x900", "1536x864", "1280x720", "2560x1440", "3840x2160", "1024x768"}
	viewports         = []string{"1440x900", "1366x768", "1280x800", "1920x1080", "1024x768", "375x667", "414x896", "360x640", "768x1024"}
)

// Generator draws random records. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator with a fixed seed, so datasets are
// reproducible.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns an integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) pick(items []string) string {
	return items[g.rng.IntN(len(items))]
}

func (g *Generator) draw(r metricRange) float64 {
	if r.decimals == 0 {
		return float64(g.between(int(r.min), int(r.max)))
	}
	p := math.Pow(10, float64(r.decimals))
	return math.Round((g.rng.Float64()*(r.max-r.min)+r.min)*p) / p
}

func (g *Generator) scenario() Scenario {
	switch s := g.rng.Float64(); {
	case s < 0.7:
		return ScenarioGood
	case s < 0.9:
		return ScenarioNeedsImprovement
	default:
		return ScenarioPoor
	}
}

func (g *Generator) metrics(s Scenario) Metrics {
	var m Metrics
	ranges := scenarioRanges[s]
	for _, name := range MetricNames {
		m.set(name, g.draw(ranges[name]))
	}
	return m
}

// Metrics draws one measurement from a randomly chosen scenario.
func (g *Generator) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics(g.scenario())
}

// MetricsFor draws one measurement from scenario s.
func (g *Generator) MetricsFor(s Scenario) Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics(s)
}

// Record generates a fully populated record at ts.
func (g *Generator) Record(ts time.Time, app string) Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.record(ts, app)
}

func (g *Generator) record(ts time.Time, app string) Record {
	b := browsers[g.rng.IntN(len(browsers))]
	loc := locations[g.rng.IntN(len(locations))]
	loc.IP = fmt.Sprintf("%d.%d.%d.%d", g.between(1, 255), g.between(0, 255), g.between(0, 255), g.between(1, 255))
	device := g.pick(deviceTypes)

	return Record{
		Datetime: ts.UTC(),
		AppName:  app,
		Data:     g.metrics(g.scenario()),
		Metadata: Metadata{
			Browser: Browser{
				Name:      b.name,
				Version:   g.pick(b.versions),
				Engine:    b.engine,
				UserAgent: fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) %s/%s", g.pick(osTypes), b.name, b.versions[0]),
			},
			Location: loc,
			Device: Device{
				Type:             device,
				OS:               g.pick(osTypes),
				ScreenResolution: g.pick(screenResolutions),
				Viewport:         g.pick(viewports),
			},
			Connection: Connection{
				Type:     g.pick(connectionTypes),
				Downlink: g.between(1, 50),
				RTT:      g.between(20, 300),
			},
		},
	}
}

// Live generates the lighter record pushed by the real-time feed.
func (g *Generator) Live(now time.Time, app string) Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Record{
		Datetime: now.UTC(),
		AppName:  app,
		Data:     g.metrics(g.scenario()),
		Metadata: Metadata{
			Browser:    Browser{Name: browsers[g.rng.IntN(len(browsers))].name, Version: fmt.Sprintf("%d.0.0", g.between(110, 120))},
			Location:   Location{Country: g.pick(liveCountries)},
			Device:     Device{Type: g.pick(deviceTypes)},
			Connection: Connection{Type: g.pick(connectionTypes)},
		},
	}
}

// Dataset generates n records spread evenly over [start, end) with up to
// half a slot of jitter each, sorted by time.
func (g *Generator) Dataset(app string, start, end time.Time, n int) Dataset {
	g.mu.Lock()
	defer g.mu.Unlock()

	span := end.Sub(start)
	records := make([]Record, 0, n)
	if n > 0 {
		step := span / time.Duration(n)
		half := int(step.Milliseconds() / 2)
		for i := range n {
			base := start.Add(step * time.Duration(i))
			offset := time.Duration(g.between(-half, half)) * time.Millisecond
			records = append(records, g.record(base.Add(offset), app))
		}
	}
	slices.SortStableFunc(records, func(a, b Record) int { return a.Datetime.Compare(b.Datetime) })

	ds := Dataset{
		Version:      DatasetVersion,
		GeneratedAt:  time.Now().UTC(),
		TotalRecords: n,
		DateRange:    DateRange{DaysSpan: int(math.Ceil(span.Hours() / 24))},
		Records:      records,
	}
	if len(records) > 0 {
		ds.DateRange.Start = records[0].Datetime
		ds.DateRange.End = records[len(records)-1].Datetime
	}
	return ds
}

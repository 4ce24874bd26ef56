package vitals

import (
	"time"
)

// Metrics holds one measurement of every tracked metric. Timings are in
// milliseconds; CLS is unitless.
type Metrics struct {
	LCP  float64 `json:"LCP" bson:"lcp"`
	FID  float64 `json:"FID" bson:"fid"`
	CLS  float64 `json:"CLS" bson:"cls"`
	FCP  float64 `json:"FCP" bson:"fcp"`
	TTFB float64 `json:"TTFB" bson:"ttfb"`
	INP  float64 `json:"INP" bson:"inp"`
	TBT  float64 `json:"TBT" bson:"tbt"`
	SI   float64 `json:"SI" bson:"si"`
	TTI  float64 `json:"TTI" bson:"tti"`
}

// MetricNames lists the metrics in display order.
var MetricNames = []string{"LCP", "FID", "CLS", "FCP", "TTFB", "INP", "TBT", "SI", "TTI"}

// Get returns the named metric.
func (m Metrics) Get(name string) (float64, bool) {
	switch name {
	case "LCP":
		return m.LCP, true
	case "FID":
		return m.FID, true
	case "CLS":
		return m.CLS, true
	case "FCP":
		return m.FCP, true
	case "TTFB":
		return m.TTFB, true
	case "INP":
		return m.INP, true
	case "TBT":
		return m.TBT, true
	case "SI":
		return m.SI, true
	case "TTI":
		return m.TTI, true
	}
	return 0, false
}

func (m *Metrics) set(name string, v float64) {
	switch name {
	case "LCP":
		m.LCP = v
	case "FID":
		m.FID = v
	case "CLS":
		m.CLS = v
	case "FCP":
		m.FCP = v
	case "TTFB":
		m.TTFB = v
	case "INP":
		m.INP = v
	case "TBT":
		m.TBT = v
	case "SI":
		m.SI = v
	case "TTI":
		m.TTI = v
	}
}

type Browser struct {
	Name      string `json:"name" bson:"name"`
	Version   string `json:"version" bson:"version"`
	Engine    string `json:"engine,omitempty" bson:"engine,omitempty"`
	UserAgent string `json:"userAgent,omitempty" bson:"user_agent,omitempty"`
}

type Location struct {
	Country  string `json:"country" bson:"country"`
	City     string `json:"city,omitempty" bson:"city,omitempty"`
	Region   string `json:"region,omitempty" bson:"region,omitempty"`
	Timezone string `json:"timezone,omitempty" bson:"timezone,omitempty"`
	IP       string `json:"ip,omitempty" bson:"ip,omitempty"`
}

type Device struct {
	Type             string `json:"type" bson:"type"`
	OS               string `json:"os,omitempty" bson:"os,omitempty"`
	ScreenResolution string `json:"screenResolution,omitempty" bson:"screen_resolution,omitempty"`
	Viewport         string `json:"viewport,omitempty" bson:"viewport,omitempty"`
}

type Connection struct {
	Type     string `json:"type" bson:"type"`
	Downlink int    `json:"downlink,omitempty" bson:"downlink,omitempty"`
	RTT      int    `json:"rtt,omitempty" bson:"rtt,omitempty"`
}

// Metadata describes where a measurement came from.
type Metadata struct {
	Browser    Browser    `json:"browser" bson:"browser"`
	Location   Location   `json:"location" bson:"location"`
	Device     Device     `json:"device" bson:"device"`
	Connection Connection `json:"connection" bson:"connection"`
}

// Record is one page-load measurement.
type Record struct {
	Datetime time.Time `json:"datetime" bson:"datetime"`
	AppName  string    `json:"appName" bson:"app_name"`
	Data     Metrics   `json:"data" bson:"data"`
	Metadata Metadata  `json:"metadata" bson:"metadata"`
}

// Dataset is a generated batch of records with summary metadata.
type Dataset struct {
	Version      string    `json:"version"`
	GeneratedAt  time.Time `json:"generatedAt"`
	TotalRecords int       `json:"totalRecords"`
	DateRange    DateRange `json:"dateRange"`
	Records      []Record  `json:"records"`
}

// DateRange is the span covered by a dataset.
type DateRange struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DaysSpan int       `json:"daysSpan"`
}

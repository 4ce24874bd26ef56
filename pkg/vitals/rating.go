package vitals

// Rating classifies a metric value against the Core Web Vitals thresholds.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// thresholds are the inclusive upper bounds for good and needs-improvement.
var thresholds = map[string][2]float64{
	"LCP": {2500, 4000},
	"FID": {100, 300},
	"CLS": {0.1, 0.25},
	"INP": {200, 500},
}

// Rate rates value for metric. Metrics without thresholds return "".
func Rate(metric string, value float64) Rating {
	t, ok := thresholds[metric]
	if !ok {
		return ""
	}
	switch {
	case value <= t[0]:
		return RatingGood
	case value <= t[1]:
		return RatingNeedsImprovement
	}
	return RatingPoor
}

func RateLCP(v float64) Rating { return Rate("LCP", v) }
func RateFID(v float64) Rating { return Rate("FID", v) }
func RateCLS(v float64) Rating { return Rate("CLS", v) }
func RateINP(v float64) Rating { return Rate("INP", v) }

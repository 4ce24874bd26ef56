package vitals

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/vitalsgrid/pkg/cache"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/observability"
)

// Fetcher produces a bundle for a time range.
type Fetcher interface {
	Fetch(ctx context.Context, tr TimeRange) (Bundle, error)
}

// DefaultBucket is how long a cached bundle stays addressable before the
// sliding window moves on to a new key.
const DefaultBucket = time.Minute

// Service aggregates records from a source into bundles, caching the result.
type Service struct {
	Source RecordSource
	// Cache may be nil to disable caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration
	// Bucket is the cache key granularity; zero means DefaultBucket.
	Bucket   time.Duration
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewService returns a service over src with no cache.
func NewService(src RecordSource) *Service {
	return &Service{Source: src}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Fetch returns the bundle for tr, from cache when possible.
func (s *Service) Fetch(ctx context.Context, tr TimeRange) (Bundle, error) {
	if !tr.Valid() {
		return Bundle{}, errors.New(errors.ErrCodeInvalidTimeRange, "invalid time range: %q", tr)
	}
	hooks := observability.Data()
	started := time.Now()
	hooks.OnFetchStart(ctx, s.Source.Name(), tr.String())

	b, err := s.fetch(ctx, tr)
	hooks.OnFetchComplete(ctx, s.Source.Name(), tr.String(), b.Records, time.Since(started), err)
	return b, err
}

func (s *Service) fetch(ctx context.Context, tr TimeRange) (Bundle, error) {
	now := s.now()
	key := s.key(tr, now)

	if s.Cache != nil {
		if data, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			var b Bundle
			if json.Unmarshal(data, &b) == nil {
				observability.Cache().OnCacheHit(ctx, "vitals")
				return b, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "vitals")
	}

	from, to := tr.Window(now)
	records, err := s.Source.Records(ctx, from, to)
	if err != nil {
		return Bundle{}, errors.Wrap(errors.ErrCodeDataSource, err, "Failed to fetch Web Vitals data")
	}
	b := BuildBundle(s.Source.Name(), tr, records, s.Location, now)

	if s.Cache != nil {
		if data, err := json.Marshal(b); err == nil {
			if s.Cache.Set(ctx, key, data, s.TTL) == nil {
				observability.Cache().OnCacheSet(ctx, "vitals", len(data))
			}
		}
	}
	return b, nil
}

func (s *Service) key(tr TimeRange, now time.Time) string {
	keyer := s.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	bucket := s.Bucket
	if bucket <= 0 {
		bucket = DefaultBucket
	}
	return keyer.VitalsKey(s.Source.Name(), tr.String(), now.Truncate(bucket))
}

// Stats computes statistics over the window for tr with an optional filter.
func (s *Service) Stats(ctx context.Context, tr TimeRange, f Filter) (Stats, error) {
	records, err := s.records(ctx, tr, f)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

// Series computes the hourly series over the window for tr.
func (s *Service) Series(ctx context.Context, tr TimeRange, f Filter) ([]SeriesPoint, error) {
	records, err := s.records(ctx, tr, f)
	if err != nil {
		return nil, err
	}
	return HourlySeries(records, s.Location), nil
}

func (s *Service) records(ctx context.Context, tr TimeRange, f Filter) ([]Record, error) {
	if !tr.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidTimeRange, "invalid time range: %q", tr)
	}
	from, to := tr.Window(s.now())
	records, err := s.Source.Records(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSource, err, "fetch records")
	}
	return f.Apply(records), nil
}

var _ Fetcher = (*Service)(nil)

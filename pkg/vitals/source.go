package vitals

import (
	"context"
	"sync"
	"time"
)

// Defaults for the generated dataset.
const (
	DefaultAppName = "crypto-dashboard"
	DefaultRecords = 1000
	DefaultDays    = 30
	DefaultLatency = 300 * time.Millisecond
)

// RecordSource yields records in a time window, oldest first.
type RecordSource interface {
	// Name identifies the source in logs and cache keys.
	Name() string
	// Records returns the records with from <= datetime <= to.
	Records(ctx context.Context, from, to time.Time) ([]Record, error)
}

// MemoryOptions configures [NewMemorySource].
type MemoryOptions struct {
	AppName string
	Records int
	Days    int
	// Latency simulates a network round trip before every read.
	Latency time.Duration
	Seed    uint64
	// Now defaults to time.Now.
	Now func() time.Time
}

// MemorySource serves a generated dataset. The dataset is built on the first
// read and reused afterwards.
type MemorySource struct {
	opts MemoryOptions
	gen  *Generator

	mu      sync.Mutex
	dataset *Dataset
}

// NewMemorySource returns a source over a lazily generated dataset.
func NewMemorySource(opts MemoryOptions) *MemorySource {
	if opts.AppName == "" {
		opts.AppName = DefaultAppName
	}
	if opts.Records <= 0 {
		opts.Records = DefaultRecords
	}
	if opts.Days <= 0 {
		opts.Days = DefaultDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MemorySource{opts: opts, gen: NewGenerator(opts.Seed)}
}

func (s *MemorySource) Name() string { return "memory" }

// Dataset returns the generated dataset, building it if needed.
func (s *MemorySource) Dataset() Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		end := s.opts.Now()
		start := end.Add(-time.Duration(s.opts.Days) * day)
		ds := s.gen.Dataset(s.opts.AppName, start, end, s.opts.Records)
		s.dataset = &ds
	}
	return *s.dataset
}

// Reset drops the cached dataset so the next read regenerates it.
func (s *MemorySource) Reset() {
	s.mu.Lock()
	s.dataset = nil
	s.mu.Unlock()
}

func (s *MemorySource) Records(ctx context.Context, from, to time.Time) ([]Record, error) {
	if s.opts.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.opts.Latency):
		}
	}
	ds := s.Dataset()
	return Filter{From: from, To: to}.Apply(ds.Records), nil
}

var _ RecordSource = (*MemorySource)(nil)

// Package integrations provides HTTP clients for external market data APIs.
//
// # Overview
//
// Each upstream API has its own subpackage:
//
//   - [coingecko]: CoinGecko prices and market charts, served as a
//     dashboard data source
//
// # Client Pattern
//
// Upstream clients embed [Client] and follow the same pattern:
//
//	c := coingecko.NewClient(cache.NewNullCache(), time.Minute)
//	b, err := c.Fetch(ctx, vitals.Range1W)
//
// [Client] handles:
//   - JSON GET requests with default headers
//   - Retry of transient failures via [httputil.Policy]
//   - Response caching through [cache.Cache], keyed by namespace
//
// Status codes map to sentinel errors: 404 is [ErrNotFound], 429 is
// [ErrRateLimited] (retried), 5xx and transport failures are [ErrNetwork]
// (retried), anything else non-200 is [ErrNetwork] and fails fast.
//
// [coingecko]: github.com/matzehuels/vitalsgrid/pkg/integrations/coingecko
// [cache.Cache]: github.com/matzehuels/vitalsgrid/pkg/cache.Cache
// [httputil.Policy]: github.com/matzehuels/vitalsgrid/pkg/httputil.Policy
package integrations

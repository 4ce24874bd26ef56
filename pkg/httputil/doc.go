// Package httputil provides retry helpers for the HTTP clients in
// [integrations].
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; anything else is returned immediately, so a
// 404 fails fast while a timeout or a 5xx gets another attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &resp)
//	})
//
// A [Policy] bundles attempts and the initial delay for callers that want
// to configure them once:
//
//	p := httputil.Policy{Attempts: 5, Delay: 200 * time.Millisecond}
//	err := p.Do(ctx, fetch)
//
// Defaults are three attempts starting at one second, doubling each time.
//
// [integrations]: github.com/matzehuels/vitalsgrid/pkg/integrations
package httputil

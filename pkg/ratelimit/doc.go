// Package ratelimit paces requests to the asset site.
//
// Two mechanisms are provided and both are used by the collector:
//
// Token Bucket:
//   - Caps requests per minute across every search and download request
//   - Disabled when the configured rate is zero
//
// Pause:
//   - A fixed politeness delay slept after each successful download
//   - Returns early when the context is cancelled
//
// Usage:
//
//	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
//	pause := ratelimit.NewPause(cfg.Download.Delay)
//	_ = pause.Sleep(ctx)
package ratelimit

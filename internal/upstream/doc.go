// Package upstream fetches the device-status payload from the monitoring API.
//
// Each call to Fetch performs exactly one HTTP GET, bounded by the configured
// timeout and the caller's context. There is no retry and no caching.
//
// Failures are classified so callers can report them:
//   - *StatusError: the upstream answered with a non-2xx status
//   - ErrDecode: the body was not a valid payload
//   - ErrBodyTooLarge: the body exceeded upstream.max_body_bytes
//   - anything else: transport failure (DNS, refused, timeout)
//
// Usage:
//
//	client := upstream.New(cfg.Upstream)
//	payload, err := client.Fetch(ctx)
package upstream

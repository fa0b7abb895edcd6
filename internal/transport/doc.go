// Package transport is the network primitive behind request.Client.
//
// Every Send and Upload runs on its own goroutine and hands back a
// request.Task future. The stack, outermost first:
//
//   - golang.org/x/time/rate token bucket shared by all operations
//   - resilience.Breaker that fails fast after a run of transport errors
//   - go-resty/resty client, one per TLS verification mode
//   - go-retryablehttp round tripper retrying connection errors, 429 and 5xx
//
// Responses of any status are successes at this layer. Bodies are decoded
// according to the call's data and response types: "arraybuffer" yields the
// raw bytes, everything else is converted to UTF-8 and, for the "json" data
// type, parsed with sonic when it is valid JSON.
//
// Example Usage:
//
//	tr := transport.New(transport.DefaultConfig())
//	client := request.New(tr)
package transport

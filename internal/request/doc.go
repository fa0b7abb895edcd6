// Package request orchestrates outbound HTTP(S) calls on top of a host-provided transport.
//
// A Client resolves the final configuration of every call from an indexed set of
// global defaults and a per-call local override, runs it through an interceptor
// pipeline, hands it to the Transport and runs the response back through the
// handlers the interceptors contributed.
//
// Pipeline Contract:
//   - Interceptors run in registration order before the transport is invoked
//   - Response handlers run most-recently-registered first
//   - Finalizers run exactly once per call on every exit path
//   - The response handler chain is collected on the first successful pass and frozen
//
// Uploads fan out one transport upload per file and succeed only when every
// file succeeds. Named calls are kept in a Registry so their tasks can be
// aborted later.
//
// Example Usage:
//
//	client := request.New(transport.New(transport.DefaultConfig()))
//	_ = client.SetGlobalConfig([]request.GlobalConfig{{BaseURL: "https://api.example.com"}})
//	resp, err := client.Get(ctx, "/users", map[string]any{"page": 1}, request.WithName("users"))
package request

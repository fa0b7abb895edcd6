/*
Package resilience provides the circuit breakers that guard the host transport,
one per upstream host.

# Overview

A run of transport failures (connection refused, DNS errors, timeouts) opens
the breaker so that further calls fail fast with ErrCircuitOpen instead of
piling up on a dead upstream. HTTP responses of any status are successes:
status handling belongs to response handlers.

# Usage

	breaker := resilience.New("api.example.com", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: metrics.SetBreakerState,
	})

	resp, err := resilience.Do(breaker, func() (*resty.Response, error) {
		return req.Execute(method, url)
	})

The transport keeps a Group, which creates a breaker named after each
upstream host on first use:

	breakers := resilience.NewGroup(settings)
	resp, err := resilience.Do(breakers.For(url), send)

Rejections wrap ErrCircuitOpen or ErrTooManyRequests with the host name.

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience

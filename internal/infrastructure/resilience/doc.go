// Package resilience provides a circuit breaker for calls to remote hosts.
//
// The session service downloads archives from user supplied URLs. When a
// host keeps failing, the breaker opens and further downloads fail fast
// with ErrCircuitOpen until Timeout has passed; a limited number of trial
// calls then decide whether to close it again.
//
// States:
//   - Closed: calls pass; failures are counted
//   - Open: calls are rejected
//   - Half-open: up to MaxRequests trial calls pass
//
// Example Usage:
//
//	breaker := resilience.New("session-fetch", resilience.Settings{
//	    Timeout: 30 * time.Second,
//	    ReadyToTrip: func(c resilience.Counts) bool {
//	        return c.ConsecutiveFailures >= 5
//	    },
//	})
//	err := breaker.Execute(ctx, func(ctx context.Context) error {
//	    return download(ctx, url)
//	})
package resilience

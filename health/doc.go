// Package health provides health checks for the backends the identity extension
// depends on.
//
// # Health Check Functions
//
//   - StoreCheck: Ping a datastore.Store that implements datastore.Pinger
//   - BreakerCheck: Report the state of a circuit breaker
//   - DataPathCheck: Verify the on-disk data of a store exists
//   - Combine: Aggregate multiple health checks into a single status
//
// # Status Levels
//
//   - Healthy: Fully operational
//   - Degraded: Operational with reduced reliability (e.g. half-open breaker)
//   - Unhealthy: Not operational
//
// # Usage Example
//
//	status := health.Combine(
//	    health.StoreCheck(ctx, "badger", store),
//	    health.DataPathCheck("badger", "/var/lib/edgeidentity"),
//	)
//	if !status.IsHealthy() {
//	    logger.Warn("identity backend degraded", "status", status.Status, "message", status.Message)
//	}
package health

package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/zero-day-ai/edgeidentity/datastore"
)

// StoreCheck pings store when it implements datastore.Pinger. Stores that cannot be
// pinged are reported healthy.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
//	defer cancel()
//	status := health.StoreCheck(ctx, "badger", store)
//	if status.IsUnhealthy() {
//	    log.Println("identity store unavailable")
//	}
func StoreCheck(ctx context.Context, name string, store datastore.Store) Status {
	if store == nil {
		return NewUnhealthyStatus("store is not configured", map[string]any{"store": name})
	}

	pinger, ok := store.(datastore.Pinger)
	if !ok {
		return NewHealthyStatus(fmt.Sprintf("store '%s' does not support ping", name))
	}

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	start := time.Now()
	if err := pinger.Ping(ctx); err != nil {
		return NewUnhealthyStatus(
			fmt.Sprintf("store '%s' is unreachable", name),
			map[string]any{
				"store": name,
				"error": err.Error(),
			},
		)
	}

	return Status{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("store '%s' is reachable", name),
		Details: map[string]any{
			"store":      name,
			"latency_ms": time.Since(start).Milliseconds(),
		},
	}
}

// BreakerCheck maps a circuit breaker state ("closed", "half-open", "open") to a
// status: open is unhealthy and half-open is degraded.
func BreakerCheck(name, state string) Status {
	switch state {
	case "closed":
		return NewHealthyStatus(fmt.Sprintf("circuit '%s' is closed", name))
	case "half-open":
		return NewDegradedStatus(
			fmt.Sprintf("circuit '%s' is half-open", name),
			map[string]any{"circuit": name, "state": state},
		)
	default:
		return NewUnhealthyStatus(
			fmt.Sprintf("circuit '%s' is %s", name, state),
			map[string]any{"circuit": name, "state": state},
		)
	}
}

// DataPathCheck reports whether the on-disk data of a store named name is present at
// path. A missing path is unhealthy.
//
// Example:
//
//	status := health.DataPathCheck("sqlite", "/var/lib/edgeidentity/identity.db")
func DataPathCheck(name, path string) Status {
	if path == "" {
		return NewUnhealthyStatus(fmt.Sprintf("store '%s' has no data path", name), map[string]any{"store": name})
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewUnhealthyStatus(
			fmt.Sprintf("data of store '%s' is missing", name),
			map[string]any{"store": name, "path": path},
		)
	case err != nil:
		return NewUnhealthyStatus(
			fmt.Sprintf("data of store '%s' is not accessible", name),
			map[string]any{"store": name, "path": path, "error": err.Error()},
		)
	}

	return Status{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("data of store '%s' is present", name),
		Details: map[string]any{"store": name, "path": path, "dir": info.IsDir()},
	}
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
//
// Example:
//
//	status := health.Combine(
//	    health.StoreCheck(ctx, "redis", store),
//	    health.BreakerCheck("eventhub-redis", hub.BreakerState()),
//	)
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return NewHealthyStatus("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthyChecks = append(unhealthyChecks, msg)
		case StatusDegraded:
			degradedChecks = append(degradedChecks, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthyChecks) > 0 {
		return NewUnhealthyStatus(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	if len(degradedChecks) > 0 {
		return NewDegradedStatus(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	return NewHealthyStatus(
		fmt.Sprintf("all %d check(s) passed", len(checks)),
	)
}

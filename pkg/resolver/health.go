package resolver

import (
	"context"
	"net/http"
	"time"
)

// StartHealthChecker probes the service periodically until ctx is cancelled
// or Close is called. Calling it more than once has no effect.
func (r *HTTPResolver) StartHealthChecker(ctx context.Context) {
	if !r.checkerStarted.CompareAndSwap(false, true) {
		return
	}
	go r.runHealthChecker(ctx)
}

func (r *HTTPResolver) runHealthChecker(ctx context.Context) {
	defer close(r.healthCheckStopped)

	interval := r.config.HealthCheckInterval
	if interval == 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("health checker started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("health checker stopped (context cancelled)")
			return

		case <-r.stopHealthCheck:
			r.logger.Debug("health checker stopped (resolver closed)")
			return

		case <-ticker.C:
			r.performHealthCheck(ctx)

			if !r.IsHealthy() {
				ticker.Reset(calculateBackoff(r.GetHealth().ConsecutiveFailures, interval))
			} else {
				ticker.Reset(interval)
			}
		}
	}
}

func (r *HTTPResolver) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := r.HealthCheck(checkCtx)
	latency := time.Since(start)

	if err != nil {
		r.updateHealth(false, err)
		r.logger.Error("health check failed", "error", err, "latency", latency)
		return
	}
	r.updateHealth(true, nil)
	r.logger.Debug("health check passed", "latency", latency)
}

// HealthCheck probes the service base URL. Any answer below 500 counts as
// reachable; the probe carries no value so most services reject it.
func (r *HTTPResolver) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{Service: r.config.Name, Cause: err}
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{Service: r.config.Name, StatusCode: resp.StatusCode}
	}
	return nil
}

// calculateBackoff stretches the probe interval while the service is down,
// capped at ten times the base interval and five minutes.
func calculateBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 1 << uint(min(consecutiveFailures, 4))
	if multiplier > 10 {
		multiplier = 10
	}

	backoff := baseInterval * time.Duration(multiplier)
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	return backoff
}

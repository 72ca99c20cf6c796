// Package health probes the durable store and publishes the result to the
// gRPC health service and the metrics gauge.
package health

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

// DurableStoreService is the gRPC health service name that follows the durable store.
const DurableStoreService = "authgate.DurableStore"

const probeTimeout = 2 * time.Second

// StatusSetter is satisfied by *health.Server from google.golang.org/grpc/health.
type StatusSetter interface {
	SetServingStatus(service string, servingStatus healthpb.HealthCheckResponse_ServingStatus)
}

// Gauge records whether the durable store answered.
type Gauge interface {
	SetDurableStoreUp(up bool)
}

type Monitor struct {
	pinger   model.Pinger
	status   StatusSetter
	gauge    Gauge
	interval time.Duration
	logger   *logger.Logger
}

// NewMonitor creates a monitor. pinger is nil when no durable store is
// configured; the store is then always reported as not serving.
func NewMonitor(pinger model.Pinger, status StatusSetter, gauge Gauge, interval time.Duration, logger *logger.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		status:   status,
		gauge:    gauge,
		interval: interval,
		logger:   logger,
	}
}

// Check probes the durable store once and publishes the result.
func (m *Monitor) Check(ctx context.Context) bool {
	up := false
	if m.pinger != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := m.pinger.Ping(probeCtx)
		cancel()
		if err != nil {
			m.logger.WarnContext(ctx, "Health monitor: durable store is unreachable",
				"error", err.Error())
		}
		up = err == nil
	}

	servingStatus := healthpb.HealthCheckResponse_NOT_SERVING
	if up {
		servingStatus = healthpb.HealthCheckResponse_SERVING
	}
	if m.status != nil {
		m.status.SetServingStatus(DurableStoreService, servingStatus)
	}
	if m.gauge != nil {
		m.gauge.SetDurableStoreUp(up)
	}

	return up
}

// Run probes immediately and then on every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)
	if m.pinger == nil || m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for ingest operations.
var (
	tracer = otel.Tracer("tm.ingest")
	meter  = otel.Meter("tm.ingest")
)

// Instruments for the ingest pipeline.
var (
	systemsTotal    metric.Int64Counter
	routesTotal     metric.Int64Counter
	waypointsTotal  metric.Int64Counter
	findingsTotal   metric.Int64Counter
	configErrors    metric.Int64Counter
	wptReadDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		systemsTotal, err = meter.Int64Counter(
			"ingest_systems_total",
			metric.WithDescription("Highway systems loaded"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		routesTotal, err = meter.Int64Counter(
			"ingest_routes_total",
			metric.WithDescription("Chopped routes loaded"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		waypointsTotal, err = meter.Int64Counter(
			"ingest_waypoints_total",
			metric.WithDescription("Waypoints accepted from wpt files"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsTotal, err = meter.Int64Counter(
			"ingest_datacheck_findings_total",
			metric.WithDescription("Datacheck findings recorded"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		configErrors, err = meter.Int64Counter(
			"ingest_config_errors_total",
			metric.WithDescription("Configuration errors recorded"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		wptReadDuration, err = meter.Float64Histogram(
			"ingest_wpt_read_duration_seconds",
			metric.WithDescription("Per-system wpt read duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

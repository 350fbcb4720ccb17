// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry bootstraps the OpenTelemetry SDK for the siteupdate
// tool. Exporters are selected by name so the default run stays silent:
//
//   - traces: "none" (default) or "stdout"
//   - metrics: "none" (default), "stdout", or "prometheus"
//
// The prometheus choice registers the OTel metrics on a dedicated registry
// and serves it at /metrics on PrometheusAddr for scraping during long
// ingest runs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects the exporters.
type Config struct {
	// ServiceName labels all telemetry from this process.
	ServiceName string

	// TraceExporter is "none" or "stdout".
	TraceExporter string

	// MetricExporter is "none", "stdout", or "prometheus".
	MetricExporter string

	// PrometheusAddr is the listen address for /metrics when
	// MetricExporter is "prometheus".
	PrometheusAddr string
}

// DefaultConfig returns the silent configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "siteupdate",
		TraceExporter:  "none",
		MetricExporter: "none",
		PrometheusAddr: ":9464",
	}
}

// ShutdownFunc flushes and stops everything Init started.
type ShutdownFunc func(context.Context) error

// Init installs the global tracer and meter providers per cfg and returns
// a shutdown function. With both exporters "none" it installs nothing and
// the returned shutdown is a no-op.
func Init(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	res := sdkresource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	var shutdowns []ShutdownFunc

	switch cfg.TraceExporter {
	case "", "none":
	case "stdout":
		exp, err := stdouttrace.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter)
	}

	switch cfg.MetricExporter {
	case "", "none":
	case "stdout":
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	case "prometheus":
		registry := promclient.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exp),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              cfg.PrometheusAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				otel.Handle(err)
			}
		}()
		shutdowns = append(shutdowns, srv.Shutdown)
	default:
		return nil, fmt.Errorf("unknown metric exporter %q", cfg.MetricExporter)
	}

	return func(ctx context.Context) error {
		var errs []error
		for _, stop := range shutdowns {
			if err := stop(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest drives the highway data ingest pipeline: the taxonomy and
// system CSVs are read single-threaded in dependency order, the wpt tree is
// crawled, and then a worker pool reads every route's waypoints, populating
// the shared quadtree and the datacheck findings.
//
// The pipeline is total over bad data. Malformed lines, oversize fields,
// and unresolvable codes accumulate in the dataset's error list while
// sentinel records let parsing continue; only environment problems (an
// unusable configuration) surface as Go errors.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/hwy"
	"github.com/TravelMapping/siteupdate/services/ingest/quadtree"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// Options configures one ingest run.
type Options struct {
	// DataRoot is the highway data directory.
	DataRoot string

	// SystemsFile is the systems list name relative to DataRoot.
	// Default: "systems.csv".
	SystemsFile string

	// NumThreads is the waypoint-phase worker count.
	// Default: runtime.NumCPU().
	NumThreads int

	// SplitRegion is recorded for the graph generation collaborator; it
	// does not alter ingest semantics.
	SplitRegion string

	// Quadtree tunes the spatial index refinement.
	Quadtree quadtree.Options
}

func (o Options) withDefaults() Options {
	if o.SystemsFile == "" {
		o.SystemsFile = "systems.csv"
	}
	if o.NumThreads == 0 {
		o.NumThreads = runtime.NumCPU()
	}
	return o
}

// Result is the in-memory object graph an ingest run produces. The error
// list and datacheck findings hang off Data.
type Result struct {
	Data *hwy.Dataset
	Tree *quadtree.WaypointQuadtree
}

// Run executes the full ingest pipeline against opts.DataRoot.
//
// The CSV phases run sequentially because each layer resolves references
// into the previous one; the waypoint phase fans systems out over
// NumThreads workers. Run returns an error only for unusable options —
// data problems are reported through the result's error list so one run
// surfaces every problem in the tree.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.DataRoot == "" {
		return nil, ErrNoDataRoot
	}
	opts = opts.withDefaults()
	if opts.NumThreads < 1 {
		return nil, ErrBadThreadCount
	}
	if err := initMetrics(); err != nil {
		slog.Warn("metrics unavailable", "error", err)
	}

	ctx, span := tracer.Start(ctx, "ingest.Run",
		trace.WithAttributes(
			attribute.String("data_root", opts.DataRoot),
			attribute.String("systems_file", opts.SystemsFile),
			attribute.Int("num_threads", opts.NumThreads),
		))
	defer span.End()

	ds := hwy.NewDataset(opts.DataRoot, opts.SystemsFile)
	tree := quadtree.NewWithOptions(-90, -180, 90, 180, opts.Quadtree)

	slog.Info("reading region, country, and continent descriptions")
	readContinents(ds)
	readCountries(ds)
	readRegions(ds)

	slog.Info("reading systems list", "path", filepath.Join(ds.DataRoot, ds.SystemsFile))
	readSystems(ds)

	crawlWptFiles(ds)
	slog.Info("found wpt files", "count", len(ds.AllWptFiles))

	slog.Info("reading waypoints for all routes", "workers", opts.NumThreads)
	readAllWpt(ctx, ds, tree, opts.NumThreads)

	if errs := ds.Errors.Len(); errs > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d configuration errors", errs))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if configErrors != nil {
		configErrors.Add(ctx, int64(ds.Errors.Len()))
	}
	if findingsTotal != nil {
		findingsTotal.Add(ctx, int64(ds.Findings.Len()))
	}
	span.SetAttributes(
		attribute.Int("systems", len(ds.Systems)),
		attribute.Int("waypoints", tree.Size()),
		attribute.Int("config_errors", ds.Errors.Len()),
		attribute.Int("datacheck_findings", ds.Findings.Len()),
	)

	slog.Info("ingest complete",
		"systems", len(ds.Systems),
		"waypoints", tree.Size(),
		"config_errors", ds.Errors.Len(),
		"datacheck_findings", ds.Findings.Len(),
	)
	return &Result{Data: ds, Tree: tree}, nil
}

// readCSVLines opens a taxonomy CSV and returns its data lines with the
// header dropped, DOS line endings trimmed, and blanks skipped. A missing
// file is reported and yields no lines.
func readCSVLines(ds *hwy.Dataset, path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		ds.Errors.Add("Could not open " + path)
		return nil
	}
	var out []string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if i == 0 || line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// readContinents loads continents.csv and appends the sentinel continent
// that unknown codes resolve to.
func readContinents(ds *hwy.Dataset) {
	path := filepath.Join(ds.DataRoot, "continents.csv")
	for _, line := range readCSVLines(ds, path) {
		fields := textutil.Split(line, ';')
		if len(fields) != 2 {
			ds.Errors.Add(fmt.Sprintf("Could not parse continents.csv line: [%s], expected 2 fields, found %d", line, len(fields)))
			continue
		}
		if len(fields[0]) > dbfield.ContinentCode {
			ds.Errors.Add(fmt.Sprintf("Continent code > %d bytes in continents.csv line %s", dbfield.ContinentCode, line))
		}
		if len(fields[1]) > dbfield.ContinentName {
			ds.Errors.Add(fmt.Sprintf("Continent name > %d bytes in continents.csv line %s", dbfield.ContinentName, line))
		}
		ds.Continents = append(ds.Continents, &hwy.Continent{Code: fields[0], Name: fields[1]})
	}
	ds.Continents = append(ds.Continents, &hwy.Continent{Code: "error", Name: "unrecognized continent code"})
}

// readCountries loads countries.csv and appends the sentinel country.
func readCountries(ds *hwy.Dataset) {
	path := filepath.Join(ds.DataRoot, "countries.csv")
	for _, line := range readCSVLines(ds, path) {
		fields := textutil.Split(line, ';')
		if len(fields) != 2 {
			ds.Errors.Add(fmt.Sprintf("Could not parse countries.csv line: [%s], expected 2 fields, found %d", line, len(fields)))
			continue
		}
		if len(fields[0]) > dbfield.CountryCode {
			ds.Errors.Add(fmt.Sprintf("Country code > %d bytes in countries.csv line %s", dbfield.CountryCode, line))
		}
		if len(fields[1]) > dbfield.CountryName {
			ds.Errors.Add(fmt.Sprintf("Country name > %d bytes in countries.csv line %s", dbfield.CountryName, line))
		}
		ds.Countries = append(ds.Countries, &hwy.Country{Code: fields[0], Name: fields[1]})
	}
	ds.Countries = append(ds.Countries, &hwy.Country{Code: "error", Name: "unrecognized country code"})
}

// readRegions loads regions.csv and appends the sentinel region so route
// lines with unknown region codes still resolve.
func readRegions(ds *hwy.Dataset) {
	path := filepath.Join(ds.DataRoot, "regions.csv")
	for _, line := range readCSVLines(ds, path) {
		if r := hwy.NewRegion(line, ds); r != nil {
			ds.Regions = append(ds.Regions, r)
			ds.RegionByCode[r.Code] = r
		}
	}
	errRegion := hwy.NewRegion("error;unrecognized region code;error;error;unrecognized region code", ds)
	ds.Regions = append(ds.Regions, errRegion)
	ds.RegionByCode[errRegion.Code] = errRegion
}

// readSystems loads systems.csv. Blank lines are skipped; comment lines
// are collected and reported after the read, as the original tooling does.
func readSystems(ds *hwy.Dataset) {
	path := filepath.Join(ds.DataRoot, ds.SystemsFile)
	var ignoring []string
	for _, line := range readCSVLines(ds, path) {
		if line[0] == '#' {
			ignoring = append(ignoring, line)
			continue
		}
		if hs := hwy.NewHighwaySystem(line, ds); hs != nil {
			ds.Systems = append(ds.Systems, hs)
		}
	}
	for _, line := range ignoring {
		slog.Info("ignored comment in systems file", "file", ds.SystemsFile, "line", line)
	}
}

// readAllWpt distributes systems over the worker pool. Each worker claims
// one system at a time and reads its routes sequentially; all cross-route
// state (the quadtree, the sinks, the crawled-file set) synchronizes
// itself.
func readAllWpt(ctx context.Context, ds *hwy.Dataset, tree *quadtree.WaypointQuadtree, workers int) {
	var g errgroup.Group
	g.SetLimit(workers)
	for _, h := range ds.Systems {
		g.Go(func() error {
			start := time.Now()
			_, span := tracer.Start(ctx, "ingest.readSystemWpt",
				trace.WithAttributes(attribute.String("system", h.Name)))
			defer span.End()

			usa := h.Country != nil && h.Country.Code == "USA"
			points := 0
			for _, r := range h.Routes {
				r.ReadWpt(ds, tree, usa)
				points += len(r.Points)
			}
			span.SetAttributes(
				attribute.Int("routes", len(h.Routes)),
				attribute.Int("waypoints", points),
			)
			if systemsTotal != nil {
				systemsTotal.Add(ctx, 1)
				routesTotal.Add(ctx, int64(len(h.Routes)))
				waypointsTotal.Add(ctx, int64(points),
					metric.WithAttributes(attribute.String("system", h.Name)))
				wptReadDuration.Record(ctx, time.Since(start).Seconds())
			}
			slog.Debug("read system waypoints", "system", h.Name, "waypoints", points)
			return nil
		})
	}
	// workers report data problems through the sinks, never as errors
	_ = g.Wait()
}

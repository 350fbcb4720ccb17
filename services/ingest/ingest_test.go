// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
)

// writeCaliforniaTree builds the minimal one-system data tree: one
// continent, one country, one region, one system with one route, whose wpt
// file holds wptLines, forming a single connected route.
func writeCaliforniaTree(t *testing.T, level string, wptLines string) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"continents.csv": "code;name\nNA;North America\n",
		"countries.csv":  "code;name\nUSA;United States\n",
		"regions.csv":    "code;name;country;continent;regiontype\nCA;California;USA;NA;state\n",
		"systems.csv":    "System;CountryCode;Name;Color;Tier;Level\nusaca;USA;California;red;1;" + level + "\n",
		filepath.Join("hwy_data", "_systems", "usaca.csv"): "System;Region;Route;Banner;Abbrev;City;Root;AltRouteNames\n" +
			"usaca;CA;SR;;;Anywhere;ca.sr001;\n",
		filepath.Join("hwy_data", "_systems", "usaca_con.csv"): "System;Route;Banner;GroupName;Roots\n" +
			"usaca;SR;;Anywhere;ca.sr001\n",
		filepath.Join("hwy_data", "CA", "usaca", "ca.sr001.wpt"): wptLines,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

const twoPointWpt = "A http://osm.org/?lat=34&lon=-118\n" +
	"B http://osm.org/?lat=34.2&lon=-118\n"

func TestRunCleanActiveSystem(t *testing.T) {
	root := writeCaliforniaTree(t, "active", twoPointWpt)

	result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 1})
	require.NoError(t, err)

	ds := result.Data
	assert.Empty(t, ds.Errors.Entries())

	require.Len(t, ds.Systems, 1)
	sys := ds.Systems[0]
	require.Len(t, sys.Routes, 1)
	r := sys.Routes[0]

	require.Len(t, r.Points, 2)
	require.Len(t, r.Segments, 1)
	assert.InDelta(t, 14.13, r.Segments[0].Length, 0.05)

	// over ten visible miles, but the system is active, so no finding
	assert.Empty(t, ds.Findings.Findings())
	assert.Equal(t, 2, result.Tree.Size())
	assert.Empty(t, ds.RemainingWptFiles(), "every crawled wpt file was claimed")
}

func TestRunDevelSystemReportsVisibleDistance(t *testing.T) {
	root := writeCaliforniaTree(t, "devel", twoPointWpt)

	result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 1})
	require.NoError(t, err)

	findings := result.Data.Findings.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, datacheck.VisibleDistance, findings[0].Code)
	assert.Equal(t, "A", findings[0].Label1)
	assert.Equal(t, "B", findings[0].Label2)
	assert.InDelta(t, 14.13, atof(t, findings[0].Info), 0.05)
}

func TestRunLabelLooksHidden(t *testing.T) {
	root := writeCaliforniaTree(t, "devel",
		"X123456 http://osm.org/?lat=0.01&lon=0.01\n"+
			"B http://osm.org/?lat=0.02&lon=0.01\n")

	result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 1})
	require.NoError(t, err)

	var codes []datacheck.Code
	for _, f := range result.Data.Findings.Findings() {
		codes = append(codes, f.Code)
	}
	assert.Contains(t, codes, datacheck.LabelLooksHidden)
}

func TestRunOrphanWptFileRemains(t *testing.T) {
	root := writeCaliforniaTree(t, "active", twoPointWpt)
	orphan := filepath.Join(root, "hwy_data", "CA", "usaca", "ca.orphan.wpt")
	require.NoError(t, os.WriteFile(orphan, []byte(twoPointWpt), 0644))

	result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 1})
	require.NoError(t, err)

	remaining := result.Data.RemainingWptFiles()
	require.Len(t, remaining, 1)
	assert.Equal(t, orphan, remaining[0])
}

func TestRunMissingTaxonomyFiles(t *testing.T) {
	result, err := Run(context.Background(), Options{DataRoot: t.TempDir(), NumThreads: 1})
	require.NoError(t, err, "data problems never become Go errors")

	entries := result.Data.Errors.Entries()
	assert.NotEmpty(t, entries)

	// sentinels exist even when every file is missing
	assert.NotNil(t, result.Data.CountryByCode("error"))
	assert.NotNil(t, result.Data.ContinentByCode("error"))
	assert.NotNil(t, result.Data.RegionByCode["error"])
}

func TestRunSkipsCommentsInSystemsFile(t *testing.T) {
	root := writeCaliforniaTree(t, "active", twoPointWpt)
	path := filepath.Join(root, "systems.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, []byte("# a comment line\n")...), 0644))

	result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 1})
	require.NoError(t, err)
	assert.Len(t, result.Data.Systems, 1)
	assert.Empty(t, result.Data.Errors.Entries())
}

func TestRunTwiceProducesIdenticalLogs(t *testing.T) {
	root := writeCaliforniaTree(t, "devel",
		"A http://osm.org/?lat=34&lon=-118\n"+
			"X123456 http://osm.org/?lat=34.2&lon=-118\n"+
			"B_ http://osm.org/?lat=34.21&lon=-118.01\n")

	logs := func() ([]string, []string) {
		result, err := Run(context.Background(), Options{DataRoot: root, NumThreads: 2})
		require.NoError(t, err)
		errs := result.Data.Errors.Entries()
		var findings []string
		for _, f := range result.Data.Findings.Findings() {
			findings = append(findings, f.String())
		}
		sort.Strings(errs)
		sort.Strings(findings)
		return errs, findings
	}

	errs1, findings1 := logs()
	errs2, findings2 := logs()
	assert.Equal(t, errs1, errs2)
	assert.Equal(t, findings1, findings2)
	assert.NotEmpty(t, findings1)
}

func TestRunRejectsBadOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoDataRoot)

	_, err = Run(context.Background(), Options{DataRoot: "x", NumThreads: -1})
	assert.ErrorIs(t, err, ErrBadThreadCount)
}

func atof(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hwy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
)

func TestNewWaypointParsesLabelsAndCoords(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w, bad := NewWaypoint("A +AltA +AltB http://osm.org/?lat=34.5&lon=-118.25", r, ds.Findings)
	require.False(t, bad)
	assert.Equal(t, "A", w.Label)
	assert.Equal(t, []string{"+AltA", "+AltB"}, w.AltLabels)
	assert.Equal(t, 34.5, w.Lat)
	assert.Equal(t, -118.25, w.Lng)
	assert.False(t, w.Hidden)
	assert.Zero(t, ds.Findings.Len())
}

func TestNewWaypointURLOnlyLineGetsNullLabel(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w, bad := NewWaypoint("http://osm.org/?lat=1&lon=2", r, ds.Findings)
	require.False(t, bad)
	assert.Equal(t, "NULL", w.Label)
	assert.Empty(t, w.AltLabels)
}

func TestNewWaypointHiddenLabel(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w, _ := NewWaypoint("+X123456 http://osm.org/?lat=1&lon=2", r, ds.Findings)
	assert.True(t, w.Hidden)
}

func TestNewWaypointMissingURLArgs(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w, bad := NewWaypoint("A http://osm.org/?lat=34.5", r, ds.Findings)
	assert.True(t, bad)
	assert.Zero(t, w.Lat)
	assert.Zero(t, w.Lng)

	findings := ds.Findings.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, datacheck.MalformedURL, findings[0].Code)
	assert.Equal(t, "MISSING_ARG(S)", findings[0].Info)
}

func TestNewWaypointMalformedCoords(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w, bad := NewWaypoint("A http://osm.org/?lat=bogus&lon=-118", r, ds.Findings)
	assert.True(t, bad)
	assert.Zero(t, w.Lat)
	assert.Zero(t, w.Lng)

	findings := ds.Findings.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, datacheck.MalformedLat, findings[0].Code)
	assert.Equal(t, "bogus", findings[0].Info)
}

func TestNewWaypointMalformedCoordValueIsTruncated(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	junk := strings.Repeat("z", 100)
	_, bad := NewWaypoint("A http://osm.org/?lat=1&lon="+junk, r, ds.Findings)
	assert.True(t, bad)

	findings := ds.Findings.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, datacheck.MalformedLon, findings[0].Code)
	assert.True(t, strings.HasSuffix(findings[0].Info, "..."))
	assert.LessOrEqual(t, len(findings[0].Info), 59)
}

func TestDistanceToIsSymmetricAndNonNegative(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	a := newTestWaypoint(r, "A", 34, -118)
	b := newTestWaypoint(r, "B", 34.2, -118)

	assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-12)
	assert.Greater(t, a.DistanceTo(b), 0.0)
	assert.Zero(t, a.DistanceTo(a))

	// 0.2 degrees of latitude with the curve factor applied
	assert.InDelta(t, 14.13, a.DistanceTo(b), 0.05)
}

func TestAngleRange(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	// right-angle corner
	a := newTestWaypoint(r, "A", 34, -118)
	b := newTestWaypoint(r, "B", 34.1, -118)
	c := newTestWaypoint(r, "C", 34.1, -117.9)
	angle := b.Angle(a, c)
	assert.Greater(t, angle, 0.0)
	assert.Less(t, angle, 180.0)
	assert.InDelta(t, 90, angle, 5)

	// a hairpin turn approaches 180
	d := newTestWaypoint(r, "D", 34.0001, -118.0001)
	assert.Greater(t, b.Angle(a, d), 135.0)
}

func TestWaypointString(t *testing.T) {
	ds := newTestDataset(t)
	sys := newTestSystem("usaca", LevelActive, ds)
	r := newTestRoute(ds, sys, "SR", "", "ca.sr001")

	w := newTestWaypoint(r, "A", 34, -118.25)
	assert.Equal(t, "ca.sr001 A (34.0,-118.25)", w.String())
}

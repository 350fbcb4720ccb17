// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package quadtree

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TravelMapping/siteupdate/services/ingest/hwy"
)

func wp(label string, lat, lng float64) *hwy.Waypoint {
	return &hwy.Waypoint{Label: label, Lat: lat, Lng: lng}
}

func worldTree() *WaypointQuadtree {
	return New(-90, -180, 90, 180)
}

func TestInsertAndLookup(t *testing.T) {
	tree := worldTree()
	a := wp("A", 34, -118)
	b := wp("B", 40.7, -74)
	tree.Insert(a)
	tree.Insert(b)

	assert.Equal(t, 2, tree.Size())
	assert.Same(t, a, tree.WaypointAtSamePoint(wp("probe", 34, -118)))
	assert.Same(t, b, tree.WaypointAtSamePoint(wp("probe", 40.7, -74)))
	assert.Nil(t, tree.WaypointAtSamePoint(wp("probe", 0, 0)))
}

func TestInsertLinksColocatedGroup(t *testing.T) {
	tree := worldTree()
	a := wp("A", 34, -118)
	b := wp("B", 34, -118)
	c := wp("C", 34, -118)
	tree.Insert(a)
	tree.Insert(b)
	tree.Insert(c)

	require.NotNil(t, a.Colocated)
	assert.Same(t, a.Colocated, b.Colocated, "one shared group")
	assert.Same(t, a.Colocated, c.Colocated)
	assert.Equal(t, []*hwy.Waypoint{a, b, c}, a.Colocated.Points, "insertion order preserved")
	assert.Equal(t, 3, tree.Size(), "colocated points are all stored")
	assert.Equal(t, 3, tree.MaxColocated())
}

// TestEveryStoredWaypointHasOneRepresentative checks that lookups resolve
// to exactly one representative per location after refinement.
func TestEveryStoredWaypointHasOneRepresentative(t *testing.T) {
	tree := NewWithOptions(-90, -180, 90, 180, Options{RefineThreshold: 4})
	var points []*hwy.Waypoint
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			p := wp(fmt.Sprintf("P%d_%d", i, j), float64(i)*3.5-40, float64(j)*7.1-100)
			points = append(points, p)
			tree.Insert(p)
		}
	}
	require.Equal(t, 100, tree.Size())
	assert.Greater(t, tree.TotalNodes(), 1, "tree refined past the threshold")

	for _, p := range points {
		rep := tree.WaypointAtSamePoint(p)
		require.NotNil(t, rep, "no representative for %s", p.Label)
		assert.Equal(t, p.Lat, rep.Lat)
		assert.Equal(t, p.Lng, rep.Lng)
	}
}

func TestRefineDoesNotSplitColocatedCluster(t *testing.T) {
	// hundreds of points at one location never force refinement,
	// because colocated points do not add unique locations
	tree := NewWithOptions(-90, -180, 90, 180, Options{RefineThreshold: 4})
	for i := 0; i < 300; i++ {
		tree.Insert(wp(fmt.Sprintf("P%d", i), 10, 10))
	}
	assert.Equal(t, 300, tree.Size())
	assert.Equal(t, 1, tree.TotalNodes())
	assert.Equal(t, 300, tree.MaxColocated())
}

func TestNearMissWaypoints(t *testing.T) {
	tree := worldTree()
	a := wp("A", 34, -118)
	near := wp("Near", 34.00001, -118.00001)
	far := wp("Far", 35, -118)
	same := wp("Same", 34, -118)
	tree.Insert(a)
	tree.Insert(near)
	tree.Insert(far)
	tree.Insert(same)

	got := tree.NearMissWaypoints(a, 0.0001)
	require.Len(t, got, 1, "exact matches and distant points excluded")
	assert.Same(t, near, got[0])
}

func TestNearMissAcrossQuadrantBoundary(t *testing.T) {
	tree := NewWithOptions(-90, -180, 90, 180, Options{RefineThreshold: 2})
	// force refinement around the equator/prime meridian
	pts := []*hwy.Waypoint{
		wp("NE", 0.00001, 0.00001),
		wp("NW", 0.00001, -0.00001),
		wp("SE", -0.00001, 0.00001),
		wp("SW", -0.00001, -0.00001),
		wp("FarA", 50, 50), wp("FarB", -50, 50), wp("FarC", 50, -50),
	}
	for _, p := range pts {
		tree.Insert(p)
	}
	require.Greater(t, tree.TotalNodes(), 1)

	got := tree.NearMissWaypoints(pts[0], 0.001)
	assert.Len(t, got, 3, "neighbors found across quadrant boundaries")
}

func TestConcurrentInserts(t *testing.T) {
	tree := NewWithOptions(-90, -180, 90, 180, Options{RefineThreshold: 8})
	const workers = 8
	const perWorker = 400

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				lat := float64((id*perWorker+i)%170) - 85
				lng := float64((id*7919+i*13)%350) - 175
				tree.Insert(wp(fmt.Sprintf("W%d_%d", id, i), lat, lng))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, tree.Size(), "no insert lost under contention")
	assert.Equal(t, workers*perWorker, len(tree.PointList()))
}

func TestStringDescribesNode(t *testing.T) {
	tree := worldTree()
	tree.Insert(wp("A", 34, -118))
	assert.Contains(t, tree.String(), "1 points")
	assert.Contains(t, tree.String(), "leaf")
}

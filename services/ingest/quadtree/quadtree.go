// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quadtree provides the point-region quadtree over all waypoints,
// used to discover colocated points during ingest and near-miss pairs
// afterwards.
//
// Insert is safe for concurrent use by the waypoint worker pool: descent
// holds one node lock at a time, always top-down, so workers traversing
// disjoint quadrants never contend. A refine, which runs under the
// refining node's lock, also locks the new children below it. The read-side queries
// (WaypointAtSamePoint, NearMissWaypoints, the size accessors) take no
// locks and are meant for use after all inserts complete.
package quadtree

import (
	"fmt"
	"sync"

	"github.com/TravelMapping/siteupdate/services/ingest/hwy"
)

// Refinement defaults. A leaf refines once it holds more than
// DefaultRefineThreshold unique locations, unless its extent has shrunk to
// DefaultMinNodeSize degrees, below which it grows without bound instead of
// splitting forever over a dense cluster.
const (
	DefaultRefineThreshold = 50
	DefaultMinNodeSize     = 0.0000001
)

// Options tunes refinement. The zero value selects the defaults.
type Options struct {
	// RefineThreshold is the unique-location count above which a leaf
	// refines into four children.
	RefineThreshold int

	// MinNodeSize is the extent in degrees below which a node never
	// refines.
	MinNodeSize float64
}

func (o Options) withDefaults() Options {
	if o.RefineThreshold <= 0 {
		o.RefineThreshold = DefaultRefineThreshold
	}
	if o.MinNodeSize <= 0 {
		o.MinNodeSize = DefaultMinNodeSize
	}
	return o
}

// WaypointQuadtree is one node of the recursive quadtree structure storing
// waypoints for efficient geometric searching. A node is either a leaf
// holding points or refined into four children about its midpoint.
type WaypointQuadtree struct {
	minLat, minLng, maxLat, maxLng float64
	midLat, midLng                 float64

	nw, ne, sw, se *WaypointQuadtree

	points          []*hwy.Waypoint
	uniqueLocations int

	opts Options
	mu   sync.Mutex
}

// New returns an empty quadtree covering the given bounds with default
// refinement options. The whole-world tree is New(-90, -180, 90, 180).
func New(minLat, minLng, maxLat, maxLng float64) *WaypointQuadtree {
	return NewWithOptions(minLat, minLng, maxLat, maxLng, Options{})
}

// NewWithOptions returns an empty quadtree with explicit refinement
// options.
func NewWithOptions(minLat, minLng, maxLat, maxLng float64, opts Options) *WaypointQuadtree {
	return &WaypointQuadtree{
		minLat: minLat,
		minLng: minLng,
		maxLat: maxLat,
		maxLng: maxLng,
		midLat: (minLat + maxLat) / 2,
		midLng: (minLng + maxLng) / 2,
		opts:   opts.withDefaults(),
	}
}

func (t *WaypointQuadtree) refined() bool {
	return t.nw != nil
}

// childFor returns the child quadrant containing (lat, lng).
// Must only be called on a refined node.
func (t *WaypointQuadtree) childFor(lat, lng float64) *WaypointQuadtree {
	if lat < t.midLat {
		if lng < t.midLng {
			return t.sw
		}
		return t.se
	}
	if lng < t.midLng {
		return t.nw
	}
	return t.ne
}

// Insert adds w to the tree. If a waypoint already stored has exactly the
// same coordinates, w is linked into that waypoint's colocated group and
// the node's unique-location count is unchanged; otherwise the leaf grows
// and refines once it exceeds the threshold.
func (t *WaypointQuadtree) Insert(w *hwy.Waypoint) {
	t.insert(w, true)
}

// insert walks down to the leaf for w, holding one node lock at a time.
// link selects whether a same-point hit joins colocated groups; it is
// false while refine redistributes points that are already grouped.
func (t *WaypointQuadtree) insert(w *hwy.Waypoint, link bool) {
	n := t
	for {
		n.mu.Lock()
		if n.refined() {
			next := n.childFor(w.Lat, w.Lng)
			n.mu.Unlock()
			n = next
			continue
		}
		if other := n.samePointLocked(w); other != nil {
			if link {
				joinColocated(other, w)
			}
			n.points = append(n.points, w)
			n.mu.Unlock()
			return
		}
		n.points = append(n.points, w)
		n.uniqueLocations++
		if n.uniqueLocations > n.opts.RefineThreshold &&
			(n.maxLat-n.minLat > n.opts.MinNodeSize || n.maxLng-n.minLng > n.opts.MinNodeSize) {
			n.refineLocked()
		}
		n.mu.Unlock()
		return
	}
}

// samePointLocked returns a stored waypoint with w's exact coordinates, or
// nil. Caller holds n's lock.
func (n *WaypointQuadtree) samePointLocked(w *hwy.Waypoint) *hwy.Waypoint {
	for _, p := range n.points {
		if p != w && p.SameCoords(w) {
			return p
		}
	}
	return nil
}

// joinColocated links w into other's colocated group, creating the shared
// group on first contact. The group enumerates all members in insertion
// order.
func joinColocated(other, w *hwy.Waypoint) {
	if other.Colocated == nil {
		other.Colocated = &hwy.ColocatedGroup{Points: []*hwy.Waypoint{other, w}}
		w.Colocated = other.Colocated
		return
	}
	other.Colocated.Points = append(other.Colocated.Points, w)
	w.Colocated = other.Colocated
}

// refineLocked splits the leaf about its midpoint and redistributes its
// points into the children. Caller holds n's lock; child locks nest below
// it, preserving the top-down order. Redistribution can refine a child in
// turn when every unique location lands in one quadrant.
func (n *WaypointQuadtree) refineLocked() {
	n.nw = NewWithOptions(n.midLat, n.minLng, n.maxLat, n.midLng, n.opts)
	n.ne = NewWithOptions(n.midLat, n.midLng, n.maxLat, n.maxLng, n.opts)
	n.sw = NewWithOptions(n.minLat, n.minLng, n.midLat, n.midLng, n.opts)
	n.se = NewWithOptions(n.minLat, n.midLng, n.midLat, n.maxLng, n.opts)

	points := n.points
	n.points = nil
	n.uniqueLocations = 0
	for _, p := range points {
		n.childFor(p.Lat, p.Lng).insert(p, false)
	}
}

// WaypointAtSamePoint returns the stored representative with w's exact
// coordinates, or nil. Lock-free: call after all inserts complete.
func (t *WaypointQuadtree) WaypointAtSamePoint(w *hwy.Waypoint) *hwy.Waypoint {
	n := t
	for n.refined() {
		n = n.childFor(w.Lat, w.Lng)
	}
	for _, p := range n.points {
		if p.SameCoords(w) {
			return p
		}
	}
	return nil
}

// NearMissWaypoints returns the waypoints within tolerance of w in both
// coordinates, excluding exact matches, descending only into overlapping
// quadrants. Lock-free: call after all inserts complete.
func (t *WaypointQuadtree) NearMissWaypoints(w *hwy.Waypoint, tolerance float64) []*hwy.Waypoint {
	var out []*hwy.Waypoint
	t.nearMiss(w, tolerance, &out)
	return out
}

func (t *WaypointQuadtree) nearMiss(w *hwy.Waypoint, tolerance float64, out *[]*hwy.Waypoint) {
	if w.Lat+tolerance < t.minLat || w.Lat-tolerance > t.maxLat ||
		w.Lng+tolerance < t.minLng || w.Lng-tolerance > t.maxLng {
		return
	}
	if t.refined() {
		t.nw.nearMiss(w, tolerance, out)
		t.ne.nearMiss(w, tolerance, out)
		t.sw.nearMiss(w, tolerance, out)
		t.se.nearMiss(w, tolerance, out)
		return
	}
	for _, p := range t.points {
		if p == w || p.SameCoords(w) {
			continue
		}
		if p.Lat > w.Lat-tolerance && p.Lat < w.Lat+tolerance &&
			p.Lng > w.Lng-tolerance && p.Lng < w.Lng+tolerance {
			*out = append(*out, p)
		}
	}
}

// Size returns the total number of waypoints stored.
func (t *WaypointQuadtree) Size() int {
	if t.refined() {
		return t.nw.Size() + t.ne.Size() + t.sw.Size() + t.se.Size()
	}
	return len(t.points)
}

// PointList returns every stored waypoint.
func (t *WaypointQuadtree) PointList() []*hwy.Waypoint {
	if !t.refined() {
		out := make([]*hwy.Waypoint, len(t.points))
		copy(out, t.points)
		return out
	}
	var out []*hwy.Waypoint
	for _, c := range []*WaypointQuadtree{t.nw, t.ne, t.sw, t.se} {
		out = append(out, c.PointList()...)
	}
	return out
}

// TotalNodes returns the number of nodes in the tree, leaves included.
func (t *WaypointQuadtree) TotalNodes() int {
	if !t.refined() {
		return 1
	}
	return 1 + t.nw.TotalNodes() + t.ne.TotalNodes() + t.sw.TotalNodes() + t.se.TotalNodes()
}

// MaxColocated returns the size of the largest colocated group, or 1 when
// no two waypoints share coordinates.
func (t *WaypointQuadtree) MaxColocated() int {
	max := 1
	for _, p := range t.PointList() {
		if p.Colocated != nil && len(p.Colocated.Points) > max {
			max = len(p.Colocated.Points)
		}
	}
	return max
}

// String describes the node's extent and population.
func (t *WaypointQuadtree) String() string {
	kind := "leaf"
	if t.refined() {
		kind = "refined"
	}
	return fmt.Sprintf("WaypointQuadtree (%.6g,%.6g):(%.6g,%.6g) %s with %d points",
		t.minLat, t.minLng, t.maxLat, t.maxLng, kind, t.Size())
}

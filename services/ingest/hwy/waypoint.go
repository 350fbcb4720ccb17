// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hwy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// Spherical geometry constants. EarthDiameter is in miles; DistanceFactor
// compensates for curves the point-to-point plot cannot follow.
const (
	EarthDiameter  = 7926.2
	DistanceFactor = 1.02112
)

// ColocatedGroup is the shared list of waypoints stored at exactly the same
// coordinates. One list is hung off every member, in insertion order, so any
// member can enumerate the whole group.
type ColocatedGroup struct {
	Points []*Waypoint
}

// Waypoint is one point of a route, read from one line of a wpt file.
//
// A line consists of one or more labels followed by an OSM URL encoding the
// coordinates. At most one label is the visible one; alternates and labels
// beginning with '+' are hidden from travelers.
type Waypoint struct {
	Route     *Route
	Label     string
	AltLabels []string
	Lat, Lng  float64
	Hidden    bool

	// Colocated is nil until the quadtree finds another waypoint at the
	// same coordinates.
	Colocated *ColocatedGroup

	// NearMissPoints is filled by the near-miss pass after ingest.
	NearMissPoints []*Waypoint
}

// NewWaypoint parses one non-empty wpt line. All whitespace-separated
// tokens are labels except the last, which is the URL; a URL-only line gets
// the label "NULL". The second return value reports whether the URL failed
// to yield coordinates, in which case they default to (0,0) and a
// MALFORMED_URL / MALFORMED_LAT / MALFORMED_LON finding has been recorded.
func NewWaypoint(line string, rte *Route, dc *datacheck.Sink) (*Waypoint, bool) {
	tokens := strings.Fields(line)
	w := &Waypoint{Route: rte}

	url := tokens[len(tokens)-1]
	labels := tokens[:len(tokens)-1]
	if len(labels) == 0 {
		w.Label = "NULL"
	} else {
		w.Label = labels[0]
		w.AltLabels = labels[1:]
	}
	w.Hidden = w.Label[0] == '+'

	latBeg := strings.Index(url, "lat=")
	lonBeg := strings.Index(url, "lon=")
	if latBeg < 0 || lonBeg < 0 {
		dc.Add(rte.Root, w.Label, "", "", datacheck.MalformedURL, "MISSING_ARG(S)")
		return w, true
	}
	latStr := url[latBeg+4:]
	lonStr := url[lonBeg+4:]

	valid := true
	if !textutil.ValidNumStr(latStr, '&') {
		dc.Add(rte.Root, w.Label, "", "", datacheck.MalformedLat, truncateValue(textutil.NumPrefix(latStr, '&')))
		valid = false
	}
	if !textutil.ValidNumStr(lonStr, '&') {
		dc.Add(rte.Root, w.Label, "", "", datacheck.MalformedLon, truncateValue(textutil.NumPrefix(lonStr, '&')))
		valid = false
	}
	if !valid {
		return w, true
	}
	w.Lat, _ = strconv.ParseFloat(textutil.NumPrefix(latStr, '&'), 64)
	w.Lng, _ = strconv.ParseFloat(textutil.NumPrefix(lonStr, '&'), 64)
	return w, false
}

// truncateValue bounds an offending substring to what the datacheck info
// column can store, stripping partial multi-byte characters before
// appending the ellipsis.
func truncateValue(s string) string {
	if len(s) <= dbfield.DCErrValue {
		return s
	}
	s = s[:dbfield.DCErrValue-3]
	for len(s) > 0 && s[len(s)-1] >= 0x80 {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// SameCoords reports exact coordinate equality with other.
func (w *Waypoint) SameCoords(other *Waypoint) bool {
	return w.Lat == other.Lat && w.Lng == other.Lng
}

// DistanceTo returns the distance in miles between this waypoint and
// another, including the project-wide factor compensating for unplotted
// curves in routes.
func (w *Waypoint) DistanceTo(other *Waypoint) float64 {
	rlat1 := w.Lat * (math.Pi / 180)
	rlng1 := w.Lng * (math.Pi / 180)
	rlat2 := other.Lat * (math.Pi / 180)
	rlng2 := other.Lng * (math.Pi / 180)

	// haversine formula
	ans := math.Asin(math.Sqrt(
		math.Pow(math.Sin((rlat2-rlat1)/2), 2)+
			math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin((rlng2-rlng1)/2), 2),
	)) * EarthDiameter

	return ans * DistanceFactor
}

// Angle returns the angle in degrees formed at this waypoint between the
// line from pred and the line to succ, using the unit-vector difference
// formula on the sphere.
func (w *Waypoint) Angle(pred, succ *Waypoint) float64 {
	rlatSelf := w.Lat * (math.Pi / 180)
	rlngSelf := w.Lng * (math.Pi / 180)
	rlatPred := pred.Lat * (math.Pi / 180)
	rlngPred := pred.Lng * (math.Pi / 180)
	rlatSucc := succ.Lat * (math.Pi / 180)
	rlngSucc := succ.Lng * (math.Pi / 180)

	x0 := math.Cos(rlngPred) * math.Cos(rlatPred)
	x1 := math.Cos(rlngSelf) * math.Cos(rlatSelf)
	x2 := math.Cos(rlngSucc) * math.Cos(rlatSucc)

	y0 := math.Sin(rlngPred) * math.Cos(rlatPred)
	y1 := math.Sin(rlngSelf) * math.Cos(rlatSelf)
	y2 := math.Sin(rlngSucc) * math.Cos(rlatSucc)

	z0 := math.Sin(rlatPred)
	z1 := math.Sin(rlatSelf)
	z2 := math.Sin(rlatSucc)

	return math.Acos(
		((x2-x1)*(x1-x0)+(y2-y1)*(y1-y0)+(z2-z1)*(z1-z0))/
			math.Sqrt(((x2-x1)*(x2-x1)+(y2-y1)*(y2-y1)+(z2-z1)*(z2-z1))*
				((x1-x0)*(x1-x0)+(y1-y0)*(y1-y0)+(z1-z0)*(z1-z0))),
	) * 180 / math.Pi
}

// String renders the waypoint for log messages.
func (w *Waypoint) String() string {
	return w.Route.Root + " " + w.Label + " (" + coordStr(w.Lat) + "," + coordStr(w.Lng) + ")"
}

// coordStr formats a coordinate the way the Python tooling prints floats:
// shortest form, with a trailing .0 on whole numbers.
func coordStr(v float64) string {
	s := fmt.Sprintf("%.15g", v)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

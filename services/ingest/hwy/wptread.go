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
	"os"
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
)

// PointIndex receives every accepted waypoint as it is read. The shared
// waypoint quadtree implements it; it must be safe for concurrent inserts
// because routes are read by a worker pool.
type PointIndex interface {
	Insert(w *Waypoint)
}

// ReadWpt reads the route's wpt file, populating Points and Segments and
// running the per-waypoint and per-route datachecks. usa enables the
// country-conditional US label rules.
//
// The file is removed from the dataset's crawled set first, so whatever
// remains there after ingest is a data file no CSV refers to. A missing
// file is a configuration error; the route simply ends up with no points.
//
// Everything touched here is owned by this route except the three shared
// sinks (error list, findings, point index), which are individually
// thread-safe, so no further synchronization is needed across routes.
func (r *Route) ReadWpt(ds *Dataset, idx PointIndex, usa bool) {
	path := r.WptPath(ds)
	ds.MarkWptFileRead(path)

	data, err := os.ReadFile(path)
	if err != nil {
		ds.Errors.Add("Could not open " + path)
		return
	}

	dc := ds.Findings
	coordsUsed := make(map[*Waypoint]struct{})
	visDist := 0.0
	var lastVisible *Waypoint

	for _, line := range strings.FieldsFunc(string(data), func(c rune) bool { return c == '\n' || c == '\r' }) {
		line = strings.Trim(line, " \t")
		if line == "" {
			continue
		}
		w, badURL := NewWaypoint(line, r, dc)
		malformedURL := badURL && w.Lat == 0 && w.Lng == 0
		labelTooLong := w.LabelTooLong(dc)
		if malformedURL || labelTooLong {
			continue
		}
		r.Points = append(r.Points, w)
		if idx != nil {
			idx.Insert(w)
		}

		// single-point datachecks, and HighwaySegment
		w.OutOfBounds(dc)
		w.DuplicateCoords(dc, coordsUsed)
		w.LabelInvalidChar(dc)
		if len(r.Points) > 1 {
			prev := r.Points[len(r.Points)-2]
			w.DistanceUpdate(dc, &visDist, prev)
			r.Segments = append(r.Segments, NewHighwaySegment(prev, w, r))
		}

		// checks for visible points
		if !w.Hidden {
			slash := strings.IndexByte(w.Label, '/')
			if usa && len(w.Label) >= 2 {
				w.BusWithI(dc)
				w.InterstateNoHyphen(dc)
				w.USLetter(dc)
			}
			w.LabelInvalidEnds(dc)
			w.LabelLooksHidden(dc)
			w.LabelParens(dc)
			w.LabelSelfref(dc, slash)
			w.LabelSlashes(dc, slash)
			w.LacksGeneric(dc)
			w.UnderscoreChecks(dc, slash)
			w.VisibleDistance(dc, &visDist, &lastVisible)
		}
	}

	// per-route datachecks
	if len(r.Points) < 2 {
		ds.Errors.Add("Route contains fewer than 2 points: " + r.String())
		return
	}
	if r.Points[0].Hidden {
		dc.Add(r.Root, r.Points[0].Label, "", "", datacheck.HiddenTerminus, "")
	}
	if r.Points[len(r.Points)-1].Hidden {
		dc.Add(r.Root, r.Points[len(r.Points)-1].Label, "", "", datacheck.HiddenTerminus, "")
	}
	for i := 1; i < len(r.Points)-1; i++ {
		prev, cur, next := r.Points[i-1], r.Points[i], r.Points[i+1]
		if prev.SameCoords(cur) || next.SameCoords(cur) {
			dc.Add(r.Root, prev.Label, cur.Label, next.Label, datacheck.BadAngle, "")
		} else if angle := cur.Angle(prev, next); angle > 135 {
			dc.Add(r.Root, prev.Label, cur.Label, next.Label, datacheck.SharpAngle,
				fmt.Sprintf("%.2f", angle))
		}
	}
}

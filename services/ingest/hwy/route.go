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
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// Route is one chopped route: a single wpt file's worth of highway within
// one region. It is constructed from a per-system CSV line; its waypoints
// and segments stay empty until the waypoint pass reads the wpt file.
type Route struct {
	System *HighwaySystem
	Region *Region

	// RegionCode is the region field exactly as written in the CSV.
	// Readable names are built from it rather than from the resolved
	// region, so a bad code stays visible in list names.
	RegionCode string

	Route  string
	Banner string
	Abbrev string
	City   string

	// Root is the route's lowercase globally-unique identifier, and the
	// base name of its wpt file.
	Root string

	AltRouteNames []string

	// ConRoute is the connected route this chopped route belongs to, and
	// RootOrder its position within it. RootOrder is -1 until linked.
	ConRoute  *ConnectedRoute
	RootOrder int

	// LastUpdate is the date of the route's most recent change, filled by
	// the updates pass.
	LastUpdate string

	Points   []*Waypoint
	Segments []*HighwaySegment
}

// NewRoute parses one chopped-route CSV line and registers the route's
// names in the dataset's uniqueness maps. The route is returned even when
// invalid; callers detect failure by an empty Root.
//
// Three maps are enforced here. Root must be globally unique. The uppercase
// readable name must be unique across both the primary and alternate name
// maps, which stay disjoint; collisions are reported and the incumbent
// keeps its key.
func NewRoute(line string, sys *HighwaySystem, ds *Dataset) *Route {
	r := &Route{System: sys, RootOrder: -1}

	fields := textutil.Split(line, ';')
	if len(fields) != 8 {
		ds.Errors.Add(fmt.Sprintf("Could not parse %s.csv line: [%s], expected 8 fields, found %d", sys.Name, line, len(fields)))
		return r
	}
	if fields[0] != sys.Name {
		ds.Errors.Add(fmt.Sprintf("System mismatch parsing %s.csv line [%s], expected %s", sys.Name, line, sys.Name))
	}
	r.RegionCode = fields[1]
	r.Route = fields[2]
	r.Banner = fields[3]
	r.Abbrev = fields[4]
	r.City = fields[5]

	var ok bool
	r.Region, ok = ds.RegionByCode[r.RegionCode]
	if !ok {
		ds.Errors.Add(fmt.Sprintf("Unrecognized region in %s.csv line: %s", sys.Name, line))
		r.Region = ds.RegionByCode[sentinelCode]
	}
	if len(r.Route) > dbfield.Route {
		ds.Errors.Add(fmt.Sprintf("Route > %d bytes in %s.csv line: %s", dbfield.Route, sys.Name, line))
	}
	if len(r.Banner) > dbfield.Banner {
		ds.Errors.Add(fmt.Sprintf("Banner > %d bytes in %s.csv line: %s", dbfield.Banner, sys.Name, line))
	}
	if len(r.Abbrev) > dbfield.Abbrev {
		ds.Errors.Add(fmt.Sprintf("Abbrev > %d bytes in %s.csv line: %s", dbfield.Abbrev, sys.Name, line))
	}
	if len(r.City) > dbfield.City {
		ds.Errors.Add(fmt.Sprintf("City > %d bytes in %s.csv line: %s", dbfield.City, sys.Name, line))
	}
	if len(fields[6]) > dbfield.Root {
		ds.Errors.Add(fmt.Sprintf("Root > %d bytes in %s.csv line: %s", dbfield.Root, sys.Name, line))
	}
	r.Root = textutil.Lower(fields[6])
	if arn := textutil.Upper(fields[7]); arn != "" {
		r.AltRouteNames = strings.Split(arn, ",")
	}

	if owner, dup := ds.RootHash[r.Root]; dup {
		ds.Errors.Add(fmt.Sprintf("Duplicate root in %s.csv: %s already in %s.csv", sys.Name, r.Root, owner.System.Name))
	} else {
		ds.RootHash[r.Root] = r
	}

	listName := textutil.Upper(r.ReadableName())
	if owner, dup := ds.AltListHash[listName]; dup {
		ds.Errors.Add(fmt.Sprintf("Duplicate main list name in %s: '%s' already points to %s", r.Root, r.ReadableName(), owner.Root))
	} else if owner, dup := ds.PriListHash[listName]; dup {
		ds.Errors.Add(fmt.Sprintf("Duplicate main list name in %s: '%s' already points to %s", r.Root, r.ReadableName(), owner.Root))
	} else {
		ds.PriListHash[listName] = r
	}

	for _, a := range r.AltRouteNames {
		altName := textutil.Upper(r.RegionCode + " " + a)
		if owner, dup := ds.PriListHash[altName]; dup {
			ds.Errors.Add(fmt.Sprintf("Duplicate alt route name in %s: '%s %s' already points to %s", r.Root, r.Region.Code, a, owner.Root))
		} else if owner, dup := ds.AltListHash[altName]; dup {
			ds.Errors.Add(fmt.Sprintf("Duplicate alt route name in %s: '%s %s' already points to %s", r.Root, r.Region.Code, a, owner.Root))
		} else {
			ds.AltListHash[altName] = r
		}
		sys.AddUnusedAltRouteName(altName)
	}
	return r
}

// ReadableName returns the human-readable route name,
// "<region> <route><banner><abbrev>".
func (r *Route) ReadableName() string {
	return r.RegionCode + " " + r.Route + r.Banner + r.Abbrev
}

// ListEntryName returns the name format expected in traveler list files.
func (r *Route) ListEntryName() string {
	return r.Route + r.Banner + r.Abbrev
}

// NameNoAbbrev returns the name format intersecting-route labels tend to
// use, where the abbrev is usually omitted.
func (r *Route) NameNoAbbrev() string {
	return r.Route + r.Banner
}

// WptPath returns the path of the route's wpt file under the data root.
func (r *Route) WptPath(ds *Dataset) string {
	return filepath.Join(ds.HwyDataPath(), r.RegionCode, r.System.Name, r.Root+".wpt")
}

// String renders the route for log and error messages.
func (r *Route) String() string {
	return r.Root + " (" + strconv.Itoa(len(r.Points)) + " total points)"
}

// StoreTraveledSegments tags the half-open segment range [begin, end) as
// clinched by t, and records the route with the traveler. If the route
// changed after the date of the traveler's list file, a "Route updated"
// line is written to log on the first time the traveler touches this
// route.
func (r *Route) StoreTraveledSegments(t *Traveler, log io.Writer, begin, end int) {
	for pos := begin; pos < end && pos < len(r.Segments); pos++ {
		seg := r.Segments[pos]
		seg.AddClinchedBy(t)
		t.addClinchedSegment(seg)
	}
	if t.addRoute(r) && r.LastUpdate != "" && t.Update != "" && r.LastUpdate > t.Update {
		fmt.Fprintf(log, "Route updated %s: %s\n", r.LastUpdate, r.ReadableName())
	}
}

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
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// ConnectedRoute is an ordered composition of chopped routes forming one
// logical highway across region boundaries within a system. Most connected
// routes name a single root; the multi-root case covers designations that
// cross region lines.
type ConnectedRoute struct {
	System    *HighwaySystem
	Route     string
	Banner    string
	GroupName string

	// Roots holds the resolved chopped routes in connection order.
	// Unresolvable root names are reported and skipped.
	Roots []*Route

	// Mileage is populated by the later stats pass.
	Mileage float64
}

// NewConnectedRoute parses one _con.csv line and links each named root back
// to this connected route. A root may belong to exactly one connected
// route and must be in the same system; violations are reported but the
// link is still established so downstream traversal works. A connected
// route that resolves zero roots is an error, but the object is kept.
func NewConnectedRoute(line string, sys *HighwaySystem, ds *Dataset) *ConnectedRoute {
	cr := &ConnectedRoute{System: sys}

	fields := textutil.Split(line, ';')
	if len(fields) != 5 {
		ds.Errors.Add(fmt.Sprintf("Could not parse %s_con.csv line: [%s], expected 5 fields, found %d", sys.Name, line, len(fields)))
		return cr
	}
	if fields[0] != sys.Name {
		ds.Errors.Add(fmt.Sprintf("System mismatch parsing %s_con.csv line [%s], expected %s", sys.Name, line, sys.Name))
	}
	cr.Route = fields[1]
	cr.Banner = fields[2]
	cr.GroupName = fields[3]
	if len(cr.Route) > dbfield.Route {
		ds.Errors.Add(fmt.Sprintf("route > %d bytes in %s_con.csv line: %s", dbfield.Route, sys.Name, line))
	}
	if len(cr.Banner) > dbfield.Banner {
		ds.Errors.Add(fmt.Sprintf("banner > %d bytes in %s_con.csv line: %s", dbfield.Banner, sys.Name, line))
	}
	if len(cr.GroupName) > dbfield.City {
		ds.Errors.Add(fmt.Sprintf("groupname > %d bytes in %s_con.csv line: %s", dbfield.City, sys.Name, line))
	}

	order := 0
	for _, name := range strings.Split(textutil.Lower(fields[4]), ",") {
		root, ok := ds.RootHash[name]
		if !ok {
			ds.Errors.Add(fmt.Sprintf("Could not find Route matching ConnectedRoute root %s in system %s.", name, sys.Name))
			continue
		}
		cr.Roots = append(cr.Roots, root)
		if root.ConRoute != nil {
			ds.Errors.Add(fmt.Sprintf("Duplicate root in %s_con.csv: %s already in %s_con.csv", sys.Name, root.Root, root.ConRoute.System.Name))
		}
		if root.System != sys {
			ds.Errors.Add(fmt.Sprintf("System mismatch: chopped route %s from %s.csv in connected route in %s_con.csv", root.Root, root.System.Name, sys.Name))
		}
		root.ConRoute = cr
		root.RootOrder = order
		order++
	}
	if len(cr.Roots) < 1 {
		ds.Errors.Add(fmt.Sprintf("No valid roots in %s_con.csv line: %s", sys.Name, line))
	}
	return cr
}

// ReadableName returns the human-readable connected route name.
func (cr *ConnectedRoute) ReadableName() string {
	name := cr.Route + cr.Banner
	if len(cr.Roots) > 0 {
		name = cr.Roots[0].RegionCode + " " + name
	}
	return name
}

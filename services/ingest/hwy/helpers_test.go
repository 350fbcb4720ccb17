// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hwy

import "testing"

// newTestDataset builds a dataset with a small North American taxonomy:
// the CA and NY regions, the USA and CAN countries, sentinels included.
func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds := NewDataset(t.TempDir(), "systems.csv")
	ds.Continents = append(ds.Continents,
		&Continent{Code: "NA", Name: "North America"},
		&Continent{Code: "error", Name: "unrecognized continent code"},
	)
	ds.Countries = append(ds.Countries,
		&Country{Code: "USA", Name: "United States"},
		&Country{Code: "CAN", Name: "Canada"},
		&Country{Code: "error", Name: "unrecognized country code"},
	)
	for _, code := range []string{"CA", "NY", "error"} {
		r := &Region{
			Code:      code,
			Name:      code,
			Country:   ds.CountryByCode("USA"),
			Continent: ds.ContinentByCode("NA"),
			Type:      "state",
		}
		ds.Regions = append(ds.Regions, r)
		ds.RegionByCode[code] = r
	}
	return ds
}

// newTestSystem builds a system without going through systems.csv.
func newTestSystem(name string, level Level, ds *Dataset) *HighwaySystem {
	return &HighwaySystem{
		Name:                name,
		Country:             ds.CountryByCode("USA"),
		FullName:            name,
		Color:               "red",
		Tier:                1,
		Level:               level,
		MileageByRegion:     make(map[*Region]float64),
		listNamesInUse:      make(map[string]struct{}),
		unusedAltRouteNames: make(map[string]struct{}),
	}
}

// newTestRoute builds a registered route for rule tests.
func newTestRoute(ds *Dataset, sys *HighwaySystem, designation, banner, root string) *Route {
	r := &Route{
		System:     sys,
		Region:     ds.RegionByCode["CA"],
		RegionCode: "CA",
		Route:      designation,
		Banner:     banner,
		Root:       root,
		RootOrder:  -1,
	}
	ds.RootHash[root] = r
	sys.Routes = append(sys.Routes, r)
	return r
}

// newTestWaypoint builds a waypoint attached to r at the given coords.
func newTestWaypoint(r *Route, label string, lat, lng float64) *Waypoint {
	return &Waypoint{
		Route:  r,
		Label:  label,
		Lat:    lat,
		Lng:    lng,
		Hidden: label != "" && label[0] == '+',
	}
}

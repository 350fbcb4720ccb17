// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hwy holds the highway data model: the taxonomy of continents,
// countries, and regions, the highway systems with their chopped and
// connected routes, and the waypoints and segments read from wpt files.
//
// All entities are created during ingest and live until the process exits.
// Ownership is single-rooted: a Dataset owns its systems, a system owns its
// routes, a route owns its waypoints and segments. Back-links (a route's
// connected route, a waypoint's colocated group) are non-owning references,
// so there are no ownership cycles.
//
// The Dataset value replaces the process-global lookup tables of the
// original siteupdate program. Carrying the tables explicitly keeps
// parallel tests isolated from each other.
package hwy

import (
	"path/filepath"
	"sync"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
	"github.com/TravelMapping/siteupdate/services/ingest/errorlist"
)

// Continent is one row of continents.csv.
type Continent struct {
	Code string
	Name string
}

// Country is one row of countries.csv.
type Country struct {
	Code string
	Name string
}

// Dataset is the in-memory highway network under construction, together
// with the shared lookup tables the loaders enforce uniqueness against.
//
// The hash maps (RegionByCode, RootHash, PriListHash, AltListHash) are
// populated entirely during the single-threaded CSV phase and are read-only
// once the parallel waypoint phase starts; they need no locking. AllWptFiles
// is mutated by the workers and is guarded by its own mutex.
type Dataset struct {
	// DataRoot is the highway data directory (the one containing
	// continents.csv and hwy_data/).
	DataRoot string

	// SystemsFile is the systems list file name relative to DataRoot,
	// normally "systems.csv". It appears in error messages.
	SystemsFile string

	Continents []*Continent
	Countries  []*Country

	Regions      []*Region
	RegionByCode map[string]*Region

	Systems []*HighwaySystem

	// RootHash maps every lowercase route root to its route. A root is
	// globally unique; duplicate roots are reported and do not displace
	// the incumbent.
	RootHash map[string]*Route

	// PriListHash and AltListHash map uppercase readable names to routes.
	// Their key sets are disjoint: a primary name must not collide with
	// any existing primary or alternate, and vice versa.
	PriListHash map[string]*Route
	AltListHash map[string]*Route

	// AllWptFiles is the crawled set of wpt paths. Each route removes its
	// file as it reads it; leftovers after ingest are orphaned data files.
	AllWptFiles map[string]struct{}
	wptMu       sync.Mutex

	// Errors collects configuration problems; Findings collects datacheck
	// results. Both sinks accept appends from any worker.
	Errors   *errorlist.List
	Findings *datacheck.Sink
}

// NewDataset returns an empty Dataset rooted at dataRoot.
func NewDataset(dataRoot, systemsFile string) *Dataset {
	return &Dataset{
		DataRoot:     dataRoot,
		SystemsFile:  systemsFile,
		RegionByCode: make(map[string]*Region),
		RootHash:     make(map[string]*Route),
		PriListHash:  make(map[string]*Route),
		AltListHash:  make(map[string]*Route),
		AllWptFiles:  make(map[string]struct{}),
		Errors:       &errorlist.List{},
		Findings:     &datacheck.Sink{},
	}
}

// CountryByCode resolves a country code, or nil if unknown. The sentinel
// "error" country is an ordinary entry, so lookups for it succeed.
func (ds *Dataset) CountryByCode(code string) *Country {
	for _, c := range ds.Countries {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// ContinentByCode resolves a continent code, or nil if unknown.
func (ds *Dataset) ContinentByCode(code string) *Continent {
	for _, c := range ds.Continents {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// SystemsPath returns the directory of the per-system CSV files.
func (ds *Dataset) SystemsPath() string {
	return filepath.Join(ds.DataRoot, "hwy_data", "_systems")
}

// HwyDataPath returns the root of the per-region wpt tree.
func (ds *Dataset) HwyDataPath() string {
	return filepath.Join(ds.DataRoot, "hwy_data")
}

// MarkWptFileRead removes path from the crawled wpt set.
func (ds *Dataset) MarkWptFileRead(path string) {
	ds.wptMu.Lock()
	delete(ds.AllWptFiles, path)
	ds.wptMu.Unlock()
}

// RemainingWptFiles returns the wpt paths no route claimed. Anything left
// here after ingest is a data file orphaned from the CSVs.
func (ds *Dataset) RemainingWptFiles() []string {
	ds.wptMu.Lock()
	defer ds.wptMu.Unlock()
	out := make([]string, 0, len(ds.AllWptFiles))
	for p := range ds.AllWptFiles {
		out = append(out, p)
	}
	return out
}

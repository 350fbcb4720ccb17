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
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// Level classifies a highway system's maturity.
type Level byte

const (
	// LevelActive systems are complete and mapped by travelers.
	LevelActive Level = 'a'

	// LevelPreview systems are complete but still under review.
	LevelPreview Level = 'p'

	// LevelDevel systems are under development.
	LevelDevel Level = 'd'
)

// String returns the full level name.
func (l Level) String() string {
	switch l {
	case LevelActive:
		return "active"
	case LevelPreview:
		return "preview"
	case LevelDevel:
		return "devel"
	default:
		return "unknown"
	}
}

// HighwaySystem is the collection of highways described by one systems.csv
// row: the chopped routes of one per-system CSV plus the connected routes
// of its _con.csv.
type HighwaySystem struct {
	Name     string
	Country  *Country
	FullName string
	Color    string
	Tier     int
	Level    Level

	// Routes and ConRoutes preserve file order.
	Routes    []*Route
	ConRoutes []*ConnectedRoute

	// MileageByRegion is populated by the later stats pass.
	MileageByRegion map[*Region]float64

	// listNamesInUse and unusedAltRouteNames support traveler-list
	// matching. They are mutated concurrently during that pass, hence
	// the per-set mutexes.
	lniuMu              sync.Mutex
	listNamesInUse      map[string]struct{}
	uarnMu              sync.Mutex
	unusedAltRouteNames map[string]struct{}
}

// Active reports whether this is an active system. The VISIBLE_DISTANCE
// datacheck is suppressed on active systems to reduce clutter.
func (h *HighwaySystem) Active() bool {
	return h.Level == LevelActive
}

// MarkListNameInUse records that a traveler list referenced name.
func (h *HighwaySystem) MarkListNameInUse(name string) {
	h.lniuMu.Lock()
	h.listNamesInUse[name] = struct{}{}
	h.lniuMu.Unlock()
}

// ListNamesInUse returns a copy of the referenced list names.
func (h *HighwaySystem) ListNamesInUse() []string {
	h.lniuMu.Lock()
	defer h.lniuMu.Unlock()
	out := make([]string, 0, len(h.listNamesInUse))
	for n := range h.listNamesInUse {
		out = append(out, n)
	}
	return out
}

// AddUnusedAltRouteName records an alternate route name no traveler has
// used yet.
func (h *HighwaySystem) AddUnusedAltRouteName(name string) {
	h.uarnMu.Lock()
	h.unusedAltRouteNames[name] = struct{}{}
	h.uarnMu.Unlock()
}

// MarkAltRouteNameUsed removes name from the unused set.
func (h *HighwaySystem) MarkAltRouteNameUsed(name string) {
	h.uarnMu.Lock()
	delete(h.unusedAltRouteNames, name)
	h.uarnMu.Unlock()
}

// UnusedAltRouteNames returns a copy of the unused alternate names.
func (h *HighwaySystem) UnusedAltRouteNames() []string {
	h.uarnMu.Lock()
	defer h.uarnMu.Unlock()
	out := make([]string, 0, len(h.unusedAltRouteNames))
	for n := range h.unusedAltRouteNames {
		out = append(out, n)
	}
	return out
}

// NewHighwaySystem parses one systems.csv line and synchronously loads the
// system's chopped and connected route CSVs. It returns nil when the line
// cannot be parsed at all; every other problem is reported to the error
// list and the system is kept.
func NewHighwaySystem(line string, ds *Dataset) *HighwaySystem {
	fields := textutil.Split(line, ';')
	if len(fields) != 6 {
		ds.Errors.Add(fmt.Sprintf("Could not parse %s line: [%s], expected 6 fields, found %d", ds.SystemsFile, line, len(fields)))
		return nil
	}
	h := &HighwaySystem{
		Name:                fields[0],
		FullName:            fields[2],
		Color:               fields[3],
		MileageByRegion:     make(map[*Region]float64),
		listNamesInUse:      make(map[string]struct{}),
		unusedAltRouteNames: make(map[string]struct{}),
	}
	if len(h.Name) > dbfield.SystemName {
		ds.Errors.Add(fmt.Sprintf("System code > %d bytes in %s line %s", dbfield.SystemName, ds.SystemsFile, line))
	}
	h.Country = ds.CountryByCode(fields[1])
	if h.Country == nil {
		ds.Errors.Add(fmt.Sprintf("Could not find country matching %s line: %s", ds.SystemsFile, line))
		h.Country = ds.CountryByCode(sentinelCode)
	}
	if len(h.FullName) > dbfield.SystemFullName {
		ds.Errors.Add(fmt.Sprintf("System name > %d bytes in %s line %s", dbfield.SystemFullName, ds.SystemsFile, line))
	}
	if len(h.Color) > dbfield.Color {
		ds.Errors.Add(fmt.Sprintf("Color > %d bytes in %s line %s", dbfield.Color, ds.SystemsFile, line))
	}
	tier, err := strconv.Atoi(fields[4])
	if err != nil || tier < 1 {
		ds.Errors.Add(fmt.Sprintf("Invalid tier in %s line %s", ds.SystemsFile, line))
	}
	h.Tier = tier
	switch fields[5] {
	case "active", "preview", "devel":
		h.Level = Level(fields[5][0])
	default:
		ds.Errors.Add(fmt.Sprintf("Unrecognized level in %s line: %s", ds.SystemsFile, line))
		if fields[5] != "" {
			h.Level = Level(fields[5][0])
		}
	}

	h.loadRoutes(ds)
	h.loadConRoutes(ds)
	return h
}

// loadRoutes reads the system's chopped route CSV. Routes that fail to
// produce a root are reported and dropped; the rest keep file order.
func (h *HighwaySystem) loadRoutes(ds *Dataset) {
	path := filepath.Join(ds.SystemsPath(), h.Name+".csv")
	data, err := os.ReadFile(path)
	if err != nil {
		ds.Errors.Add("Could not open " + path)
		return
	}
	for i, line := range strings.Split(string(data), "\n") {
		line = textutil.TrimLine(line)
		if i == 0 || line == "" {
			continue
		}
		r := NewRoute(line, h, ds)
		if r.Root != "" {
			h.Routes = append(h.Routes, r)
		} else {
			ds.Errors.Add(fmt.Sprintf("Unable to find root in %s.csv line: [%s]", h.Name, line))
		}
	}
	slog.Debug("loaded chopped routes", "system", h.Name, "routes", len(h.Routes))
}

// loadConRoutes reads the system's connected route CSV. Connected routes
// are kept even when invalid so errors about them stay traversable.
func (h *HighwaySystem) loadConRoutes(ds *Dataset) {
	path := filepath.Join(ds.SystemsPath(), h.Name+"_con.csv")
	data, err := os.ReadFile(path)
	if err != nil {
		ds.Errors.Add("Could not open " + path)
		return
	}
	for i, line := range strings.Split(string(data), "\n") {
		line = textutil.TrimLine(line)
		if i == 0 || line == "" {
			continue
		}
		h.ConRoutes = append(h.ConRoutes, NewConnectedRoute(line, h, ds))
	}
	slog.Debug("loaded connected routes", "system", h.Name, "con_routes", len(h.ConRoutes))
}

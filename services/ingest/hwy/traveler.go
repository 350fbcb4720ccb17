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

import "sync"

// Traveler is the minimal view of a traveler the segment-tagging contract
// needs. List-file ingestion lives outside this core.
type Traveler struct {
	// Name is the traveler's list file name without extension.
	Name string

	// Update is the date of the traveler's list file, used to flag
	// routes updated since the traveler last touched them.
	Update string

	mu       sync.Mutex
	clinched map[*HighwaySegment]struct{}
	routes   map[*Route]struct{}
}

// NewTraveler returns a traveler ready to accumulate clinched segments.
func NewTraveler(name, update string) *Traveler {
	return &Traveler{
		Name:     name,
		Update:   update,
		clinched: make(map[*HighwaySegment]struct{}),
		routes:   make(map[*Route]struct{}),
	}
}

// ClinchedCount returns the number of distinct segments clinched.
func (t *Traveler) ClinchedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clinched)
}

func (t *Traveler) addClinchedSegment(s *HighwaySegment) {
	t.mu.Lock()
	t.clinched[s] = struct{}{}
	t.mu.Unlock()
}

// addRoute records the route and reports whether it was new to the
// traveler.
func (t *Traveler) addRoute(r *Route) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.routes[r]; ok {
		return false
	}
	t.routes[r] = struct{}{}
	return true
}

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

// HighwaySegment connects two consecutive waypoints of a route.
type HighwaySegment struct {
	Waypoint1 *Waypoint
	Waypoint2 *Waypoint
	Route     *Route
	Length    float64

	// Concurrent lists the segments sharing this stretch of road. It
	// stays nil at construction; the concurrency-detection pass owns it.
	Concurrent []*HighwaySegment

	// Concurrency counters start at 1 (the segment itself) and are
	// refined by the concurrency-detection pass.
	SystemConcurrencyCount        int
	ActiveOnlyConcurrencyCount    int
	ActivePreviewConcurrencyCount int

	clinMu     sync.Mutex
	clinchedBy map[*Traveler]struct{}
}

// NewHighwaySegment builds the segment between w1 and w2, computing its
// length.
func NewHighwaySegment(w1, w2 *Waypoint, rte *Route) *HighwaySegment {
	return &HighwaySegment{
		Waypoint1:                     w1,
		Waypoint2:                     w2,
		Route:                         rte,
		Length:                        w1.DistanceTo(w2),
		SystemConcurrencyCount:        1,
		ActiveOnlyConcurrencyCount:    1,
		ActivePreviewConcurrencyCount: 1,
		clinchedBy:                    make(map[*Traveler]struct{}),
	}
}

// AddClinchedBy records that traveler has clinched this segment. It
// returns false if the traveler was already recorded. Safe for concurrent
// use from the traveler pass.
func (s *HighwaySegment) AddClinchedBy(t *Traveler) bool {
	s.clinMu.Lock()
	defer s.clinMu.Unlock()
	if _, ok := s.clinchedBy[t]; ok {
		return false
	}
	s.clinchedBy[t] = struct{}{}
	return true
}

// ClinchedBy returns the travelers who have clinched this segment.
func (s *HighwaySegment) ClinchedBy() []*Traveler {
	s.clinMu.Lock()
	defer s.clinMu.Unlock()
	out := make([]*Traveler, 0, len(s.clinchedBy))
	for t := range s.clinchedBy {
		out = append(out, t)
	}
	return out
}

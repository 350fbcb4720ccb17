// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datacheck provides the typed catalogue of data-quality findings
// and the thread-safe sink they are reported to.
//
// Findings are not errors. A finding flags a waypoint or label that looks
// wrong — a sharp angle, an out-of-bounds coordinate, a label that breaks
// the naming conventions — and is the primary product of the waypoint pass.
// Configuration problems go to the errorlist package instead.
//
// Ordering: findings from a single route appear in the order the rules
// fired; across routes the order is unspecified, since routes are processed
// by a worker pool.
package datacheck

import (
	"fmt"
	"sync"
)

// Code identifies one datacheck rule.
type Code string

// The rule catalogue. Triggering conditions live with the rules in the hwy
// package; the codes are the stable identifiers written to datacheck.log.
const (
	BadAngle              Code = "BAD_ANGLE"
	BusWithI              Code = "BUS_WITH_I"
	DuplicateCoords       Code = "DUPLICATE_COORDS"
	HiddenTerminus        Code = "HIDDEN_TERMINUS"
	InterstateNoHyphen    Code = "INTERSTATE_NO_HYPHEN"
	InvalidFinalChar      Code = "INVALID_FINAL_CHAR"
	InvalidFirstChar      Code = "INVALID_FIRST_CHAR"
	LabelInvalidChar      Code = "LABEL_INVALID_CHAR"
	LabelLooksHidden      Code = "LABEL_LOOKS_HIDDEN"
	LabelParens           Code = "LABEL_PARENS"
	LabelSelfref          Code = "LABEL_SELFREF"
	LabelSlashes          Code = "LABEL_SLASHES"
	LabelTooLong          Code = "LABEL_TOO_LONG"
	LabelUnderscores      Code = "LABEL_UNDERSCORES"
	LacksGeneric          Code = "LACKS_GENERIC"
	LongSegment           Code = "LONG_SEGMENT"
	LongUnderscore        Code = "LONG_UNDERSCORE"
	MalformedLat          Code = "MALFORMED_LAT"
	MalformedLon          Code = "MALFORMED_LON"
	MalformedURL          Code = "MALFORMED_URL"
	NonterminalUnderscore Code = "NONTERMINAL_UNDERSCORE"
	OutOfBounds           Code = "OUT_OF_BOUNDS"
	SharpAngle            Code = "SHARP_ANGLE"
	USLetter              Code = "US_LETTER"
	VisibleDistance       Code = "VISIBLE_DISTANCE"
)

// Finding is one datacheck result. Root identifies the route (its unique
// lowercase root); up to three labels locate the waypoints involved, and
// Info carries rule-specific detail such as a distance or an angle.
// Label2, Label3, and Info may be empty.
type Finding struct {
	Root   string
	Label1 string
	Label2 string
	Label3 string
	Code   Code
	Info   string
}

// String renders the finding as one line of datacheck.log.
func (f Finding) String() string {
	return fmt.Sprintf("%s;%s;%s;%s;%s;%s", f.Root, f.Label1, f.Label2, f.Label3, f.Code, f.Info)
}

// Sink is the append-only, thread-safe collector of findings.
// The zero value is ready to use.
type Sink struct {
	mu       sync.Mutex
	findings []Finding
}

// Add records one finding. Safe to call from any worker.
func (s *Sink) Add(root, label1, label2, label3 string, code Code, info string) {
	s.mu.Lock()
	s.findings = append(s.findings, Finding{
		Root:   root,
		Label1: label1,
		Label2: label2,
		Label3: label3,
		Code:   code,
		Info:   info,
	})
	s.mu.Unlock()
}

// Len returns the number of findings recorded so far.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// Findings returns a copy of all findings in append order.
func (s *Sink) Findings() []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// ByRoute returns the findings recorded for one route root, in the order
// the rules fired.
func (s *Sink) ByRoute(root string) []Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Finding
	for _, f := range s.findings {
		if f.Root == root {
			out = append(out, f)
		}
	}
	return out
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Datacheck rules. Each rule is a small predicate with a side effect on the
// findings sink; the gating (visible-only, country-conditional, first point
// versus interior) lives in the wpt reader, not here.

package hwy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/datacheck"
	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
)

// Label patterns for the US-specific and shape-of-label rules.
var (
	// I-xx with Bus where BL or BS is expected.
	busWithIRE = regexp.MustCompile(`^\*?I-[0-9]+[EWCNSewcns]?[Bb][Uu][Ss]`)

	// Ixx or ToIxx without the hyphen.
	interstateNoHyphenRE = regexp.MustCompile(`^\*?(?:To)?I[0-9]`)

	// USxxxA/USxxxB suffix letters, optionally followed by a city abbrev,
	// where Alt/Bus/Byp is expected.
	usLetterRE = regexp.MustCompile(`^\*?US[0-9]+[AB](?:[A-Z][a-z][a-z])?(?:[/_(]|$)`)

	// The shape of a hidden point's label on a label that is not hidden.
	looksHiddenRE = regexp.MustCompile(`^X[0-9]{6}$`)

	// Old route number without a generic highway type.
	lacksGenericRE = regexp.MustCompile(`^\*?[Oo][Ll][Dd][0-9]`)
)

// LabelTooLong truncates a label that exceeds the database cap and records
// the excess. It returns true when the waypoint should be discarded.
// Truncation never leaves a partial multi-byte character on either side of
// the ellipsis.
func (w *Waypoint) LabelTooLong(dc *datacheck.Sink) bool {
	if len(w.Label) <= dbfield.Label {
		return false
	}
	excess := w.Label[dbfield.Label-3:]
	for len(excess) > 0 && excess[0] >= 0x80 {
		excess = excess[1:]
	}
	if len(excess) > dbfield.DCErrValue-3 {
		excess = excess[:dbfield.DCErrValue-6]
		for len(excess) > 0 && excess[len(excess)-1] >= 0x80 {
			excess = excess[:len(excess)-1]
		}
		excess += "..."
	}
	w.Label = w.Label[:dbfield.Label-3]
	for len(w.Label) > 0 && w.Label[len(w.Label)-1] >= 0x80 {
		w.Label = w.Label[:len(w.Label)-1]
	}
	dc.Add(w.Route.Root, w.Label+"...", "", "", datacheck.LabelTooLong, "..."+excess)
	return true
}

// OutOfBounds reports coordinates outside the valid lat/lng ranges.
func (w *Waypoint) OutOfBounds(dc *datacheck.Sink) {
	if w.Lat > 90 || w.Lat < -90 || w.Lng > 180 || w.Lng < -180 {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.OutOfBounds,
			fmt.Sprintf("(%.15g,%.15g)", w.Lat, w.Lng))
	}
}

// DuplicateCoords reports exact coordinate duplicates among earlier
// waypoints of the same route. The seen-set is keyed by the head of the
// colocated group when one exists, so a legitimately colocated pair on two
// different routes does not fire.
func (w *Waypoint) DuplicateCoords(dc *datacheck.Sink, coordsUsed map[*Waypoint]struct{}) {
	head := w
	if w.Colocated != nil {
		head = w.Colocated.Points[0]
	}
	if _, seen := coordsUsed[head]; !seen {
		coordsUsed[head] = struct{}{}
		return
	}
	for _, other := range w.Route.Points {
		if other == w {
			break
		}
		if w.Lat == other.Lat && w.Lng == other.Lng {
			dc.Add(w.Route.Root, other.Label, w.Label, "", datacheck.DuplicateCoords,
				fmt.Sprintf("(%.15g,%.15g)", w.Lat, w.Lng))
		}
	}
}

// invalidPrimaryByte reports whether b may not appear at index i of a
// primary label. Valid bytes are [A-Za-z0-9()/._-], plus '*' and '+' at
// index 0 only.
func invalidPrimaryByte(b byte, i int) bool {
	if (b == '*' || b == '+') && i > 0 {
		return true
	}
	return b < 40 || b == 44 || (b > 57 && b < 65) || b == 96 || b > 122 || (b > 90 && b < 95)
}

// invalidAltByte is the alternate-label variant: '+' may open a hidden alt
// label, and '*' may open an alt label or directly follow that '+'.
func invalidAltByte(lbl string, i int) bool {
	b := lbl[i]
	if b == '+' && i > 0 {
		return true
	}
	if b == '*' && (i > 1 || (i == 1 && lbl[0] != '+')) {
		return true
	}
	return b < 40 || b == 44 || (b > 57 && b < 65) || b == 96 || b > 122 || (b > 90 && b < 95)
}

// LabelInvalidChar reports labels containing characters the database and
// the log formats cannot carry. A UTF-8 BOM smuggled in by an editor is
// called out by name.
func (w *Waypoint) LabelInvalidChar(dc *datacheck.Sink) {
	if w.Label == "*" {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelInvalidChar, "")
	} else {
		for i := 0; i < len(w.Label); i++ {
			if !invalidPrimaryByte(w.Label[i], i) {
				continue
			}
			if strings.HasPrefix(w.Label, "\xEF\xBB\xBF") {
				dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelInvalidChar, "UTF-8 BOM")
			} else {
				dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelInvalidChar, "")
			}
			break
		}
	}
	for _, lbl := range w.AltLabels {
		if lbl == "*" {
			dc.Add(w.Route.Root, lbl, "", "", datacheck.LabelInvalidChar, "")
			continue
		}
		for i := 0; i < len(lbl); i++ {
			if invalidAltByte(lbl, i) {
				dc.Add(w.Route.Root, lbl, "", "", datacheck.LabelInvalidChar, "")
				break
			}
		}
	}
}

// DistanceUpdate accumulates the visible distance and reports a segment
// longer than 20 miles between consecutive waypoints.
func (w *Waypoint) DistanceUpdate(dc *datacheck.Sink, visDist *float64, prev *Waypoint) {
	lastDistance := w.DistanceTo(prev)
	*visDist += lastDistance
	if lastDistance > 20 {
		dc.Add(w.Route.Root, prev.Label, w.Label, "", datacheck.LongSegment,
			fmt.Sprintf("%.2f", lastDistance))
	}
}

// VisibleDistance reports more than 10 miles accumulated since the last
// visible waypoint, then resets the accumulator. The report is omitted on
// active systems to reduce clutter, and suppressed entirely until a first
// visible waypoint exists to anchor it.
func (w *Waypoint) VisibleDistance(dc *datacheck.Sink, visDist *float64, lastVisible **Waypoint) {
	if *visDist > 10 && !w.Route.System.Active() && *lastVisible != nil {
		dc.Add(w.Route.Root, (*lastVisible).Label, w.Label, "", datacheck.VisibleDistance,
			fmt.Sprintf("%.2f", *visDist))
	}
	*lastVisible = w
	*visDist = 0
}

// BusWithI reports I-xx Bus labels, which should use BL or BS.
func (w *Waypoint) BusWithI(dc *datacheck.Sink) {
	if busWithIRE.MatchString(w.Label) {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.BusWithI, "")
	}
}

// InterstateNoHyphen reports Ixx and ToIxx labels missing the hyphen.
func (w *Waypoint) InterstateNoHyphen(dc *datacheck.Sink) {
	if interstateNoHyphenRE.MatchString(w.Label) {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.InterstateNoHyphen, "")
	}
}

// USLetter reports USxxxA/USxxxB labels, where Alt/Bus/Byp is expected.
func (w *Waypoint) USLetter(dc *datacheck.Sink) {
	if usLetterRE.MatchString(w.Label) {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.USLetter, "")
	}
}

// LabelInvalidEnds reports labels whose first character (after any leading
// stars) or final character cannot open or close a label.
func (w *Waypoint) LabelInvalidEnds(dc *datacheck.Sink) {
	i := 0
	for i < len(w.Label) && w.Label[i] == '*' {
		i++
	}
	if i < len(w.Label) && (w.Label[i] == '_' || w.Label[i] == '/' || w.Label[i] == '(') {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.InvalidFirstChar, string(w.Label[i]))
	}
	last := w.Label[len(w.Label)-1]
	if last == '_' || last == '/' {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.InvalidFinalChar, string(last))
	}
}

// LabelLooksHidden reports visible labels shaped like hidden-point labels.
func (w *Waypoint) LabelLooksHidden(dc *datacheck.Sink) {
	if looksHiddenRE.MatchString(w.Label) {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelLooksHidden, "")
	}
}

// LabelParens reports unbalanced, nested, or reversed parentheses.
func (w *Waypoint) LabelParens(dc *datacheck.Sink) {
	parens := 0
	left, right := -1, -1
	for i := 0; i < len(w.Label); i++ {
		switch w.Label[i] {
		case '(':
			if left >= 0 {
				dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelParens, "")
				return
			}
			left = i
			parens++
		case ')':
			right = i
			parens--
		}
	}
	if parens != 0 || right < left {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelParens, "")
	}
}

// LabelSelfref reports labels that reference their own route. Only the
// unambiguous forms are flagged; looser matching produced too many false
// positives. slash is the index of the first '/' in the label, or -1.
func (w *Waypoint) LabelSelfref(dc *datacheck.Sink, slash int) {
	rte := w.Route.Route
	// number match after a slash
	if slash >= 0 && len(rte) > 0 && rte[len(rte)-1] >= '0' && rte[len(rte)-1] <= '9' {
		ds := len(rte) - 1
		for ds >= 0 && rte[ds] >= '0' && rte[ds] <= '9' {
			ds--
		}
		digits := rte[ds+1:]
		after := w.Label[slash+1:]
		if after == digits || after == rte {
			dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelSelfref, "")
			return
		}
		if u := strings.IndexByte(after, '_'); u >= 0 {
			if after[:u] == digits || after[:u] == rte {
				dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelSelfref, "")
				return
			}
		}
	}
	// full route+banner prefix
	rteBan := rte + w.Route.Banner
	if strings.HasPrefix(w.Label, rteBan) {
		rest := w.Label[len(rteBan):]
		if rest == "" || rest[0] == '_' || rest[0] == '/' {
			dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelSelfref, "")
		}
	}
}

// LabelSlashes reports more than one '/' in a label.
func (w *Waypoint) LabelSlashes(dc *datacheck.Sink, slash int) {
	if slash >= 0 && strings.IndexByte(w.Label[slash+1:], '/') >= 0 {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelSlashes, "")
	}
}

// LacksGeneric reports "Old" followed directly by a route number, which
// should name the highway type instead.
func (w *Waypoint) LacksGeneric(dc *datacheck.Sink) {
	if lacksGenericRE.MatchString(w.Label) {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LacksGeneric, "")
	}
}

// UnderscoreChecks reports too many underscores, an overlong suffix after
// the underscore, and a slash appearing after an underscore. slash is the
// index of the first '/' in the label, or -1.
func (w *Waypoint) UnderscoreChecks(dc *datacheck.Sink, slash int) {
	u := strings.IndexByte(w.Label, '_')
	if u < 0 {
		return
	}
	if strings.IndexByte(w.Label[u+1:], '_') >= 0 {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.LabelUnderscores, "")
	}
	tail := len(w.Label) - u - 1
	if tail > 3 {
		last := w.Label[len(w.Label)-1]
		if last > 'Z' || last < 'A' || tail > 4 {
			dc.Add(w.Route.Root, w.Label, "", "", datacheck.LongUnderscore, "")
		}
	}
	if slash > u {
		dc.Add(w.Route.Root, w.Label, "", "", datacheck.NonterminalUnderscore, "")
	}
}

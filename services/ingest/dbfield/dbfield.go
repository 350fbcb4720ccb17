// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dbfield defines the byte caps of the database columns the ingested
// data is eventually written to. CSV loaders check every field against these
// limits so oversize data is reported at ingest time rather than truncated
// silently at insert time.
package dbfield

// Column byte caps.
const (
	Abbrev         = 3
	Banner         = 6
	City           = 100
	Color          = 16
	ContinentCode  = 3
	ContinentName  = 15
	CountryCode    = 3
	CountryName    = 32
	Label          = 26
	RegionCode     = 8
	RegionName     = 48
	RegionType     = 32
	Root           = 32
	Route          = 16
	SystemFullName = 60
	SystemName     = 10
	Traveler       = 48
)

// DCErrValue caps the info/value column of a datacheck row. It must hold a
// root, a label, and a separator.
const DCErrValue = Root + Label + 1

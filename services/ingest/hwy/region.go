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

	"github.com/TravelMapping/siteupdate/services/ingest/dbfield"
	"github.com/TravelMapping/siteupdate/services/ingest/textutil"
)

// Region is one row of regions.csv: a state, province, territory, or
// country-level unit that routes belong to.
type Region struct {
	Code      string
	Name      string
	Country   *Country
	Continent *Continent
	Type      string
}

// NewRegion parses one regions.csv line. It returns nil when the field
// count is wrong; all other problems are reported to the error list and
// resolved to sentinels so parsing stays total.
func NewRegion(line string, ds *Dataset) *Region {
	fields := textutil.Split(line, ';')
	if len(fields) != 5 {
		ds.Errors.Add(fmt.Sprintf("Could not parse regions.csv line: [%s], expected 5 fields, found %d", line, len(fields)))
		return nil
	}
	r := &Region{
		Code: fields[0],
		Name: fields[1],
		Type: fields[4],
	}
	if len(r.Code) > dbfield.RegionCode {
		ds.Errors.Add(fmt.Sprintf("Region code > %d bytes in regions.csv line %s", dbfield.RegionCode, line))
	}
	if len(r.Name) > dbfield.RegionName {
		ds.Errors.Add(fmt.Sprintf("Region name > %d bytes in regions.csv line %s", dbfield.RegionName, line))
	}
	if len(r.Type) > dbfield.RegionType {
		ds.Errors.Add(fmt.Sprintf("Region type > %d bytes in regions.csv line %s", dbfield.RegionType, line))
	}
	r.Country = ds.CountryByCode(fields[2])
	if r.Country == nil {
		ds.Errors.Add("Could not find country matching regions.csv line: " + line)
		r.Country = ds.CountryByCode(sentinelCode)
	}
	r.Continent = ds.ContinentByCode(fields[3])
	if r.Continent == nil {
		ds.Errors.Add("Could not find continent matching regions.csv line: " + line)
		r.Continent = ds.ContinentByCode(sentinelCode)
	}
	return r
}

// sentinelCode is the code of the catch-all taxonomy rows appended after
// each CSV is read, so that lookups for unknown codes resolve to something.
const sentinelCode = "error"

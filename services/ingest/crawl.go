// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/TravelMapping/siteupdate/services/ingest/hwy"
)

// crawlWptFiles walks the hwy_data tree collecting the full path of every
// .wpt file into the dataset's crawled set. Each route later removes its
// own file; whatever remains was never referenced by a CSV.
func crawlWptFiles(ds *hwy.Dataset) {
	root := ds.HwyDataPath()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ds.Errors.Add("Error crawling " + path)
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".wpt") {
			ds.AllWptFiles[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		ds.Errors.Add("Error crawling " + root)
	}
}

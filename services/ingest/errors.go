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

import "errors"

// Sentinel errors for the ingest pipeline. Problems in the data itself are
// never Go errors — they accumulate in the dataset's error list — so these
// cover only environment and usage failures.
var (
	// ErrNoDataRoot indicates the highway data path was empty.
	ErrNoDataRoot = errors.New("highway data path must not be empty")

	// ErrBadThreadCount indicates a non-positive worker count.
	ErrBadThreadCount = errors.New("thread count must be at least 1")
)

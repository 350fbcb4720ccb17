// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package errorlist

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddPreservesOrder(t *testing.T) {
	var l List
	l.Add("first")
	l.Add("second")
	l.Add("third")

	assert.Equal(t, []string{"first", "second", "third"}, l.Entries())
	assert.Equal(t, 3, l.Len())
}

func TestEntriesReturnsCopy(t *testing.T) {
	var l List
	l.Add("only")

	entries := l.Entries()
	entries[0] = "mutated"
	assert.Equal(t, []string{"only"}, l.Entries())
}

// TestConcurrentAdds verifies no append is lost under contention.
func TestConcurrentAdds(t *testing.T) {
	var l List
	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.Add(fmt.Sprintf("worker %d entry %d", id, i))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, l.Len())
}

// Copyright 2021 the pl-tools authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package concord

import (
	"github.com/pkg/errors"
)

// SamplePair is one member of the overlap set, with its genotype column
// position resolved in each file.
type SamplePair struct {
	ID   string
	Idx1 int
	Idx2 int
}

// ResolveOverlap intersects the two files' sample maps, preserving file-1
// column order and dropping any identifier present in exclude.  The resulting
// set is fixed for the whole run; an empty set is an error.
func ResolveOverlap(samples1 []string, idx2 map[string]int, exclude map[string]bool) ([]SamplePair, error) {
	overlap := make([]SamplePair, 0, len(samples1))
	for i, id := range samples1 {
		if exclude[id] {
			continue
		}
		j, ok := idx2[id]
		if !ok {
			continue
		}
		overlap = append(overlap, SamplePair{ID: id, Idx1: i, Idx2: j})
	}
	if len(overlap) == 0 {
		return nil, errors.New("concord: no shared samples between the two files after exclusions")
	}
	return overlap, nil
}

// parseExcludeIDs turns the comma-separated -exIDs flag value into a set.
func parseExcludeIDs(s string) map[string]bool {
	set := map[string]bool{}
	if s == "" {
		return set
	}
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if id := s[start:i]; id != "" {
				set[id] = true
			}
			start = i + 1
		}
	}
	return set
}

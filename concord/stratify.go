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
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Frequency stratification.  The alternate-allele frequency from INFO is
// folded to a minor-allele frequency, remembering which allele was major, and
// bucketed against an ascending cutoff list: the category is the position of
// the first cutoff the MAF does not exceed, with everything above the last
// cutoff falling into one extra bucket.

const (
	refMajorLabel = "major"
	refMinorLabel = "minor"
)

func freqCategory(af float64, cutoffs []float64) (cat int, refMajor bool) {
	refMajor = af <= 0.5
	maf := af
	if !refMajor {
		maf = 1 - af
	}
	for i, c := range cutoffs {
		if maf <= c {
			return i, refMajor
		}
	}
	return len(cutoffs), refMajor
}

// freqBucketLabel names bucket i of cutoffs for the .frqs output.
func freqBucketLabel(i int, cutoffs []float64) string {
	if i < len(cutoffs) {
		return "<=" + strconv.FormatFloat(cutoffs[i], 'g', -1, 64)
	}
	return ">" + strconv.FormatFloat(cutoffs[len(cutoffs)-1], 'g', -1, 64)
}

// gqBuckets is one bucket per integer genotype-quality value 0..100.
const gqBuckets = 101

// Joint tabulation.  Rather than a nested hash-of-hashes, the nesting path is
// a fixed-depth tagged key with sentinel values for disabled dimensions,
// mapped to lazily created leaf matrices.

type jointDims struct {
	ind bool
	frq bool
	maj bool
	gq  bool
}

var jointDimNames = []string{"ind", "frq", "maj", "gq"}

func parseJointDims(s string) (d jointDims, err error) {
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "ind":
			d.ind = true
		case "frq":
			d.frq = true
		case "maj":
			d.maj = true
		case "gq":
			d.gq = true
		case "":
		default:
			return d, errors.Errorf("concord: unknown joint dimension %q (want any of %s)", tok, strings.Join(jointDimNames, ","))
		}
	}
	if d == (jointDims{}) {
		return d, errors.New("concord: joint tabulation requested with no dimensions")
	}
	return d, nil
}

// jointKey is the tagged nesting path.  Disabled dimensions stay at their
// sentinel (-1 / "") so they compare equal across all sites.
type jointKey struct {
	ind   int
	frq   int
	maj   string
	gqDec int
}

type jointTable struct {
	dims jointDims
	m    map[jointKey]*Matrix
}

func newJointTable(dims jointDims) *jointTable {
	return &jointTable{dims: dims, m: map[jointKey]*Matrix{}}
}

// get returns the leaf matrix for key, creating it on first use.
func (t *jointTable) get(key jointKey) *Matrix {
	if m, ok := t.m[key]; ok {
		return m
	}
	m := &Matrix{}
	t.m[key] = m
	return m
}

// sortedKeys flattens the table deterministically: dimension order is fixed
// as individual, frequency category, major/minor flag, GQ decile.
func (t *jointTable) sortedKeys() []jointKey {
	keys := make([]jointKey, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ind != b.ind {
			return a.ind < b.ind
		}
		if a.frq != b.frq {
			return a.frq < b.frq
		}
		if a.maj != b.maj {
			return a.maj < b.maj
		}
		return a.gqDec < b.gqDec
	})
	return keys
}

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

import "github.com/MrFlick/pl-tools/encoding/vcf"

// Matrix is a 4x4 genotype contingency table.  Cell [g1][g2] counts samples
// called g1 in file 1 and g2 in file 2.  Cells only ever increase.
type Matrix [vcf.NGeno][vcf.NGeno]uint32

// Add increments one cell.
func (m *Matrix) Add(g1, g2 vcf.GenoCall) {
	m[g1][g2]++
}

// AddMatrix accumulates o into m cell-wise.
func (m *Matrix) AddMatrix(o *Matrix) {
	for i := range m {
		for j := range m[i] {
			m[i][j] += o[i][j]
		}
	}
}

// Total returns the sum of all 16 cells.
func (m *Matrix) Total() (n uint32) {
	for i := range m {
		for j := range m[i] {
			n += m[i][j]
		}
	}
	return n
}

// tabulate builds a site matrix from per-sample genotype pairs.  The two
// slices are indexed by overlap-set position and must be the same length.
func tabulate(genos1, genos2 []vcf.GenoCall) (m Matrix) {
	for i, g1 := range genos1 {
		m.Add(g1, genos2[i])
	}
	return m
}

// flipNeeded implements the per-site allele-flip heuristic: the file-1
// hom-ref/hom-alt labels are considered swapped relative to file 2 when
// opposite-homozygote crossings outnumber the het/hom-alt crossings.
func flipNeeded(m *Matrix) bool {
	hetCross := m[vcf.GenoHet][vcf.GenoHomAlt] + m[vcf.GenoHomAlt][vcf.GenoHet]
	homCross := m[vcf.GenoHomRef][vcf.GenoHomAlt] + m[vcf.GenoHomAlt][vcf.GenoHomRef]
	return hetCross < homCross
}

// flipGenos swaps hom-ref and hom-alt in place.  Het and missing calls are
// unaffected.
func flipGenos(genos []vcf.GenoCall) {
	for i, g := range genos {
		switch g {
		case vcf.GenoHomRef:
			genos[i] = vcf.GenoHomAlt
		case vcf.GenoHomAlt:
			genos[i] = vcf.GenoHomRef
		}
	}
}

// anyAlt reports whether any call in genos carries an observed alternate
// allele.
func anyAlt(genos []vcf.GenoCall) bool {
	for _, g := range genos {
		if g == vcf.GenoHet || g == vcf.GenoHomAlt {
			return true
		}
	}
	return false
}

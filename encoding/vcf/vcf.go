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

// Package vcf provides a line-oriented reader for VCF-like tab-separated
// variant call files, plus the simplified genotype model used by the
// concordance tools: every call collapses to one of four states (missing,
// hom-ref, het, hom-alt), with multi-allelic genotypes treated as biallelic
// ref/alt.
package vcf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GenoCall is the simplified 4-state genotype classification.
type GenoCall byte

const (
	// GenoMissing means one or both alleles could not be determined.
	GenoMissing GenoCall = iota
	// GenoHomRef is 0/0.
	GenoHomRef
	// GenoHet is 0/1 or 1/0 (any nonzero allele index collapses to 1).
	GenoHet
	// GenoHomAlt is 1/1.
	GenoHomAlt

	// NGeno is the number of genotype states.
	NGeno = 4
)

// GenoNames maps GenoCall values to the labels used in output tables.
var GenoNames = [NGeno]string{"NN", "RR", "RA", "AA"}

func (g GenoCall) String() string { return GenoNames[g] }

// Chromosome rank assignments for the non-numeric contig names recognized by
// the comparator.  Everything else must parse as an integer 1-22.
const (
	ChromX  = 23
	ChromY  = 24
	ChromXY = 25
	ChromMT = 26

	// MaxAutosome is the largest rank that participates in comparisons.
	MaxAutosome = 22
)

// ChromRank normalizes a contig name to an integer rank in 1..26, accepting
// an optional "chr" prefix.  X=23, Y=24, XY=25, MT/M=26.  Rank 0 means the
// name is not recognized.
func ChromRank(name string) int {
	s := strings.TrimPrefix(name, "chr")
	switch s {
	case "X":
		return ChromX
	case "Y":
		return ChromY
	case "XY":
		return ChromXY
	case "MT", "M":
		return ChromMT
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 22 {
		return 0
	}
	return n
}

// Record is one data line of a VCF-like file.  It is constructed fresh for
// each line read and never mutated afterwards.
type Record struct {
	ChromRank int    // normalized contig rank (0 if unrecognized)
	Chrom     string // contig name as written
	Pos       int    // 1-based position
	ID        string
	Ref       string
	Alt       string
	Qual      string
	Filter    string
	Info      string
	Format    string
	// Samples holds the raw per-sample fields, one per header sample column.
	Samples []string
}

// SortKey packs (chromosome rank, position) into a single comparable value.
// Positions are assumed to fit in nine decimal digits, so
// rank*1e9+pos orders records the same way a (rank, pos) tuple would.
const posRadix = 1000000000

// SortKey returns the record's composite merge key.
func (r *Record) SortKey() uint64 {
	return uint64(r.ChromRank)*posRadix + uint64(r.Pos)
}

// ExhaustedKey sorts after every real record key; the merge driver uses it to
// represent a drained stream.
const ExhaustedKey = ^uint64(0)

// FilterPassing reports whether the record's FILTER field counts as passing.
// "PASS", "0", and "." are all accepted as equivalent.
func (r *Record) FilterPassing() bool {
	return r.Filter == "PASS" || r.Filter == "0" || r.Filter == "."
}

// InfoInt extracts an integer-valued INFO annotation (e.g. "NS").  The second
// return is false if the key is absent or its value is not an integer.
func (r *Record) InfoInt(key string) (int, bool) {
	v, ok := infoValue(r.Info, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// InfoFloat extracts a float-valued INFO annotation (e.g. "AF").  For
// comma-separated values only the first entry is used, consistent with the
// biallelic collapsing done elsewhere.
func (r *Record) InfoFloat(key string) (float64, bool) {
	v, ok := infoValue(r.Info, key)
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func infoValue(info, key string) (string, bool) {
	for len(info) > 0 {
		field := info
		if i := strings.IndexByte(info, ';'); i >= 0 {
			field = info[:i]
			info = info[i+1:]
		} else {
			info = ""
		}
		if eq := strings.IndexByte(field, '='); eq >= 0 {
			if field[:eq] == key {
				return field[eq+1:], true
			}
		}
	}
	return "", false
}

// FormatIndex returns the position of a FORMAT key (e.g. "GQ") within the
// record's colon-separated FORMAT declaration, or -1 if absent.
func (r *Record) FormatIndex(key string) int {
	for i, f := range strings.Split(r.Format, ":") {
		if f == key {
			return i
		}
	}
	return -1
}

// SampleField returns field fieldIdx of the colon-separated entry for sample
// column sampleIdx, or "" if the entry has fewer fields.
func (r *Record) SampleField(sampleIdx, fieldIdx int) string {
	fields := r.Samples[sampleIdx]
	for ; fieldIdx > 0; fieldIdx-- {
		i := strings.IndexByte(fields, ':')
		if i < 0 {
			return ""
		}
		fields = fields[i+1:]
	}
	if i := strings.IndexByte(fields, ':'); i >= 0 {
		fields = fields[:i]
	}
	return fields
}

// Genotype classifies the call of sample column sampleIdx.  Tokens must look
// like "a/b" or "a|b" with each allele either a nonnegative integer or ".";
// a bare "." (no separator) is also accepted as missing.  Any allele index
// above 1 is collapsed to 1.  Anything else is an error naming the offending
// site.
func (r *Record) Genotype(sampleIdx int) (GenoCall, error) {
	gt := r.SampleField(sampleIdx, 0)
	if gt == "." {
		return GenoMissing, nil
	}
	sep := strings.IndexAny(gt, "/|")
	if sep < 0 {
		return GenoMissing, errors.Errorf("vcf: unrecognized genotype %q for sample %d at %s:%d", gt, sampleIdx, r.Chrom, r.Pos)
	}
	a, aok, err := parseAllele(gt[:sep], r, gt)
	if err != nil {
		return GenoMissing, err
	}
	b, bok, err := parseAllele(gt[sep+1:], r, gt)
	if err != nil {
		return GenoMissing, err
	}
	if !aok || !bok {
		return GenoMissing, nil
	}
	switch a + b {
	case 0:
		return GenoHomRef, nil
	case 1:
		return GenoHet, nil
	}
	return GenoHomAlt, nil
}

// parseAllele maps an allele token to 0 or 1, with ok=false for a missing
// allele (".").
func parseAllele(s string, r *Record, gt string) (int, bool, error) {
	if s == "." {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false, errors.Errorf("vcf: unrecognized genotype %q at %s:%d", gt, r.Chrom, r.Pos)
	}
	if n > 1 {
		n = 1
	}
	return n, true, nil
}

// minFixedColumns counts CHROM..INFO; FORMAT and sample columns are optional
// in the format but required by any genotype-level operation.
const minFixedColumns = 8

// parseRecord builds a Record from one data line.  The sample-column count is
// not validated against the header here; column lookups are always performed
// through a sample index map built from the same file.
func parseRecord(line string) (*Record, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < minFixedColumns {
		return nil, errors.Errorf("vcf: truncated record (%d columns): %.60q", len(cols), line)
	}
	pos, err := strconv.Atoi(cols[1])
	if err != nil {
		return nil, errors.Wrapf(err, "vcf: bad POS at %s:%s", cols[0], cols[1])
	}
	rec := &Record{
		ChromRank: ChromRank(cols[0]),
		Chrom:     cols[0],
		Pos:       pos,
		ID:        cols[2],
		Ref:       cols[3],
		Alt:       cols[4],
		Qual:      cols[5],
		Filter:    cols[6],
		Info:      cols[7],
	}
	if len(cols) > minFixedColumns {
		rec.Format = cols[8]
		rec.Samples = cols[9:]
	}
	return rec, nil
}

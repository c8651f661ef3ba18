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

// Package concord compares genotype calls between two sorted,
// position-aligned VCF-like files restricted to their shared samples, and
// writes per-site, per-individual, per-frequency-bin, and
// per-genotype-quality concordance tables.
package concord

import (
	"context"
	"sort"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/MrFlick/pl-tools/encoding/vcf"
)

// Opts holds the commandline options of vcf-concord.
type Opts struct {
	// PassOnly restricts both inputs to PASS-equivalent records.
	PassOnly bool
	// IncludeMono disables the monomorphic-site skip.
	IncludeMono bool
	// Flip enables the per-site allele-flip heuristic.
	Flip bool
	// ExcludeIDs is a comma-separated list of sample identifiers to drop from
	// the overlap set.
	ExcludeIDs string
	// MinNS suppresses any matched site whose INFO NS annotation on either
	// record is below this threshold.  0 disables the check.
	MinNS int
	// Only1 and Only2 enable the corresponding unmatched-record tables.
	Only1 bool
	Only2 bool
	// GQ enables the per-genotype-quality table.
	GQ bool
	// Freq enables the per-frequency-bucket table.
	Freq bool
	// Joint enables the joint tabulation across JointDims.
	Joint bool
	// JointDims is a comma-separated subset of {ind,frq,maj,gq}.
	JointDims string
	// FreqCutoffs is the ascending MAF cutoff list defining frequency buckets.
	FreqCutoffs []float64
}

// DefaultOpts holds the commandline defaults.
var DefaultOpts = Opts{
	JointDims:   "frq,gq",
	FreqCutoffs: []float64{0.01, 0.05, 0.15, 0.25},
}

type runStats struct {
	Matched     int
	AltMismatch int
	Only1       int
	Only2       int
	Suppressed  int
	RefWarnings int
}

// Comparator owns all mutable state for one run: the resolved overlap set,
// every aggregation counter, and the open output tables.  It is used from a
// single goroutine.
type Comparator struct {
	opts      Opts
	overlap   []SamplePair
	jointDims jointDims

	overall Matrix
	perInd  []Matrix
	depths  [][]float64
	freq    []Matrix
	gq      []Matrix
	joint   *jointTable
	stats   runStats

	both     *tableWriter
	mismatch *tableWriter
	only1    *tableWriter
	only2    *tableWriter
}

// NewComparator validates opts and builds the run context for the given
// overlap set.
func NewComparator(opts Opts, overlap []SamplePair) (*Comparator, error) {
	if len(opts.FreqCutoffs) == 0 {
		return nil, errors.New("concord: empty frequency cutoff list")
	}
	if !sort.Float64sAreSorted(opts.FreqCutoffs) {
		return nil, errors.Errorf("concord: frequency cutoffs %v are not ascending", opts.FreqCutoffs)
	}
	c := &Comparator{
		opts:    opts,
		overlap: overlap,
		perInd:  make([]Matrix, len(overlap)),
		depths:  make([][]float64, len(overlap)),
		freq:    make([]Matrix, len(opts.FreqCutoffs)+1),
		gq:      make([]Matrix, gqBuckets),
	}
	if opts.Joint {
		dims, err := parseJointDims(opts.JointDims)
		if err != nil {
			return nil, err
		}
		c.jointDims = dims
		c.joint = newJointTable(dims)
	}
	return c, nil
}

// Overall returns the overall matched-site matrix.
func (c *Comparator) Overall() *Matrix { return &c.overall }

// Individual returns the lifetime matrix of overlap-set member i.
func (c *Comparator) Individual(i int) *Matrix { return &c.perInd[i] }

// stream is one side of the dual-stream merge: the scanner, the current
// record with its classified overlap-sample genotypes, and the composite
// merge key (ExhaustedKey once drained).
type stream struct {
	sc    *vcf.Scanner
	cols  []int
	rec   *vcf.Record
	genos []vcf.GenoCall
	key   uint64
}

func newStream(sc *vcf.Scanner, overlap []SamplePair, fileNo int) *stream {
	s := &stream{
		sc:    sc,
		cols:  make([]int, len(overlap)),
		genos: make([]vcf.GenoCall, len(overlap)),
	}
	for i, sp := range overlap {
		if fileNo == 1 {
			s.cols[i] = sp.Idx1
		} else {
			s.cols[i] = sp.Idx2
		}
	}
	return s
}

// advance pulls the stream's next comparable record, classifying the overlap
// samples' genotypes and skipping monomorphic sites unless they were
// requested.  At exhaustion the key becomes ExhaustedKey, which sorts after
// every real key.
func (c *Comparator) advance(s *stream) error {
	for {
		if !s.sc.Scan() {
			s.rec = nil
			s.key = vcf.ExhaustedKey
			return s.sc.Err()
		}
		rec := s.sc.Get()
		for i, col := range s.cols {
			g, err := rec.Genotype(col)
			if err != nil {
				return err
			}
			s.genos[i] = g
		}
		if !c.opts.IncludeMono && !anyAlt(s.genos) {
			continue
		}
		s.rec = rec
		s.key = rec.SortKey()
		return nil
	}
}

// Compare walks both streams in lockstep until both are exhausted.  Inputs
// must already be sorted by (chromosome, position); the driver neither
// re-sorts nor detects out-of-order records, so an unsorted input degrades
// into spurious only1/only2 attributions.
func (c *Comparator) Compare(ctx context.Context, sc1, sc2 *vcf.Scanner) error {
	s1 := newStream(sc1, c.overlap, 1)
	s2 := newStream(sc2, c.overlap, 2)
	if err := c.advance(s1); err != nil {
		return err
	}
	if err := c.advance(s2); err != nil {
		return err
	}
	for s1.key != vcf.ExhaustedKey || s2.key != vcf.ExhaustedKey {
		switch {
		case s1.key == s2.key:
			if err := c.handleMatch(s1, s2); err != nil {
				return err
			}
			if err := c.advance(s1); err != nil {
				return err
			}
			if err := c.advance(s2); err != nil {
				return err
			}
		case s1.key < s2.key:
			c.stats.Only1++
			if c.only1 != nil {
				if err := c.only1.writeOnlyRow(s1.rec); err != nil {
					return err
				}
			}
			if err := c.advance(s1); err != nil {
				return err
			}
		default:
			c.stats.Only2++
			if c.only2 != nil {
				if err := c.only2.writeOnlyRow(s2.rec); err != nil {
					return err
				}
			}
			if err := c.advance(s2); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleMatch processes a candidate match: records at the same (chromosome,
// position) in both files.
func (c *Comparator) handleMatch(s1, s2 *stream) error {
	rec1, rec2 := s1.rec, s2.rec
	if c.opts.MinNS > 0 {
		if ns, ok := rec1.InfoInt("NS"); ok && ns < c.opts.MinNS {
			c.stats.Suppressed++
			return nil
		}
		if ns, ok := rec2.InfoInt("NS"); ok && ns < c.opts.MinNS {
			c.stats.Suppressed++
			return nil
		}
	}
	if rec1.Ref != rec2.Ref {
		c.stats.RefWarnings++
		log.Printf("concord: warning: REF disagreement at %s:%d (%s vs %s)", rec1.Chrom, rec1.Pos, rec1.Ref, rec2.Ref)
	}
	site := tabulate(s1.genos, s2.genos)
	if rec1.Alt != rec2.Alt && (anyAlt(s1.genos) || anyAlt(s2.genos)) {
		c.stats.AltMismatch++
		if c.mismatch != nil {
			return c.mismatch.writeSiteRow(rec1, &site)
		}
		return nil
	}
	if c.opts.Flip && flipNeeded(&site) {
		flipGenos(s1.genos)
		site = tabulate(s1.genos, s2.genos)
	}
	c.stats.Matched++
	c.overall.AddMatrix(&site)

	freqCat, refMajor, haveFreq := siteFreq(rec1, rec2, c.opts.FreqCutoffs)
	gqIdx := -1
	if c.opts.GQ || c.jointDims.gq {
		gqIdx = rec2.FormatIndex("GQ")
	}
	dpIdx := rec2.FormatIndex("DP")
	majLabel := refMinorLabel
	if refMajor {
		majLabel = refMajorLabel
	}
	for i := range c.overlap {
		g1, g2 := s1.genos[i], s2.genos[i]
		c.perInd[i].Add(g1, g2)
		if c.opts.Freq && haveFreq {
			c.freq[freqCat].Add(g1, g2)
		}
		gqv := -1
		if gqIdx >= 0 {
			gqv = sampleInt(rec2, c.overlap[i].Idx2, gqIdx)
		}
		if c.opts.GQ && gqv >= 0 && gqv < gqBuckets {
			c.gq[gqv].Add(g1, g2)
		}
		if c.joint != nil {
			if m := c.jointLeaf(i, freqCat, haveFreq, majLabel, gqv); m != nil {
				m.Add(g1, g2)
			}
		}
		if dpIdx >= 0 {
			if dp := sampleInt(rec2, c.overlap[i].Idx2, dpIdx); dp >= 0 {
				c.depths[i] = append(c.depths[i], float64(dp))
			}
		}
	}
	if c.both != nil {
		return c.both.writeSiteRow(rec1, &site)
	}
	return nil
}

// jointLeaf resolves the joint-table leaf for one (sample, site) pair, or nil
// when an enabled dimension has no value here.
func (c *Comparator) jointLeaf(ind, freqCat int, haveFreq bool, majLabel string, gqv int) *Matrix {
	key := jointKey{ind: -1, frq: -1, gqDec: -1}
	if c.jointDims.ind {
		key.ind = ind
	}
	if c.jointDims.frq || c.jointDims.maj {
		if !haveFreq {
			return nil
		}
		if c.jointDims.frq {
			key.frq = freqCat
		}
		if c.jointDims.maj {
			key.maj = majLabel
		}
	}
	if c.jointDims.gq {
		if gqv < 0 || gqv >= gqBuckets {
			return nil
		}
		key.gqDec = gqv / 10
	}
	return c.joint.get(key)
}

// siteFreq derives the frequency bucket from the file-1 AF annotation,
// falling back to file 2.
func siteFreq(rec1, rec2 *vcf.Record, cutoffs []float64) (cat int, refMajor, ok bool) {
	af, ok := rec1.InfoFloat("AF")
	if !ok {
		af, ok = rec2.InfoFloat("AF")
	}
	if !ok {
		return 0, false, false
	}
	cat, refMajor = freqCategory(af, cutoffs)
	return cat, refMajor, true
}

// sampleInt parses an integer per-sample FORMAT field, returning -1 for
// missing or non-numeric values.
func sampleInt(rec *vcf.Record, sampleIdx, fieldIdx int) int {
	v := rec.SampleField(sampleIdx, fieldIdx)
	if v == "" || v == "." {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// Run executes a whole comparison: opens both inputs, resolves the overlap
// set, streams the merge, and writes every enabled output table under
// outPrefix.  Any returned error is fatal to the run; nothing is retried.
func Run(ctx context.Context, vcf1, vcf2, outPrefix string, opts Opts) (err error) {
	sc1, err := vcf.NewScanner(ctx, vcf1, vcf.ScannerOpts{PassOnly: opts.PassOnly})
	if err != nil {
		return err
	}
	defer func() {
		if e := sc1.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	sc2, err := vcf.NewScanner(ctx, vcf2, vcf.ScannerOpts{PassOnly: opts.PassOnly})
	if err != nil {
		return err
	}
	defer func() {
		if e := sc2.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	overlap, err := ResolveOverlap(sc1.Samples(), sc2.SampleIndex(), parseExcludeIDs(opts.ExcludeIDs))
	if err != nil {
		return err
	}
	log.Printf("concord: comparing %d shared samples", len(overlap))
	c, err := NewComparator(opts, overlap)
	if err != nil {
		return err
	}
	if c.both, err = createTable(ctx, outPrefix, suffixBoth); err != nil {
		return err
	}
	defer c.both.close(ctx, &err)
	if err = c.both.writeSiteHeader(); err != nil {
		return err
	}
	if c.mismatch, err = createTable(ctx, outPrefix, suffixMismatch); err != nil {
		return err
	}
	defer c.mismatch.close(ctx, &err)
	if err = c.mismatch.writeSiteHeader(); err != nil {
		return err
	}
	if opts.Only1 {
		if c.only1, err = createTable(ctx, outPrefix, suffixOnly1); err != nil {
			return err
		}
		defer c.only1.close(ctx, &err)
		if err = c.only1.writeOnlyHeader(); err != nil {
			return err
		}
	}
	if opts.Only2 {
		if c.only2, err = createTable(ctx, outPrefix, suffixOnly2); err != nil {
			return err
		}
		defer c.only2.close(ctx, &err)
		if err = c.only2.writeOnlyHeader(); err != nil {
			return err
		}
	}
	if err = c.Compare(ctx, sc1, sc2); err != nil {
		return err
	}
	if err = c.writeIndTable(ctx, outPrefix); err != nil {
		return err
	}
	if opts.Freq {
		if err = c.writeFreqTable(ctx, outPrefix); err != nil {
			return err
		}
	}
	if opts.GQ {
		if err = c.writeGQTable(ctx, outPrefix); err != nil {
			return err
		}
	}
	if opts.Joint {
		if err = c.writeJointTable(ctx, outPrefix); err != nil {
			return err
		}
	}
	log.Printf("concord: %d matched, %d alt-mismatch, %d only1, %d only2, %d suppressed, %d REF warnings",
		c.stats.Matched, c.stats.AltMismatch, c.stats.Only1, c.stats.Only2, c.stats.Suppressed, c.stats.RefWarnings)
	return nil
}

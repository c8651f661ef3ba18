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
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/montanaflynn/stats"

	"github.com/MrFlick/pl-tools/encoding/vcf"
)

// Output table suffixes.  The column order and spelling below are consumed by
// a separate plotting stage and must stay stable.
const (
	suffixBoth     = "both"
	suffixMismatch = "mismatch"
	suffixInd      = "ind"
	suffixOnly1    = "only1"
	suffixOnly2    = "only2"
	suffixFrqs     = "frqs"
	suffixGQs      = "gqs"
	suffixJoint    = "joint"
)

type tableWriter struct {
	f file.File
	w *tsv.Writer
}

func createTable(ctx context.Context, prefix, suffix string) (*tableWriter, error) {
	f, err := file.Create(ctx, prefix+"."+suffix)
	if err != nil {
		return nil, err
	}
	return &tableWriter{f: f, w: tsv.NewWriter(f.Writer(ctx))}, nil
}

func (t *tableWriter) close(ctx context.Context, err *error) {
	if t == nil {
		return
	}
	if e := t.w.Flush(); e != nil && *err == nil {
		*err = e
	}
	file.CloseAndReport(ctx, t.f, err)
}

// matrixHeader lists the 16 cell columns in row-major order, file-1 genotype
// outer: N_NN_NN ... N_AA_AA.
func matrixHeader() string {
	cols := make([]string, 0, vcf.NGeno*vcf.NGeno)
	for g1 := 0; g1 < vcf.NGeno; g1++ {
		for g2 := 0; g2 < vcf.NGeno; g2++ {
			cols = append(cols, "N_"+vcf.GenoNames[g1]+"_"+vcf.GenoNames[g2])
		}
	}
	return strings.Join(cols, "\t")
}

func writeMatrixCells(w *tsv.Writer, m *Matrix) {
	for g1 := range m {
		for g2 := range m[g1] {
			w.WriteUint32(m[g1][g2])
		}
	}
}

func (t *tableWriter) writeSiteHeader() error {
	t.w.WriteString("#CHROM\tPOS\tID\tREF\tALT\t" + matrixHeader())
	return t.w.EndLine()
}

// writeSiteRow emits one matched (or alt-mismatched) site with its matrix.
func (t *tableWriter) writeSiteRow(rec *vcf.Record, m *Matrix) error {
	t.w.WriteString(rec.Chrom)
	t.w.WriteUint32(uint32(rec.Pos))
	t.w.WriteString(rec.ID)
	t.w.WriteString(rec.Ref)
	t.w.WriteString(rec.Alt)
	writeMatrixCells(t.w, m)
	return t.w.EndLine()
}

func (t *tableWriter) writeOnlyHeader() error {
	t.w.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER")
	return t.w.EndLine()
}

// writeOnlyRow emits a record present in just one of the two files.
func (t *tableWriter) writeOnlyRow(rec *vcf.Record) error {
	t.w.WriteString(rec.Chrom)
	t.w.WriteUint32(uint32(rec.Pos))
	t.w.WriteString(rec.ID)
	t.w.WriteString(rec.Ref)
	t.w.WriteString(rec.Alt)
	t.w.WriteString(rec.Qual)
	t.w.WriteString(rec.Filter)
	return t.w.EndLine()
}

// writeIndTable emits the per-individual lifetime counters plus the mean
// file-2 depth observed at counted sites ("." when depth was never seen).
func (c *Comparator) writeIndTable(ctx context.Context, prefix string) (err error) {
	t, err := createTable(ctx, prefix, suffixInd)
	if err != nil {
		return err
	}
	defer t.close(ctx, &err)
	t.w.WriteString("#ID\t" + matrixHeader() + "\tMEAN_DP")
	if err = t.w.EndLine(); err != nil {
		return err
	}
	for i, sp := range c.overlap {
		t.w.WriteString(sp.ID)
		writeMatrixCells(t.w, &c.perInd[i])
		if mean, e := stats.Mean(c.depths[i]); e == nil {
			t.w.WriteString(strconv.FormatFloat(mean, 'f', 3, 64))
		} else {
			t.w.WriteByte('.')
		}
		if err = t.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// writeFreqTable emits one row per configured MAF bucket.
func (c *Comparator) writeFreqTable(ctx context.Context, prefix string) (err error) {
	t, err := createTable(ctx, prefix, suffixFrqs)
	if err != nil {
		return err
	}
	defer t.close(ctx, &err)
	t.w.WriteString("#BIN\tMAF\t" + matrixHeader())
	if err = t.w.EndLine(); err != nil {
		return err
	}
	for i := range c.freq {
		t.w.WriteUint32(uint32(i))
		t.w.WriteString(freqBucketLabel(i, c.opts.FreqCutoffs))
		writeMatrixCells(t.w, &c.freq[i])
		if err = t.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// writeGQTable emits one row per genotype-quality value that was actually
// observed, in ascending order.
func (c *Comparator) writeGQTable(ctx context.Context, prefix string) (err error) {
	t, err := createTable(ctx, prefix, suffixGQs)
	if err != nil {
		return err
	}
	defer t.close(ctx, &err)
	t.w.WriteString("#GQ\t" + matrixHeader())
	if err = t.w.EndLine(); err != nil {
		return err
	}
	for gq := range c.gq {
		if c.gq[gq].Total() == 0 {
			continue
		}
		t.w.WriteUint32(uint32(gq))
		writeMatrixCells(t.w, &c.gq[gq])
		if err = t.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// writeJointTable flattens the nested joint tabulation: each row holds the
// enabled key values down the nesting path followed by the 16 leaf counters.
func (c *Comparator) writeJointTable(ctx context.Context, prefix string) (err error) {
	t, err := createTable(ctx, prefix, suffixJoint)
	if err != nil {
		return err
	}
	defer t.close(ctx, &err)
	var cols []string
	if c.jointDims.ind {
		cols = append(cols, "IND")
	}
	if c.jointDims.frq {
		cols = append(cols, "MAF_BIN")
	}
	if c.jointDims.maj {
		cols = append(cols, "REF_ALLELE")
	}
	if c.jointDims.gq {
		cols = append(cols, "GQ_DECILE")
	}
	t.w.WriteString("#" + strings.Join(cols, "\t") + "\t" + matrixHeader())
	if err = t.w.EndLine(); err != nil {
		return err
	}
	for _, key := range c.joint.sortedKeys() {
		if c.jointDims.ind {
			t.w.WriteString(c.overlap[key.ind].ID)
		}
		if c.jointDims.frq {
			t.w.WriteUint32(uint32(key.frq))
		}
		if c.jointDims.maj {
			t.w.WriteString(key.maj)
		}
		if c.jointDims.gq {
			t.w.WriteUint32(uint32(key.gqDec))
		}
		writeMatrixCells(t.w, c.joint.m[key])
		if err = t.w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

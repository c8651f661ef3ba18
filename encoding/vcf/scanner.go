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

package vcf

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const (
	metaPrefix   = "##"
	headerPrefix = "#CHROM"
)

// ScannerOpts configures a Scanner.
type ScannerOpts struct {
	// PassOnly silently drops records whose FILTER field is not one of
	// {"PASS", "0", "."}.
	PassOnly bool
	// KeepAllChroms disables the default dropping of records on contigs other
	// than the autosomes 1-22 (sex chromosomes, MT, and anything
	// unrecognizable).  The concordance tools leave this false.
	KeepAllChroms bool
}

// Scanner reads one VCF-like file as a lazy, finite, non-restartable sequence
// of Records.  Leading "##" meta lines are skipped and the single "#CHROM"
// header line is parsed for sample identifiers before the first Scan.
// Scanners are not threadsafe.
type Scanner struct {
	path      string
	in        file.File
	gz        *gzip.Reader
	b         *bufio.Scanner
	opts      ScannerOpts
	samples   []string
	sampleIdx map[string]int
	rec       *Record
	err       error
}

var errEOF = errors.New("eof")

// NewScanner opens path (gzip-decompressed when the name ends in .gz) and
// consumes its meta and header lines.  Any failure to open or to find a
// well-formed header is returned as an error.
func NewScanner(ctx context.Context, path string, opts ScannerOpts) (s *Scanner, err error) {
	s = &Scanner{path: path, opts: opts}
	if s.in, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	reader := io.Reader(s.in.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if s.gz, err = gzip.NewReader(reader); err != nil {
			_ = s.in.Close(ctx)
			return nil, errors.Wrapf(err, "vcf: %s", path)
		}
		reader = s.gz
	}
	s.b = bufio.NewScanner(reader)
	// Lines in many-sample VCFs easily exceed bufio's default 64KiB token
	// limit.
	s.b.Buffer(make([]byte, 0, 256*1024), 64*1024*1024)
	if err = s.readHeader(); err != nil {
		_ = s.close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Scanner) readHeader() error {
	for s.b.Scan() {
		line := s.b.Text()
		if strings.HasPrefix(line, metaPrefix) {
			continue
		}
		if !strings.HasPrefix(line, headerPrefix) {
			return errors.Errorf("vcf: %s: expected %s header line, got %.60q", s.path, headerPrefix, line)
		}
		cols := strings.Split(line, "\t")
		if len(cols) > minFixedColumns+1 {
			s.samples = cols[minFixedColumns+1:]
		}
		s.sampleIdx = make(map[string]int, len(s.samples))
		for i, name := range s.samples {
			s.sampleIdx[name] = i
		}
		return nil
	}
	if err := s.b.Err(); err != nil {
		return errors.Wrapf(err, "vcf: %s", s.path)
	}
	return errors.Errorf("vcf: %s: no %s header line", s.path, headerPrefix)
}

// Samples returns the sample identifiers in header column order.
func (s *Scanner) Samples() []string { return s.samples }

// SampleIndex returns the sample identifier -> genotype column position map.
func (s *Scanner) SampleIndex() map[string]int { return s.sampleIdx }

// Path returns the path the Scanner was opened with.
func (s *Scanner) Path() string { return s.path }

// Scan advances to the next comparable record, returning false at stream
// exhaustion or on error.  Once it returns false it never returns true again;
// check Err afterwards.  Filtered-out records (non-passing under PassOnly,
// off-autosome contigs unless KeepAllChroms) are consumed without being
// observed by the caller.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		line := s.b.Text()
		if len(line) == 0 {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			s.err = err
			return false
		}
		if s.opts.PassOnly && !rec.FilterPassing() {
			continue
		}
		if !s.opts.KeepAllChroms && (rec.ChromRank == 0 || rec.ChromRank > MaxAutosome) {
			continue
		}
		s.rec = rec
		return true
	}
	if s.err = s.b.Err(); s.err != nil {
		s.err = errors.Wrapf(s.err, "vcf: %s", s.path)
	} else {
		s.err = errEOF
	}
	return false
}

// Get returns the record read by the last successful Scan.
func (s *Scanner) Get() *Record { return s.rec }

// Err returns the first error encountered while scanning, or nil if the
// stream ended normally.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// Close releases the underlying file.
func (s *Scanner) Close(ctx context.Context) error {
	if err := s.Err(); err != nil {
		_ = s.close(ctx)
		return err
	}
	return s.close(ctx)
}

func (s *Scanner) close(ctx context.Context) (err error) {
	if s.gz != nil {
		err = s.gz.Close()
		s.gz = nil
	}
	if s.in != nil {
		if e := s.in.Close(ctx); e != nil && err == nil {
			err = e
		}
		s.in = nil
	}
	return err
}

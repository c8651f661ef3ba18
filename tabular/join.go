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

package tabular

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// JoinOpts configures Join.
type JoinOpts struct {
	// DataKey is the join column name in the data file.
	DataKey string
	// LookupKey is the join column name in the lookup file; defaults to
	// DataKey.
	LookupKey string
	// Fill is written for every lookup column of an unmatched data row.
	Fill string
}

// DefaultJoinOpts uses "." for unmatched rows, the same missing marker the
// VCF tools use.
var DefaultJoinOpts = JoinOpts{Fill: "."}

// header splits a TSV header line, tolerating a leading '#'.
func header(line string) []string {
	return strings.Split(strings.TrimPrefix(line, "#"), "\t")
}

func columnIndex(cols []string, name string) (int, error) {
	for i, c := range cols {
		if c == name {
			return i, nil
		}
	}
	return -1, errors.Errorf("tabular: no column %q in header %v", name, cols)
}

// Join left-joins the TSV rows of data against those of lookup on a named
// key column.  Every data row is emitted exactly once, extended with the
// lookup file's non-key columns (or opts.Fill when the key is absent from the
// lookup).  Both inputs must start with a header line; duplicate lookup keys
// keep their first occurrence.
func Join(data, lookup io.Reader, w io.Writer, opts JoinOpts) error {
	if opts.LookupKey == "" {
		opts.LookupKey = opts.DataKey
	}
	if opts.Fill == "" {
		opts.Fill = DefaultJoinOpts.Fill
	}

	lookupScanner := bufio.NewScanner(lookup)
	lookupScanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !lookupScanner.Scan() {
		if err := lookupScanner.Err(); err != nil {
			return errors.Wrap(err, "tabular: reading lookup file")
		}
		return errors.New("tabular: empty lookup file")
	}
	lookupCols := header(lookupScanner.Text())
	lookupKeyIdx, err := columnIndex(lookupCols, opts.LookupKey)
	if err != nil {
		return err
	}
	table := map[string][]string{}
	nDup := 0
	for lookupScanner.Scan() {
		fields := strings.Split(lookupScanner.Text(), "\t")
		if lookupKeyIdx >= len(fields) {
			continue
		}
		key := fields[lookupKeyIdx]
		if _, ok := table[key]; ok {
			nDup++
			continue
		}
		extra := make([]string, 0, len(fields)-1)
		for i, f := range fields {
			if i != lookupKeyIdx {
				extra = append(extra, f)
			}
		}
		table[key] = extra
	}
	if err := lookupScanner.Err(); err != nil {
		return errors.Wrap(err, "tabular: reading lookup file")
	}
	if nDup > 0 {
		log.Printf("tabular: %d duplicate lookup keys ignored (first occurrence kept)", nDup)
	}

	dataScanner := bufio.NewScanner(data)
	dataScanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !dataScanner.Scan() {
		if err := dataScanner.Err(); err != nil {
			return errors.Wrap(err, "tabular: reading data file")
		}
		return errors.New("tabular: empty data file")
	}
	dataHeaderLine := dataScanner.Text()
	dataKeyIdx, err := columnIndex(header(dataHeaderLine), opts.DataKey)
	if err != nil {
		return err
	}

	out := tsv.NewWriter(w)
	out.WriteString(dataHeaderLine)
	for i, c := range lookupCols {
		if i != lookupKeyIdx {
			out.WriteString(c)
		}
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	nLookupExtra := len(lookupCols) - 1
	for dataScanner.Scan() {
		line := dataScanner.Text()
		out.WriteString(line)
		var extra []string
		if fields := strings.Split(line, "\t"); dataKeyIdx < len(fields) {
			extra = table[fields[dataKeyIdx]]
		}
		for i := 0; i < nLookupExtra; i++ {
			if i < len(extra) {
				out.WriteString(extra[i])
			} else {
				out.WriteString(opts.Fill)
			}
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	if err := dataScanner.Err(); err != nil {
		return errors.Wrap(err, "tabular: reading data file")
	}
	return out.Flush()
}

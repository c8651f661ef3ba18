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

// Package tabular holds small standalone transforms for tabular text files:
// fixed-width-to-TSV conversion, keyed joins, and named-column extraction.
package tabular

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Span is a half-open [Start, End) character range holding one sniffed
// column.  End < 0 means "to end of line" (the last column).
type Span struct {
	Start int
	End   int
}

// FixedWidthOpts configures FixedWidthToTSV.
type FixedWidthOpts struct {
	// SampleLines is how many leading lines the column sniffer inspects.
	SampleLines int
}

// DefaultFixedWidthOpts samples enough lines to make boundary sniffing
// stable on typical headers-plus-data files.
var DefaultFixedWidthOpts = FixedWidthOpts{SampleLines: 100}

// SniffColumns infers fixed-width column spans from sample lines.  A
// character position belongs to a column break if it is blank in every line;
// columns are the maximal runs between breaks.  Lines shorter than a
// position count as blank there.
func SniffColumns(lines []string) []Span {
	width := 0
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}
	if width == 0 {
		return nil
	}
	blank := make([]bool, width)
	for i := range blank {
		blank[i] = true
	}
	for _, line := range lines {
		for i := 0; i < len(line); i++ {
			if line[i] != ' ' {
				blank[i] = false
			}
		}
	}
	var spans []Span
	start := -1
	for i := 0; i < width; i++ {
		if !blank[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, Span{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: -1})
	}
	if n := len(spans); n > 0 {
		// The last column absorbs any ragged right edge.
		spans[n-1].End = -1
	}
	return spans
}

// cut extracts one span from a line, trimming surrounding blanks.
func (s Span) cut(line string) string {
	if s.Start >= len(line) {
		return ""
	}
	end := len(line)
	if s.End >= 0 && s.End < end {
		end = s.End
	}
	return strings.TrimSpace(line[s.Start:end])
}

// FixedWidthToTSV sniffs column boundaries from the first opts.SampleLines
// lines of r and rewrites the whole stream as TSV.
func FixedWidthToTSV(r io.Reader, w io.Writer, opts FixedWidthOpts) error {
	if opts.SampleLines <= 0 {
		opts.SampleLines = DefaultFixedWidthOpts.SampleLines
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var sample []string
	for len(sample) < opts.SampleLines && scanner.Scan() {
		sample = append(sample, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "tabular: reading fixed-width input")
	}
	spans := SniffColumns(sample)
	if len(spans) == 0 {
		return errors.New("tabular: no columns detected in fixed-width input")
	}
	out := tsv.NewWriter(w)
	writeLine := func(line string) error {
		for _, s := range spans {
			out.WriteString(s.cut(line))
		}
		return out.EndLine()
	}
	for _, line := range sample {
		if err := writeLine(line); err != nil {
			return err
		}
	}
	for scanner.Scan() {
		if err := writeLine(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "tabular: reading fixed-width input")
	}
	return out.Flush()
}

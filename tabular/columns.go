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

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// Cut copies the named columns of a TSV stream, in the requested order.  The
// first input line must be a header (an optional leading '#' is preserved on
// output); rows shorter than a selected column get "." there.
func Cut(r io.Reader, w io.Writer, names []string) error {
	if len(names) == 0 {
		return errors.New("tabular: no columns requested")
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return errors.Wrap(err, "tabular: reading input")
		}
		return errors.New("tabular: empty input")
	}
	headerLine := scanner.Text()
	cols := header(headerLine)
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := columnIndex(cols, name)
		if err != nil {
			return err
		}
		idx[i] = j
	}
	out := tsv.NewWriter(w)
	for i, name := range names {
		if i == 0 && strings.HasPrefix(headerLine, "#") {
			name = "#" + name
		}
		out.WriteString(name)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		for _, j := range idx {
			if j < len(fields) {
				out.WriteString(fields[j])
			} else {
				out.WriteByte('.')
			}
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "tabular: reading input")
	}
	return out.Flush()
}

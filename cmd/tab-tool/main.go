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
package main

/*
tab-tool bundles the small tabular-text utilities: fixed-width-to-TSV
conversion, keyed joins, named-column extraction, and LaTeX report assembly
from plot images.
*/

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/cmdline"

	"github.com/MrFlick/pl-tools/report"
	"github.com/MrFlick/pl-tools/tabular"
)

// openInput opens path for reading, decompressing .gz by suffix.  "" and "-"
// mean stdin.  The returned cleanup closes whatever was opened.
func openInput(path string) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	reader := io.Reader(in.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz, err := gzip.NewReader(reader)
		if err != nil {
			_ = in.Close(ctx)
			return nil, nil, err
		}
		return gz, func() error {
			if e := gz.Close(); e != nil {
				_ = in.Close(ctx)
				return e
			}
			return in.Close(ctx)
		}, nil
	}
	return reader, func() error { return in.Close(ctx) }, nil
}

// openOutput opens path for writing; "" and "-" mean stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	ctx := vcontext.Background()
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return out.Writer(ctx), func() error { return out.Close(ctx) }, nil
}

func newCmdFw2TSV() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fw2tsv",
		Short:    "Convert fixed-width text to TSV",
		Long: `
fw2tsv sniffs column boundaries from the leading lines of a fixed-width text
file (a boundary is a character position that is blank on every sampled line)
and rewrites the whole file as TSV.
`,
		ArgsName: "[input]",
	}
	sample := cmd.Flags.Int("sample", tabular.DefaultFixedWidthOpts.SampleLines, "Number of leading lines to sniff column boundaries from")
	output := cmd.Flags.String("o", "", "Output path (default stdout)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) > 1 {
			return fmt.Errorf("fw2tsv takes at most one input path, got %v", argv)
		}
		path := ""
		if len(argv) == 1 {
			path = argv[0]
		}
		in, inDone, err := openInput(path)
		if err != nil {
			return err
		}
		out, outDone, err := openOutput(*output)
		if err != nil {
			_ = inDone()
			return err
		}
		err = tabular.FixedWidthToTSV(in, out, tabular.FixedWidthOpts{SampleLines: *sample})
		if e := inDone(); e != nil && err == nil {
			err = e
		}
		if e := outDone(); e != nil && err == nil {
			err = e
		}
		return err
	})
	return cmd
}

func newCmdJoin() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "join",
		Short:    "Left-join two TSV files on a named key column",
		ArgsName: "datafile lookupfile",
	}
	key := cmd.Flags.String("key", "", "Join column name in the data file; required")
	lookupKey := cmd.Flags.String("lookup-key", "", "Join column name in the lookup file (default same as -key)")
	fill := cmd.Flags.String("fill", tabular.DefaultJoinOpts.Fill, "Value written for lookup columns of unmatched rows")
	output := cmd.Flags.String("o", "", "Output path (default stdout)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("join takes datafile and lookupfile, got %v", argv)
		}
		if *key == "" {
			return fmt.Errorf("join requires -key")
		}
		data, dataDone, err := openInput(argv[0])
		if err != nil {
			return err
		}
		lookup, lookupDone, err := openInput(argv[1])
		if err != nil {
			_ = dataDone()
			return err
		}
		out, outDone, err := openOutput(*output)
		if err != nil {
			_ = dataDone()
			_ = lookupDone()
			return err
		}
		err = tabular.Join(data, lookup, out, tabular.JoinOpts{
			DataKey:   *key,
			LookupKey: *lookupKey,
			Fill:      *fill,
		})
		for _, done := range []func() error{dataDone, lookupDone, outDone} {
			if e := done(); e != nil && err == nil {
				err = e
			}
		}
		return err
	})
	return cmd
}

func newCmdCut() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "cut",
		Short:    "Extract named columns from a TSV file",
		ArgsName: "[input]",
	}
	cols := cmd.Flags.String("cols", "", "Comma-separated column names to extract, in output order; required")
	output := cmd.Flags.String("o", "", "Output path (default stdout)")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) > 1 {
			return fmt.Errorf("cut takes at most one input path, got %v", argv)
		}
		if *cols == "" {
			return fmt.Errorf("cut requires -cols")
		}
		path := ""
		if len(argv) == 1 {
			path = argv[0]
		}
		in, inDone, err := openInput(path)
		if err != nil {
			return err
		}
		out, outDone, err := openOutput(*output)
		if err != nil {
			_ = inDone()
			return err
		}
		err = tabular.Cut(in, out, strings.Split(*cols, ","))
		if e := inDone(); e != nil && err == nil {
			err = e
		}
		if e := outDone(); e != nil && err == nil {
			err = e
		}
		return err
	})
	return cmd
}

func newCmdTexReport() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "texreport",
		Short:    "Generate a LaTeX report embedding every image in a directory",
		ArgsName: "imgdir output.tex",
	}
	title := cmd.Flags.String("title", "Report", "Document title")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("texreport takes imgdir and output path, got %v", argv)
		}
		return report.GenerateLaTeX(vcontext.Background(), argv[0], argv[1], *title)
	})
	return cmd
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "tab-tool",
			Short:    "Utilities for tabular text files",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdFw2TSV(),
				newCmdJoin(),
				newCmdCut(),
				newCmdTexReport(),
			},
		})
}

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

// Package report assembles LaTeX documents from previously rendered plot
// images.  It only does text templating; producing the images is someone
// else's job.
package report

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

var imageExts = map[string]bool{
	".png":  true,
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
}

const latexTemplate = `\documentclass{article}
\usepackage[margin=2cm]{geometry}
\usepackage{graphicx}
\begin{document}
\title{ {{- .Title -}} }
\date{}
\maketitle
{{range .Figures}}
\begin{figure}[p]
\centering
\includegraphics[width=\textwidth]{ {{- .Path -}} }
\caption{ {{- .Caption -}} }
\end{figure}
\clearpage
{{end}}
\end{document}
`

type figure struct {
	Path    string
	Caption string
}

type document struct {
	Title   string
	Figures []figure
}

// caption derives a human-readable figure caption from an image file name,
// escaping the LaTeX specials that can appear in ours.
func caption(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.NewReplacer(
		"#", `\#`, "%", `\%`, "&", `\&`, "$", `\$`,
	).Replace(base)
}

// GenerateLaTeX writes a standalone LaTeX document to outPath embedding every
// image found (non-recursively) in imgDir, one figure per page, sorted by
// file name.
func GenerateLaTeX(ctx context.Context, imgDir, outPath, title string) (err error) {
	entries, err := ioutil.ReadDir(imgDir)
	if err != nil {
		return errors.Wrapf(err, "report: %s", imgDir)
	}
	doc := document{Title: title}
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		doc.Figures = append(doc.Figures, figure{
			Path:    filepath.Join(imgDir, e.Name()),
			Caption: caption(e.Name()),
		})
	}
	if len(doc.Figures) == 0 {
		return errors.Errorf("report: no images found under %s", imgDir)
	}
	sort.Slice(doc.Figures, func(i, j int) bool { return doc.Figures[i].Path < doc.Figures[j].Path })

	tmpl, err := template.New("report").Parse(latexTemplate)
	if err != nil {
		return err
	}
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return tmpl.Execute(out.Writer(ctx), doc)
}

package report

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestCaption(t *testing.T) {
	expect.EQ(t, caption("af_hist-v2.png"), "af hist v2")
	expect.EQ(t, caption("concordance.pdf"), "concordance")
	expect.EQ(t, caption("pct%_#x.png"), `pct\% \#x`)
}

func TestGenerateLaTeX(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	imgDir := filepath.Join(dir, "plots")
	assert.NoError(t, os.Mkdir(imgDir, 0755))
	for _, name := range []string{"b_maf.png", "a_overall.pdf", "notes.txt"} {
		assert.NoError(t, ioutil.WriteFile(filepath.Join(imgDir, name), []byte("x"), 0644))
	}
	assert.NoError(t, os.Mkdir(filepath.Join(imgDir, "sub.png"), 0755))

	outPath := filepath.Join(dir, "report.tex")
	require.NoError(t, GenerateLaTeX(context.Background(), imgDir, outPath, "Concordance"))
	data, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	doc := string(data)

	require.Contains(t, doc, `\documentclass{article}`)
	require.Contains(t, doc, `\title{Concordance}`)
	require.Contains(t, doc, filepath.Join(imgDir, "a_overall.pdf"))
	require.Contains(t, doc, filepath.Join(imgDir, "b_maf.png"))
	require.Contains(t, doc, `\caption{b maf}`)
	// Non-images and directories are skipped; figures are sorted by path.
	require.NotContains(t, doc, "notes.txt")
	require.NotContains(t, doc, "sub.png")
	expect.True(t, strings.Index(doc, "a_overall.pdf") < strings.Index(doc, "b_maf.png"))
}

func TestGenerateLaTeXNoImages(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	err := GenerateLaTeX(context.Background(), dir, filepath.Join(dir, "out.tex"), "Empty")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no images")

	err = GenerateLaTeX(context.Background(), filepath.Join(dir, "missing"), filepath.Join(dir, "out.tex"), "Missing")
	require.Error(t, err)
}

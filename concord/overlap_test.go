package concord

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestResolveOverlap(t *testing.T) {
	samples1 := []string{"A", "B", "C", "D"}
	idx2 := map[string]int{"C": 0, "A": 2, "E": 1}

	overlap, err := ResolveOverlap(samples1, idx2, nil)
	require.NoError(t, err)
	// File-1 column order is preserved.
	expect.EQ(t, overlap, []SamplePair{
		{ID: "A", Idx1: 0, Idx2: 2},
		{ID: "C", Idx1: 2, Idx2: 0},
	})

	overlap, err = ResolveOverlap(samples1, idx2, map[string]bool{"A": true})
	require.NoError(t, err)
	require.Len(t, overlap, 1)
	expect.EQ(t, overlap[0].ID, "C")

	_, err = ResolveOverlap(samples1, map[string]int{"Z": 0}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no shared samples")

	_, err = ResolveOverlap(samples1, idx2, map[string]bool{"A": true, "C": true})
	require.Error(t, err)
}

func TestParseExcludeIDs(t *testing.T) {
	expect.EQ(t, parseExcludeIDs(""), map[string]bool{})
	expect.EQ(t, parseExcludeIDs("NA001"), map[string]bool{"NA001": true})
	expect.EQ(t, parseExcludeIDs("NA001,NA002,,NA003"),
		map[string]bool{"NA001": true, "NA002": true, "NA003": true})
}

package concord

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestFreqCategory(t *testing.T) {
	cutoffs := []float64{0.01, 0.05, 0.15, 0.25}
	tests := []struct {
		af       float64
		cat      int
		refMajor bool
	}{
		{0.0, 0, true},
		{0.005, 0, true},
		{0.01, 0, true}, // cutoffs are inclusive upper bounds
		{0.02, 1, true},
		{0.05, 1, true},
		{0.1, 2, true},
		{0.2, 3, true},
		{0.3, 4, true},
		{0.5, 4, true},
		// Above 0.5 the AF folds to a MAF and REF becomes the minor allele.
		{0.6, 4, false},
		{0.9, 2, false},
		{0.995, 0, false},
		{1.0, 0, false},
	}
	for _, tc := range tests {
		cat, refMajor := freqCategory(tc.af, cutoffs)
		require.Equal(t, tc.cat, cat, "af %v", tc.af)
		require.Equal(t, tc.refMajor, refMajor, "af %v", tc.af)
	}
}

func TestFreqBucketLabel(t *testing.T) {
	cutoffs := []float64{0.01, 0.05}
	expect.EQ(t, freqBucketLabel(0, cutoffs), "<=0.01")
	expect.EQ(t, freqBucketLabel(1, cutoffs), "<=0.05")
	expect.EQ(t, freqBucketLabel(2, cutoffs), ">0.05")
}

func TestParseJointDims(t *testing.T) {
	d, err := parseJointDims("frq,gq")
	require.NoError(t, err)
	expect.EQ(t, d, jointDims{frq: true, gq: true})

	d, err = parseJointDims("ind, maj")
	require.NoError(t, err)
	expect.EQ(t, d, jointDims{ind: true, maj: true})

	_, err = parseJointDims("frq,bogus")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus")

	_, err = parseJointDims("")
	require.Error(t, err)
}

func TestJointTable(t *testing.T) {
	tbl := newJointTable(jointDims{frq: true, gq: true})
	k1 := jointKey{ind: -1, frq: 2, gqDec: 9}
	k2 := jointKey{ind: -1, frq: 0, gqDec: 3}
	tbl.get(k1).Add(1, 1)
	tbl.get(k1).Add(2, 2)
	tbl.get(k2).Add(3, 3)

	// Same key returns the same leaf.
	expect.EQ(t, tbl.get(k1).Total(), uint32(2))
	require.Len(t, tbl.m, 2)

	keys := tbl.sortedKeys()
	expect.EQ(t, keys, []jointKey{k2, k1})
}

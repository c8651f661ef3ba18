package vcf

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestChromRank(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"1", 1},
		{"22", 22},
		{"chr7", 7},
		{"X", 23},
		{"chrX", 23},
		{"Y", 24},
		{"XY", 25},
		{"MT", 26},
		{"M", 26},
		{"0", 0},
		{"23", 0},
		{"GL000207.1", 0},
		{"", 0},
	}
	for _, tc := range tests {
		expect.EQ(t, ChromRank(tc.name), tc.want)
	}
}

func dataRecord(t *testing.T, line string) *Record {
	rec, err := parseRecord(line)
	assert.NoError(t, err)
	return rec
}

func TestParseRecord(t *testing.T) {
	rec := dataRecord(t, "chr1\t100\trs42\tA\tT\t50\tPASS\tNS=3;AF=0.25\tGT:GQ:DP\t0/0:99:12\t0/1:80:7")
	expect.EQ(t, rec.ChromRank, 1)
	expect.EQ(t, rec.Pos, 100)
	expect.EQ(t, rec.ID, "rs42")
	expect.EQ(t, rec.Ref, "A")
	expect.EQ(t, rec.Alt, "T")
	expect.EQ(t, rec.Filter, "PASS")
	expect.EQ(t, rec.Format, "GT:GQ:DP")
	expect.EQ(t, len(rec.Samples), 2)

	_, err := parseRecord("chr1\t100\tonly\tthree")
	require.Error(t, err)
	require.Contains(t, err.Error(), "truncated")
	_, err = parseRecord("chr1\tnotanumber\t.\tA\tT\t.\t.\t.")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad POS")
}

func TestGenotype(t *testing.T) {
	tests := []struct {
		gt   string
		want GenoCall
	}{
		{".", GenoMissing},
		{"./.", GenoMissing},
		{".|.", GenoMissing},
		{"0/.", GenoMissing},
		{"0/0", GenoHomRef},
		{"0|0", GenoHomRef},
		{"0/1", GenoHet},
		{"1|0", GenoHet},
		{"1/1", GenoHomAlt},
		// Multi-allelic indices collapse to 1.
		{"2/1", GenoHomAlt},
		{"0/2", GenoHet},
		{"3|3", GenoHomAlt},
	}
	for _, tc := range tests {
		rec := dataRecord(t, "1\t100\t.\tA\tT\t.\t.\t.\tGT\t"+tc.gt)
		got, err := rec.Genotype(0)
		require.NoError(t, err, "gt %q", tc.gt)
		require.Equal(t, tc.want, got, "gt %q", tc.gt)
	}
	for _, bad := range []string{"A/T", "0", "-1/0", "x|1", "0/y"} {
		rec := dataRecord(t, "1\t100\t.\tA\tT\t.\t.\t.\tGT\t"+bad)
		_, err := rec.Genotype(0)
		require.Error(t, err, "gt %q", bad)
		require.Contains(t, err.Error(), "1:100", "gt %q", bad)
	}
}

func TestInfoLookups(t *testing.T) {
	rec := dataRecord(t, "1\t100\t.\tA\tT\t.\t.\tNS=58;AF=0.25,0.5;DB\tGT\t0/0")
	ns, ok := rec.InfoInt("NS")
	expect.True(t, ok)
	expect.EQ(t, ns, 58)
	// Comma-separated AF uses the first value only.
	af, ok := rec.InfoFloat("AF")
	expect.True(t, ok)
	expect.EQ(t, af, 0.25)
	_, ok = rec.InfoInt("DP")
	expect.False(t, ok)
	// Flag annotations have no value.
	_, ok = rec.InfoInt("DB")
	expect.False(t, ok)
}

func TestFormatFields(t *testing.T) {
	rec := dataRecord(t, "1\t100\t.\tA\tT\t.\t.\t.\tGT:GQ:DP\t0/1:85:10\t1/1:30")
	expect.EQ(t, rec.FormatIndex("GT"), 0)
	expect.EQ(t, rec.FormatIndex("GQ"), 1)
	expect.EQ(t, rec.FormatIndex("DP"), 2)
	expect.EQ(t, rec.FormatIndex("PL"), -1)
	expect.EQ(t, rec.SampleField(0, 1), "85")
	expect.EQ(t, rec.SampleField(0, 2), "10")
	expect.EQ(t, rec.SampleField(1, 1), "30")
	// Entry shorter than FORMAT declares.
	expect.EQ(t, rec.SampleField(1, 2), "")
}

func TestSortKey(t *testing.T) {
	a := dataRecord(t, "1\t999999999\t.\tA\tT\t.\t.\t.")
	b := dataRecord(t, "2\t1\t.\tA\tT\t.\t.\t.")
	c := dataRecord(t, "2\t2\t.\tA\tT\t.\t.\t.")
	expect.True(t, a.SortKey() < b.SortKey())
	expect.True(t, b.SortKey() < c.SortKey())
	expect.True(t, c.SortKey() < ExhaustedKey)
}

func TestFilterPassing(t *testing.T) {
	for _, f := range []string{"PASS", "0", "."} {
		rec := dataRecord(t, "1\t100\t.\tA\tT\t.\t"+f+"\t.")
		expect.True(t, rec.FilterPassing())
	}
	rec := dataRecord(t, "1\t100\t.\tA\tT\t.\tq10\t.")
	expect.False(t, rec.FilterPassing())
}

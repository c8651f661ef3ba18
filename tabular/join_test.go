package tabular

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	data := "#ID\tSCORE\nrs1\t0.5\nrs2\t0.7\nrs9\t0.1\n"
	lookup := "ID\tMAF\tGENE\nrs2\t0.01\tBRCA2\nrs1\t0.20\tTP53\n"
	var out strings.Builder
	require.NoError(t, Join(strings.NewReader(data), strings.NewReader(lookup), &out,
		JoinOpts{DataKey: "ID"}))
	expect.EQ(t, out.String(), strings.Join([]string{
		"#ID\tSCORE\tMAF\tGENE",
		"rs1\t0.5\t0.20\tTP53",
		"rs2\t0.7\t0.01\tBRCA2",
		"rs9\t0.1\t.\t.",
	}, "\n")+"\n")
}

func TestJoinDifferentKeyNames(t *testing.T) {
	data := "ID\tSCORE\nrs1\t0.5\n"
	lookup := "SNP\tMAF\nrs1\t0.2\n"
	var out strings.Builder
	require.NoError(t, Join(strings.NewReader(data), strings.NewReader(lookup), &out,
		JoinOpts{DataKey: "ID", LookupKey: "SNP"}))
	expect.EQ(t, out.String(), "ID\tSCORE\tMAF\nrs1\t0.5\t0.2\n")
}

func TestJoinDuplicateLookupKeys(t *testing.T) {
	data := "ID\tSCORE\nrs1\t0.5\n"
	lookup := "ID\tMAF\nrs1\tfirst\nrs1\tsecond\n"
	var out strings.Builder
	require.NoError(t, Join(strings.NewReader(data), strings.NewReader(lookup), &out,
		JoinOpts{DataKey: "ID"}))
	expect.EQ(t, out.String(), "ID\tSCORE\tMAF\nrs1\t0.5\tfirst\n")
}

func TestJoinCustomFill(t *testing.T) {
	data := "ID\tSCORE\nrs9\t0.1\n"
	lookup := "ID\tMAF\nrs1\t0.2\n"
	var out strings.Builder
	require.NoError(t, Join(strings.NewReader(data), strings.NewReader(lookup), &out,
		JoinOpts{DataKey: "ID", Fill: "NA"}))
	expect.EQ(t, out.String(), "ID\tSCORE\tMAF\nrs9\t0.1\tNA\n")
}

func TestJoinErrors(t *testing.T) {
	var out strings.Builder
	err := Join(strings.NewReader("ID\nrs1\n"), strings.NewReader(""), &out,
		JoinOpts{DataKey: "ID"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty lookup")

	err = Join(strings.NewReader("ID\nrs1\n"), strings.NewReader("OTHER\nx\n"), &out,
		JoinOpts{DataKey: "ID"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"ID"`)

	err = Join(strings.NewReader(""), strings.NewReader("ID\nrs1\n"), &out,
		JoinOpts{DataKey: "ID"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty data")
}

package tabular

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestCut(t *testing.T) {
	in := "#CHROM\tPOS\tID\tREF\n1\t100\trs1\tA\n2\t200\trs2\tG\n"
	var out strings.Builder
	require.NoError(t, Cut(strings.NewReader(in), &out, []string{"ID", "POS"}))
	// Reordering is allowed; the '#' marker stays on the first output column.
	expect.EQ(t, out.String(), "#ID\tPOS\nrs1\t100\nrs2\t200\n")
}

func TestCutShortRow(t *testing.T) {
	in := "A\tB\tC\n1\t2\t3\n4\n"
	var out strings.Builder
	require.NoError(t, Cut(strings.NewReader(in), &out, []string{"A", "C"}))
	expect.EQ(t, out.String(), "A\tC\n1\t3\n4\t.\n")
}

func TestCutErrors(t *testing.T) {
	var out strings.Builder
	require.Error(t, Cut(strings.NewReader("A\tB\n"), &out, nil))

	err := Cut(strings.NewReader("A\tB\n"), &out, []string{"Z"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"Z"`)

	require.Error(t, Cut(strings.NewReader(""), &out, []string{"A"}))
}

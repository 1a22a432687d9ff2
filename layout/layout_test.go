package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mudesheng/ragoo/contig"
	"github.com/mudesheng/ragoo/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() ([]order.Ordering, map[string]contig.Assignment) {
	placed := map[string]contig.Assignment{
		"ctgA": {Header: "ctgA", QueryLen: 1000, Ref: "chr1", Strand: '+', Confidence: contig.Confidence{Grouping: 1, Location: 0.75, Orientation: 1}},
		"ctgB": {Header: "ctgB", QueryLen: 500, Ref: "chr1", Strand: '-', Confidence: contig.Confidence{Grouping: 0.5, Location: 1, Orientation: 0.9}},
		"ctgC": {Header: "ctgC", QueryLen: 300, Ref: "chr2", Strand: '+', Confidence: contig.Confidence{Grouping: 1, Location: 1, Orientation: 1}},
		"ctgD": {Header: "ctgD", QueryLen: 200, Ref: "chr2", Strand: '+', Confidence: contig.Confidence{Grouping: 1, Location: 1, Orientation: 1}},
	}
	orderings := []order.Ordering{
		{Ref: "chr1", Entries: []order.Entry{{RefStart: 0, RefEnd: 1000, QueryHeader: "ctgA"}, {RefStart: 1200, RefEnd: 1700, QueryHeader: "ctgB"}}, Gaps: []int{200}},
		{Ref: "chr2", Entries: []order.Entry{{RefStart: 0, RefEnd: 300, QueryHeader: "ctgC"}, {RefStart: 400, RefEnd: 600, QueryHeader: "ctgD"}}, Gaps: []int{100}},
	}
	return orderings, placed
}

func TestSegments(t *testing.T) {
	orderings, placed := testLayout()
	segs, err := Segments(orderings, placed, "_SCAFFOLDED")
	require.NoError(t, err)
	require.Len(t, segs, 6)

	want := []string{
		"chr1_SCAFFOLDED\t0\t1000\ts\tctgA\t+\t1.0\t0.75\t1.0",
		"chr1_SCAFFOLDED\t1000\t1200\tg\t0\tNA\tNA\tNA\tNA",
		"chr1_SCAFFOLDED\t1200\t1700\ts\tctgB\t-\t0.5\t1.0\t0.9",
		"chr2_SCAFFOLDED\t0\t300\ts\tctgC\t+\t1.0\t1.0\t1.0",
		"chr2_SCAFFOLDED\t300\t400\tg\t1\tNA\tNA\tNA\tNA",
		"chr2_SCAFFOLDED\t400\t600\ts\tctgD\t+\t1.0\t1.0\t1.0",
	}
	for i, s := range segs {
		assert.Equal(t, want[i], s.String())
	}
}

func TestSegments_Inconsistent(t *testing.T) {
	orderings, placed := testLayout()
	orderings[0].Gaps = nil
	_, err := Segments(orderings, placed, "_SCAFFOLDED")
	assert.Error(t, err)

	orderings, placed = testLayout()
	delete(placed, "ctgD")
	_, err = Segments(orderings, placed, "_SCAFFOLDED")
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		1:         "1.0",
		0:         "0.0",
		0.5:       "0.5",
		2.0 / 3.0: "0.6666666666666666",
		1e-7:      "1e-07",
	}
	for f, want := range cases {
		assert.Equal(t, want, FormatFloat(f))
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	orderings, placed := testLayout()
	segs, err := Segments(orderings, placed, "_SCAFFOLDED")
	require.NoError(t, err)

	fn := filepath.Join(t.TempDir(), OrderingsFn)
	retained, err := Write(fn, segs, false)
	require.NoError(t, err)
	assert.False(t, retained)

	got, err := Read(fn)
	require.NoError(t, err)
	assert.Equal(t, segs, got)

	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Equal(t, 6, strings.Count(string(data), "\n"))
}

func TestWrite_RetainsExisting(t *testing.T) {
	orderings, placed := testLayout()
	segs, err := Segments(orderings, placed, "_SCAFFOLDED")
	require.NoError(t, err)

	fn := filepath.Join(t.TempDir(), OrderingsFn)
	require.NoError(t, os.WriteFile(fn, []byte("old\n"), 0644))
	retained, err := Write(fn, segs, false)
	require.NoError(t, err)
	assert.True(t, retained)
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	retained, err = Write(fn, segs, true)
	require.NoError(t, err)
	assert.False(t, retained)
	got, err := Read(fn)
	require.NoError(t, err)
	assert.Equal(t, segs, got)
}

func TestWrite_NoSegments(t *testing.T) {
	fn := filepath.Join(t.TempDir(), OrderingsFn)
	_, err := Write(fn, nil, false)
	require.NoError(t, err)
	got, err := Read(fn)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseSegment_Malformed(t *testing.T) {
	for _, line := range []string{
		"chr1\t0\t10\ts\tctgA\t+\t1.0\t1.0",
		"chr1\tx\t10\ts\tctgA\t+\t1.0\t1.0\t1.0",
		"chr1\t0\t10\tq\tctgA\t+\t1.0\t1.0\t1.0",
		"chr1\t0\t10\tg\tNA\tNA\tNA\tNA\tNA",
		"chr1\t0\t10\ts\tctgA\t+\t1.0\tabc\t1.0",
	} {
		_, err := ParseSegment(line)
		assert.True(t, errors.Is(err, ErrMalformed), line)
	}
}

func TestWriteUnplaced(t *testing.T) {
	fn := filepath.Join(t.TempDir(), UnplacedFn)
	us := []contig.Unplaced{{Header: "ctgX", Reason: contig.ShortAnchor}, {Header: "ctgY", Reason: contig.NoAlignment}}
	require.NoError(t, WriteUnplaced(fn, us))
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, "ctgX\tshort_anchor\nctgY\tno_alignment\n", string(data))
}

func TestGraphvizLayout(t *testing.T) {
	orderings, _ := testLayout()
	g, err := GraphvizLayout(orderings, "_SCAFFOLDED")
	require.NoError(t, err)
	dot := g.String()
	assert.Contains(t, dot, "cluster_0")
	assert.Contains(t, dot, "cluster_1")
	assert.Contains(t, dot, "gap:200")
	assert.Contains(t, dot, "chr2_SCAFFOLDED")

	fn := filepath.Join(t.TempDir(), "orderings.dot")
	require.NoError(t, WriteDot(fn, orderings, "_SCAFFOLDED"))
	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, dot, string(data))
}

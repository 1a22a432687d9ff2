package align

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pafText = "ctg1\t20000\t0\t15000\t+\tchr1\t100000\t1000\t16000\t14000\t15000\t60\ttp:A:P\n" +
	"ctg1\t20000\t15000\t20000\t-\tchr2\t50000\t0\t5000\t4000\t5000\t255\n" +
	"\n" +
	"ctg2\t8000\t0\t8000\t+\tchr1\t100000\t20000\t28000\t8000\t8000\t7"

func TestPAFReader(t *testing.T) {
	recs, err := ReadAll(NewPAFReader(strings.NewReader(pafText), "test.paf"))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, Record{
		QueryHeader: "ctg1", QueryLen: 20000, QueryStart: 0, QueryEnd: 15000,
		RefHeader: "chr1", RefLen: 100000, RefStart: 1000, RefEnd: 16000,
		Strand: PLUS, MapQ: 60, HasMapQ: true,
	}, recs[0])
	assert.Equal(t, MINUS, recs[1].Strand)
	assert.False(t, recs[1].HasMapQ, "mapq 255 means unavailable")
	assert.Equal(t, 7, recs[2].MapQ)
	assert.Equal(t, 8000, recs[2].QueryCon())
}

func TestPAFReader_Malformed(t *testing.T) {
	cases := map[string]string{
		"short line":  "ctg1\t100\t0\t10\t+\tchr1\n",
		"not integer": "ctg1\tabc\t0\t10\t+\tchr1\t100\t0\t10\t10\t10\t60\n",
		"bad coords":  "ctg1\t100\t50\t10\t+\tchr1\t100\t0\t10\t10\t10\t60\n",
		"past end":    "ctg1\t100\t0\t10\t+\tchr1\t100\t0\t101\t10\t10\t60\n",
		"bad strand":  "ctg1\t100\t0\t10\t*\tchr1\t100\t0\t10\t10\t10\t60\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPAFReader(strings.NewReader(text), "bad.paf").Read()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}

func TestCoordsReader(t *testing.T) {
	text := "1001\t16000\t1\t15000\t15000\t15000\t99.5\t100000\t20000\tchr1\tctg1\n" +
		"1\t5000\t20000\t15001\t5000\t5000\t98.0\t50000\t20000\tchr2\tctg1\n"
	recs, err := ReadAll(NewCoordsReader(strings.NewReader(text), "test.coords"))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, Record{
		QueryHeader: "ctg1", QueryLen: 20000, QueryStart: 0, QueryEnd: 15000,
		RefHeader: "chr1", RefLen: 100000, RefStart: 1000, RefEnd: 16000,
		Strand: PLUS,
	}, recs[0])
	assert.Equal(t, MINUS, recs[1].Strand)
	assert.Equal(t, 15000, recs[1].QueryStart)
	assert.Equal(t, 20000, recs[1].QueryEnd)
	assert.False(t, recs[1].HasMapQ)
}

func TestAccumulateCigar(t *testing.T) {
	cigar, err := sam.ParseCigar([]byte("3H2S10M2I4D5M7S"))
	require.NoError(t, err)
	clip, qcon, qlen := AccumulateCigar(cigar)
	assert.Equal(t, 5, clip)
	assert.Equal(t, 17, qcon)
	assert.Equal(t, 29, qlen)
}

func TestSAMReader(t *testing.T) {
	seq := strings.Repeat("ACGT", 5)
	text := "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:1000\n" +
		"ctg1\t0\tchr1\t101\t60\t3S10M7S\t*\t0\t0\t" + seq + "\t*\n" +
		"ctg2\t4\t*\t0\t0\t*\t*\t0\t0\t" + seq + "\t*\n" +
		"ctg3\t16\tchr1\t201\t255\t3S10M7S\t*\t0\t0\t" + seq + "\t*\n"
	sr, err := NewSAMReader(strings.NewReader(text), "test.sam")
	require.NoError(t, err)
	recs, err := ReadAll(sr)
	require.NoError(t, err)
	require.Len(t, recs, 2, "unmapped records are skipped")

	assert.Equal(t, Record{
		QueryHeader: "ctg1", QueryLen: 20, QueryStart: 3, QueryEnd: 13,
		RefHeader: "chr1", RefLen: 1000, RefStart: 100, RefEnd: 110,
		Strand: PLUS, MapQ: 60, HasMapQ: true,
	}, recs[0])
	assert.Equal(t, MINUS, recs[1].Strand)
	assert.Equal(t, 7, recs[1].QueryStart)
	assert.Equal(t, 17, recs[1].QueryEnd)
	assert.False(t, recs[1].HasMapQ)
}

func TestFormatOf(t *testing.T) {
	cases := map[string]Format{
		"a.paf":        FormatPAF,
		"a.paf.gz":     FormatPAF,
		"dir/a.PAF":    FormatPAF,
		"a.coords.zst": FormatCoords,
		"a.sam.br":     FormatSAM,
		"a.bam":        FormatBAM,
	}
	for fn, want := range cases {
		got, err := FormatOf(fn)
		require.NoError(t, err, fn)
		assert.Equal(t, want, got, fn)
	}
	_, err := FormatOf("a.delta")
	assert.Error(t, err)
	assert.False(t, FormatCoords.MapQReliable())
	assert.True(t, FormatPAF.MapQReliable())
}

func TestOpenReader_Compressed(t *testing.T) {
	dir := t.TempDir()

	var gzbuf bytes.Buffer
	gzw := gzip.NewWriter(&gzbuf)
	_, err := io.WriteString(gzw, pafText)
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	gzfn := filepath.Join(dir, "aln.paf.gz")
	require.NoError(t, os.WriteFile(gzfn, gzbuf.Bytes(), 0644))

	var zbuf bytes.Buffer
	zw, err := zstd.NewWriter(&zbuf)
	require.NoError(t, err)
	_, err = io.WriteString(zw, pafText)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	zfn := filepath.Join(dir, "aln.paf.zst")
	require.NoError(t, os.WriteFile(zfn, zbuf.Bytes(), 0644))

	for _, fn := range []string{gzfn, zfn} {
		fr, err := OpenReader(fn, 1)
		require.NoError(t, err, fn)
		recs, err := ReadAll(fr)
		require.NoError(t, err, fn)
		require.NoError(t, fr.Close())
		assert.Len(t, recs, 3, fn)
		assert.Equal(t, FormatPAF, fr.Format)
	}
}

func TestParseAligner(t *testing.T) {
	a, err := ParseAligner("/opt/bin/minimap2")
	require.NoError(t, err)
	assert.Equal(t, Minimap2, a)
	assert.Equal(t, FormatPAF, a.Format())

	a, err = ParseAligner("nucmer")
	require.NoError(t, err)
	assert.Equal(t, Nucmer, a)
	assert.Equal(t, FormatCoords, a.Format())

	_, err = ParseAligner("blastn")
	assert.Error(t, err)
}

func TestRunner_RetainsExistingOutput(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "query_against_ref")
	require.NoError(t, os.WriteFile(prefix+".paf", []byte(pafText), 0644))

	// the executable does not exist, so any attempt to run it fails
	r := NewRunner(Minimap2, RunOpt{Exe: "/nonexistent/minimap2", Prefix: prefix})
	fn, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prefix+".paf", fn)

	r = NewRunner(Minimap2, RunOpt{Exe: "/nonexistent/minimap2", Prefix: prefix, Overwrite: true})
	_, err = r.Run(context.Background())
	assert.Error(t, err)
	data, err := os.ReadFile(prefix + ".paf")
	require.NoError(t, err)
	assert.Equal(t, pafText, string(data), "failed run must not touch the previous output")
}

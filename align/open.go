package align

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/brotli/go/cbrotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type Format int

const (
	FormatPAF Format = iota
	FormatCoords
	FormatSAM
	FormatBAM
)

func (f Format) String() string {
	switch f {
	case FormatPAF:
		return "paf"
	case FormatCoords:
		return "coords"
	case FormatSAM:
		return "sam"
	case FormatBAM:
		return "bam"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// MapQReliable reports whether every record of the format carries a mapping
// quality, which decides if the mapq filter is applied.
func (f Format) MapQReliable() bool {
	return f != FormatCoords
}

var compressSuffix = []string{".gz", ".zst", ".br"}

func trimCompressSuffix(fn string) (base, suffix string) {
	for _, s := range compressSuffix {
		if strings.HasSuffix(fn, s) {
			return strings.TrimSuffix(fn, s), s
		}
	}
	return fn, ""
}

// FormatOf decides the alignment format from the file name, e.g.
// "query_against_ref.paf.zst" is PAF.
func FormatOf(fn string) (Format, error) {
	base, _ := trimCompressSuffix(fn)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".paf":
		return FormatPAF, nil
	case ".coords":
		return FormatCoords, nil
	case ".sam":
		return FormatSAM, nil
	case ".bam":
		return FormatBAM, nil
	}
	return 0, fmt.Errorf("alignment file: %v need suffix end with '*.paf | *.coords | *.sam | *.bam' optionally followed by '.gz | .zst | .br'", fn)
}

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (mc *multiCloser) Close() (err error) {
	for i := len(mc.closers) - 1; i >= 0; i-- {
		if e := mc.closers[i](); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Open opens fn and unwraps gzip, zstd or brotli compression chosen by the
// file suffix.
func Open(fn string) (io.ReadCloser, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("open file: %v failed: %w", fn, err)
	}
	mc := &multiCloser{closers: []func() error{fp.Close}}
	_, suffix := trimCompressSuffix(fn)
	switch suffix {
	case ".gz":
		gzr, err := gzip.NewReader(bufio.NewReaderSize(fp, 1<<20))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("gzip open file: %v failed: %w", fn, err)
		}
		mc.Reader = gzr
		mc.closers = append(mc.closers, gzr.Close)
	case ".zst":
		zr, err := zstd.NewReader(fp, zstd.WithDecoderConcurrency(1))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("zstd open file: %v failed: %w", fn, err)
		}
		mc.Reader = zr
		mc.closers = append(mc.closers, func() error { zr.Close(); return nil })
	case ".br":
		brfp := cbrotli.NewReader(fp)
		mc.Reader = brfp
		mc.closers = append(mc.closers, brfp.Close)
	default:
		mc.Reader = fp
	}
	return mc, nil
}

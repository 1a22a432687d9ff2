package align

import (
	"fmt"
	"io"
)

// FileReader is a Reader bound to an opened alignment file.
type FileReader struct {
	Reader
	Format Format
	fp     io.ReadCloser
}

// OpenReader opens an alignment file, choosing the parser from its suffix.
// numCPU bounds the BGZF workers of BAM input.
func OpenReader(fn string, numCPU int) (*FileReader, error) {
	format, err := FormatOf(fn)
	if err != nil {
		return nil, err
	}
	fp, err := Open(fn)
	if err != nil {
		return nil, err
	}
	fr := &FileReader{Format: format, fp: fp}
	switch format {
	case FormatPAF:
		fr.Reader = NewPAFReader(fp, fn)
	case FormatCoords:
		fr.Reader = NewCoordsReader(fp, fn)
	case FormatSAM:
		fr.Reader, err = NewSAMReader(fp, fn)
	case FormatBAM:
		fr.Reader, err = NewBAMReader(fp, fn, numCPU/5+1)
	default:
		err = fmt.Errorf("unknown alignment format: %v", format)
	}
	if err != nil {
		fp.Close()
		return nil, err
	}
	return fr, nil
}

func (fr *FileReader) Close() error {
	if c, ok := fr.Reader.(io.Closer); ok {
		c.Close()
	}
	return fr.fp.Close()
}

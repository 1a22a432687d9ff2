package align

import (
	"errors"
	"fmt"
	"io"
)

const (
	PLUS  byte = '+'
	MINUS byte = '-'
)

// mapq reported by SAM/BAM when the value is not available
const MapQUnavailable = 255

var ErrInvalidRecord = errors.New("invalid alignment record")

// Record is one normalized alignment of a query contig against a reference
// sequence. Coordinates are 0-based half-open.
type Record struct {
	QueryHeader          string
	QueryLen             int
	QueryStart, QueryEnd int
	RefHeader            string
	RefLen               int
	RefStart, RefEnd     int
	Strand               byte // PLUS or MINUS
	MapQ                 int
	HasMapQ              bool
}

func (r Record) QueryCon() int {
	return r.QueryEnd - r.QueryStart
}

func (r Record) RefCon() int {
	return r.RefEnd - r.RefStart
}

// Validate checks the coordinate invariants of a record.
func (r Record) Validate() error {
	if r.QueryHeader == "" || r.RefHeader == "" {
		return fmt.Errorf("%w: empty header in %v", ErrInvalidRecord, r)
	}
	if r.QueryStart < 0 || r.QueryStart > r.QueryEnd || r.QueryEnd > r.QueryLen {
		return fmt.Errorf("%w: query %s coordinates [%d,%d) outside length %d", ErrInvalidRecord, r.QueryHeader, r.QueryStart, r.QueryEnd, r.QueryLen)
	}
	if r.RefStart < 0 || r.RefStart > r.RefEnd || r.RefEnd > r.RefLen {
		return fmt.Errorf("%w: reference %s coordinates [%d,%d) outside length %d", ErrInvalidRecord, r.RefHeader, r.RefStart, r.RefEnd, r.RefLen)
	}
	if r.Strand != PLUS && r.Strand != MINUS {
		return fmt.Errorf("%w: strand %q of query %s", ErrInvalidRecord, r.Strand, r.QueryHeader)
	}
	if r.HasMapQ && r.MapQ < 0 {
		return fmt.Errorf("%w: negative mapq %d of query %s", ErrInvalidRecord, r.MapQ, r.QueryHeader)
	}
	return nil
}

// Reader delivers records one at a time and returns io.EOF after the last one.
type Reader interface {
	Read() (Record, error)
}

// SliceReader serves records from memory.
type SliceReader struct {
	recs []Record
	idx  int
}

func NewSliceReader(recs []Record) *SliceReader {
	return &SliceReader{recs: recs}
}

func (sr *SliceReader) Read() (Record, error) {
	if sr.idx >= len(sr.recs) {
		return Record{}, io.EOF
	}
	r := sr.recs[sr.idx]
	sr.idx++
	return r, nil
}

// ReadAll drains rd.
func ReadAll(rd Reader) (recs []Record, err error) {
	for {
		r, err := rd.Read()
		if err != nil {
			if err == io.EOF {
				return recs, nil
			}
			return recs, err
		}
		recs = append(recs, r)
	}
}

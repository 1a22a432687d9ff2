package align

import (
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

type samSource interface {
	Read() (*sam.Record, error)
}

// SAMReader turns mapped SAM/BAM records into Records. Query coordinates
// are reported on the forward strand of the query contig.
type SAMReader struct {
	src samSource
	fn  string
	num int
}

func NewSAMReader(r io.Reader, fn string) (*SAMReader, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create sam.NewReader file: %s err: %w", fn, err)
	}
	return &SAMReader{src: sr, fn: fn}, nil
}

// NewBAMReader uses rd goroutines for BGZF decompression.
func NewBAMReader(r io.Reader, fn string, rd int) (*SAMReader, error) {
	br, err := bam.NewReader(r, rd)
	if err != nil {
		return nil, fmt.Errorf("create bam.NewReader file: %s err: %w", fn, err)
	}
	return &SAMReader{src: br, fn: fn}, nil
}

// AccumulateCigar returns the clipped bases before the alignment, the
// query bases consumed by the alignment and the query length including
// hard clipped bases.
func AccumulateCigar(cigar sam.Cigar) (clip, qcon, qlen int) {
	inAln := false
	for _, co := range cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarInsertion, sam.CigarEqual, sam.CigarMismatch:
			inAln = true
			qcon += co.Len()
			qlen += co.Len()
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if !inAln {
				clip += co.Len()
			}
			qlen += co.Len()
		case sam.CigarDeletion, sam.CigarSkipped:
			inAln = true
		}
	}
	return
}

func (sr *SAMReader) Read() (rec Record, err error) {
	for {
		r, err := sr.src.Read()
		if err != nil {
			if err == io.EOF {
				return rec, io.EOF
			}
			return rec, fmt.Errorf("read file: %s record %d: %w", sr.fn, sr.num+1, err)
		}
		sr.num++
		if r.Flags&sam.Unmapped != 0 || r.Ref == nil {
			continue
		}
		clip, qcon, qlen := AccumulateCigar(r.Cigar)
		rec.QueryHeader = r.Name
		rec.QueryLen = qlen
		rec.QueryStart, rec.QueryEnd = clip, clip+qcon
		rec.Strand = PLUS
		if r.Flags&sam.Reverse != 0 {
			rec.Strand = MINUS
			rec.QueryStart, rec.QueryEnd = qlen-clip-qcon, qlen-clip
		}
		rec.RefHeader = r.Ref.Name()
		rec.RefLen = r.Ref.Len()
		rec.RefStart, rec.RefEnd = r.Pos, r.End()
		rec.MapQ, rec.HasMapQ = int(r.MapQ), r.MapQ != MapQUnavailable
		if !rec.HasMapQ {
			rec.MapQ = 0
		}
		return rec, rec.Validate()
	}
}

// Close releases the BGZF workers of a BAM source.
func (sr *SAMReader) Close() error {
	if br, ok := sr.src.(*bam.Reader); ok {
		return br.Close()
	}
	return nil
}

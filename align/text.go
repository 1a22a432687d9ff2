package align

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mudesheng/ragoo/utils"
)

type lineReader struct {
	buffp   *bufio.Reader
	fn      string
	lineNum int
}

func newLineReader(r io.Reader, fn string) lineReader {
	return lineReader{buffp: bufio.NewReaderSize(r, 1<<20), fn: fn}
}

// next returns the tab separated fields of the next non-empty line.
func (lr *lineReader) next() ([]string, error) {
	for {
		line, err := lr.buffp.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read file: %s line %d: %w", lr.fn, lr.lineNum+1, err)
		}
		if len(line) == 0 && err == io.EOF {
			return nil, io.EOF
		}
		lr.lineNum++
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}
		return strings.Split(line, "\t"), nil
	}
}

func (lr *lineReader) atoi(s, field string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: file %s line %d field %s: %q not an integer", ErrInvalidRecord, lr.fn, lr.lineNum, field, s)
	}
	return v, nil
}

// PAFReader parses minimap2 PAF output.
type PAFReader struct {
	lineReader
}

func NewPAFReader(r io.Reader, fn string) *PAFReader {
	return &PAFReader{newLineReader(r, fn)}
}

func (pr *PAFReader) Read() (rec Record, err error) {
	sa, err := pr.next()
	if err != nil {
		return rec, err
	}
	if len(sa) < 12 {
		return rec, fmt.Errorf("%w: file %s line %d: PAF need at least 12 columns, found %d", ErrInvalidRecord, pr.fn, pr.lineNum, len(sa))
	}
	rec.QueryHeader = sa[0]
	rec.RefHeader = sa[5]
	var ints [8]int
	for i, idx := range [8]int{1, 2, 3, 6, 7, 8, 11, 9} {
		if ints[i], err = pr.atoi(sa[idx], strconv.Itoa(idx+1)); err != nil {
			return rec, err
		}
	}
	rec.QueryLen, rec.QueryStart, rec.QueryEnd = ints[0], ints[1], ints[2]
	rec.RefLen, rec.RefStart, rec.RefEnd = ints[3], ints[4], ints[5]
	if ints[6] != MapQUnavailable {
		rec.MapQ, rec.HasMapQ = ints[6], true
	}
	if len(sa[4]) != 1 {
		return rec, fmt.Errorf("%w: file %s line %d: strand %q", ErrInvalidRecord, pr.fn, pr.lineNum, sa[4])
	}
	rec.Strand = sa[4][0]
	return rec, rec.Validate()
}

// CoordsReader parses the tab separated table written by nucmer's
// 'show-coords -lTH': S1 E1 S2 E2 LEN1 LEN2 %IDY LENR LENQ TAGR TAGQ.
// Coordinates are 1-based inclusive; a reversed query has S2 > E2.
type CoordsReader struct {
	lineReader
}

func NewCoordsReader(r io.Reader, fn string) *CoordsReader {
	return &CoordsReader{newLineReader(r, fn)}
}

func (cr *CoordsReader) Read() (rec Record, err error) {
	sa, err := cr.next()
	if err != nil {
		return rec, err
	}
	if len(sa) < 11 {
		return rec, fmt.Errorf("%w: file %s line %d: coords need 11 columns, found %d", ErrInvalidRecord, cr.fn, cr.lineNum, len(sa))
	}
	var ints [6]int
	for i, idx := range [6]int{0, 1, 2, 3, 7, 8} {
		if ints[i], err = cr.atoi(strings.TrimSpace(sa[idx]), strconv.Itoa(idx+1)); err != nil {
			return rec, err
		}
	}
	s1, e1, s2, e2 := ints[0], ints[1], ints[2], ints[3]
	rec.RefHeader = strings.TrimSpace(sa[9])
	rec.QueryHeader = strings.TrimSpace(sa[10])
	rec.RefLen, rec.QueryLen = ints[4], ints[5]
	rec.RefStart, rec.RefEnd = utils.MinInt(s1, e1)-1, utils.MaxInt(s1, e1)
	rec.Strand = PLUS
	if s2 > e2 {
		rec.Strand = MINUS
	}
	rec.QueryStart, rec.QueryEnd = utils.MinInt(s2, e2)-1, utils.MaxInt(s2, e2)
	return rec, rec.Validate()
}

package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mudesheng/ragoo/contig"
	"github.com/mudesheng/ragoo/order"
)

const (
	SEQ byte = 's'
	GAP byte = 'g'
)

const OrderingsFn = "orderings.bed"

var ErrMalformed = errors.New("malformed orderings record")

// Segment is one line of the orderings file: a contig or a gap placed on a
// scaffold in scaffold-local coordinates.
type Segment struct {
	Scaffold   string
	Start, End int
	Kind       byte
	Header     string // contig header, SEQ only
	GapID      int    // GAP only
	Strand     byte
	contig.Confidence
}

// Segments lays out every ordering as alternating contig and gap segments.
// Each scaffold starts at 0; gap ids increase across all scaffolds.
func Segments(orderings []order.Ordering, placed map[string]contig.Assignment, suffix string) ([]Segment, error) {
	var segs []Segment
	gapID := 0
	for _, o := range orderings {
		if len(o.Gaps) != gapNum(len(o.Entries)) {
			return nil, fmt.Errorf("reference %s: %d gaps for %d contigs", o.Ref, len(o.Gaps), len(o.Entries))
		}
		scaffold := o.Ref + suffix
		pos := 0
		for i, e := range o.Entries {
			as, ok := placed[e.QueryHeader]
			if !ok {
				return nil, fmt.Errorf("contig %s ordered on %s has no assignment", e.QueryHeader, o.Ref)
			}
			segs = append(segs, Segment{Scaffold: scaffold, Start: pos, End: pos + as.QueryLen, Kind: SEQ, Header: as.Header, Strand: as.Strand, Confidence: as.Confidence})
			pos += as.QueryLen
			if i < len(o.Gaps) {
				segs = append(segs, Segment{Scaffold: scaffold, Start: pos, End: pos + o.Gaps[i], Kind: GAP, GapID: gapID})
				pos += o.Gaps[i]
				gapID++
			}
		}
	}
	return segs, nil
}

func gapNum(n int) int {
	if n == 0 {
		return 0
	}
	return n - 1
}

// FormatFloat writes the shortest representation that parses back to f, with
// a trailing ".0" for integral values.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func (s Segment) String() string {
	if s.Kind == GAP {
		return fmt.Sprintf("%s\t%d\t%d\t%c\t%d\tNA\tNA\tNA\tNA", s.Scaffold, s.Start, s.End, GAP, s.GapID)
	}
	return fmt.Sprintf("%s\t%d\t%d\t%c\t%s\t%c\t%s\t%s\t%s", s.Scaffold, s.Start, s.End, SEQ, s.Header, s.Strand,
		FormatFloat(s.Grouping), FormatFloat(s.Location), FormatFloat(s.Orientation))
}

// Write stores segs in fn. When fn already exists and overwrite is false the
// file is left untouched and retained is true.
func Write(fn string, segs []Segment, overwrite bool) (retained bool, err error) {
	if _, err := os.Stat(fn); err == nil && !overwrite {
		log.Printf("[Write] retaining pre-existing file: %s\n", fn)
		return true, nil
	}
	log.Printf("[Write] writing: %s\n", fn)
	return false, writeAtomic(fn, func(w io.Writer) error {
		for _, s := range segs {
			if _, err := fmt.Fprintln(w, s.String()); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAtomic writes through a temporary file in the same directory renamed
// over fn, so readers never see a partial file.
func writeAtomic(fn string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(fn), "."+filepath.Base(fn)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", fn, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	buffp := bufio.NewWriter(tmp)
	if err = write(buffp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", fn, err)
	}
	if err = buffp.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", fn, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), fn); err != nil {
		return fmt.Errorf("rename %s: %w", tmp.Name(), err)
	}
	return nil
}

// Read parses an orderings file.
func Read(fn string) (segs []Segment, err error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("open orderings file: %s: %w", fn, err)
	}
	defer fp.Close()
	sc := bufio.NewScanner(fp)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		if sc.Text() == "" {
			continue
		}
		s, err := ParseSegment(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("file %s line %d: %w", fn, lineNum, err)
		}
		segs = append(segs, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read orderings file: %s: %w", fn, err)
	}
	return segs, nil
}

func ParseSegment(line string) (s Segment, err error) {
	sa := strings.Split(line, "\t")
	if len(sa) != 9 {
		return s, fmt.Errorf("%w: %d fields", ErrMalformed, len(sa))
	}
	s.Scaffold = sa[0]
	if s.Start, err = strconv.Atoi(sa[1]); err != nil {
		return s, fmt.Errorf("%w: start %q", ErrMalformed, sa[1])
	}
	if s.End, err = strconv.Atoi(sa[2]); err != nil {
		return s, fmt.Errorf("%w: end %q", ErrMalformed, sa[2])
	}
	switch sa[3] {
	case "g":
		s.Kind = GAP
		if s.GapID, err = strconv.Atoi(sa[4]); err != nil {
			return s, fmt.Errorf("%w: gap id %q", ErrMalformed, sa[4])
		}
	case "s":
		s.Kind = SEQ
		s.Header = sa[4]
		if len(sa[5]) != 1 {
			return s, fmt.Errorf("%w: strand %q", ErrMalformed, sa[5])
		}
		s.Strand = sa[5][0]
		fs := [3]*float64{&s.Grouping, &s.Location, &s.Orientation}
		for i, p := range fs {
			if *p, err = strconv.ParseFloat(sa[6+i], 64); err != nil {
				return s, fmt.Errorf("%w: confidence %q", ErrMalformed, sa[6+i])
			}
		}
	default:
		return s, fmt.Errorf("%w: kind %q", ErrMalformed, sa[3])
	}
	return s, nil
}

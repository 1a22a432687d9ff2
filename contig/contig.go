package contig

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mudesheng/ragoo/align"
	"github.com/mudesheng/ragoo/utils"
)

var ErrDataIntegrity = errors.New("alignment data integrity")

// ContigAlignment is the alignment evidence of one query contig. Filters
// never modify it; they return a new, smaller ContigAlignment.
type ContigAlignment struct {
	Header   string
	QueryLen int
	recs     []align.Record
}

func newContigAlignment(rec align.Record) *ContigAlignment {
	return &ContigAlignment{Header: rec.QueryHeader, QueryLen: rec.QueryLen, recs: []align.Record{rec}}
}

// New builds a ContigAlignment from records of a single contig.
func New(recs []align.Record) (*ContigAlignment, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no alignment records", ErrDataIntegrity)
	}
	ca := newContigAlignment(recs[0])
	if err := recs[0].Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}
	for _, r := range recs[1:] {
		if err := ca.add(r); err != nil {
			return nil, err
		}
	}
	return ca, nil
}

func (ca *ContigAlignment) add(rec align.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}
	if rec.QueryHeader != ca.Header {
		return fmt.Errorf("%w: record of %s added to contig %s", ErrDataIntegrity, rec.QueryHeader, ca.Header)
	}
	if rec.QueryLen != ca.QueryLen {
		return fmt.Errorf("%w: contig %s length %d differs from earlier length %d", ErrDataIntegrity, ca.Header, rec.QueryLen, ca.QueryLen)
	}
	ca.recs = append(ca.recs, rec)
	return nil
}

func (ca *ContigAlignment) Len() int {
	return len(ca.recs)
}

// Records returns a copy of the evidence.
func (ca *ContigAlignment) Records() []align.Record {
	return append([]align.Record(nil), ca.recs...)
}

// AlignedLen is the summed query span of all records.
func (ca *ContigAlignment) AlignedLen() (sum int) {
	for _, r := range ca.recs {
		sum += r.QueryCon()
	}
	return
}

func (ca *ContigAlignment) keep(keep func(i int) bool) (*ContigAlignment, bool) {
	var recs []align.Record
	for i, r := range ca.recs {
		if keep(i) {
			recs = append(recs, r)
		}
	}
	if len(recs) == 0 {
		return nil, false
	}
	return &ContigAlignment{Header: ca.Header, QueryLen: ca.QueryLen, recs: recs}, true
}

// FilterMapQ drops every record with a mapping quality below minQ. Records
// without a mapping quality are kept. It returns false when nothing is left.
func (ca *ContigAlignment) FilterMapQ(minQ int) (*ContigAlignment, bool) {
	return ca.keep(func(i int) bool {
		r := ca.recs[i]
		return !r.HasMapQ || r.MapQ >= minQ
	})
}

// UniqueAnchorFilter drops every record whose unique anchor is shorter than
// minLen. It returns false when no anchor is long enough.
func (ca *ContigAlignment) UniqueAnchorFilter(minLen int) (*ContigAlignment, bool) {
	anchors := ca.AnchorLens()
	return ca.keep(func(i int) bool {
		return anchors[i] >= minLen
	})
}

// priority lists the record indexes from the longest query span to the
// shortest; equal spans keep record order.
func (ca *ContigAlignment) priority() []int {
	idx := make([]int, len(ca.recs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return ca.recs[idx[i]].QueryCon() > ca.recs[idx[j]].QueryCon()
	})
	return idx
}

type interval struct {
	start, end int
}

// cover adds [start,end) to the sorted disjoint set ivs and returns the
// number of bases that were not covered before.
func cover(ivs []interval, start, end int) ([]interval, int) {
	i := sort.Search(len(ivs), func(k int) bool { return ivs[k].end >= start })
	j := i
	covered := 0
	merged := interval{start, end}
	for ; j < len(ivs) && ivs[j].start <= end; j++ {
		covered += utils.MinInt(ivs[j].end, end) - utils.MaxInt(ivs[j].start, start)
		merged.start = utils.MinInt(merged.start, ivs[j].start)
		merged.end = utils.MaxInt(merged.end, ivs[j].end)
	}
	out := append(append(append(make([]interval, 0, len(ivs)-(j-i)+1), ivs[:i]...), merged), ivs[j:]...)
	return out, end - start - covered
}

// AnchorLens returns, for each record, the number of query bases it covers
// that no record of higher priority covers. Records with longer query spans
// have higher priority, ties go to the earlier record. Every covered query
// base belongs to exactly one anchor.
func (ca *ContigAlignment) AnchorLens() []int {
	anchors := make([]int, len(ca.recs))
	var ivs []interval
	for _, i := range ca.priority() {
		r := ca.recs[i]
		if r.QueryStart == r.QueryEnd {
			continue
		}
		ivs, anchors[i] = cover(ivs, r.QueryStart, r.QueryEnd)
	}
	return anchors
}

// AnchorLen is the total unique anchor length of the contig.
func (ca *ContigAlignment) AnchorLen() (sum int) {
	for _, a := range ca.AnchorLens() {
		sum += a
	}
	return
}

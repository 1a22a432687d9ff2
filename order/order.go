package order

import (
	"sort"

	"github.com/mudesheng/ragoo/contig"
)

// Entry places one contig on its reference.
type Entry struct {
	RefStart, RefEnd int
	QueryHeader      string
}

func Less(a, b Entry) bool {
	if a.RefStart != b.RefStart {
		return a.RefStart < b.RefStart
	}
	if a.RefEnd != b.RefEnd {
		return a.RefEnd < b.RefEnd
	}
	return a.QueryHeader < b.QueryHeader
}

// Ordering is the layout of one reference: the sorted contigs and the
// len(Entries)-1 gap sizes between consecutive contigs.
type Ordering struct {
	Ref     string
	Entries []Entry
	Gaps    []int
}

type GapOptions struct {
	GapSize int
	// infer gaps from the reference flanks, GapSize is used when adjacent
	// contigs overlap
	Infer bool
}

// Build groups the assignments by reference, in order of the first
// assignment of each reference, and sorts every group by (start, end,
// header).
func Build(assignments []contig.Assignment, opt GapOptions) []Ordering {
	var refs []string
	byRef := make(map[string][]contig.Assignment)
	for _, as := range assignments {
		if _, ok := byRef[as.Ref]; !ok {
			refs = append(refs, as.Ref)
		}
		byRef[as.Ref] = append(byRef[as.Ref], as)
	}

	orderings := make([]Ordering, 0, len(refs))
	for _, ref := range refs {
		group := byRef[ref]
		sort.Slice(group, func(i, j int) bool {
			return Less(entryOf(group[i]), entryOf(group[j]))
		})
		o := Ordering{Ref: ref, Entries: make([]Entry, len(group))}
		for i, as := range group {
			o.Entries[i] = entryOf(as)
		}
		o.Gaps = Gaps(group, opt)
		orderings = append(orderings, o)
	}
	return orderings
}

func entryOf(as contig.Assignment) Entry {
	return Entry{RefStart: as.Start, RefEnd: as.End, QueryHeader: as.Header}
}

// Gaps computes the gap sizes between consecutive contigs of a sorted group.
func Gaps(sorted []contig.Assignment, opt GapOptions) []int {
	if len(sorted) < 2 {
		return []int{}
	}
	gaps := make([]int, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps[i-1] = opt.GapSize
		if opt.Infer {
			if g := sorted[i].FlankStart - sorted[i-1].FlankEnd; g >= 0 {
				gaps[i-1] = g
			}
		}
	}
	return gaps
}

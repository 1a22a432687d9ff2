package contig

import (
	"sort"

	"github.com/mudesheng/ragoo/align"
	"github.com/mudesheng/ragoo/utils"
)

// Confidence holds the three independent placement scores, each in [0,1].
type Confidence struct {
	Grouping    float64
	Location    float64
	Orientation float64
}

type refAnchor struct {
	rec    align.Record
	anchor int
}

// evidence groups the current anchor lengths by reference.
type evidence struct {
	byRef map[string][]refAnchor
	sums  map[string]int
	total int
	best  string
}

func (ca *ContigAlignment) evidence() (ev evidence) {
	anchors := ca.AnchorLens()
	ev.byRef = make(map[string][]refAnchor)
	ev.sums = make(map[string]int)
	for i, r := range ca.recs {
		ev.byRef[r.RefHeader] = append(ev.byRef[r.RefHeader], refAnchor{r, anchors[i]})
		ev.sums[r.RefHeader] += anchors[i]
		ev.total += anchors[i]
	}
	for ref, sum := range ev.sums {
		if ev.best == "" || sum > ev.sums[ev.best] || (sum == ev.sums[ev.best] && ref < ev.best) {
			ev.best = ref
		}
	}
	return
}

func ratio(a, b int) float64 {
	if b <= 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// BestRef is the reference with the greatest unique anchor length; ties go to
// the smallest header.
func (ca *ContigAlignment) BestRef() string {
	return ca.evidence().best
}

// GroupingConfidence is the share of the unique anchor length that maps to
// the best reference.
func (ca *ContigAlignment) GroupingConfidence() float64 {
	ev := ca.evidence()
	return ratio(ev.sums[ev.best], ev.total)
}

// Cluster is a run of alignments to one reference whose reference intervals
// lie within the merge distance of each other.
type Cluster struct {
	Start, End int
	AnchorLen  int
	Num        int
}

func (ca *ContigAlignment) mergeDist(clusterDist int) int {
	if clusterDist > 0 {
		return clusterDist
	}
	return ca.QueryLen
}

func clusters(ras []refAnchor, mergeDist int) (cs []Cluster) {
	sorted := append([]refAnchor(nil), ras...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].rec.RefStart != sorted[j].rec.RefStart {
			return sorted[i].rec.RefStart < sorted[j].rec.RefStart
		}
		return sorted[i].rec.RefEnd < sorted[j].rec.RefEnd
	})
	for _, ra := range sorted {
		if n := len(cs); n > 0 && ra.rec.RefStart <= cs[n-1].End+mergeDist {
			c := &cs[n-1]
			c.End = utils.MaxInt(c.End, ra.rec.RefEnd)
			c.AnchorLen += ra.anchor
			c.Num++
			continue
		}
		cs = append(cs, Cluster{Start: ra.rec.RefStart, End: ra.rec.RefEnd, AnchorLen: ra.anchor, Num: 1})
	}
	return cs
}

func dominant(cs []Cluster) (best Cluster) {
	for i, c := range cs {
		if i == 0 || c.AnchorLen > best.AnchorLen {
			best = c
		}
	}
	return best
}

// Clusters returns the alignment clusters on the best reference ordered by
// start. Two alignments share a cluster when the gap between them is at most
// clusterDist, or the contig length when clusterDist is not positive.
func (ca *ContigAlignment) Clusters(clusterDist int) []Cluster {
	ev := ca.evidence()
	return clusters(ev.byRef[ev.best], ca.mergeDist(clusterDist))
}

// DominantCluster is the cluster with the greatest unique anchor length on
// the best reference; ties go to the leftmost cluster.
func (ca *ContigAlignment) DominantCluster(clusterDist int) Cluster {
	return dominant(ca.Clusters(clusterDist))
}

// LocationConfidence is the share of the best reference's unique anchor
// length inside the dominant cluster.
func (ca *ContigAlignment) LocationConfidence(clusterDist int) float64 {
	ev := ca.evidence()
	c := dominant(clusters(ev.byRef[ev.best], ca.mergeDist(clusterDist)))
	return ratio(c.AnchorLen, ev.sums[ev.best])
}

func orientation(ras []refAnchor) (strand byte, agree, total int) {
	var plus, minus int
	for _, ra := range ras {
		if ra.rec.Strand == align.MINUS {
			minus += ra.anchor
		} else {
			plus += ra.anchor
		}
	}
	if minus > plus {
		return align.MINUS, minus, plus + minus
	}
	return align.PLUS, plus, plus + minus
}

// Orientation is the majority strand, weighted by unique anchor length, of
// the alignments to the best reference. Ties are '+'.
func (ca *ContigAlignment) Orientation() byte {
	ev := ca.evidence()
	strand, _, _ := orientation(ev.byRef[ev.best])
	return strand
}

// OrientationConfidence is the share of the best reference's unique anchor
// length agreeing with the majority strand.
func (ca *ContigAlignment) OrientationConfidence() float64 {
	ev := ca.evidence()
	_, agree, total := orientation(ev.byRef[ev.best])
	return ratio(agree, total)
}

// Confidence computes all three scores from one pass over the evidence.
func (ca *ContigAlignment) Confidence(clusterDist int) Confidence {
	ev := ca.evidence()
	ras := ev.byRef[ev.best]
	c := dominant(clusters(ras, ca.mergeDist(clusterDist)))
	_, agree, total := orientation(ras)
	return Confidence{
		Grouping:    ratio(ev.sums[ev.best], ev.total),
		Location:    ratio(c.AnchorLen, ev.sums[ev.best]),
		Orientation: ratio(agree, total),
	}
}

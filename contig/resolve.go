package contig

import (
	"context"
	"fmt"
	"log"

	"github.com/cespare/xxhash"
	"golang.org/x/sync/errgroup"
)

// Reason explains why a contig was left unplaced.
type Reason int

const (
	Unresolved Reason = iota
	Placed
	NoAlignment
	LowMapQ
	ShortAnchor
	LowConfidence
	Skipped
)

func (r Reason) String() string {
	switch r {
	case Unresolved:
		return "unresolved"
	case Placed:
		return "placed"
	case NoAlignment:
		return "no_alignment"
	case LowMapQ:
		return "low_mapq"
	case ShortAnchor:
		return "short_anchor"
	case LowConfidence:
		return "low_confidence"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Options controls filtering, scoring and the confidence thresholds. Every
// threshold must be strictly exceeded.
type Options struct {
	FilterMapQ        bool // apply the mapq filter, only for aligners reporting mapq
	MinMapQ           int
	MinAnchorLen      int
	ClusterDist       int
	GroupingThresh    float64
	LocationThresh    float64
	OrientationThresh float64
}

// Assignment is the placement decided for one contig.
type Assignment struct {
	Header   string
	QueryLen int
	Ref      string
	// representative position used for ordering
	Start, End int
	// min start and max end of the dominant cluster
	FlankStart, FlankEnd int
	Strand               byte
	Confidence
}

type Unplaced struct {
	Header string
	Reason Reason
}

// Filter applies the mapq filter (when enabled) and then the unique anchor
// filter. Any Reason but Placed tells which filter left nothing.
func Filter(ca *ContigAlignment, opt Options) (*ContigAlignment, Reason) {
	ok := true
	if opt.FilterMapQ {
		if ca, ok = ca.FilterMapQ(opt.MinMapQ); !ok {
			return nil, LowMapQ
		}
	}
	if ca, ok = ca.UniqueAnchorFilter(opt.MinAnchorLen); !ok {
		return nil, ShortAnchor
	}
	return ca, Placed
}

// Resolve filters the evidence of a contig and decides its placement. The
// Reason is Placed only when the Assignment is valid.
func Resolve(ca *ContigAlignment, opt Options) (Assignment, Reason) {
	fca, reason := Filter(ca, opt)
	if reason != Placed {
		return Assignment{}, reason
	}
	conf := fca.Confidence(opt.ClusterDist)
	if !(conf.Grouping > opt.GroupingThresh && conf.Location > opt.LocationThresh && conf.Orientation > opt.OrientationThresh) {
		return Assignment{}, LowConfidence
	}
	c := fca.DominantCluster(opt.ClusterDist)
	return Assignment{
		Header:     fca.Header,
		QueryLen:   fca.QueryLen,
		Ref:        fca.BestRef(),
		Start:      c.Start,
		End:        c.End,
		FlankStart: c.Start,
		FlankEnd:   c.End,
		Strand:     fca.Orientation(),
		Confidence: conf,
	}, Placed
}

// Resolution lists the placed contigs and the unplaced ones, both in the
// order the contigs were first observed.
type Resolution struct {
	Placed   []Assignment
	Unplaced []Unplaced
}

func (res *Resolution) Summary() map[Reason]int {
	sum := map[Reason]int{Placed: len(res.Placed)}
	for _, u := range res.Unplaced {
		sum[u.Reason]++
	}
	return sum
}

type outcome struct {
	as     Assignment
	reason Reason
}

// ResolveAll resolves every contig of agg. Contigs are independent, so they
// are spread over numCPU workers by the hash of their header; the merged
// result does not depend on numCPU.
func ResolveAll(ctx context.Context, agg *Aggregator, opt Options, numCPU int) (*Resolution, error) {
	if numCPU < 1 {
		numCPU = 1
	}
	headers := agg.Headers()
	shards := make([][]int, numCPU)
	for i, h := range headers {
		s := xxhash.Sum64String(h) % uint64(numCPU)
		shards[s] = append(shards[s], i)
	}
	outcomes := make([]outcome, len(headers))
	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		shard := shard // per-iteration copy; go directive is below 1.22
		g.Go(func() error {
			for _, i := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				// each index is written by exactly one worker
				as, reason := Resolve(agg.Get(headers[i]), opt)
				outcomes[i] = outcome{as, reason}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve contigs: %w", err)
	}

	res, err := merge(headers, outcomes)
	if err != nil {
		return nil, err
	}
	sum := res.Summary()
	log.Printf("[ResolveAll] contigs: %d, placed: %d, low mapq: %d, short anchor: %d, low confidence: %d\n",
		len(headers), sum[Placed], sum[LowMapQ], sum[ShortAnchor], sum[LowConfidence])
	return res, nil
}

// merge collects the outcomes in header order. Every outcome must have been
// decided.
func merge(headers []string, outcomes []outcome) (*Resolution, error) {
	res := &Resolution{}
	for i, oc := range outcomes {
		switch oc.reason {
		case Unresolved:
			return nil, fmt.Errorf("resolve contigs: contig %s left unresolved", headers[i])
		case Placed:
			res.Placed = append(res.Placed, oc.as)
		default:
			res.Unplaced = append(res.Unplaced, Unplaced{headers[i], oc.reason})
		}
	}
	return res, nil
}

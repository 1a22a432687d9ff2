package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mudesheng/ragoo/align"
	"github.com/mudesheng/ragoo/contig"
	"github.com/mudesheng/ragoo/layout"
	"github.com/mudesheng/ragoo/order"
	"github.com/mudesheng/ragoo/scaffold"
	"github.com/mudesheng/ragoo/utils"
)

// Layout is the in-memory result of ordering one alignment stream.
type Layout struct {
	Resolution *contig.Resolution
	Orderings  []order.Ordering
	Segments   []layout.Segment
}

func ContigOptions(cfg utils.Config, mapqReliable bool) contig.Options {
	return contig.Options{
		FilterMapQ:        mapqReliable,
		MinMapQ:           cfg.MinMapQ,
		MinAnchorLen:      cfg.MinAnchorLen,
		ClusterDist:       cfg.ClusterDist,
		GroupingThresh:    cfg.GroupingThresh,
		LocationThresh:    cfg.LocationThresh,
		OrientationThresh: cfg.OrientationThresh,
	}
}

// Order aggregates, filters, scores, resolves and orders the records of rd.
// mapqReliable enables the mapq filter.
func Order(ctx context.Context, cfg utils.Config, rd align.Reader, mapqReliable bool, numCPU int) (*Layout, *contig.Aggregator, error) {
	agg := contig.NewAggregator(cfg.Skip, cfg.Exclude)
	if err := agg.AddAll(rd); err != nil {
		return nil, nil, fmt.Errorf("read alignments: %w", err)
	}
	fmt.Printf("[Order] contigs with alignments: %d, dropped blacklisted records: %d\n", agg.Len(), agg.Dropped)

	opt := ContigOptions(cfg, mapqReliable)
	if mapqReliable {
		fmt.Printf("[Order] removing alignments with mapq < %d\n", cfg.MinMapQ)
	}
	res, err := contig.ResolveAll(ctx, agg, opt, numCPU)
	if err != nil {
		return nil, nil, err
	}

	orderings := order.Build(res.Placed, order.GapOptions{GapSize: cfg.GapSize, Infer: cfg.InferGaps})
	placed := make(map[string]contig.Assignment, len(res.Placed))
	for _, as := range res.Placed {
		placed[as.Header] = as
	}
	segs, err := layout.Segments(orderings, placed, cfg.Suffix)
	if err != nil {
		return nil, nil, err
	}
	return &Layout{Resolution: res, Orderings: orderings, Segments: segs}, agg, nil
}

type Input struct {
	AlignFn string
	QueryFn string // optional, lists contigs that never aligned
	OutDir  string
	NumCPU  int
}

type Result struct {
	*Layout
	OrderingsFn string
	Retained    bool
	Unplaced    []contig.Unplaced
}

// Run orders the alignments of in.AlignFn and writes the orderings file, the
// unplaced list and optionally the Graphviz layout into in.OutDir. A
// retained orderings file keeps its reports too.
func Run(ctx context.Context, cfg utils.Config, in Input) (*Result, error) {
	if err := os.MkdirAll(in.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %s: %w", in.OutDir, err)
	}
	fr, err := align.OpenReader(in.AlignFn, in.NumCPU)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	lay, agg, err := Order(ctx, cfg, fr, fr.Format.MapQReliable(), in.NumCPU)
	if err != nil {
		return nil, err
	}
	res := &Result{Layout: lay, OrderingsFn: filepath.Join(in.OutDir, layout.OrderingsFn)}
	if res.Retained, err = layout.Write(res.OrderingsFn, lay.Segments, cfg.Overwrite); err != nil {
		return nil, err
	}

	res.Unplaced = append(res.Unplaced, lay.Resolution.Unplaced...)
	if in.QueryFn != "" {
		qi, err := scaffold.ReadQueryIndex(in.QueryFn)
		if err != nil {
			return nil, err
		}
		aligned := func(h string) bool { return agg.Get(h) != nil }
		res.Unplaced = append(res.Unplaced, qi.Unaligned(aligned, cfg.Skip)...)
	}
	if res.Retained {
		// the reports describe the retained orderings, not this run
		log.Printf("[Run] orderings retained, keeping %s and the layout graph\n", layout.UnplacedFn)
		return res, nil
	}
	if err := layout.WriteUnplaced(filepath.Join(in.OutDir, layout.UnplacedFn), res.Unplaced); err != nil {
		return nil, err
	}
	if cfg.Graph {
		if err := layout.WriteDot(filepath.Join(in.OutDir, "orderings.dot"), lay.Orderings, cfg.Suffix); err != nil {
			return nil, err
		}
	}
	log.Printf("[Run] references: %d, placed contigs: %d, unplaced contigs: %d\n", len(lay.Orderings), len(lay.Resolution.Placed), len(res.Unplaced))
	return res, nil
}

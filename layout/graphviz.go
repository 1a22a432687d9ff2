package layout

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/mudesheng/ragoo/order"
)

// GraphvizLayout draws one cluster per scaffold with its contigs chained in
// layout order; edges are labelled with the gap size.
func GraphvizLayout(orderings []order.Ordering, suffix string) (*gographviz.Graph, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return nil, err
	}
	if err := g.SetDir(true); err != nil {
		return nil, err
	}
	for i, o := range orderings {
		sub := "cluster_" + strconv.Itoa(i)
		if err := g.AddSubGraph("G", sub, map[string]string{"label": strconv.Quote(o.Ref + suffix)}); err != nil {
			return nil, err
		}
		for j, e := range o.Entries {
			attr := map[string]string{
				"shape": "box",
				"color": "Green",
				"label": strconv.Quote(fmt.Sprintf("%s\\n%d-%d", e.QueryHeader, e.RefStart, e.RefEnd)),
			}
			if err := g.AddNode(sub, strconv.Quote(e.QueryHeader), attr); err != nil {
				return nil, err
			}
			if j == 0 {
				continue
			}
			attr = map[string]string{
				"color": "Blue",
				"label": strconv.Quote("gap:" + strconv.Itoa(o.Gaps[j-1])),
			}
			if err := g.AddEdge(strconv.Quote(o.Entries[j-1].QueryHeader), strconv.Quote(e.QueryHeader), true, attr); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// WriteDot writes the Graphviz rendering of orderings to fn.
func WriteDot(fn string, orderings []order.Ordering, suffix string) error {
	g, err := GraphvizLayout(orderings, suffix)
	if err != nil {
		return fmt.Errorf("graphviz layout: %w", err)
	}
	return writeAtomic(fn, func(w io.Writer) error {
		_, err := io.WriteString(w, g.String())
		return err
	})
}

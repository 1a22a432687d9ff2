package contig

import (
	"io"

	"github.com/mudesheng/ragoo/align"
)

// Aggregator groups alignment records by query contig. It is the single
// owner of the header to ContigAlignment mapping.
type Aggregator struct {
	skip    map[string]bool
	exclude map[string]bool
	contigs map[string]*ContigAlignment
	headers []string
	Dropped int
}

// NewAggregator drops records of the contigs in skipContigs and records
// against the references in excludeRefs.
func NewAggregator(skipContigs, excludeRefs []string) *Aggregator {
	agg := &Aggregator{
		skip:    make(map[string]bool, len(skipContigs)),
		exclude: make(map[string]bool, len(excludeRefs)),
		contigs: make(map[string]*ContigAlignment),
	}
	for _, h := range skipContigs {
		agg.skip[h] = true
	}
	for _, h := range excludeRefs {
		agg.exclude[h] = true
	}
	return agg
}

func (agg *Aggregator) Add(rec align.Record) error {
	if agg.skip[rec.QueryHeader] || agg.exclude[rec.RefHeader] {
		agg.Dropped++
		return nil
	}
	if ca, ok := agg.contigs[rec.QueryHeader]; ok {
		return ca.add(rec)
	}
	ca, err := New([]align.Record{rec})
	if err != nil {
		return err
	}
	agg.contigs[rec.QueryHeader] = ca
	agg.headers = append(agg.headers, rec.QueryHeader)
	return nil
}

// AddAll consumes rd until io.EOF.
func (agg *Aggregator) AddAll(rd align.Reader) error {
	for {
		rec, err := rd.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := agg.Add(rec); err != nil {
			return err
		}
	}
}

func (agg *Aggregator) Get(header string) *ContigAlignment {
	return agg.contigs[header]
}

// Headers lists the aggregated contigs in the order they were first seen.
func (agg *Aggregator) Headers() []string {
	return append([]string(nil), agg.headers...)
}

func (agg *Aggregator) Len() int {
	return len(agg.headers)
}

package scaffold

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/mudesheng/ragoo/align"
	"github.com/mudesheng/ragoo/contig"
)

// Builder splices the query sequences into pseudomolecules following an
// orderings file. makeChr0 collects the unplaced contigs into one chr0
// sequence instead of writing them individually.
type Builder interface {
	Build(ctx context.Context, orderingsFn, queryFn string, gapSize int, makeChr0 bool) error
}

// ExecBuilder runs an external scaffold building program as
// 'Exe [-C] orderings query Out gapSize'.
type ExecBuilder struct {
	Exe  string
	Args []string // leading arguments, e.g. the script for an interpreter
	Out  string
}

func (eb *ExecBuilder) Build(ctx context.Context, orderingsFn, queryFn string, gapSize int, makeChr0 bool) error {
	args := append([]string(nil), eb.Args...)
	if !makeChr0 {
		args = append(args, "-C")
	}
	args = append(args, orderingsFn, queryFn, eb.Out, fmt.Sprint(gapSize))
	return align.Exec(exec.CommandContext(ctx, eb.Exe, args...))
}

// QueryIndex lists the query sequences in file order.
type QueryIndex struct {
	Headers []string
	Lens    map[string]int
}

// ReadQueryIndex reads the headers and lengths of a (possibly compressed)
// query FASTA file.
func ReadQueryIndex(fn string) (*QueryIndex, error) {
	fp, err := align.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return readQueryIndex(fp, fn)
}

func readQueryIndex(r io.Reader, fn string) (*QueryIndex, error) {
	qi := &QueryIndex{Lens: make(map[string]int)}
	fafp := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant))
	for {
		s, err := fafp.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read file: %s error: %w", fn, err)
		}
		l := s.(*linear.Seq)
		if _, ok := qi.Lens[l.ID]; !ok {
			qi.Headers = append(qi.Headers, l.ID)
		}
		qi.Lens[l.ID] = l.Len()
	}
	return qi, nil
}

// Unaligned returns the query sequences that never reached the resolver.
// Those listed in skip are reported as Skipped.
func (qi *QueryIndex) Unaligned(aligned func(header string) bool, skip []string) (us []contig.Unplaced) {
	skipped := make(map[string]bool, len(skip))
	for _, h := range skip {
		skipped[h] = true
	}
	for _, h := range qi.Headers {
		if skipped[h] {
			us = append(us, contig.Unplaced{Header: h, Reason: contig.Skipped})
		} else if !aligned(h) {
			us = append(us, contig.Unplaced{Header: h, Reason: contig.NoAlignment})
		}
	}
	return us
}

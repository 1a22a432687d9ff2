package layout

import (
	"fmt"
	"io"

	"github.com/mudesheng/ragoo/contig"
)

const UnplacedFn = "unplaced.txt"

// WriteUnplaced lists the contigs left for the chr0 collector, one
// "header<TAB>reason" line each.
func WriteUnplaced(fn string, unplaced []contig.Unplaced) error {
	return writeAtomic(fn, func(w io.Writer) error {
		for _, u := range unplaced {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", u.Header, u.Reason); err != nil {
				return err
			}
		}
		return nil
	})
}

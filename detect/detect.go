package detect

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/genemod/expr"
)

// DefaultMinCells is the default absolute detection threshold.
const DefaultMinCells = 500

// DefaultMinFraction is the default per-cluster detection rate threshold.
const DefaultMinFraction = 0.2

// ErrInvalidThreshold indicates a filter threshold outside its valid range.
type ErrInvalidThreshold struct {
	Name  string
	Value float64
}

func (e *ErrInvalidThreshold) Error() string {
	return fmt.Sprintf("invalid threshold %s=%v", e.Name, e.Value)
}

// Options controls the detection filter.
type Options struct {
	// MinCells retains a gene detected in at least this many cells in total.
	MinCells int
	// MinFraction retains a gene detected in at least this fraction of the
	// cells of some cluster. Must be in [0, 1].
	MinFraction float64
}

// DefaultOptions returns the documented default thresholds.
func DefaultOptions() Options {
	return Options{
		MinCells:    DefaultMinCells,
		MinFraction: DefaultMinFraction,
	}
}

// Result reports the surviving genes and discard diagnostics.
type Result struct {
	// Kept holds the retained gene identifiers in input row order.
	Kept []string
	// Dropped is the number of genes removed by the filter.
	Dropped int
	// DiscardPercent is Dropped as a percentage of the input gene count.
	DiscardPercent float64
}

// Filter applies the detection criteria to every gene of m.
//
// A gene is retained when either its total detected-cell count reaches
// MinCells, or its detection rate reaches MinFraction in at least one
// cluster (union of the two criteria). An empty result is valid and is
// returned without error.
func Filter(m *expr.Matrix, md *expr.Metadata, opts Options) (*Result, error) {
	if opts.MinCells < 0 {
		return nil, &ErrInvalidThreshold{Name: "min_cells", Value: float64(opts.MinCells)}
	}
	if opts.MinFraction < 0 || opts.MinFraction > 1 {
		return nil, &ErrInvalidThreshold{Name: "min_fraction", Value: opts.MinFraction}
	}

	cells := m.Cells()
	labels, err := md.ClustersBySize(cells)
	if err != nil {
		return nil, err
	}

	clusterOf, err := md.ClusterOf(cells, labels)
	if err != nil {
		return nil, err
	}

	// One bitmap of column indices per cluster, built once.
	clusterBits := make([]*roaring.Bitmap, len(labels))
	for i := range clusterBits {
		clusterBits[i] = roaring.New()
	}
	for j, ci := range clusterOf {
		clusterBits[ci].Add(uint32(j))
	}

	res := &Result{}
	detected := roaring.New()

	for i, gene := range m.Genes() {
		detected.Clear()
		for j, v := range m.RowAt(i) {
			if v > 0 {
				detected.Add(uint32(j))
			}
		}

		if keep(detected, clusterBits, opts) {
			res.Kept = append(res.Kept, gene)
		} else {
			res.Dropped++
		}
	}

	if n := m.NumGenes(); n > 0 {
		res.DiscardPercent = 100 * float64(res.Dropped) / float64(n)
	}
	return res, nil
}

func keep(detected *roaring.Bitmap, clusterBits []*roaring.Bitmap, opts Options) bool {
	if detected.GetCardinality() >= uint64(opts.MinCells) {
		return true
	}
	for _, cb := range clusterBits {
		size := cb.GetCardinality()
		if size == 0 {
			continue
		}
		hits := detected.AndCardinality(cb)
		if float64(hits)/float64(size) >= opts.MinFraction {
			return true
		}
	}
	return false
}

package expr

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrDuplicateID indicates a duplicate gene or cell identifier.
//
// The offending identifier can be accessed via the error message; the
// original underlying error (if any) via errors.Unwrap.
type ErrDuplicateID struct {
	Kind string // "gene" or "cell"
	ID   string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate %s identifier: %q", e.Kind, e.ID)
}

// ErrShapeMismatch indicates that the value slice does not match the
// declared genes × cells shape.
type ErrShapeMismatch struct {
	Genes, Cells, Values int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %d genes × %d cells requires %d values, got %d",
		e.Genes, e.Cells, e.Genes*e.Cells, e.Values)
}

// Matrix is a dense, immutable genes × cells expression matrix.
// Values are stored row-major; rows are genes, columns are cells.
type Matrix struct {
	genes   []string
	cells   []string
	geneIdx map[string]int
	cellIdx map[string]int
	data    []float64
}

// NewMatrix creates a Matrix from gene identifiers, cell identifiers and
// row-major values. Identifiers must be unique within their axis and
// len(values) must equal len(genes)*len(cells).
//
// The slices are retained; callers must not mutate them afterwards.
func NewMatrix(genes, cells []string, values []float64) (*Matrix, error) {
	if len(values) != len(genes)*len(cells) {
		return nil, &ErrShapeMismatch{Genes: len(genes), Cells: len(cells), Values: len(values)}
	}

	geneIdx := make(map[string]int, len(genes))
	for i, g := range genes {
		if _, ok := geneIdx[g]; ok {
			return nil, &ErrDuplicateID{Kind: "gene", ID: g}
		}
		geneIdx[g] = i
	}

	cellIdx := make(map[string]int, len(cells))
	for j, c := range cells {
		if _, ok := cellIdx[c]; ok {
			return nil, &ErrDuplicateID{Kind: "cell", ID: c}
		}
		cellIdx[c] = j
	}

	return &Matrix{
		genes:   genes,
		cells:   cells,
		geneIdx: geneIdx,
		cellIdx: cellIdx,
		data:    values,
	}, nil
}

// NumGenes returns the number of genes (rows).
func (m *Matrix) NumGenes() int { return len(m.genes) }

// NumCells returns the number of cells (columns).
func (m *Matrix) NumCells() int { return len(m.cells) }

// Genes returns the gene identifiers in row order.
// The returned slice must not be mutated.
func (m *Matrix) Genes() []string { return m.genes }

// Cells returns the cell identifiers in column order.
// The returned slice must not be mutated.
func (m *Matrix) Cells() []string { return m.cells }

// GeneIndex returns the row index of the given gene.
func (m *Matrix) GeneIndex(gene string) (int, bool) {
	i, ok := m.geneIdx[gene]
	return i, ok
}

// CellIndex returns the column index of the given cell.
func (m *Matrix) CellIndex(cell string) (int, bool) {
	j, ok := m.cellIdx[cell]
	return j, ok
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*len(m.cells)+j]
}

// RowAt returns the expression vector of the gene at row i.
// The returned slice aliases the matrix storage and must not be mutated.
func (m *Matrix) RowAt(i int) []float64 {
	n := len(m.cells)
	return m.data[i*n : (i+1)*n]
}

// Row returns the expression vector of the named gene.
// The returned slice aliases the matrix storage and must not be mutated.
func (m *Matrix) Row(gene string) ([]float64, bool) {
	i, ok := m.geneIdx[gene]
	if !ok {
		return nil, false
	}
	return m.RowAt(i), true
}

// Subset returns a new Matrix restricted to the given genes, preserving
// the requested order. Genes absent from the matrix are skipped and
// reported in missing; they are a warning condition, not an error.
func (m *Matrix) Subset(genes []string) (*Matrix, []string, error) {
	kept := make([]string, 0, len(genes))
	var missing []string

	seen := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		if _, dup := seen[g]; dup {
			return nil, nil, &ErrDuplicateID{Kind: "gene", ID: g}
		}
		seen[g] = struct{}{}

		if _, ok := m.geneIdx[g]; ok {
			kept = append(kept, g)
		} else {
			missing = append(missing, g)
		}
	}

	data := make([]float64, 0, len(kept)*len(m.cells))
	for _, g := range kept {
		data = append(data, m.RowAt(m.geneIdx[g])...)
	}

	sub, err := NewMatrix(kept, m.cells, data)
	if err != nil {
		return nil, nil, err
	}
	return sub, missing, nil
}

// Dense returns the matrix as a gonum *mat.Dense (genes × cells).
// The returned matrix shares storage with m and must be treated read-only.
func (m *Matrix) Dense() *mat.Dense {
	return mat.NewDense(len(m.genes), len(m.cells), m.data)
}

// RowMeans returns the per-gene mean expression across all cells in a
// single pass. Ordered by row index.
func (m *Matrix) RowMeans() []float64 {
	means := make([]float64, len(m.genes))
	n := float64(len(m.cells))
	for i := range m.genes {
		var sum float64
		for _, v := range m.RowAt(i) {
			sum += v
		}
		means[i] = sum / n
	}
	return means
}

package reduce

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/genemod/expr"
)

// DefaultComponents is the default number of principal components.
const DefaultComponents = 30

// ErrEmptyMatrix is returned when the matrix has no genes or no cells.
var ErrEmptyMatrix = errors.New("reduce: matrix has no genes or cells")

// ErrDecomposition is returned when the underlying factorization fails
// to converge.
var ErrDecomposition = errors.New("reduce: principal component decomposition failed")

// ErrInvalidComponents indicates a component count outside the valid
// range [1, min(genes, cells)-1].
type ErrInvalidComponents struct {
	Requested int
	Max       int
}

func (e *ErrInvalidComponents) Error() string {
	return fmt.Sprintf("reduce: invalid component count %d (valid range 1..%d)", e.Requested, e.Max)
}

// Reduced holds the per-gene principal-component scores.
type Reduced struct {
	// Genes are the gene identifiers, in the input row order.
	Genes []string
	// Vectors[i] is the component-score vector of Genes[i]. Every vector
	// has the same length (the requested component count).
	Vectors [][]float64
	// VarianceExplained[j] is the fraction of total variance captured by
	// component j. Diagnostic only; nothing downstream consumes it.
	VarianceExplained []float64
}

// Reducer projects a genes × cells matrix to per-gene coordinate vectors.
type Reducer interface {
	Reduce(m *expr.Matrix, components int) (*Reduced, error)
}

// PCA is the production Reducer. Genes are treated as observations and
// cells as variables; scores are the centered data projected onto the
// leading principal directions.
type PCA struct{}

// Reduce computes the first `components` principal-component scores for
// every gene of m.
func (PCA) Reduce(m *expr.Matrix, components int) (*Reduced, error) {
	n, d := m.NumGenes(), m.NumCells()
	if n == 0 || d == 0 {
		return nil, ErrEmptyMatrix
	}

	maxComp := min(n, d) - 1
	if components < 1 || components > maxComp {
		return nil, &ErrInvalidComponents{Requested: components, Max: maxComp}
	}

	x := m.Dense()

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, ErrDecomposition
	}

	var dirs mat.Dense
	pc.VectorsTo(&dirs)
	vars := pc.VarsTo(nil)

	var total float64
	for _, v := range vars {
		total += v
	}

	frac := make([]float64, components)
	if total > 0 {
		for j := 0; j < components; j++ {
			frac[j] = vars[j] / total
		}
	}

	// Column means for centering the projection.
	means := make([]float64, d)
	for c := 0; c < d; c++ {
		var sum float64
		for r := 0; r < n; r++ {
			sum += x.At(r, c)
		}
		means[c] = sum / float64(n)
	}

	vectors := make([][]float64, n)
	for r := 0; r < n; r++ {
		row := m.RowAt(r)
		scores := make([]float64, components)
		for j := 0; j < components; j++ {
			var s float64
			for c := 0; c < d; c++ {
				s += (row[c] - means[c]) * dirs.At(c, j)
			}
			scores[j] = s
		}
		vectors[r] = scores
	}

	return &Reduced{
		Genes:             append([]string(nil), m.Genes()...),
		Vectors:           vectors,
		VarianceExplained: frac,
	}, nil
}

package score

import (
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/genemod/expr"
)

// DefaultBins is the default number of average-expression bins.
const DefaultBins = 24

// DefaultControlsPerGene is the default control-set size drawn for each
// module gene.
const DefaultControlsPerGene = 100

// ErrInvalidBins indicates a bin count outside [1, genes].
type ErrInvalidBins struct {
	Bins  int
	Genes int
}

func (e *ErrInvalidBins) Error() string {
	return fmt.Sprintf("score: bin count %d invalid for %d genes", e.Bins, e.Genes)
}

// ErrInvalidControls indicates a non-positive control-set size.
type ErrInvalidControls struct {
	Controls int
}

func (e *ErrInvalidControls) Error() string {
	return fmt.Sprintf("score: controls per gene must be positive, got %d", e.Controls)
}

// ErrUnknownModuleGene indicates a module gene absent from the scoring
// matrix. Module genes must come from the measured transcriptome.
type ErrUnknownModuleGene struct {
	Module string
	Gene   string
}

func (e *ErrUnknownModuleGene) Error() string {
	return fmt.Sprintf("score: module %q references gene %q absent from the matrix", e.Module, e.Gene)
}

// ErrEmptyModule indicates a module with no genes.
type ErrEmptyModule struct {
	Module string
}

func (e *ErrEmptyModule) Error() string {
	return fmt.Sprintf("score: module %q is empty", e.Module)
}

// Options represents the options for configuring the scorer.
type Options struct {
	// Bins is the number of roughly equally populated average-expression
	// bins the background genes are matched within.
	Bins int

	// ControlsPerGene is the number of control genes sampled for each
	// module gene.
	ControlsPerGene int

	// Seed fixes the control sampling. Each module derives its own
	// sub-seed, so results are independent of scoring order and of the
	// worker count.
	Seed int64

	// Workers bounds the number of modules scored concurrently.
	// Values < 1 mean sequential.
	Workers int
}

var DefaultOptions = Options{
	Bins:            DefaultBins,
	ControlsPerGene: DefaultControlsPerGene,
	Seed:            1,
	Workers:         1,
}

// Scores holds the modules × cells score matrix.
type Scores struct {
	// Labels are the module labels in lexicographic order.
	Labels []string
	// Cells are the cell identifiers in matrix column order.
	Cells []string
	// Values[i][j] is the score of module Labels[i] in cell Cells[j].
	Values [][]float64
	// ControlPoolSize reports the distinct control genes per module.
	ControlPoolSize map[string]int
}

// Row returns the score vector of the given module label.
func (s *Scores) Row(label string) ([]float64, bool) {
	for i, l := range s.Labels {
		if l == label {
			return s.Values[i], true
		}
	}
	return nil, false
}

// Score computes a background-corrected score for every (module, cell)
// pair. The matrix must span the full measured transcriptome, not just
// the candidate genes: controls are drawn from everything measured.
//
// For each cell, score = mean(module genes) − mean(control pool). The
// control pool unions, over the module's genes, ControlsPerGene genes
// sampled without replacement from the gene's average-expression bin,
// excluding the module's own genes. When the exclusion empties a bin the
// full bin is used instead, so a module spanning the whole universe
// degrades to a near-zero score rather than failing.
func Score(m *expr.Matrix, modules map[string][]string, opts Options) (*Scores, error) {
	nGenes, nCells := m.NumGenes(), m.NumCells()
	if opts.Bins < 1 || opts.Bins > nGenes {
		return nil, &ErrInvalidBins{Bins: opts.Bins, Genes: nGenes}
	}
	if opts.ControlsPerGene < 1 {
		return nil, &ErrInvalidControls{Controls: opts.ControlsPerGene}
	}

	labels := make([]string, 0, len(modules))
	for label := range modules {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	memberIdx := make(map[string][]int, len(modules))
	for _, label := range labels {
		genes := modules[label]
		if len(genes) == 0 {
			return nil, &ErrEmptyModule{Module: label}
		}
		idx := make([]int, len(genes))
		for i, g := range genes {
			gi, ok := m.GeneIndex(g)
			if !ok {
				return nil, &ErrUnknownModuleGene{Module: label, Gene: g}
			}
			idx[i] = gi
		}
		memberIdx[label] = idx
	}

	// One shared pass over the whole matrix; every module reuses it.
	means := m.RowMeans()
	binOf, binGenes := quantileBins(means, opts.Bins)

	scores := &Scores{
		Labels:          labels,
		Cells:           append([]string(nil), m.Cells()...),
		Values:          make([][]float64, len(labels)),
		ControlPoolSize: make(map[string]int, len(labels)),
	}

	poolSizes := make([]int, len(labels))

	var g errgroup.Group
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}

	for i, label := range labels {
		i, label := i, label
		g.Go(func() error {
			// Per-module sub-seed keeps sampling independent of the
			// scheduling order.
			rng := rand.New(rand.NewSource(opts.Seed + int64(i)))

			pool := controlPool(memberIdx[label], binOf, binGenes, opts.ControlsPerGene, rng)
			poolSizes[i] = len(pool)

			row := make([]float64, nCells)
			moduleMeans(m, memberIdx[label], row)

			ctrl := make([]float64, nCells)
			moduleMeans(m, pool, ctrl)
			for j := range row {
				row[j] -= ctrl[j]
			}
			scores.Values[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, label := range labels {
		scores.ControlPoolSize[label] = poolSizes[i]
	}
	return scores, nil
}

// quantileBins assigns every gene to one of nbin roughly equally
// populated bins ordered by average expression. Ties resolve by row
// index, so binning is deterministic.
func quantileBins(means []float64, nbin int) (binOf []int, binGenes [][]int) {
	n := len(means)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return means[order[a]] < means[order[b]]
	})

	binOf = make([]int, n)
	binGenes = make([][]int, nbin)
	for rank, gi := range order {
		b := rank * nbin / n
		binOf[gi] = b
		binGenes[b] = append(binGenes[b], gi)
	}
	return binOf, binGenes
}

// controlPool samples the module's background pool: for each module gene,
// up to nctrl genes without replacement from its bin, excluding module
// members unless that empties the bin. The union is deduplicated.
func controlPool(members []int, binOf []int, binGenes [][]int, nctrl int, rng *rand.Rand) []int {
	inModule := make(map[int]struct{}, len(members))
	for _, gi := range members {
		inModule[gi] = struct{}{}
	}

	pool := make(map[int]struct{})
	for _, gi := range members {
		bin := binGenes[binOf[gi]]

		candidates := make([]int, 0, len(bin))
		for _, c := range bin {
			if _, ok := inModule[c]; !ok {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			candidates = append(candidates, bin...)
		}

		if len(candidates) <= nctrl {
			for _, c := range candidates {
				pool[c] = struct{}{}
			}
			continue
		}
		for _, pi := range rng.Perm(len(candidates))[:nctrl] {
			pool[candidates[pi]] = struct{}{}
		}
	}

	out := make([]int, 0, len(pool))
	for gi := range pool {
		out = append(out, gi)
	}
	sort.Ints(out)
	return out
}

// moduleMeans fills dst with the per-cell mean expression over the given
// gene rows.
func moduleMeans(m *expr.Matrix, rows []int, dst []float64) {
	for j := range dst {
		dst[j] = 0
	}
	for _, gi := range rows {
		row := m.RowAt(gi)
		for j, v := range row {
			dst[j] += v
		}
	}
	inv := 1 / float64(len(rows))
	for j := range dst {
		dst[j] *= inv
	}
}

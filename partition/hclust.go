package partition

import (
	"fmt"
	"math"
	"sort"
)

// DefaultModuleCount is the default number of modules to cut.
const DefaultModuleCount = 5

// ErrInvalidModuleCount indicates a module count outside [2, genes].
// It is reported before any distance computation.
type ErrInvalidModuleCount struct {
	K     int
	Genes int
}

func (e *ErrInvalidModuleCount) Error() string {
	return fmt.Sprintf("partition: module count %d invalid for %d genes (valid range 2..%d)", e.K, e.Genes, e.Genes)
}

// ErrMisalignedInput indicates gene and point slices of differing length.
type ErrMisalignedInput struct {
	Genes, Points int
}

func (e *ErrMisalignedInput) Error() string {
	return fmt.Sprintf("partition: %d genes but %d points", e.Genes, e.Points)
}

// Result maps genes to modules. Labels are module_1..module_k; the
// numbering carries no ordinal meaning.
type Result struct {
	// LabelOf maps every input gene to its module label.
	LabelOf map[string]string
	// Modules maps each label to its genes in input order. Every module
	// is non-empty; modules are disjoint and cover the input.
	Modules map[string][]string
	// Labels holds the module labels in numbering order.
	Labels []string
}

// Partitioner cuts identified points into k disjoint groups.
type Partitioner interface {
	Partition(genes []string, points [][]float64, k int) (*Result, error)
}

// Hierarchical is the production Partitioner: agglomerative clustering
// with average linkage (Lance-Williams update) over Euclidean distances,
// cut when exactly k clusters remain. Merging is deterministic; ties
// resolve to the lowest cluster index pair.
type Hierarchical struct{}

// Partition clusters the embedded points into exactly k modules.
func (Hierarchical) Partition(genes []string, points [][]float64, k int) (*Result, error) {
	n := len(genes)
	if k < 2 || k > n {
		return nil, &ErrInvalidModuleCount{K: k, Genes: n}
	}
	if len(points) != n {
		return nil, &ErrMisalignedInput{Genes: n, Points: len(points)}
	}

	// Pairwise Euclidean distances.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(points[i], points[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	active := make([]bool, n)
	size := make([]int, n)
	member := make([][]int, n)
	for i := range active {
		active[i] = true
		size[i] = 1
		member[i] = []int{i}
	}

	for remaining := n; remaining > k; remaining-- {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi; average linkage update against every other
		// active cluster.
		for m := 0; m < n; m++ {
			if !active[m] || m == bi || m == bj {
				continue
			}
			d := (float64(size[bi])*dist[bi][m] + float64(size[bj])*dist[bj][m]) /
				float64(size[bi]+size[bj])
			dist[bi][m] = d
			dist[m][bi] = d
		}
		member[bi] = append(member[bi], member[bj]...)
		size[bi] += size[bj]
		active[bj] = false
		member[bj] = nil
	}

	res := &Result{
		LabelOf: make(map[string]string, n),
		Modules: make(map[string][]string, k),
	}

	// Number modules by their lowest member index so labeling is stable
	// for a given input order.
	next := 1
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		label := fmt.Sprintf("module_%d", next)
		next++
		res.Labels = append(res.Labels, label)

		members := member[i]
		sort.Ints(members)
		for _, gi := range members {
			res.LabelOf[genes[gi]] = label
			res.Modules[label] = append(res.Modules[label], genes[gi])
		}
	}
	return res, nil
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

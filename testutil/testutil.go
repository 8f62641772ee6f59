package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/genemod/expr"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard-normal pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// SparseMatrix generates a genes × cells matrix where roughly
// `sparsity` of the entries are exact zeros and the rest are positive,
// mimicking normalized single-cell counts.
func SparseMatrix(rng *RNG, genes, cells int, sparsity float64) *expr.Matrix {
	geneIDs := make([]string, genes)
	for i := range geneIDs {
		geneIDs[i] = fmt.Sprintf("gene%04d", i)
	}
	cellIDs := make([]string, cells)
	for j := range cellIDs {
		cellIDs[j] = fmt.Sprintf("cell%04d", j)
	}

	values := make([]float64, genes*cells)
	for i := range values {
		if rng.Float64() >= sparsity {
			values[i] = rng.Float64() * 10
		}
	}

	m, err := expr.NewMatrix(geneIDs, cellIDs, values)
	if err != nil {
		panic(err) // identifiers are unique by construction
	}
	return m
}

// ClusteredMetadata assigns cells round-robin to the given cluster
// labels, all under a single sample label.
func ClusteredMetadata(cells []string, clusters ...string) *expr.Metadata {
	info := make(map[string]expr.CellInfo, len(cells))
	for i, c := range cells {
		info[c] = expr.CellInfo{
			Cluster: clusters[i%len(clusters)],
			Sample:  "sample1",
		}
	}
	return expr.NewMetadata(info)
}

package partition

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scatter(rng *rand.Rand, n int) ([]string, [][]float64) {
	genes := make([]string, n)
	points := make([][]float64, n)
	for i := range genes {
		genes[i] = fmt.Sprintf("g%02d", i)
		points[i] = []float64{rng.Float64() * 100, rng.Float64() * 100}
	}
	return genes, points
}

func TestPartitionWellSeparatedClusters(t *testing.T) {
	genes := []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2"}
	points := [][]float64{
		{0, 0}, {0.2, 0.1}, {0.1, 0.3},
		{50, 50}, {50.1, 49.8}, {49.9, 50.2},
		{-40, 60}, {-40.3, 60.1},
	}

	res, err := Hierarchical{}.Partition(genes, points, 3)
	require.NoError(t, err)

	assert.Equal(t, res.LabelOf["a1"], res.LabelOf["a2"])
	assert.Equal(t, res.LabelOf["a1"], res.LabelOf["a3"])
	assert.Equal(t, res.LabelOf["b1"], res.LabelOf["b2"])
	assert.Equal(t, res.LabelOf["c1"], res.LabelOf["c2"])
	assert.NotEqual(t, res.LabelOf["a1"], res.LabelOf["b1"])
	assert.NotEqual(t, res.LabelOf["a1"], res.LabelOf["c1"])
	assert.NotEqual(t, res.LabelOf["b1"], res.LabelOf["c1"])
}

func TestPartitionInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	genes, points := scatter(rng, 12)

	for k := 2; k <= len(genes); k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			res, err := Hierarchical{}.Partition(genes, points, k)
			require.NoError(t, err)

			// Exactly k non-empty modules.
			require.Len(t, res.Labels, k)
			require.Len(t, res.Modules, k)
			for _, label := range res.Labels {
				assert.NotEmpty(t, res.Modules[label])
			}

			// Disjoint cover of the input gene set.
			seen := make(map[string]string)
			for label, members := range res.Modules {
				for _, g := range members {
					_, dup := seen[g]
					require.False(t, dup, "gene %s in two modules", g)
					seen[g] = label
				}
			}
			require.Len(t, seen, len(genes))
			for _, g := range genes {
				assert.Equal(t, seen[g], res.LabelOf[g])
			}
		})
	}
}

func TestPartitionModuleCountBounds(t *testing.T) {
	genes := []string{"a", "b", "c"}
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}

	tests := []struct {
		name string
		k    int
	}{
		{"TooSmall", 1},
		{"Negative", -2},
		{"ExceedsGenes", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Hierarchical{}.Partition(genes, points, tt.k)
			require.Error(t, err)

			var inv *ErrInvalidModuleCount
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.k, inv.K)
			assert.Equal(t, 3, inv.Genes)
		})
	}
}

func TestPartitionCoincidentPoints(t *testing.T) {
	// Genes expanded from one dedup group share identical coordinates;
	// partitioning must still produce exactly k non-empty modules.
	genes := []string{"a", "b", "c", "d"}
	points := [][]float64{{1, 1}, {1, 1}, {9, 9}, {9, 9}}

	res, err := Hierarchical{}.Partition(genes, points, 2)
	require.NoError(t, err)
	require.Len(t, res.Modules, 2)
	assert.Equal(t, res.LabelOf["a"], res.LabelOf["b"])
	assert.Equal(t, res.LabelOf["c"], res.LabelOf["d"])
	assert.NotEqual(t, res.LabelOf["a"], res.LabelOf["c"])
}

func TestPartitionDeterministicLabeling(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	genes, points := scatter(rng, 10)

	a, err := Hierarchical{}.Partition(genes, points, 4)
	require.NoError(t, err)
	b, err := Hierarchical{}.Partition(genes, points, 4)
	require.NoError(t, err)

	assert.Equal(t, a.LabelOf, b.LabelOf)
	assert.Equal(t, []string{"module_1", "module_2", "module_3", "module_4"}, a.Labels)
}

func TestPartitionMisalignedInput(t *testing.T) {
	_, err := Hierarchical{}.Partition([]string{"a", "b", "c"}, [][]float64{{0, 0}}, 2)

	var mis *ErrMisalignedInput
	require.ErrorAs(t, err, &mis)
}

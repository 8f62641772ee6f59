package detect

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/genemod/expr"
)

// fixture: 6 cells, clusters {c1,c2,c3}=T and {c4,c5,c6}=B.
func fixture(t *testing.T, rows map[string][]float64, order []string) (*expr.Matrix, *expr.Metadata) {
	t.Helper()

	values := make([]float64, 0, len(order)*6)
	for _, g := range order {
		require.Len(t, rows[g], 6)
		values = append(values, rows[g]...)
	}

	m, err := expr.NewMatrix(order, []string{"c1", "c2", "c3", "c4", "c5", "c6"}, values)
	require.NoError(t, err)

	md := expr.NewMetadata(map[string]expr.CellInfo{
		"c1": {Cluster: "T"}, "c2": {Cluster: "T"}, "c3": {Cluster: "T"},
		"c4": {Cluster: "B"}, "c5": {Cluster: "B"}, "c6": {Cluster: "B"},
	})
	return m, md
}

func TestFilterCriteria(t *testing.T) {
	// total: detected in 3 cells overall, at most 2/3 of any cluster.
	// rate:  detected in all of B (3/3) and nowhere else.
	// dead:  never detected.
	m, md := fixture(t, map[string][]float64{
		"total": {1, 1, 0, 1, 0, 0},
		"rate":  {0, 0, 0, 2, 3, 1},
		"dead":  {0, 0, 0, 0, 0, 0},
	}, []string{"total", "rate", "dead"})

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"Absolute", Options{MinCells: 3, MinFraction: 1.0}, []string{"total", "rate"}},
		{"Fraction", Options{MinCells: 4, MinFraction: 0.9}, []string{"rate"}},
		{"Union", Options{MinCells: 3, MinFraction: 0.9}, []string{"total", "rate"}},
		{"RetainAll", Options{MinCells: 0, MinFraction: 0}, []string{"total", "rate", "dead"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Filter(m, md, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kept)
			assert.Equal(t, 3-len(tt.want), res.Dropped)
		})
	}
}

func TestFilterOutputIsSubset(t *testing.T) {
	rows := make(map[string][]float64)
	var order []string
	for i := 0; i < 20; i++ {
		g := fmt.Sprintf("g%02d", i)
		order = append(order, g)
		rows[g] = []float64{float64(i % 2), float64(i % 3), float64(i % 5), 0, float64(i % 4), 1}
	}
	m, md := fixture(t, rows, order)

	res, err := Filter(m, md, Options{MinCells: 3, MinFraction: 0.7})
	require.NoError(t, err)

	in := make(map[string]struct{})
	for _, g := range order {
		in[g] = struct{}{}
	}
	for _, g := range res.Kept {
		_, ok := in[g]
		assert.True(t, ok, "kept gene %s not in input", g)
	}
	assert.Equal(t, len(order), len(res.Kept)+res.Dropped)
}

func TestFilterEmptyResultIsValid(t *testing.T) {
	m, md := fixture(t, map[string][]float64{
		"a": {0, 0, 0, 0, 0, 0},
		"b": {0, 0, 0, 0, 0, 0},
	}, []string{"a", "b"})

	res, err := Filter(m, md, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Kept)
	assert.Equal(t, 2, res.Dropped)
	assert.InDelta(t, 100.0, res.DiscardPercent, 1e-12)
}

func TestFilterDiscardPercent(t *testing.T) {
	m, md := fixture(t, map[string][]float64{
		"a": {1, 1, 1, 1, 1, 1},
		"b": {0, 0, 0, 0, 0, 0},
		"c": {0, 0, 0, 0, 0, 0},
		"d": {0, 0, 0, 0, 0, 0},
	}, []string{"a", "b", "c", "d"})

	res, err := Filter(m, md, Options{MinCells: 1, MinFraction: 1.0})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Kept)
	assert.InDelta(t, 75.0, res.DiscardPercent, 1e-12)
}

func TestFilterInvalidThresholds(t *testing.T) {
	m, md := fixture(t, map[string][]float64{"a": {1, 1, 1, 1, 1, 1}}, []string{"a"})

	tests := []struct {
		name string
		opts Options
	}{
		{"NegativeMinCells", Options{MinCells: -1, MinFraction: 0.5}},
		{"NegativeFraction", Options{MinCells: 0, MinFraction: -0.1}},
		{"FractionAboveOne", Options{MinCells: 0, MinFraction: 1.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Filter(m, md, tt.opts)
			require.Error(t, err)

			var inv *ErrInvalidThreshold
			assert.ErrorAs(t, err, &inv)
		})
	}
}

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrix(t *testing.T) {
	tests := []struct {
		name    string
		genes   []string
		cells   []string
		values  []float64
		wantErr bool
	}{
		{"Valid", []string{"A", "B"}, []string{"c1", "c2"}, []float64{1, 2, 3, 4}, false},
		{"ShapeMismatch", []string{"A", "B"}, []string{"c1"}, []float64{1, 2, 3}, true},
		{"DuplicateGene", []string{"A", "A"}, []string{"c1"}, []float64{1, 2}, true},
		{"DuplicateCell", []string{"A"}, []string{"c1", "c1"}, []float64{1, 2}, true},
		{"Empty", nil, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatrix(tt.genes, tt.cells, tt.values)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.genes), m.NumGenes())
			assert.Equal(t, len(tt.cells), m.NumCells())
		})
	}
}

func TestMatrixAccessors(t *testing.T) {
	m, err := NewMatrix(
		[]string{"A", "B", "C"},
		[]string{"c1", "c2"},
		[]float64{1, 2, 3, 4, 5, 6},
	)
	require.NoError(t, err)

	assert.Equal(t, 3.0, m.At(1, 0))
	assert.Equal(t, []float64{5, 6}, m.RowAt(2))

	row, ok := m.Row("B")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, row)

	_, ok = m.Row("missing")
	assert.False(t, ok)

	i, ok := m.GeneIndex("C")
	require.True(t, ok)
	assert.Equal(t, 2, i)

	j, ok := m.CellIndex("c2")
	require.True(t, ok)
	assert.Equal(t, 1, j)
}

func TestMatrixSubset(t *testing.T) {
	m, err := NewMatrix(
		[]string{"A", "B", "C"},
		[]string{"c1", "c2"},
		[]float64{1, 2, 3, 4, 5, 6},
	)
	require.NoError(t, err)

	t.Run("PreservesOrderAndReportsMissing", func(t *testing.T) {
		sub, missing, err := m.Subset([]string{"C", "X", "A"})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A"}, sub.Genes())
		assert.Equal(t, []string{"X"}, missing)
		assert.Equal(t, []float64{5, 6}, sub.RowAt(0))
		assert.Equal(t, []float64{1, 2}, sub.RowAt(1))
	})

	t.Run("DuplicateRequest", func(t *testing.T) {
		_, _, err := m.Subset([]string{"A", "A"})
		require.Error(t, err)

		var dup *ErrDuplicateID
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "A", dup.ID)
	})

	t.Run("AllMissing", func(t *testing.T) {
		sub, missing, err := m.Subset([]string{"X", "Y"})
		require.NoError(t, err)
		assert.Zero(t, sub.NumGenes())
		assert.Len(t, missing, 2)
	})
}

func TestMatrixDense(t *testing.T) {
	m, err := NewMatrix([]string{"A", "B"}, []string{"c1", "c2"}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	d := m.Dense()
	r, c := d.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 4.0, d.At(1, 1))
}

func TestMatrixRowMeans(t *testing.T) {
	m, err := NewMatrix(
		[]string{"A", "B"},
		[]string{"c1", "c2", "c3", "c4"},
		[]float64{1, 2, 3, 4, 0, 0, 0, 8},
	)
	require.NoError(t, err)

	means := m.RowMeans()
	assert.InDelta(t, 2.5, means[0], 1e-12)
	assert.InDelta(t, 2.0, means[1], 1e-12)
}

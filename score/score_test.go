package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/genemod/expr"
	"github.com/hupe1980/genemod/testutil"
)

func universe(t *testing.T, genes, cells int) *expr.Matrix {
	t.Helper()
	return testutil.SparseMatrix(testutil.NewRNG(1), genes, cells, 0.5)
}

func TestScoreShape(t *testing.T) {
	m := universe(t, 120, 15)
	modules := map[string][]string{
		"module_1": {"gene0000", "gene0001", "gene0002"},
		"module_2": {"gene0010", "gene0011"},
	}

	s, err := Score(m, modules, Options{Bins: 10, ControlsPerGene: 20, Seed: 1, Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"module_1", "module_2"}, s.Labels)
	require.Len(t, s.Values, 2)
	for _, row := range s.Values {
		assert.Len(t, row, 15)
	}
	assert.Len(t, s.Cells, 15)

	row, ok := s.Row("module_2")
	require.True(t, ok)
	assert.Equal(t, s.Values[1], row)

	_, ok = s.Row("module_9")
	assert.False(t, ok)

	assert.Positive(t, s.ControlPoolSize["module_1"])
}

func TestScoreFullUniverseModuleIsNearZero(t *testing.T) {
	m := universe(t, 200, 20)
	modules := map[string][]string{"module_1": m.Genes()}

	s, err := Score(m, modules, Options{Bins: 24, ControlsPerGene: 100, Seed: 7, Workers: 1})
	require.NoError(t, err)

	// Controls fall back to the module's own bins, so the correction
	// approximately cancels the module mean for every cell.
	row := s.Values[0]
	var maxAbs float64
	for _, v := range row {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	// The per-cell module mean of this matrix is O(2.5); anything this
	// small means the correction cancelled it.
	assert.Less(t, maxAbs, 0.35)
}

func TestScoreSeedReproducibility(t *testing.T) {
	m := universe(t, 150, 12)
	modules := map[string][]string{
		"module_1": {"gene0003", "gene0004", "gene0005"},
		"module_2": {"gene0050", "gene0051"},
	}

	a, err := Score(m, modules, Options{Bins: 12, ControlsPerGene: 10, Seed: 5, Workers: 1})
	require.NoError(t, err)

	b, err := Score(m, modules, Options{Bins: 12, ControlsPerGene: 10, Seed: 5, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, a.Values, b.Values)

	c, err := Score(m, modules, Options{Bins: 12, ControlsPerGene: 10, Seed: 6, Workers: 1})
	require.NoError(t, err)
	assert.NotEqual(t, a.Values, c.Values)
}

func TestScoreWorkersDoNotChangeResult(t *testing.T) {
	m := universe(t, 150, 12)
	modules := map[string][]string{
		"module_1": {"gene0003", "gene0004"},
		"module_2": {"gene0050", "gene0051"},
		"module_3": {"gene0090", "gene0091", "gene0092"},
	}

	serial, err := Score(m, modules, Options{Bins: 12, ControlsPerGene: 10, Seed: 5, Workers: 1})
	require.NoError(t, err)

	parallel, err := Score(m, modules, Options{Bins: 12, ControlsPerGene: 10, Seed: 5, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.Values, parallel.Values)
	assert.Equal(t, serial.ControlPoolSize, parallel.ControlPoolSize)
}

func TestScoreDetectsEnrichedModule(t *testing.T) {
	// 60 background genes at a flat level plus 3 genes strongly elevated
	// in the first half of the cells.
	genes := make([]string, 63)
	values := make([]float64, 0, 63*10)
	for i := 0; i < 60; i++ {
		genes[i] = testGeneID(i)
		for j := 0; j < 10; j++ {
			values = append(values, 1.0+0.01*float64(i%7))
		}
	}
	for i := 60; i < 63; i++ {
		genes[i] = testGeneID(i)
		for j := 0; j < 10; j++ {
			if j < 5 {
				values = append(values, 5.0)
			} else {
				values = append(values, 1.0)
			}
		}
	}

	cells := make([]string, 10)
	for j := range cells {
		cells[j] = testCellID(j)
	}
	m, err := expr.NewMatrix(genes, cells, values)
	require.NoError(t, err)

	modules := map[string][]string{"module_1": {genes[60], genes[61], genes[62]}}
	s, err := Score(m, modules, Options{Bins: 4, ControlsPerGene: 30, Seed: 2, Workers: 1})
	require.NoError(t, err)

	row := s.Values[0]
	for j := 0; j < 5; j++ {
		assert.Greater(t, row[j], 1.0, "cell %d should score high", j)
	}
	for j := 5; j < 10; j++ {
		assert.InDelta(t, 0, row[j], 0.5, "cell %d should score near zero", j)
	}
}

func TestScoreValidation(t *testing.T) {
	m := universe(t, 30, 5)

	t.Run("BinsOutOfRange", func(t *testing.T) {
		_, err := Score(m, map[string][]string{"m": {"gene0000"}}, Options{Bins: 0, ControlsPerGene: 5, Seed: 1})
		var inv *ErrInvalidBins
		require.ErrorAs(t, err, &inv)

		_, err = Score(m, map[string][]string{"m": {"gene0000"}}, Options{Bins: 31, ControlsPerGene: 5, Seed: 1})
		require.ErrorAs(t, err, &inv)
	})

	t.Run("NonPositiveControls", func(t *testing.T) {
		_, err := Score(m, map[string][]string{"m": {"gene0000"}}, Options{Bins: 5, ControlsPerGene: 0, Seed: 1})
		var inv *ErrInvalidControls
		require.ErrorAs(t, err, &inv)
	})

	t.Run("UnknownGene", func(t *testing.T) {
		_, err := Score(m, map[string][]string{"m": {"ghost"}}, Options{Bins: 5, ControlsPerGene: 5, Seed: 1})
		var unknown *ErrUnknownModuleGene
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "ghost", unknown.Gene)
	})

	t.Run("EmptyModule", func(t *testing.T) {
		_, err := Score(m, map[string][]string{"m": {}}, Options{Bins: 5, ControlsPerGene: 5, Seed: 1})
		var empty *ErrEmptyModule
		require.ErrorAs(t, err, &empty)
	})
}

func testGeneID(i int) string {
	return "g" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}

func testCellID(j int) string {
	return "c" + string(rune('a'+j))
}

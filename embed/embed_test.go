package embed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n, dim int) ([]string, [][]float64) {
	ids := make([]string, n)
	vectors := make([][]float64, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("g%d", i)
		v := make([]float64, dim)
		for d := range v {
			v[d] = float64(i*dim + d)
		}
		vectors[i] = v
	}
	return ids, vectors
}

func TestTSNEEmbedShape(t *testing.T) {
	ids, vectors := rows(8, 3)

	e := NewTSNE(func(o *Options) { o.MaxIter = 50 })
	points, err := e.Embed(ids, vectors)
	require.NoError(t, err)
	require.Len(t, points, 8)
	for _, pt := range points {
		assert.Len(t, pt, OutDims)
	}
}

func TestTSNESeedReproducibility(t *testing.T) {
	ids, vectors := rows(6, 4)

	a, err := NewTSNE(func(o *Options) { o.Seed = 99; o.MaxIter = 80 }).Embed(ids, vectors)
	require.NoError(t, err)

	b, err := NewTSNE(func(o *Options) { o.Seed = 99; o.MaxIter = 80 }).Embed(ids, vectors)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewTSNE(func(o *Options) { o.Seed = 100; o.MaxIter = 80 }).Embed(ids, vectors)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestTSNERejectsDuplicates(t *testing.T) {
	ids := []string{"a", "b", "c"}
	vectors := [][]float64{{1, 2}, {3, 4}, {1, 2}}

	_, err := NewTSNE().Embed(ids, vectors)
	require.Error(t, err)

	var dup *ErrDuplicateInput
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Other)
	assert.Equal(t, "c", dup.ID)
}

func TestTSNERejectsTooFewRows(t *testing.T) {
	_, err := NewTSNE().Embed([]string{"a"}, [][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrTooFewRows)

	_, err = NewTSNE().Embed(nil, nil)
	assert.ErrorIs(t, err, ErrTooFewRows)
}

func TestCheckDistinct(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		vectors [][]float64
		wantErr error
	}{
		{"Distinct", []string{"a", "b"}, [][]float64{{1}, {2}}, nil},
		{"TooFew", []string{"a"}, [][]float64{{1}}, ErrTooFewRows},
		{
			"Ragged",
			[]string{"a", "b"},
			[][]float64{{1, 2}, {1}},
			&ErrRaggedInput{ID: "b", Want: 2, Got: 1},
		},
		{
			"Duplicate",
			[]string{"a", "b"},
			[][]float64{{1, 2}, {1, 2}},
			&ErrDuplicateInput{ID: "b", Other: "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDistinct(tt.ids, tt.vectors)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr.Error(), err.Error())
		})
	}
}

package embed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/genemod/internal/tsne"
)

// OutDims is the output dimensionality of every Embedder.
const OutDims = 2

// ErrTooFewRows is returned when fewer than two rows are supplied;
// the embedding is undefined for a single point.
var ErrTooFewRows = errors.New("embed: need at least 2 rows")

// ErrDuplicateInput indicates two value-identical input rows. The dedup
// stage guarantees uniqueness, so hitting this means an upstream bug;
// it is checked here regardless because the algorithm silently degrades
// on duplicates.
type ErrDuplicateInput struct {
	ID    string
	Other string
}

func (e *ErrDuplicateInput) Error() string {
	return fmt.Sprintf("embed: duplicate input rows %q and %q", e.Other, e.ID)
}

// ErrRaggedInput indicates input rows of differing lengths.
type ErrRaggedInput struct {
	ID   string
	Want int
	Got  int
}

func (e *ErrRaggedInput) Error() string {
	return fmt.Sprintf("embed: row %q has length %d, want %d", e.ID, e.Got, e.Want)
}

// Embedder lays out identified rows in OutDims dimensions.
type Embedder interface {
	Embed(ids []string, vectors [][]float64) ([][]float64, error)
}

// Options represents the options for configuring the TSNE embedder.
type Options struct {
	// Seed fixes the randomized initialization. Runs with the same seed
	// and input produce identical layouts.
	Seed int64

	// Perplexity, LearningRate and MaxIter tune the underlying gradient
	// descent; zero values fall back to the kernel defaults.
	Perplexity   float64
	LearningRate float64
	MaxIter      int

	// Workers is a parallelism hint. It affects wall-clock time only.
	Workers int
}

var DefaultOptions = Options{
	Seed:    1,
	Workers: 1,
}

// TSNE is the production Embedder.
type TSNE struct {
	opts Options
}

// NewTSNE creates a new TSNE embedder with the given options.
func NewTSNE(optFns ...func(o *Options)) *TSNE {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &TSNE{opts: opts}
}

// Embed returns one 2-D point per input row, aligned with ids.
// It fails with ErrDuplicateInput on value-identical rows and with
// ErrTooFewRows on fewer than two rows.
func (t *TSNE) Embed(ids []string, vectors [][]float64) ([][]float64, error) {
	if err := CheckDistinct(ids, vectors); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(t.opts.Seed))
	return tsne.Embed(vectors, tsne.Options{
		OutDims:      OutDims,
		Perplexity:   t.opts.Perplexity,
		LearningRate: t.opts.LearningRate,
		MaxIter:      t.opts.MaxIter,
		Workers:      t.opts.Workers,
	}, rng)
}

// CheckDistinct validates the embedder input invariant: at least two
// rows, all of equal length, no two rows value-identical. Exposed so the
// pipeline can assert the invariant against fake embedders in tests.
func CheckDistinct(ids []string, vectors [][]float64) error {
	if len(vectors) < 2 {
		return ErrTooFewRows
	}

	dim := len(vectors[0])
	seen := make(map[string]string, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return &ErrRaggedInput{ID: ids[i], Want: dim, Got: len(v)}
		}
		fp := fingerprint(v)
		if other, ok := seen[fp]; ok {
			return &ErrDuplicateInput{ID: ids[i], Other: other}
		}
		seen[fp] = ids[i]
	}
	return nil
}

func fingerprint(v []float64) string {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return string(b)
}

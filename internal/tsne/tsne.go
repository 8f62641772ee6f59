package tsne

import (
	"errors"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Options represents the options for configuring the t-SNE run.
type Options struct {
	// OutDims is the output dimensionality. The pipeline always uses 2.
	OutDims int

	// Perplexity balances local and global structure. It is clamped to
	// (n-1)/3 for small inputs, the largest value for which the entropy
	// search can converge.
	Perplexity float64

	// LearningRate scales the gradient step.
	LearningRate float64

	// MaxIter is the number of gradient descent iterations.
	MaxIter int

	// Workers is a parallelism hint for the gradient computation.
	// Values < 1 mean GOMAXPROCS. Affects wall-clock time only, not the
	// sequence of results for a fixed rand source.
	Workers int
}

var DefaultOptions = Options{
	OutDims:      2,
	Perplexity:   30,
	LearningRate: 200,
	MaxIter:      500,
	Workers:      1,
}

// ErrTooFewRows is returned when fewer than two rows are supplied.
var ErrTooFewRows = errors.New("tsne: need at least 2 rows")

const (
	exaggeration     = 12.0
	exaggerationIter = 100
	momentumInitial  = 0.5
	momentumFinal    = 0.8
	momentumSwitch   = 250
	entropyTol       = 1e-5
	entropySteps     = 50
)

// Embed computes an OutDims-dimensional layout of the given row vectors.
// All rows must have equal length. Duplicate rows are the caller's
// responsibility; the gradient degenerates on them.
func Embed(vectors [][]float64, opts Options, rng *rand.Rand) ([][]float64, error) {
	n := len(vectors)
	if n < 2 {
		return nil, ErrTooFewRows
	}

	if opts.OutDims <= 0 {
		opts.OutDims = DefaultOptions.OutDims
	}
	if opts.Perplexity <= 0 {
		opts.Perplexity = DefaultOptions.Perplexity
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultOptions.LearningRate
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultOptions.MaxIter
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	if maxPerp := float64(n-1) / 3; opts.Perplexity > maxPerp {
		opts.Perplexity = math.Max(1, maxPerp)
	}

	p := jointProbabilities(vectors, opts.Perplexity)

	outDims := opts.OutDims
	y := make([]float64, n*outDims)
	for i := range y {
		y[i] = rng.NormFloat64() * 1e-4
	}

	// Early exaggeration amplifies attractive forces while clusters form.
	for i := range p {
		p[i] *= exaggeration
	}

	grad := make([]float64, n*outDims)
	vel := make([]float64, n*outDims)
	q := make([]float64, n*n)

	for iter := 0; iter < opts.MaxIter; iter++ {
		if iter == exaggerationIter {
			for i := range p {
				p[i] /= exaggeration
			}
		}

		qSum := lowDimAffinities(y, n, outDims, q)
		computeGradient(p, q, qSum, y, n, outDims, grad, workers)

		momentum := momentumInitial
		if iter >= momentumSwitch {
			momentum = momentumFinal
		}
		for i := range y {
			vel[i] = momentum*vel[i] - opts.LearningRate*grad[i]
			y[i] += vel[i]
		}
		centerInPlace(y, n, outDims)
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = append([]float64(nil), y[i*outDims:(i+1)*outDims]...)
	}
	return out, nil
}

// jointProbabilities converts pairwise input distances into symmetric
// joint probabilities, searching a per-row bandwidth that matches the
// requested perplexity.
func jointProbabilities(vectors [][]float64, perplexity float64) []float64 {
	n := len(vectors)
	d2 := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := squaredDistance(vectors[i], vectors[j])
			d2[i*n+j] = d
			d2[j*n+i] = d
		}
	}

	logU := math.Log(perplexity)
	p := make([]float64, n*n)
	row := make([]float64, n)

	for i := 0; i < n; i++ {
		beta := 1.0
		betaMin := math.Inf(-1)
		betaMax := math.Inf(1)

		var sum float64
		for step := 0; step < entropySteps; step++ {
			sum = 0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-d2[i*n+j] * beta)
				sum += row[j]
			}
			if sum == 0 {
				sum = math.SmallestNonzeroFloat64
			}

			// Shannon entropy of the row distribution.
			var h float64
			for j := 0; j < n; j++ {
				if j == i || row[j] == 0 {
					continue
				}
				pj := row[j] / sum
				h -= pj * math.Log(pj)
			}

			diff := h - logU
			if math.Abs(diff) < entropyTol {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}

		for j := 0; j < n; j++ {
			p[i*n+j] = row[j] / sum
		}
	}

	// Symmetrize and normalize, flooring at a small constant to keep the
	// KL gradient defined.
	total := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := p[i*n+j] + p[j*n+i]
			p[i*n+j] = s
			p[j*n+i] = s
			total += 2 * s
		}
	}
	for i := range p {
		p[i] = math.Max(p[i]/total, 1e-12)
	}
	return p
}

// lowDimAffinities fills q with the unnormalized Student-t affinities of
// the current layout and returns their sum.
func lowDimAffinities(y []float64, n, outDims int, q []float64) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		q[i*n+i] = 0
		for j := i + 1; j < n; j++ {
			d := squaredDistance(y[i*outDims:(i+1)*outDims], y[j*outDims:(j+1)*outDims])
			a := 1 / (1 + d)
			q[i*n+j] = a
			q[j*n+i] = a
			sum += 2 * a
		}
	}
	if sum == 0 {
		sum = math.SmallestNonzeroFloat64
	}
	return sum
}

func computeGradient(p, q []float64, qSum float64, y []float64, n, outDims int, grad []float64, workers int) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		gradientRows(p, q, qSum, y, n, outDims, grad, 0, n)
		return
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			gradientRows(p, q, qSum, y, n, outDims, grad, lo, hi)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
}

func gradientRows(p, q []float64, qSum float64, y []float64, n, outDims int, grad []float64, lo, hi int) {
	for i := lo; i < hi; i++ {
		gi := grad[i*outDims : (i+1)*outDims]
		for d := range gi {
			gi[d] = 0
		}
		yi := y[i*outDims : (i+1)*outDims]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			a := q[i*n+j]
			mult := 4 * (p[i*n+j] - a/qSum) * a
			yj := y[j*outDims : (j+1)*outDims]
			for d := 0; d < outDims; d++ {
				gi[d] += mult * (yi[d] - yj[d])
			}
		}
	}
}

func centerInPlace(y []float64, n, outDims int) {
	for d := 0; d < outDims; d++ {
		var mean float64
		for i := 0; i < n; i++ {
			mean += y[i*outDims+d]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			y[i*outDims+d] -= mean
		}
	}
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

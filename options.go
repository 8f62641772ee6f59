package genemod

import (
	"github.com/hupe1980/genemod/detect"
	"github.com/hupe1980/genemod/embed"
	"github.com/hupe1980/genemod/partition"
	"github.com/hupe1980/genemod/reduce"
	"github.com/hupe1980/genemod/resource"
	"github.com/hupe1980/genemod/score"
)

// Options represents the options for configuring a Pipeline.
type Options struct {
	// MinCells retains a candidate gene detected in at least this many
	// cells overall. Default 500.
	MinCells int

	// MinFraction retains a candidate gene detected in at least this
	// fraction of some cluster's cells. Must be in [0, 1]. Default 0.2.
	MinFraction float64

	// Components is the number of principal components. Zero means
	// automatic: DefaultComponents capped at min(genes, cells)-1. An
	// explicit value outside [1, min(genes, cells)-1] is a
	// ConfigurationError.
	Components int

	// ModuleCount is the number of modules the dendrogram is cut into.
	// Default 5.
	ModuleCount int

	// Bins is the number of average-expression bins for background
	// matching. Default 24.
	Bins int

	// ControlsPerGene is the control-set size sampled per module gene.
	// Default 100.
	ControlsPerGene int

	// Seed fixes every randomized step (embedding initialization and
	// control sampling). Runs with identical input and seed produce
	// identical results.
	Seed int64

	// Workers bounds internal parallelism. It is a wall-clock knob only;
	// results do not depend on it. Values < 1 mean sequential.
	Workers int

	// Controller, when set, overrides Workers with its worker bound so a
	// pipeline shares one resource budget with exporters and other runs.
	Controller *resource.Controller

	// Logger receives structured progress and warning logs.
	// Defaults to a noop logger.
	Logger *Logger

	// Reducer, Embedder and Partitioner replace the numerical backends.
	// Nil selects the production implementations (PCA, t-SNE,
	// average-linkage hierarchical clustering). Intended for alternate
	// backends and for fakes in tests.
	Reducer     reduce.Reducer
	Embedder    embed.Embedder
	Partitioner partition.Partitioner
}

var DefaultOptions = Options{
	MinCells:        detect.DefaultMinCells,
	MinFraction:     detect.DefaultMinFraction,
	ModuleCount:     partition.DefaultModuleCount,
	Bins:            score.DefaultBins,
	ControlsPerGene: score.DefaultControlsPerGene,
	Seed:            1,
	Workers:         1,
}

// WithMinCells sets the absolute detection threshold.
func WithMinCells(n int) func(o *Options) {
	return func(o *Options) { o.MinCells = n }
}

// WithMinFraction sets the per-cluster detection rate threshold.
func WithMinFraction(f float64) func(o *Options) {
	return func(o *Options) { o.MinFraction = f }
}

// WithComponents sets the principal-component count.
func WithComponents(n int) func(o *Options) {
	return func(o *Options) { o.Components = n }
}

// WithModuleCount sets the number of modules to cut.
func WithModuleCount(k int) func(o *Options) {
	return func(o *Options) { o.ModuleCount = k }
}

// WithBins sets the number of background expression bins.
func WithBins(n int) func(o *Options) {
	return func(o *Options) { o.Bins = n }
}

// WithControlsPerGene sets the per-gene control-set size.
func WithControlsPerGene(n int) func(o *Options) {
	return func(o *Options) { o.ControlsPerGene = n }
}

// WithRandomSeed fixes the seed of every randomized step.
func WithRandomSeed(seed int64) func(o *Options) {
	return func(o *Options) { o.Seed = seed }
}

// WithWorkers bounds internal parallelism.
func WithWorkers(n int) func(o *Options) {
	return func(o *Options) { o.Workers = n }
}

// WithResourceController shares a resource controller's worker bound
// with the pipeline.
func WithResourceController(c *resource.Controller) func(o *Options) {
	return func(o *Options) { o.Controller = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithReducer replaces the dimensionality-reduction backend.
func WithReducer(r reduce.Reducer) func(o *Options) {
	return func(o *Options) { o.Reducer = r }
}

// WithEmbedder replaces the embedding backend.
func WithEmbedder(e embed.Embedder) func(o *Options) {
	return func(o *Options) { o.Embedder = e }
}

// WithPartitioner replaces the module-partitioning backend.
func WithPartitioner(p partition.Partitioner) func(o *Options) {
	return func(o *Options) { o.Partitioner = p }
}

package genemod

import (
	"strings"

	"github.com/hupe1980/genemod/dedup"
	"github.com/hupe1980/genemod/detect"
	"github.com/hupe1980/genemod/embed"
	"github.com/hupe1980/genemod/expr"
	"github.com/hupe1980/genemod/partition"
	"github.com/hupe1980/genemod/reduce"
	"github.com/hupe1980/genemod/score"
)

// Diagnostics carries per-run metadata for reporting. Nothing in the
// pipeline consumes it.
type Diagnostics struct {
	// CandidateCount is the number of requested candidate genes.
	CandidateCount int
	// MissingCandidates lists requested genes absent from the matrix.
	// They are skipped with a warning; the run proceeds on the rest.
	MissingCandidates []string
	// FilterDropped and FilterDiscardPercent report the detection filter.
	FilterDropped        int
	FilterDiscardPercent float64
	// VarianceExplained is the per-component variance fraction from the
	// reduction stage.
	VarianceExplained []float64
	// DistinctVectors is the row count handed to the embedder after
	// deduplication.
	DistinctVectors int
	// ModuleGeneCounts is the gene count per module label.
	ModuleGeneCounts map[string]int
	// ControlPoolSize is the distinct control-gene count per module.
	ControlPoolSize map[string]int
}

// Result is the output of one pipeline run.
type Result struct {
	// KeptGenes are the detection-filter survivors, in candidate order.
	KeptGenes []string
	// GeneModules maps every embedded gene to its module label.
	GeneModules map[string]string
	// Modules maps each module label to its genes.
	Modules map[string][]string
	// ModuleLabels holds the labels in numbering order.
	ModuleLabels []string
	// Scores is the modules × cells score matrix.
	Scores *score.Scores
	// Diagnostics carries reporting metadata.
	Diagnostics Diagnostics
}

// Pipeline discovers co-expressed gene modules and scores cells for
// membership. A Pipeline is stateless across runs; the same instance may
// be reused.
type Pipeline struct {
	opts        Options
	logger      *Logger
	reducer     reduce.Reducer
	embedder    embed.Embedder
	partitioner partition.Partitioner
}

// New creates a new Pipeline with the given options.
func New(optFns ...func(o *Options)) *Pipeline {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Controller != nil {
		opts.Workers = opts.Controller.MaxWorkers()
	}

	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger()
	}

	reducer := opts.Reducer
	if reducer == nil {
		reducer = reduce.PCA{}
	}

	embedder := opts.Embedder
	if embedder == nil {
		embedder = embed.NewTSNE(func(o *embed.Options) {
			o.Seed = opts.Seed
			o.Workers = opts.Workers
		})
	}

	partitioner := opts.Partitioner
	if partitioner == nil {
		partitioner = partition.Hierarchical{}
	}

	return &Pipeline{
		opts:        opts,
		logger:      logger,
		reducer:     reducer,
		embedder:    embedder,
		partitioner: partitioner,
	}
}

// Run executes the full pipeline: detection filtering, reduction,
// deduplication, embedding, module partitioning and scoring.
//
// m must span the full measured transcriptome; candidates is the gene
// list under analysis and md annotates every matrix cell. Candidates
// absent from the matrix are reported in the diagnostics and skipped.
// All other failures abort the run with an error from the pipeline
// taxonomy (EmptyInputError, InsufficientDiversityError,
// DuplicateInputError, ConfigurationError).
func (p *Pipeline) Run(m *expr.Matrix, candidates []string, md *expr.Metadata) (*Result, error) {
	if m.NumGenes() == 0 || m.NumCells() == 0 {
		return nil, &EmptyInputError{Stage: "input", Genes: m.NumGenes(), Cells: m.NumCells()}
	}
	if len(candidates) == 0 {
		return nil, &EmptyInputError{Stage: "input", Cells: m.NumCells()}
	}
	for _, g := range candidates {
		if strings.Contains(g, dedup.Separator) {
			return nil, &ConfigurationError{
				Param:  "candidate_genes",
				Detail: "gene identifier " + g + " contains the reserved separator " + dedup.Separator,
			}
		}
	}

	res := &Result{}
	res.Diagnostics.CandidateCount = len(candidates)

	// Restrict to candidates; absent genes are a warning, not an error.
	sub, missing, err := m.Subset(candidates)
	if err != nil {
		return nil, translateError("input", err)
	}
	if len(missing) > 0 {
		res.Diagnostics.MissingCandidates = missing
		p.logger.Warn("candidate genes absent from matrix",
			"missing", len(missing),
			"requested", len(candidates),
			"missing_pct", 100*float64(len(missing))/float64(len(candidates)),
		)
	}
	if sub.NumGenes() == 0 {
		return nil, &EmptyInputError{Stage: "input", Genes: 0, Cells: m.NumCells()}
	}

	// Detection filter.
	filtered, err := detect.Filter(sub, md, detect.Options{
		MinCells:    p.opts.MinCells,
		MinFraction: p.opts.MinFraction,
	})
	if err != nil {
		return nil, translateError("detect", err)
	}
	res.KeptGenes = filtered.Kept
	res.Diagnostics.FilterDropped = filtered.Dropped
	res.Diagnostics.FilterDiscardPercent = filtered.DiscardPercent
	p.logger.Info("detection filter",
		"kept", len(filtered.Kept),
		"dropped", filtered.Dropped,
		"discard_pct", filtered.DiscardPercent,
	)
	if len(filtered.Kept) == 0 {
		return nil, &EmptyInputError{Stage: "detect", Genes: 0, Cells: sub.NumCells()}
	}

	kept, _, err := sub.Subset(filtered.Kept)
	if err != nil {
		return nil, translateError("detect", err)
	}

	// Reduction.
	components := p.opts.Components
	if components == 0 {
		components = min(reduce.DefaultComponents, min(kept.NumGenes(), kept.NumCells())-1)
	}
	reduced, err := p.reducer.Reduce(kept, components)
	if err != nil {
		return nil, translateError("reduce", err)
	}
	res.Diagnostics.VarianceExplained = reduced.VarianceExplained
	p.logger.Info("reduction", "components", components, "genes", len(reduced.Genes))

	// Deduplication forward pass.
	fwd, err := dedup.Forward(reduced.Genes, reduced.Vectors)
	if err != nil {
		return nil, translateError("dedup", err)
	}
	res.Diagnostics.DistinctVectors = fwd.Distinct()
	if collapsed := len(reduced.Genes) - fwd.Distinct(); collapsed > 0 {
		p.logger.Info("deduplication", "collapsed", collapsed, "distinct", fwd.Distinct())
	}

	// The embedder re-checks this, but injected backends may not.
	if err := embed.CheckDistinct(fwd.IDs, fwd.Vectors); err != nil {
		return nil, translateError("embed", err)
	}

	points, err := p.embedder.Embed(fwd.IDs, fwd.Vectors)
	if err != nil {
		return nil, translateError("embed", err)
	}

	// Deduplication reverse pass.
	genes, expanded, err := dedup.Reverse(fwd, fwd.IDs, points)
	if err != nil {
		return nil, translateError("dedup", err)
	}

	// Module partitioning.
	parts, err := p.partitioner.Partition(genes, expanded, p.opts.ModuleCount)
	if err != nil {
		return nil, translateError("partition", err)
	}
	res.GeneModules = parts.LabelOf
	res.Modules = parts.Modules
	res.ModuleLabels = parts.Labels

	res.Diagnostics.ModuleGeneCounts = make(map[string]int, len(parts.Labels))
	for label, members := range parts.Modules {
		res.Diagnostics.ModuleGeneCounts[label] = len(members)
	}
	p.logger.Info("partitioning", "modules", len(parts.Labels))

	// Scoring runs against the full matrix: controls come from the whole
	// measured transcriptome.
	scores, err := score.Score(m, parts.Modules, score.Options{
		Bins:            p.opts.Bins,
		ControlsPerGene: p.opts.ControlsPerGene,
		Seed:            p.opts.Seed,
		Workers:         p.opts.Workers,
	})
	if err != nil {
		return nil, translateError("score", err)
	}
	res.Scores = scores
	res.Diagnostics.ControlPoolSize = scores.ControlPoolSize
	p.logger.Info("scoring", "modules", len(scores.Labels), "cells", len(scores.Cells))

	return res, nil
}

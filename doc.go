// Package genemod discovers co-expressed gene modules in single-cell
// expression data and scores every cell for module membership.
//
// The pipeline runs six strictly sequential stages over an in-memory
// genes × cells matrix: detection filtering, PCA reduction, exact-value
// deduplication, 2-D t-SNE embedding, hierarchical module partitioning
// and background-corrected per-cell scoring.
//
// # Quick Start
//
//	p := genemod.New(
//	    genemod.WithModuleCount(5),
//	    genemod.WithRandomSeed(42),
//	)
//	res, err := p.Run(matrix, candidates, metadata)
//	if err != nil {
//	    // EmptyInputError, InsufficientDiversityError,
//	    // DuplicateInputError or ConfigurationError
//	}
//	fmt.Println(res.GeneModules, res.Scores.Values)
//
// # Reproducibility
//
// Embedding initialization and control-gene sampling are the only
// randomized steps. Both derive from the configured seed, so a run is a
// pure function of its inputs and options.
//
// # Key Features
//
//   - Detection filtering with per-cluster rate criteria (Roaring bitmaps)
//   - Duplicate-safe embedding (exact fingerprint dedup + boundary check)
//   - Expression-matched background correction for module scores
//   - Pluggable Reducer/Embedder/Partitioner backends
//   - Artifact export (gzip TSV, lz4 snapshots) to local or object storage
package genemod

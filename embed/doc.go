// Package embed computes the 2-D nonlinear layout of deduplicated
// reduced vectors.
//
// Embedder is the stage interface; TSNE is the production implementation.
// The boundary asserts its own input invariant: duplicate rows are
// rejected with ErrDuplicateInput even though the dedup stage should have
// removed them already. Results are randomized unless the seed is fixed.
package embed

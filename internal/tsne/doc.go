// Package tsne implements exact t-SNE for small gene sets.
//
// Used internally by the embed stage to lay out deduplicated
// principal-component vectors in two dimensions. Randomized
// initialization comes from an injected rand source so callers control
// reproducibility.
package tsne

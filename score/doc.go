// Package score computes background-corrected per-cell module scores.
//
// A raw module mean would mostly reflect global expression level. The
// scorer therefore subtracts the mean of a control pool sampled from
// expression-matched background genes: all genes are binned by average
// expression, and each module gene draws its controls from its own bin.
// Sampling is seeded, so scores are reproducible for a fixed seed.
package score

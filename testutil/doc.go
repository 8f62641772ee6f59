// Package testutil provides testing utilities for genemod.
//
// This package is intended for use in tests only. It provides a
// thread-safe seeded random source and generators for synthetic
// expression matrices and cell metadata.
//
// # Synthetic Data
//
//	rng := testutil.NewRNG(seed)
//	m := testutil.SparseMatrix(rng, 200, 50, 0.7)
//	md := testutil.ClusteredMetadata(m.Cells(), "T", "B")
package testutil

// Package partition cuts a hierarchical clustering of embedded genes into
// a fixed number of modules.
//
// The dendrogram is built over the 2-D embedded coordinates, not the
// higher-dimensional reduced space. That choice keeps module boundaries
// consistent with how the embedding is inspected and validated, at the
// cost of the dimensions the layout discards.
package partition

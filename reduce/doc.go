// Package reduce projects the expression matrix into a low-dimensional
// principal-component space.
//
// Reducer is the stage interface; PCA is the production implementation
// built on gonum's stat.PC. The projection is deterministic for a given
// input ordering. Constant (zero-variance) genes should be removed
// upstream; they contribute degenerate directions to the decomposition.
package reduce

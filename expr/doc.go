// Package expr provides the in-memory data model for gene expression data.
//
// Matrix is a dense genes × cells expression matrix with stable row and
// column identifiers. Metadata carries per-cell cluster and sample labels.
// Both are immutable after construction and shared read-only across
// pipeline stages.
//
// # Usage
//
//	m, _ := expr.NewMatrix(genes, cells, values)
//	row, _ := m.Row("GeneA")
//	sub, missing, _ := m.Subset([]string{"GeneA", "GeneB"})
package expr

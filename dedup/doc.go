// Package dedup collapses genes whose reduced vectors are value-identical
// and re-expands them after embedding.
//
// The embedding stage is undefined on duplicate inputs, yet duplicates are
// common in sparse expression data. Forward groups genes by an exact
// fingerprint of their vector bytes and emits one representative per
// group; Reverse assigns every member of a group the representative's
// embedded point. The round trip is lossless: Reverse returns exactly the
// gene set Forward consumed.
package dedup

// Package matio loads expression matrices and cell metadata from
// delimited text files.
//
// The matrix layout follows the common genes-by-cells convention: a
// header row of cell identifiers, then one row per gene with the gene
// identifier in the first column. Metadata tables carry one row per
// cell with its cluster and sample assignment. Both readers accept
// plain or gzip-compressed input; the Open helpers pick the delimiter
// and compression from the file name.
package matio

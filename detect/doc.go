// Package detect implements the minimum-detection filter for candidate genes.
//
// A gene passes when it is detected (expression > 0) in enough cells
// overall, or in a large enough fraction of at least one cluster. Detected
// cell sets are held as Roaring bitmaps so the per-cluster counts are
// cheap set intersections.
package detect

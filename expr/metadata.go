package expr

import (
	"fmt"
	"sort"
)

// CellInfo carries the per-cell annotation labels.
type CellInfo struct {
	Cluster string
	Sample  string
}

// ErrUnknownCell indicates a cell present in the matrix but absent from
// the metadata.
type ErrUnknownCell struct {
	Cell string
}

func (e *ErrUnknownCell) Error() string {
	return fmt.Sprintf("cell %q has no metadata entry", e.Cell)
}

// Metadata is an immutable mapping from cell identifier to cluster and
// sample labels.
type Metadata struct {
	info map[string]CellInfo
}

// NewMetadata creates Metadata from a cell → CellInfo mapping.
// The map is retained; callers must not mutate it afterwards.
func NewMetadata(info map[string]CellInfo) *Metadata {
	return &Metadata{info: info}
}

// Lookup returns the annotation for a cell.
func (md *Metadata) Lookup(cell string) (CellInfo, bool) {
	ci, ok := md.info[cell]
	return ci, ok
}

// Len returns the number of annotated cells.
func (md *Metadata) Len() int { return len(md.info) }

// ClusterSizes returns the number of cells per cluster label, restricted
// to the given cell set. Every cell must have a metadata entry.
func (md *Metadata) ClusterSizes(cells []string) (map[string]int, error) {
	sizes := make(map[string]int)
	for _, c := range cells {
		ci, ok := md.info[c]
		if !ok {
			return nil, &ErrUnknownCell{Cell: c}
		}
		sizes[ci.Cluster]++
	}
	return sizes, nil
}

// ClustersBySize returns the distinct cluster labels over the given cell
// set, ordered by descending cell count with label lexicographic order as
// the tie-break. The ordering is presentational only; no stage attaches
// semantics to it.
func (md *Metadata) ClustersBySize(cells []string) ([]string, error) {
	sizes, err := md.ClusterSizes(cells)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(sizes))
	for l := range sizes {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if sizes[labels[i]] != sizes[labels[j]] {
			return sizes[labels[i]] > sizes[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels, nil
}

// ClusterOf returns, for each cell in order, the index of its cluster in
// the labels slice. A convenience for stages that iterate cells by
// cluster without repeated map lookups.
func (md *Metadata) ClusterOf(cells, labels []string) ([]int, error) {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}

	out := make([]int, len(cells))
	for i, c := range cells {
		ci, ok := md.info[c]
		if !ok {
			return nil, &ErrUnknownCell{Cell: c}
		}
		out[i] = idx[ci.Cluster]
	}
	return out, nil
}

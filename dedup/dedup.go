package dedup

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Separator joins member gene identifiers into a synthetic representative
// identifier. Pipeline input validation rejects gene identifiers that
// contain it, so synthetic identifiers cannot collide with real ones.
const Separator = "|"

// ErrLengthMismatch indicates misaligned gene and vector slices.
type ErrLengthMismatch struct {
	Genes, Vectors int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("dedup: %d genes but %d vectors", e.Genes, e.Vectors)
}

// ErrRaggedVectors indicates input vectors of differing lengths.
type ErrRaggedVectors struct {
	Gene      string
	Want, Got int
}

func (e *ErrRaggedVectors) Error() string {
	return fmt.Sprintf("dedup: vector of gene %q has length %d, want %d", e.Gene, e.Got, e.Want)
}

// ErrInsufficientDiversity indicates that fewer than two distinct vectors
// remain after collapsing; the embedding stage is undefined on such input.
type ErrInsufficientDiversity struct {
	Genes    int
	Distinct int
}

func (e *ErrInsufficientDiversity) Error() string {
	return fmt.Sprintf("dedup: %d genes collapse to %d distinct vector(s); need at least 2", e.Genes, e.Distinct)
}

// ErrUnknownID indicates an identifier handed to Reverse that Forward
// never emitted.
type ErrUnknownID struct {
	ID string
}

func (e *ErrUnknownID) Error() string {
	return fmt.Sprintf("dedup: unknown representative id %q", e.ID)
}

// ErrIncompleteReverse indicates that Reverse did not receive a point for
// every representative Forward emitted.
type ErrIncompleteReverse struct {
	Missing string
}

func (e *ErrIncompleteReverse) Error() string {
	return fmt.Sprintf("dedup: no embedded point for representative %q", e.Missing)
}

// Result is the output of Forward: one representative per distinct vector
// plus the member lookup needed by Reverse.
type Result struct {
	// IDs are the representative identifiers in first-seen input order.
	// Singleton groups keep their gene identifier; larger groups get a
	// synthetic identifier joining all members with Separator.
	IDs []string
	// Vectors[i] is the (shared) vector of IDs[i].
	Vectors [][]float64

	members map[string][]string
}

// Distinct returns the number of distinct vectors.
func (r *Result) Distinct() int { return len(r.IDs) }

// Members returns the gene identifiers collapsed into the given
// representative. Singleton groups return a one-element slice.
func (r *Result) Members(id string) ([]string, bool) {
	m, ok := r.members[id]
	return m, ok
}

// fingerprint returns the exact value fingerprint of v: the little-endian
// IEEE-754 bytes of every element. Equal fingerprints imply bit-identical
// vectors; no tolerance is applied.
func fingerprint(v []float64) string {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return string(b)
}

// Forward groups genes by the exact fingerprint of their vectors and
// returns one representative row per group. Input order determines both
// group order and member order within a group, so Forward is
// deterministic. It fails with ErrInsufficientDiversity when fewer than
// two distinct vectors remain.
//
// Forward is idempotent: applied to its own output it collapses nothing.
func Forward(genes []string, vectors [][]float64) (*Result, error) {
	if len(genes) != len(vectors) {
		return nil, &ErrLengthMismatch{Genes: len(genes), Vectors: len(vectors)}
	}

	var dim int
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	groupOf := make(map[string]int, len(genes))
	type group struct {
		members []string
		vector  []float64
	}
	var groups []group

	for i, g := range genes {
		v := vectors[i]
		if len(v) != dim {
			return nil, &ErrRaggedVectors{Gene: g, Want: dim, Got: len(v)}
		}

		fp := fingerprint(v)
		if gi, ok := groupOf[fp]; ok {
			groups[gi].members = append(groups[gi].members, g)
			continue
		}
		groupOf[fp] = len(groups)
		groups = append(groups, group{members: []string{g}, vector: v})
	}

	if len(groups) < 2 {
		return nil, &ErrInsufficientDiversity{Genes: len(genes), Distinct: len(groups)}
	}

	res := &Result{
		IDs:     make([]string, len(groups)),
		Vectors: make([][]float64, len(groups)),
		members: make(map[string][]string, len(groups)),
	}
	for i, grp := range groups {
		id := grp.members[0]
		if len(grp.members) > 1 {
			id = strings.Join(grp.members, Separator)
		}
		res.IDs[i] = id
		res.Vectors[i] = grp.vector
		res.members[id] = grp.members
	}
	return res, nil
}

// Reverse expands embedded points from representatives back to genes:
// every member of a group receives its representative's point. ids and
// points come from the embedding stage and must cover exactly the
// representatives Forward emitted. The returned gene set equals Forward's
// input gene set; no gene is lost or duplicated.
func Reverse(fwd *Result, ids []string, points [][]float64) ([]string, [][]float64, error) {
	if len(ids) != len(points) {
		return nil, nil, &ErrLengthMismatch{Genes: len(ids), Vectors: len(points)}
	}

	pointOf := make(map[string][]float64, len(ids))
	for i, id := range ids {
		if _, ok := fwd.members[id]; !ok {
			return nil, nil, &ErrUnknownID{ID: id}
		}
		pointOf[id] = points[i]
	}

	var genes []string
	var expanded [][]float64
	for _, id := range fwd.IDs {
		pt, ok := pointOf[id]
		if !ok {
			return nil, nil, &ErrIncompleteReverse{Missing: id}
		}
		for _, g := range fwd.members[id] {
			genes = append(genes, g)
			expanded = append(expanded, pt)
		}
	}
	return genes, expanded, nil
}

package merkle

import (
	"fmt"

	"github.com/austinabell/stwo/pkg/hasher"
)

// Proof is an inclusion path for one leaf. Path holds the sibling digest at
// every level, ordered from the leaves up; duplicated nodes on odd levels
// appear as their own siblings.
type Proof struct {
	Algorithm string          `json:"algorithm"`
	Index     int             `json:"index"`
	Path      []hasher.Digest `json:"path"`
}

// Proof returns the inclusion path for leaf i.
func (t *Tree) Proof(i int) (Proof, error) {
	if i < 0 || i >= t.numLeaves {
		return Proof{}, fmt.Errorf("merkle: leaf %d out of range, tree has %d leaves", i, t.numLeaves)
	}
	path := make([]hasher.Digest, 0, len(t.levels)-1)
	idx := i
	for _, level := range t.levels[:len(t.levels)-1] {
		sib := idx ^ 1
		if sib >= len(level) {
			sib = len(level) - 1
		}
		path = append(path, level[sib])
		idx /= 2
	}
	return Proof{Algorithm: t.algorithm, Index: i, Path: path}, nil
}

// Verify recomputes the root from leaf and p and compares it against root.
// The factory must construct the same algorithm the tree was built with. An
// index too large for the path's depth never verifies.
func Verify(newHasher hasher.Factory, root hasher.Digest, leaf []byte, p Proof) bool {
	if p.Index < 0 {
		return false
	}
	h := newHasher()
	cur := HashLeaf(h, leaf)
	idx := p.Index
	for _, sib := range p.Path {
		if idx%2 == 1 {
			cur = hashNode(h, sib, cur)
		} else {
			cur = hashNode(h, cur, sib)
		}
		idx /= 2
	}
	// A leaf index consistent with the path length reduces to the root's
	// position; anything left over claims a slot outside the tree.
	return idx == 0 && cur == root
}

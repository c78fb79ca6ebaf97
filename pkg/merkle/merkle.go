// Package merkle builds binary Merkle trees over the hashing layer and
// produces inclusion proofs for their leaves.
package merkle

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/austinabell/stwo/pkg/hasher"
)

// Leaf and interior rows are hashed under distinct prefixes so a node can
// never be replayed as a leaf.
const (
	LeafPrefix byte = 0x00
	NodePrefix byte = 0x01
)

const nodeRowSize = 1 + 2*hasher.DigestSize

// Config controls tree construction.
type Config struct {
	// Workers caps the goroutines hashing each level. 0 picks the CPU count.
	Workers int
	// Logger receives per-level progress at debug level. nil disables it.
	Logger *zap.Logger
}

// Tree is a binary Merkle tree committing to equal-length leaves. Levels are
// stored bottom up: level 0 holds the leaf digests, the top level the root.
// A level with an odd node count is closed by duplicating its last node.
type Tree struct {
	algorithm string
	newHasher hasher.Factory
	numLeaves int
	levels    [][]hasher.Digest
}

// HashLeaf computes the digest a leaf gets in the tree.
func HashLeaf(h hasher.Hasher, leaf []byte) hasher.Digest {
	h.Reset()
	h.Update([]byte{LeafPrefix})
	h.Update(leaf)
	return h.FinalizeReset()
}

func hashNode(h hasher.Hasher, left, right hasher.Digest) hasher.Digest {
	h.Reset()
	h.Update([]byte{NodePrefix})
	h.Update(left[:])
	h.Update(right[:])
	return h.FinalizeReset()
}

// Build hashes leaves into a tree. All leaves must share one length.
func Build(newHasher hasher.Factory, leaves [][]byte, cfg Config) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, errors.New("merkle: no leaves")
	}
	leafLen := len(leaves[0])
	for i, leaf := range leaves {
		if len(leaf) != leafLen {
			return nil, fmt.Errorf("merkle: leaf %d is %d bytes, want %d", i, len(leaf), leafLen)
		}
	}

	rowSize := 1 + leafLen
	rows := make([]byte, len(leaves)*rowSize)
	ins := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		row := rows[i*rowSize : (i+1)*rowSize]
		row[0] = LeafPrefix
		copy(row[1:], leaf)
		ins[i] = row
	}

	digests := make([]hasher.Digest, len(leaves))
	outs := make([][]byte, len(leaves))
	for i := range digests {
		outs[i] = digests[i][:]
	}
	hasher.SumManyParallel(newHasher, outs, ins, cfg.Workers)

	return BuildFromLeafDigests(newHasher, digests, cfg)
}

// BuildFromLeafDigests assembles a tree over already-hashed leaves, for
// callers that compute leaf digests elsewhere. The digests must come from
// HashLeaf under the same algorithm or proofs will not verify.
func BuildFromLeafDigests(newHasher hasher.Factory, leafDigests []hasher.Digest, cfg Config) (*Tree, error) {
	if len(leafDigests) == 0 {
		return nil, errors.New("merkle: no leaves")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	level := append([]hasher.Digest(nil), leafDigests...)
	levels := [][]hasher.Digest{level}
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		pairs := len(level) / 2

		rows := make([]byte, pairs*nodeRowSize)
		ins := make([][]byte, pairs)
		for i := 0; i < pairs; i++ {
			row := rows[i*nodeRowSize : (i+1)*nodeRowSize]
			row[0] = NodePrefix
			copy(row[1:], level[2*i][:])
			copy(row[1+hasher.DigestSize:], level[2*i+1][:])
			ins[i] = row
		}

		next := make([]hasher.Digest, pairs)
		outs := make([][]byte, pairs)
		for i := range next {
			outs[i] = next[i][:]
		}
		hasher.SumManyParallel(newHasher, outs, ins, cfg.Workers)

		logger.Debug("hashed tree level",
			zap.Int("level", len(levels)),
			zap.Int("nodes", pairs))
		levels = append(levels, next)
		level = next
	}

	return &Tree{
		algorithm: newHasher().Name(),
		newHasher: newHasher,
		numLeaves: len(leafDigests),
		levels:    levels,
	}, nil
}

// Root returns the tree's commitment value.
func (t *Tree) Root() hasher.Digest {
	return t.levels[len(t.levels)-1][0]
}

// NumLeaves returns the number of leaves the tree was built over, before any
// odd-level duplication.
func (t *Tree) NumLeaves() int { return t.numLeaves }

// Depth returns the number of levels including leaves and root.
func (t *Tree) Depth() int { return len(t.levels) }

// Algorithm returns the registry name of the hash the tree was built with.
func (t *Tree) Algorithm() string { return t.algorithm }

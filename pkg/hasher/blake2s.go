package hasher

import (
	"hash"

	"golang.org/x/crypto/blake2s"
)

// Blake2sName is the registry label of the BLAKE2s-256 algorithm, the
// default hash of the commitment layer.
const Blake2sName = "BLAKE2"

// Blake2s is an incremental BLAKE2s-256 state with 32-byte digests and a
// 64-byte internal block.
type Blake2s struct {
	state hash.Hash
}

var (
	_ Hasher      = (*Blake2s)(nil)
	_ BatchHasher = (*Blake2s)(nil)
)

func init() {
	Register(Blake2sName, func() Hasher { return NewBlake2s() })
}

// NewBlake2s returns a fresh, empty BLAKE2s-256 state.
func NewBlake2s() *Blake2s {
	return &Blake2s{state: newBlake2sState()}
}

func newBlake2sState() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		// New256 only fails on oversized keys; ours is nil.
		panic(err)
	}
	return h
}

func (b *Blake2s) Name() string { return Blake2sName }

func (b *Blake2s) Size() int { return blake2s.Size }

func (b *Blake2s) BlockSize() int { return blake2s.BlockSize }

func (b *Blake2s) Reset() { b.state.Reset() }

func (b *Blake2s) Update(data []byte) {
	b.state.Write(data)
}

func (b *Blake2s) Finalize() Digest {
	var d Digest
	b.state.Sum(d[:0])
	return d
}

func (b *Blake2s) FinalizeReset() Digest {
	d := b.Finalize()
	b.state.Reset()
	return d
}

// SumMany hashes each of the fixed-length inputs through one scratch state,
// finalizing straight into the caller's output bytes.
func (b *Blake2s) SumMany(outs, inputs [][]byte) {
	checkBatch(outs, inputs, blake2s.Size)
	scratch := newBlake2sState()
	for i, in := range inputs {
		scratch.Reset()
		scratch.Write(in)
		scratch.Sum(outs[i][:0])
	}
}

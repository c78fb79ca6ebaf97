package hasher

import (
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Blake2bName is the registry label of the BLAKE2b-256 algorithm. Output is
// truncated at construction to DigestSize, per the BLAKE2b parameter block.
const Blake2bName = "BLAKE2B"

// Blake2b is an incremental BLAKE2b-256 state. Same 32-byte digest as
// Blake2s, wider 128-byte internal block.
type Blake2b struct {
	state hash.Hash
}

var (
	_ Hasher      = (*Blake2b)(nil)
	_ BatchHasher = (*Blake2b)(nil)
)

func init() {
	Register(Blake2bName, func() Hasher { return NewBlake2b() })
}

// NewBlake2b returns a fresh, empty BLAKE2b-256 state.
func NewBlake2b() *Blake2b {
	return &Blake2b{state: newBlake2bState()}
}

func newBlake2bState() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func (b *Blake2b) Name() string { return Blake2bName }

func (b *Blake2b) Size() int { return blake2b.Size256 }

func (b *Blake2b) BlockSize() int { return blake2b.BlockSize }

func (b *Blake2b) Reset() { b.state.Reset() }

func (b *Blake2b) Update(data []byte) {
	b.state.Write(data)
}

func (b *Blake2b) Finalize() Digest {
	var d Digest
	b.state.Sum(d[:0])
	return d
}

func (b *Blake2b) FinalizeReset() Digest {
	d := b.Finalize()
	b.state.Reset()
	return d
}

// SumMany hashes each of the fixed-length inputs through one scratch state,
// finalizing straight into the caller's output bytes.
func (b *Blake2b) SumMany(outs, inputs [][]byte) {
	checkBatch(outs, inputs, blake2b.Size256)
	scratch := newBlake2bState()
	for i, in := range inputs {
		scratch.Reset()
		scratch.Write(in)
		scratch.Sum(outs[i][:0])
	}
}

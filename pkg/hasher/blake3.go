package hasher

import (
	"github.com/zeebo/blake3"
)

// Blake3Name is the registry label of the BLAKE3 algorithm.
const Blake3Name = "BLAKE3"

// Blake3 is an incremental BLAKE3 state. BLAKE3 is an extendable-output
// function; this wrapper reads the stream at DigestSize, which coincides
// with its default 256-bit digest.
type Blake3 struct {
	state *blake3.Hasher
}

var (
	_ Hasher      = (*Blake3)(nil)
	_ BatchHasher = (*Blake3)(nil)
)

func init() {
	Register(Blake3Name, func() Hasher { return NewBlake3() })
}

// NewBlake3 returns a fresh, empty BLAKE3 state.
func NewBlake3() *Blake3 {
	return &Blake3{state: blake3.New()}
}

func (b *Blake3) Name() string { return Blake3Name }

func (b *Blake3) Size() int { return b.state.Size() }

func (b *Blake3) BlockSize() int { return b.state.BlockSize() }

func (b *Blake3) Reset() { b.state.Reset() }

func (b *Blake3) Update(data []byte) {
	b.state.Write(data)
}

func (b *Blake3) Finalize() Digest {
	var d Digest
	b.state.Sum(d[:0])
	return d
}

func (b *Blake3) FinalizeReset() Digest {
	d := b.Finalize()
	b.state.Reset()
	return d
}

// SumMany hashes each of the fixed-length inputs through one scratch state,
// reading the first DigestSize bytes of the output stream straight into the
// caller's buffer.
func (b *Blake3) SumMany(outs, inputs [][]byte) {
	size := b.Size()
	checkBatch(outs, inputs, size)
	scratch := blake3.New()
	for i, in := range inputs {
		scratch.Reset()
		scratch.Write(in)
		scratch.Digest().Read(outs[i][:size])
	}
}

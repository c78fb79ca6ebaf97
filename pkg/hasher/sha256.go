package hasher

import (
	"hash"

	sha256simd "github.com/minio/sha256-simd"
)

// Sha256Name is the registry label of the SHA-256 algorithm.
const Sha256Name = "SHA256"

// Sha256 is an incremental SHA-256 state backed by the SIMD implementation,
// which picks SHA extensions or AVX-512 at startup when the CPU has them.
type Sha256 struct {
	state hash.Hash
}

var (
	_ Hasher      = (*Sha256)(nil)
	_ BatchHasher = (*Sha256)(nil)
)

func init() {
	Register(Sha256Name, func() Hasher { return NewSha256() })
}

// NewSha256 returns a fresh, empty SHA-256 state.
func NewSha256() *Sha256 {
	return &Sha256{state: sha256simd.New()}
}

func (s *Sha256) Name() string { return Sha256Name }

func (s *Sha256) Size() int { return sha256simd.Size }

func (s *Sha256) BlockSize() int { return sha256simd.BlockSize }

func (s *Sha256) Reset() { s.state.Reset() }

func (s *Sha256) Update(data []byte) {
	s.state.Write(data)
}

func (s *Sha256) Finalize() Digest {
	var d Digest
	s.state.Sum(d[:0])
	return d
}

func (s *Sha256) FinalizeReset() Digest {
	d := s.Finalize()
	s.state.Reset()
	return d
}

// SumMany hashes each of the fixed-length inputs through one scratch state,
// finalizing straight into the caller's output bytes.
func (s *Sha256) SumMany(outs, inputs [][]byte) {
	checkBatch(outs, inputs, sha256simd.Size)
	scratch := sha256simd.New()
	for i, in := range inputs {
		scratch.Reset()
		scratch.Write(in)
		scratch.Sum(outs[i][:0])
	}
}

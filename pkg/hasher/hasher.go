package hasher

// Hasher is the incremental hashing state shared by every algorithm in this
// package. A fresh state is empty; Update calls may be split at any byte
// boundary without changing the result.
//
// Implementations are not safe for concurrent use. Hand each goroutine its
// own state, from New or from GetHasher.
type Hasher interface {
	// Name returns the algorithm label used for registry lookups and display.
	Name() string
	// Size returns the digest length in bytes.
	Size() int
	// BlockSize returns the algorithm's internal block length in bytes.
	BlockSize() int
	// Reset discards all accumulated input.
	Reset()
	// Update absorbs data into the running state.
	Update(data []byte)
	// Finalize returns the digest of everything absorbed since the last
	// Reset. The state is unspecified afterwards; Reset it before reuse.
	Finalize() Digest
	// FinalizeReset returns the digest and leaves the state empty, ready
	// for the next input without a fresh allocation.
	FinalizeReset() Digest
}

// BatchHasher is implemented by algorithms that can hash many same-length
// inputs straight into caller-provided buffers, one digest per input, with
// no intermediate Digest values.
type BatchHasher interface {
	// SumMany writes the digest of inputs[i] into the first Size bytes of
	// outs[i], for every i independently. The receiver's incremental state
	// is left untouched.
	//
	// SumMany panics unless len(outs) == len(inputs), all inputs share one
	// length, and every out has at least Size bytes. Output regions must
	// not overlap; each is written exactly once.
	SumMany(outs [][]byte, inputs [][]byte)
}

// Factory constructs a fresh, empty hashing state.
type Factory func() Hasher

// Hash computes the one-shot digest of data. The state h is reset before and
// after, so a dirty state is safe to pass and comes back empty.
func Hash(h Hasher, data []byte) Digest {
	h.Reset()
	h.Update(data)
	return h.FinalizeReset()
}

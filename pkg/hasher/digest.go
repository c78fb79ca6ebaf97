package hasher

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// DigestSize is 32, the byte length of every digest produced by this package.
// All registered algorithms are fixed to 256-bit output so digests from
// different algorithms stay interchangeable as commitment values.
const DigestSize = 32

// ErrDigestSize is returned when constructing a Digest from input of the
// wrong length. Inputs are never padded or truncated.
var ErrDigestSize = errors.New("digest must be exactly 32 bytes")

// Digest is one fixed-size hash output. It is a plain value: compare with ==,
// copy by assignment, use as a map key. The zero value is the all-zero digest.
type Digest [DigestSize]byte

// DigestFromBytes copies b into a new Digest. It fails with ErrDigestSize
// unless len(b) == DigestSize.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, fmt.Errorf("%w, got %d", ErrDigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// DigestFromHex parses the hex form produced by Hex. Both character cases
// are accepted.
func DigestFromHex(s string) (Digest, error) {
	var d Digest
	if len(s) != hex.EncodedLen(DigestSize) {
		return d, fmt.Errorf("%w, got %d hex characters", ErrDigestSize, len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("decoding digest: %w", err)
	}
	return d, nil
}

// Bytes gets the byte representation of the digest. The receiver is a value,
// so mutating the returned slice leaves the original digest untouched.
func (d Digest) Bytes() []byte { return d[:] }

// Hex converts the digest to a lowercase hex string.
func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }

// String implements the stringer interface; it prints the same hex as Hex,
// so logging and display always agree.
func (d Digest) String() string {
	return d.Hex()
}

// MarshalText returns the hex representation of d.
func (d Digest) MarshalText() ([]byte, error) {
	out := make([]byte, hex.EncodedLen(DigestSize))
	hex.Encode(out, d[:])
	return out, nil
}

// UnmarshalText parses a digest in hex syntax.
func (d *Digest) UnmarshalText(input []byte) error {
	parsed, err := DigestFromHex(string(input))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

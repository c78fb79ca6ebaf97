package hasher_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/austinabell/stwo/pkg/hasher"
)

func TestDigestFromBytes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, hasher.DigestSize)
	d, err := hasher.DigestFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, raw, d.Bytes())

	_, err = hasher.DigestFromBytes(raw[:31])
	require.ErrorIs(t, err, hasher.ErrDigestSize)
	_, err = hasher.DigestFromBytes(append(raw, 0x01))
	require.ErrorIs(t, err, hasher.ErrDigestSize)
	_, err = hasher.DigestFromBytes(nil)
	require.ErrorIs(t, err, hasher.ErrDigestSize)
}

func TestDigestFromBytesCopies(t *testing.T) {
	raw := bytes.Repeat([]byte{0x11}, hasher.DigestSize)
	d, err := hasher.DigestFromBytes(raw)
	require.NoError(t, err)
	raw[0] = 0xff
	require.Equal(t, byte(0x11), d[0])
}

func TestDigestFromHex(t *testing.T) {
	h := strings.Repeat("0f", hasher.DigestSize)
	d, err := hasher.DigestFromHex(h)
	require.NoError(t, err)
	require.Equal(t, h, d.Hex())

	upper, err := hasher.DigestFromHex(strings.ToUpper(h))
	require.NoError(t, err)
	require.Equal(t, d, upper)

	_, err = hasher.DigestFromHex(h[:62])
	require.ErrorIs(t, err, hasher.ErrDigestSize)
	_, err = hasher.DigestFromHex(h + "00")
	require.ErrorIs(t, err, hasher.ErrDigestSize)
	_, err = hasher.DigestFromHex(strings.Repeat("zz", hasher.DigestSize))
	require.Error(t, err)
}

func TestDigestRoundTrip(t *testing.T) {
	d := hasher.Hash(hasher.NewBlake2s(), []byte("round trip"))

	fromBytes, err := hasher.DigestFromBytes(d.Bytes())
	require.NoError(t, err)
	require.Equal(t, d, fromBytes)

	fromHex, err := hasher.DigestFromHex(d.Hex())
	require.NoError(t, err)
	require.Equal(t, d, fromHex)
}

func TestDigestStringForms(t *testing.T) {
	d := hasher.Hash(hasher.NewBlake2s(), []byte("display"))
	require.Equal(t, d.Hex(), d.String())
	require.Equal(t, d.Hex(), fmt.Sprintf("%s", d))
	require.Equal(t, d.Hex(), fmt.Sprintf("%v", d))
	require.Len(t, d.Hex(), 64)
	require.Equal(t, strings.ToLower(d.Hex()), d.Hex())
}

func TestDigestZeroValue(t *testing.T) {
	var d hasher.Digest
	require.Equal(t, strings.Repeat("0", 64), d.Hex())
	require.Equal(t, make([]byte, hasher.DigestSize), d.Bytes())
}

func TestDigestBytesIsCopy(t *testing.T) {
	d := hasher.Hash(hasher.NewBlake2s(), []byte("immutable"))
	view := d.Bytes()
	view[0] ^= 0xff
	require.NotEqual(t, view[0], d[0])
}

func TestDigestEquality(t *testing.T) {
	a := hasher.Hash(hasher.NewBlake2s(), []byte("same"))
	b := hasher.Hash(hasher.NewBlake2s(), []byte("same"))
	c := hasher.Hash(hasher.NewBlake2s(), []byte("other"))
	require.True(t, a == b)
	require.True(t, a != c)

	seen := map[hasher.Digest]int{a: 1}
	require.Equal(t, 1, seen[b])
}

func TestDigestJSON(t *testing.T) {
	type doc struct {
		Root hasher.Digest `json:"root"`
	}
	in := doc{Root: hasher.Hash(hasher.NewBlake2s(), []byte("json"))}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(raw), in.Root.Hex())

	var out doc
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in.Root, out.Root)

	var bad doc
	require.Error(t, json.Unmarshal([]byte(`{"root":"abc"}`), &bad))
}

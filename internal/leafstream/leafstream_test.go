package leafstream_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/austinabell/stwo/internal/leafstream"
	"github.com/austinabell/stwo/pkg/hasher"
	"github.com/austinabell/stwo/pkg/merkle"
)

const leafSize = 16

func writeLeaves(t *testing.T, fs afero.Fs, path string, count int) [][]byte {
	t.Helper()
	data := make([]byte, count*leafSize)
	for i := range data {
		data[i] = byte(i*13 + 7)
	}
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))

	leaves := make([][]byte, count)
	for i := range leaves {
		leaves[i] = data[i*leafSize : (i+1)*leafSize]
	}
	return leaves
}

func TestHashLeaves(t *testing.T) {
	fs := afero.NewMemMapFs()
	leaves := writeLeaves(t, fs, "leaves.bin", 50)

	digests, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize})
	require.NoError(t, err)
	require.Len(t, digests, 50)

	h := hasher.NewBlake2s()
	for i, leaf := range leaves {
		require.Equal(t, merkle.HashLeaf(h, leaf), digests[i], "leaf %d", i)
	}
}

func TestHashLeavesMatchesTreeBuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	leaves := writeLeaves(t, fs, "leaves.bin", 33)

	digests, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize, Workers: 3, BatchSize: 7})
	require.NoError(t, err)

	staged, err := merkle.BuildFromLeafDigests(func() hasher.Hasher { return hasher.NewBlake2s() }, digests, merkle.Config{})
	require.NoError(t, err)
	whole, err := merkle.Build(func() hasher.Hasher { return hasher.NewBlake2s() }, leaves, merkle.Config{})
	require.NoError(t, err)

	require.Equal(t, whole.Root(), staged.Root())
}

func TestHashLeavesBatchAndWorkerShapes(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLeaves(t, fs, "leaves.bin", 41)

	want, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize, Workers: 1, BatchSize: 1})
	require.NoError(t, err)

	for _, opts := range []leafstream.Options{
		{LeafSize: leafSize},
		{LeafSize: leafSize, Workers: 4, BatchSize: 5},
		{LeafSize: leafSize, Workers: 2, BatchSize: 64},
	} {
		got, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", "BLAKE2", opts)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestHashLeavesAlgorithms(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLeaves(t, fs, "leaves.bin", 8)

	for _, algo := range hasher.List() {
		digests, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", algo,
			leafstream.Options{LeafSize: leafSize})
		require.NoError(t, err, algo)
		require.Len(t, digests, 8)
	}
}

func TestHashLeavesErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ragged.bin", make([]byte, 65), 0o644))
	require.NoError(t, afero.WriteFile(fs, "empty.bin", nil, 0o644))

	_, err := leafstream.HashLeaves(context.Background(), fs, "ragged.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a multiple")

	_, err = leafstream.HashLeaves(context.Background(), fs, "empty.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize})
	require.Error(t, err)

	_, err = leafstream.HashLeaves(context.Background(), fs, "missing.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize})
	require.Error(t, err)

	_, err = leafstream.HashLeaves(context.Background(), fs, "empty.bin", "SHA3",
		leafstream.Options{LeafSize: leafSize})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown algorithm")

	_, err = leafstream.HashLeaves(context.Background(), fs, "ragged.bin", "BLAKE2",
		leafstream.Options{LeafSize: 0})
	require.Error(t, err)
}

func TestHashLeavesCanceledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLeaves(t, fs, "leaves.bin", 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := leafstream.HashLeaves(ctx, fs, "leaves.bin", "BLAKE2",
		leafstream.Options{LeafSize: leafSize, BatchSize: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestHashLeavesProgressLogging(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeLeaves(t, fs, "leaves.bin", 64)

	core, logs := observer.New(zap.DebugLevel)
	_, err := leafstream.HashLeaves(context.Background(), fs, "leaves.bin", "BLAKE2",
		leafstream.Options{
			LeafSize:      leafSize,
			BatchSize:     8,
			ProgressEvery: 16,
			Logger:        zap.New(core),
		})
	require.NoError(t, err)
	require.NotZero(t, logs.FilterMessage("hashed leaves").Len())
}

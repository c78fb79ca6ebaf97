// Package leafstream reads fixed-size leaves out of files and bulk-hashes
// them into the digests a Merkle tree is built from.
package leafstream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/austinabell/stwo/internal/leaves"
	"github.com/austinabell/stwo/pkg/hasher"
	"github.com/austinabell/stwo/pkg/merkle"
	"github.com/austinabell/stwo/pkg/workerpool"
)

const defaultBatchSize = 1024

// Options configure one bulk hashing run.
type Options struct {
	// LeafSize is the fixed record length in bytes. Required.
	LeafSize int
	// BatchSize is how many leaves a worker takes at once. Defaults to 1024.
	BatchSize int
	// Workers caps the hashing goroutines. 0 picks the CPU count.
	Workers int
	// ProgressEvery logs progress each time that many leaves finish.
	// 0 disables progress logging.
	ProgressEvery uint64
	// Logger receives progress events at debug level. nil disables it.
	Logger *zap.Logger
}

// HashLeaves slices the file at path into LeafSize records and returns their
// tree leaf digests in file order. The file length must be an exact multiple
// of LeafSize. Canceling ctx abandons the run.
func HashLeaves(ctx context.Context, fs afero.Fs, path string, algo string, opts Options) ([]hasher.Digest, error) {
	if _, err := hasher.Lookup(algo); err != nil {
		return nil, err
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	total, err := leaves.Count(f, opts.LeafSize)
	if err != nil {
		return nil, err
	}

	digests := make([]hasher.Digest, total)
	rowSize := 1 + opts.LeafSize
	br := bufio.NewReaderSize(f, 1<<20)
	pool := workerpool.New(ctx, workers)
	var done atomic.Uint64

	for start := 0; start < total; start += batch {
		start := start
		count := min(batch, total-start)
		rows := make([][]byte, count)
		buf := make([]byte, count*rowSize)
		for i := range rows {
			row := buf[i*rowSize : (i+1)*rowSize]
			row[0] = merkle.LeafPrefix
			if _, err := io.ReadFull(br, row[1:]); err != nil {
				pool.Close()
				return nil, fmt.Errorf("leafstream: reading %s: %w", path, err)
			}
			rows[i] = row
		}

		ok := pool.Submit(func(context.Context) {
			h, _ := hasher.GetHasher(algo)
			defer hasher.PutHasher(h)

			outs := make([][]byte, len(rows))
			for i := range rows {
				outs[i] = digests[start+i][:]
			}
			if bh, ok := h.(hasher.BatchHasher); ok {
				bh.SumMany(outs, rows)
			} else {
				for i, row := range rows {
					d := hasher.Hash(h, row)
					copy(outs[i], d[:])
				}
			}

			t := done.Add(uint64(len(rows)))
			if opts.ProgressEvery > 0 && t/opts.ProgressEvery != (t-uint64(len(rows)))/opts.ProgressEvery {
				logger.Debug("hashed leaves",
					zap.Uint64("done", t),
					zap.Int("total", total),
					zap.String("algorithm", algo))
			}
		})
		if !ok {
			break
		}
	}

	pool.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return digests, nil
}

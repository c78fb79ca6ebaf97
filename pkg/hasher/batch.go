package hasher

import (
	"fmt"
	"runtime"
	"sync"
)

// checkBatch enforces the SumMany preconditions. Violations are programmer
// errors, so they panic instead of returning.
func checkBatch(outs, inputs [][]byte, size int) {
	if len(outs) != len(inputs) {
		panic(fmt.Sprintf("batch: %d outputs for %d inputs", len(outs), len(inputs)))
	}
	if len(inputs) == 0 {
		return
	}
	want := len(inputs[0])
	for i, in := range inputs {
		if len(in) != want {
			panic(fmt.Sprintf("batch: input %d is %d bytes, want %d", i, len(in), want))
		}
	}
	for i, out := range outs {
		if len(out) < size {
			panic(fmt.Sprintf("batch: output %d has %d bytes, need %d", i, len(out), size))
		}
	}
}

// sumRange hashes inputs[lo:hi] into outs[lo:hi] on a single state, taking
// the bulk path when the algorithm has one.
func sumRange(h Hasher, outs, inputs [][]byte, lo, hi int) {
	if bh, ok := h.(BatchHasher); ok {
		bh.SumMany(outs[lo:hi], inputs[lo:hi])
		return
	}
	for i := lo; i < hi; i++ {
		d := Hash(h, inputs[i])
		copy(outs[i], d[:])
	}
}

// SumManyParallel splits one batch across workers goroutines, each hashing a
// contiguous range through its own state. It carries the SumMany contract:
// same preconditions (checked up front, panic on violation), same result,
// every output slot written exactly once. workers <= 1 or a small batch runs
// on the calling goroutine.
func SumManyParallel(newHasher Factory, outs, inputs [][]byte, workers int) {
	h := newHasher()
	checkBatch(outs, inputs, h.Size())

	n := len(inputs)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		sumRange(h, outs, inputs, 0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			sumRange(newHasher(), outs, inputs, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

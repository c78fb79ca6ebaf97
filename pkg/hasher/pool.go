package hasher

import (
	"fmt"
	"strings"
	"sync"
)

// One pool per algorithm, populated at registration. Pooled states amortize
// allocations across repeated one-shot calls.
var pools = map[string]*sync.Pool{}

func registerPool(key string, f Factory) {
	pools[key] = &sync.Pool{New: func() any { return f() }}
}

// GetHasher returns an empty pooled state for the named algorithm. Return it
// with PutHasher when done.
func GetHasher(name string) (Hasher, error) {
	p, ok := pools[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm: %s", name)
	}
	return p.Get().(Hasher), nil
}

// PutHasher resets h and returns it to its algorithm's pool. States from
// unregistered algorithms are dropped.
func PutHasher(h Hasher) {
	h.Reset()
	if p, ok := pools[strings.ToLower(h.Name())]; ok {
		p.Put(h)
	}
}

// Sum computes the one-shot digest of data under the named algorithm using a
// pooled state.
func Sum(name string, data []byte) (Digest, error) {
	h, err := GetHasher(name)
	if err != nil {
		return Digest{}, err
	}
	defer PutHasher(h)
	h.Update(data)
	return h.Finalize(), nil
}

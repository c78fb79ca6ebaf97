package hasher

import (
	"fmt"
	"sort"
	"strings"
)

type entry struct {
	name    string
	factory Factory
}

// Lookups are case-insensitive; entries keep the name they registered under
// for display. Registration happens in package init only, so reads need no
// locking.
var registry = map[string]entry{}

// Register makes an algorithm available under name. It panics on a duplicate
// name; every algorithm in this package registers itself in init.
func Register(name string, f Factory) {
	key := strings.ToLower(name)
	if _, dup := registry[key]; dup {
		panic("duplicate algorithm: " + name)
	}
	registry[key] = entry{name: name, factory: f}
	registerPool(key, f)
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	if e, ok := registry[strings.ToLower(name)]; ok {
		return e.factory, nil
	}
	return nil, fmt.Errorf("unknown algorithm: %s", name)
}

// New returns a fresh hashing state for the named algorithm.
func New(name string) (Hasher, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f(), nil
}

// List returns the registered algorithm names, sorted.
func List() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

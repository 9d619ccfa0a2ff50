package resolver

import (
	"fmt"

	"github.com/tsawler/imprint/core"
)

// ObjectReader loads objects referenced by number and generation. The
// document reader implements it; tests substitute an in-memory map.
type ObjectReader interface {
	GetObject(ref core.IndirectRef) (core.Object, error)
}

// Resolver follows indirect references through a PDF object graph. It
// never caches and never mutates the objects it returns.
type Resolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures the resolver
type Option func(*Resolver)

// WithMaxDepth sets the maximum reference chain length (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = depth
	}
}

// New creates a resolver reading objects through reader.
func New(reader ObjectReader, opts ...Option) *Resolver {
	r := &Resolver{
		reader:   reader,
		maxDepth: 100,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve follows indirect references until a non-reference object is
// reached. Nested references inside dictionaries and arrays are left
// alone; callers resolve the values they actually read.
//
// A reference chain that revisits an object number or exceeds the
// configured maximum depth is an error, not a hang.
func (r *Resolver) Resolve(obj core.Object) (core.Object, error) {
	visited := make(map[int]bool)

	for depth := 0; ; depth++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}

		if visited[ref.Number] {
			return nil, fmt.Errorf("circular reference detected for object %d", ref.Number)
		}
		if depth >= r.maxDepth {
			return nil, fmt.Errorf("reference chain exceeds maximum depth %d", r.maxDepth)
		}
		visited[ref.Number] = true

		resolved, err := r.reader.GetObject(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reference %d %d R: %w", ref.Number, ref.Generation, err)
		}
		obj = resolved
	}
}

// ResolveToDict resolves obj and returns it as a dictionary. Streams
// yield their stream dictionary; anything else is an error.
func (r *Resolver) ResolveToDict(obj core.Object) (core.Dict, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}

	switch v := resolved.(type) {
	case core.Dict:
		return v, nil
	case *core.Stream:
		return v.Dict, nil
	default:
		return nil, fmt.Errorf("expected dictionary, got %T", resolved)
	}
}

// Name returns the name value stored under key, following indirection.
func (r *Resolver) Name(dict core.Dict, key string) (string, error) {
	obj := dict.Get(key)
	if obj == nil {
		return "", fmt.Errorf("dictionary has no /%s", key)
	}

	resolved, err := r.Resolve(obj)
	if err != nil {
		return "", fmt.Errorf("failed to resolve /%s: %w", key, err)
	}

	name, ok := resolved.(core.Name)
	if !ok {
		return "", fmt.Errorf("/%s is %T, want name", key, resolved)
	}
	return string(name), nil
}

// HasName reports whether dict stores the name want under key. Missing
// keys, unresolvable references, and non-name values all report false.
func (r *Resolver) HasName(dict core.Dict, key, want string) bool {
	name, err := r.Name(dict, key)
	return err == nil && name == want
}

// Uint returns the non-negative integer stored under key, following
// indirection.
func (r *Resolver) Uint(dict core.Dict, key string) (int, error) {
	obj := dict.Get(key)
	if obj == nil {
		return 0, fmt.Errorf("dictionary has no /%s", key)
	}

	resolved, err := r.Resolve(obj)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve /%s: %w", key, err)
	}

	n, ok := resolved.(core.Int)
	if !ok {
		return 0, fmt.Errorf("/%s is %T, want integer", key, resolved)
	}
	if n < 0 {
		return 0, fmt.Errorf("/%s is negative: %d", key, n)
	}
	return int(n), nil
}

// Package resolver provides PDF indirect reference resolution.
//
// PDF documents use indirect references (e.g., "5 0 R") to refer to objects
// stored elsewhere in the file. This package resolves these references,
// following chains of references and detecting circular dependencies.
//
// # Basic Usage
//
// Create a resolver with an object reader and resolve references:
//
//	res := resolver.New(reader)
//	obj, err := res.Resolve(ref)
//
// Resolution is shallow: references nested inside dictionaries and arrays
// stay as references until a caller resolves the values it reads.
//
// # Cycle Detection
//
// The resolver detects circular reference chains and returns an error
// rather than entering an infinite loop. The maximum chain length is
// configurable:
//
//	res := resolver.New(reader, resolver.WithMaxDepth(50))
//
// # Typed Access
//
// Dictionary values are often stored behind references, so the resolver
// carries typed accessors that resolve before converting:
//   - ResolveToDict: resolve to a dictionary (streams yield their dict)
//   - Name: resolve a dictionary value to a name
//   - HasName: test a dictionary value against an expected name
//   - Uint: resolve a dictionary value to a non-negative integer
package resolver

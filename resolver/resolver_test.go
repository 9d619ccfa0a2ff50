package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/imprint/core"
)

// stubReader serves objects from a fixed map, standing in for the
// document reader.
type stubReader map[int]core.Object

func (s stubReader) GetObject(ref core.IndirectRef) (core.Object, error) {
	obj, ok := s[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return obj, nil
}

func TestResolve(t *testing.T) {
	res := New(stubReader{
		5: core.Int(42),
		6: core.IndirectRef{Number: 5},
	})

	tests := []struct {
		name string
		obj  core.Object
		want core.Object
	}{
		{"reference", core.IndirectRef{Number: 5}, core.Int(42)},
		{"chained reference", core.IndirectRef{Number: 6}, core.Int(42)},
		{"bool passes through", core.Bool(true), core.Bool(true)},
		{"integer passes through", core.Int(17), core.Int(17)},
		{"real passes through", core.Real(0.5), core.Real(0.5)},
		{"string passes through", core.String("stamp"), core.String("stamp")},
		{"name passes through", core.Name("DeviceRGB"), core.Name("DeviceRGB")},
		{"null passes through", core.Null{}, core.Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := res.Resolve(tt.obj)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestResolveShallow pins that values nested inside a resolved container
// stay references; callers resolve what they read.
func TestResolveShallow(t *testing.T) {
	res := New(stubReader{
		1: core.Dict{"Height": core.IndirectRef{Number: 7}},
		7: core.Int(768),
	})

	resolved, err := res.Resolve(core.IndirectRef{Number: 1})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	dict, ok := resolved.(core.Dict)
	if !ok {
		t.Fatalf("resolved to %T, want Dict", resolved)
	}
	if _, ok := dict.Get("Height").(core.IndirectRef); !ok {
		t.Errorf("nested value = %T, want IndirectRef", dict.Get("Height"))
	}
}

func TestResolveCircular(t *testing.T) {
	res := New(stubReader{
		1: core.IndirectRef{Number: 2},
		2: core.IndirectRef{Number: 1},
	})

	_, err := res.Resolve(core.IndirectRef{Number: 1})
	if err == nil {
		t.Fatal("Resolve succeeded, want error for circular reference")
	}
	if !strings.Contains(err.Error(), "circular") {
		t.Errorf("error = %v, want mention of circular reference", err)
	}
}

func TestResolveSelfReference(t *testing.T) {
	res := New(stubReader{1: core.IndirectRef{Number: 1}})

	if _, err := res.Resolve(core.IndirectRef{Number: 1}); err == nil {
		t.Fatal("Resolve succeeded, want error for self reference")
	}
}

func TestResolveMaxDepth(t *testing.T) {
	// A chain of ten distinct references ending in an integer.
	reader := stubReader{10: core.Int(1)}
	for i := 1; i < 10; i++ {
		reader[i] = core.IndirectRef{Number: i + 1}
	}

	tests := []struct {
		name     string
		maxDepth int
		wantErr  bool
	}{
		{"depth sufficient", 20, false},
		{"depth exact", 10, false},
		{"depth too small", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(reader, WithMaxDepth(tt.maxDepth))
			_, err := res.Resolve(core.IndirectRef{Number: 1})
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got error: %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolveMissingObject(t *testing.T) {
	res := New(stubReader{})

	_, err := res.Resolve(core.IndirectRef{Number: 99})
	if err == nil {
		t.Fatal("Resolve succeeded, want error for missing object")
	}
	if !strings.Contains(err.Error(), "99") {
		t.Errorf("error = %v, want the object number named", err)
	}
}

func TestResolveToDict(t *testing.T) {
	res := New(stubReader{
		1: core.Dict{"Type": core.Name("Page")},
		2: &core.Stream{
			Dict: core.Dict{"Length": core.Int(0)},
			Data: []byte{},
		},
		3: core.Int(42),
	})

	t.Run("dictionary", func(t *testing.T) {
		dict, err := res.ResolveToDict(core.IndirectRef{Number: 1})
		if err != nil {
			t.Fatalf("ResolveToDict failed: %v", err)
		}
		if dict.Get("Type") != core.Name("Page") {
			t.Errorf("Type = %v, want /Page", dict.Get("Type"))
		}
	})

	t.Run("stream yields its dict", func(t *testing.T) {
		dict, err := res.ResolveToDict(core.IndirectRef{Number: 2})
		if err != nil {
			t.Fatalf("ResolveToDict failed: %v", err)
		}
		if dict.Get("Length") != core.Int(0) {
			t.Errorf("Length = %v, want 0", dict.Get("Length"))
		}
	})

	t.Run("direct dictionary", func(t *testing.T) {
		dict, err := res.ResolveToDict(core.Dict{"K": core.Int(1)})
		if err != nil {
			t.Fatalf("ResolveToDict failed: %v", err)
		}
		if dict.Get("K") != core.Int(1) {
			t.Errorf("K = %v, want 1", dict.Get("K"))
		}
	})

	t.Run("non-dictionary", func(t *testing.T) {
		if _, err := res.ResolveToDict(core.IndirectRef{Number: 3}); err == nil {
			t.Fatal("ResolveToDict succeeded, want error for non-dictionary")
		}
	})
}

func TestName(t *testing.T) {
	res := New(stubReader{4: core.Name("DeviceRGB")})

	dict := core.Dict{
		"Subtype":    core.Name("Image"),
		"ColorSpace": core.IndirectRef{Number: 4},
		"Width":      core.Int(100),
	}

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"direct name", "Subtype", "Image", false},
		{"name behind reference", "ColorSpace", "DeviceRGB", false},
		{"missing key", "Nope", "", true},
		{"wrong type", "Width", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := res.Name(dict, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got error: %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasName(t *testing.T) {
	res := New(stubReader{4: core.Name("DeviceRGB")})

	dict := core.Dict{
		"Subtype":    core.Name("Image"),
		"ColorSpace": core.IndirectRef{Number: 4},
		"Width":      core.Int(100),
	}

	tests := []struct {
		name string
		key  string
		val  string
		want bool
	}{
		{"match", "Subtype", "Image", true},
		{"mismatch", "Subtype", "Form", false},
		{"match behind reference", "ColorSpace", "DeviceRGB", true},
		{"missing key", "Nope", "Image", false},
		{"non-name value", "Width", "Image", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := res.HasName(dict, tt.key, tt.val); got != tt.want {
				t.Errorf("HasName(%q, %q) = %v, want %v", tt.key, tt.val, got, tt.want)
			}
		})
	}
}

func TestUint(t *testing.T) {
	res := New(stubReader{9: core.Int(768)})

	dict := core.Dict{
		"Width":    core.Int(1376),
		"Height":   core.IndirectRef{Number: 9},
		"Negative": core.Int(-5),
		"Real":     core.Real(1.5),
	}

	tests := []struct {
		name    string
		key     string
		want    int
		wantErr bool
	}{
		{"direct integer", "Width", 1376, false},
		{"integer behind reference", "Height", 768, false},
		{"missing key", "Nope", 0, true},
		{"negative", "Negative", 0, true},
		{"non-integer", "Real", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := res.Uint(dict, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got error: %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Uint() = %d, want %d", got, tt.want)
			}
		})
	}
}

package contentstream

import (
	"testing"

	"github.com/tsawler/imprint/core"
)

func TestBuilderImagePlacement(t *testing.T) {
	content := NewBuilder().
		SaveState().
		Transform(1376, 0, 0, 768, 0, 0).
		DrawXObject("Im0").
		RestoreState().
		Bytes()

	want := "q\n1376 0 0 768 0 0 cm\n/Im0 Do\nQ\n"
	if string(content) != want {
		t.Errorf("content stream mismatch:\ngot  %q\nwant %q", content, want)
	}
}

func TestBuilderFractionalTransform(t *testing.T) {
	content := NewBuilder().
		Transform(1.5, 0, 0, 0.25, 10, 20).
		Bytes()

	want := "1.5 0 0 0.25 10 20 cm\n"
	if string(content) != want {
		t.Errorf("content stream mismatch:\ngot  %q\nwant %q", content, want)
	}
}

func TestBuilderLen(t *testing.T) {
	b := NewBuilder()
	if b.Len() != 0 {
		t.Errorf("expected empty builder, got %d bytes", b.Len())
	}

	b.SaveState()
	if b.Len() != 2 {
		t.Errorf("expected 2 bytes after q, got %d", b.Len())
	}
}

// TestBuilderRoundTrip parses the built stream back into operations.
func TestBuilderRoundTrip(t *testing.T) {
	content := NewBuilder().
		SaveState().
		Transform(800, 0, 0, 600, 0, 0).
		DrawXObject("Im0").
		RestoreState().
		Bytes()

	ops, err := NewParser(content).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantOps := []string{"q", "cm", "Do", "Q"}
	if len(ops) != len(wantOps) {
		t.Fatalf("expected %d operations, got %d", len(wantOps), len(ops))
	}
	for i, want := range wantOps {
		if ops[i].Operator != want {
			t.Errorf("operation %d: expected %q, got %q", i, want, ops[i].Operator)
		}
	}

	if name, ok := ops[2].Operands[0].(core.Name); !ok || name != "Im0" {
		t.Errorf("expected /Im0 operand, got %v", ops[2].Operands[0])
	}
	if h, ok := ops[1].Operands[3].(core.Int); !ok || h != 600 {
		t.Errorf("expected scale y 600, got %v", ops[1].Operands[3])
	}
}

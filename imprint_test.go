package imprint

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFile(t *testing.T) {
	src := buildDeck(t, []color.NRGBA{{G: 77, A: 255}}, 300, 200)
	path := filepath.Join(t.TempDir(), "deck.pdf")
	if err := os.WriteFile(path, src, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	st := Open(path)
	defer st.Close()

	count, err := st.PageCount()
	if err != nil {
		t.Fatalf("failed to get page count: %v", err)
	}
	if count != 1 {
		t.Errorf("page count = %d, want 1", count)
	}

	// Process reuses the reader PageCount opened, then closes it.
	out, err := st.Process(logoPNG(t, 200, 50, color.NRGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("failed to process document: %v", err)
	}
	if n, err := PageCount(out); err != nil || n != 1 {
		t.Errorf("output page count = %d (err=%v), want 1", n, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf")).PageCount()
	if !errors.Is(err, ErrIOFailure) {
		t.Errorf("got %v, want ErrIOFailure", err)
	}
}

func TestFromBytesMalformed(t *testing.T) {
	_, err := FromBytes([]byte("not a pdf")).PageCount()
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("got %v, want ErrMalformedDocument", err)
	}
}

func TestFromReaderAt(t *testing.T) {
	colors := []color.NRGBA{{R: 1, A: 255}, {R: 2, A: 255}}
	src := buildDeck(t, colors, 300, 200)

	count, err := FromReader(bytes.NewReader(src), int64(len(src))).PageCount()
	if err != nil {
		t.Fatalf("failed to get page count: %v", err)
	}
	if count != 2 {
		t.Errorf("page count = %d, want 2", count)
	}
}

func TestPageCountFunc(t *testing.T) {
	src := buildDeck(t, make([]color.NRGBA, 3), 300, 200)

	count, err := PageCount(src)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 3 {
		t.Errorf("page count = %d, want 3", count)
	}

	if _, err := PageCount([]byte("garbage")); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("got %v, want ErrMalformedDocument", err)
	}
}

func TestProcessDocument(t *testing.T) {
	colors := []color.NRGBA{
		{R: 40, G: 40, B: 40, A: 255},
		{R: 220, G: 220, B: 220, A: 255},
	}
	src := buildDeck(t, colors, 300, 200)
	logo := logoPNG(t, 200, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := ProcessDocument(src, logo, "70", []int{2}, "tl", 0, 0)
	if err != nil {
		t.Fatalf("failed to process document: %v", err)
	}
	if !bytes.Contains(out, []byte("/Filter /DCTDecode")) {
		t.Error("quality 70 should produce DCTDecode image streams")
	}

	rasters := pageImages(t, out)
	if len(rasters) != 1 {
		t.Fatalf("got %d output pages, want 1", len(rasters))
	}

	// The white logo sits top-left; JPEG blurs edges, so probe well
	// inside each region with a loose tolerance.
	ra := rasters[0]
	if got := rgbAt(ra, 30, 15); got[0] < 240 || got[1] < 240 || got[2] < 240 {
		t.Errorf("watermark pixel = %v, want near white", got)
	}
	if got := rgbAt(ra, 250, 150); got[0] > 235 || got[0] < 205 {
		t.Errorf("page pixel = %v, want near source gray", got)
	}
}

func TestProcessDocumentInvalidQuality(t *testing.T) {
	src := buildDeck(t, []color.NRGBA{{A: 255}}, 300, 200)
	logo := logoPNG(t, 200, 50, color.NRGBA{R: 255, A: 255})

	for _, quality := range []string{"0", "101", "fast"} {
		if _, err := ProcessDocument(src, logo, quality, nil, "br", 0, 0); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("quality %q: got %v, want ErrInvalidQuality", quality, err)
		}
	}
}

func TestProcessDocumentMinSize(t *testing.T) {
	src := buildDeck(t, []color.NRGBA{{B: 60, A: 255}}, 600, 400)
	// A wide logo collapses below the default height minimum, so the
	// 21px floor drives the final size: 600x30 -> 120x6 -> 420x21.
	logo := logoPNG(t, 600, 30, color.NRGBA{R: 255, A: 255})

	out, err := ProcessDocument(src, logo, "lossless", nil, "br", 0, 0)
	if err != nil {
		t.Fatalf("failed to process document: %v", err)
	}

	ra := pageImages(t, out)[0]
	// 420x21 anchored bottom-right covers [180,600)x[379,400).
	if got := rgbAt(ra, 181, 380); got != [3]byte{255, 0, 0} {
		t.Errorf("pixel inside watermark = %v, want logo red", got)
	}
	if got := rgbAt(ra, 178, 380); got != [3]byte{0, 0, 60} {
		t.Errorf("pixel left of watermark = %v, want source color", got)
	}
	if got := rgbAt(ra, 181, 377); got != [3]byte{0, 0, 60} {
		t.Errorf("pixel above watermark = %v, want source color", got)
	}
}

func TestMust(t *testing.T) {
	result := Must("hello", nil)
	if result != "hello" {
		t.Errorf("expected 'hello', got %q", result)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected Must to panic on error")
		}
	}()
	Must("", os.ErrNotExist)
}

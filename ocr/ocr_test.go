//go:build ocr

package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/tsawler/imprint/reader"
	"github.com/tsawler/imprint/writer"
)

// testRaster builds a white page raster with a black block, the shape
// ExtractPageImages produces. The block is not real text; recognition
// tests only assert that the engine runs.
func testRaster(width, height int) reader.Raster {
	pix := make([]byte, width*height*3)
	for i := range pix {
		pix[i] = 255
	}
	for y := 10; y < 30 && y < height; y++ {
		for x := 10; x < 50 && x < width; x++ {
			off := (y*width + x) * 3
			pix[off], pix[off+1], pix[off+2] = 0, 0, 0
		}
	}
	return reader.Raster{Width: width, Height: height, Pix: pix}
}

// testDeck builds an in-memory document with the given number of white
// pages.
func testDeck(t *testing.T, pages int) []byte {
	t.Helper()

	rasters := make([]*image.NRGBA, pages)
	for i := range rasters {
		img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = 255, 255, 255, 255
		}
		rasters[i] = img
	}

	doc, err := writer.BuildDocument(rasters, writer.Config{})
	if err != nil {
		t.Fatalf("BuildDocument failed: %v", err)
	}
	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return out
}

func newClient(t *testing.T) *Client {
	t.Helper()

	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	return client
}

func TestRecognizeRaster(t *testing.T) {
	client := newClient(t)
	defer client.Close()

	// The raster holds no legible text; the engine just has to run.
	if _, err := client.RecognizeRaster(testRaster(100, 50)); err != nil {
		t.Errorf("RecognizeRaster failed: %v", err)
	}
}

func TestRecognizeDeck(t *testing.T) {
	client := newClient(t)
	defer client.Close()

	r, err := reader.FromBytes(testDeck(t, 2))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	defer r.Close()

	texts, err := client.RecognizeDeck(r)
	if err != nil {
		t.Fatalf("RecognizeDeck failed: %v", err)
	}
	if len(texts) != 2 {
		t.Errorf("len(texts) = %d, want 2", len(texts))
	}
}

func TestSetLanguage(t *testing.T) {
	client := newClient(t)
	defer client.Close()

	// English ships with every Tesseract install.
	if err := client.SetLanguage("eng"); err != nil {
		t.Errorf("SetLanguage failed: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	client := newClient(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	client.client = nil
	if err := client.Close(); err != nil {
		t.Errorf("Close on released client failed: %v", err)
	}
}

package reader

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// makeRGB returns a deterministic w*h RGB gradient.
func makeRGB(w, h int) []byte {
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = byte(i*7 + 3)
	}
	return pix
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("failed to compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close compressor: %v", err)
	}
	return buf.Bytes()
}

// filterRows prepends a PNG filter byte to every row: typ 0 leaves rows
// unchanged, typ 2 applies the Up filter.
func filterRows(pix []byte, rowBytes int, typ byte) []byte {
	out := make([]byte, 0, len(pix)+len(pix)/rowBytes)
	prev := make([]byte, rowBytes)
	for off := 0; off < len(pix); off += rowBytes {
		row := pix[off : off+rowBytes]
		out = append(out, typ)
		for i, b := range row {
			if typ == 2 {
				out = append(out, b-prev[i])
			} else {
				out = append(out, b)
			}
		}
		prev = row
	}
	return out
}

const rgbImageDict = "/Subtype /Image /ColorSpace /DeviceRGB /BitsPerComponent 8"

type testImage struct {
	width  int
	height int
	dict   string
	data   []byte
}

// buildImageDoc returns a document with one image XObject per page:
// object 1 is the catalog, 2 the pages root, 3..2+n the pages, and
// 3+n..2+2n the image streams.
func buildImageDoc(imgs []testImage) []byte {
	f := newPDF("1.4")
	n := len(imgs)

	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	f.add("<< /Type /Catalog /Pages 2 0 R >>")
	f.add(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 1376 768] >>",
		strings.Join(kids, " "), n))
	for i := range imgs {
		f.add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im0 %d 0 R >> >> >>",
			3+n+i))
	}
	for _, img := range imgs {
		f.addStream(fmt.Sprintf("/Width %d /Height %d %s", img.width, img.height, img.dict), img.data)
	}
	return f.finish(1, "")
}

func TestPageImageRaw(t *testing.T) {
	pix := makeRGB(4, 3)
	data := buildImageDoc([]testImage{
		{width: 4, height: 3, dict: rgbImageDict, data: pix},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if raster.Width != 4 || raster.Height != 3 {
		t.Errorf("expected 4x3 raster, got %dx%d", raster.Width, raster.Height)
	}
	if diff := cmp.Diff(pix, raster.Pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestPageImageFlate(t *testing.T) {
	pix := makeRGB(8, 5)
	data := buildImageDoc([]testImage{
		{width: 8, height: 5, dict: rgbImageDict + " /Filter /FlateDecode", data: deflate(t, pix)},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if diff := cmp.Diff(pix, raster.Pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestPageImageFlatePredictor(t *testing.T) {
	tests := []struct {
		name string
		typ  byte
	}{
		{"none rows", 0},
		{"up rows", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := makeRGB(6, 4)
			filtered := filterRows(pix, 6*3, tt.typ)
			data := buildImageDoc([]testImage{
				{width: 6, height: 4, dict: rgbImageDict + " /Filter /FlateDecode", data: deflate(t, filtered)},
			})

			r, err := FromBytes(data)
			if err != nil {
				t.Fatalf("failed to read PDF: %v", err)
			}

			raster, err := r.PageImage(0)
			if err != nil {
				t.Fatalf("PageImage failed: %v", err)
			}
			if diff := cmp.Diff(pix, raster.Pix); diff != "" {
				t.Errorf("pixel mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageImageDCT(t *testing.T) {
	const w, h = 12, 8
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+0] = 90
		src.Pix[i+1] = 160
		src.Pix[i+2] = 200
		src.Pix[i+3] = 255
	}
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, src, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}

	data := buildImageDoc([]testImage{
		{width: w, height: h, dict: rgbImageDict + " /Filter /DCTDecode", data: jpg.Bytes()},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if raster.Width != w || raster.Height != h {
		t.Fatalf("expected %dx%d raster, got %dx%d", w, h, raster.Width, raster.Height)
	}
	if len(raster.Pix) != w*h*3 {
		t.Fatalf("expected %d bytes, got %d", w*h*3, len(raster.Pix))
	}

	// JPEG is lossy; a uniform image must round-trip within a few
	// levels per channel.
	want := [3]byte{90, 160, 200}
	for i := 0; i < len(raster.Pix); i += 3 {
		for c := 0; c < 3; c++ {
			got := int(raster.Pix[i+c])
			if diff := got - int(want[c]); diff < -5 || diff > 5 {
				t.Fatalf("pixel %d channel %d: got %d, want %d +/-5", i/3, c, got, want[c])
			}
		}
	}
}

func TestPageImageSelectsFirstByName(t *testing.T) {
	pixA := []byte{0, 255, 0, 0, 255, 0}
	pixB := []byte{255, 0, 0, 255, 0, 0}

	f := newPDF("1.4")
	f.add("<< /Type /Catalog /Pages 2 0 R >>")
	f.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.add("<< /Type /Page /Parent 2 0 R /Resources << /XObject << /ImB 4 0 R /ImA 5 0 R >> >> >>")
	f.addStream(fmt.Sprintf("/Width 2 /Height 1 %s", rgbImageDict), pixB)
	f.addStream(fmt.Sprintf("/Width 2 /Height 1 %s", rgbImageDict), pixA)
	data := f.finish(1, "")

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	// ImA sorts before ImB regardless of dictionary order.
	if diff := cmp.Diff(pixA, raster.Pix); diff != "" {
		t.Errorf("expected /ImA content (-want +got):\n%s", diff)
	}
}

func TestPageImageSkipsNonMatching(t *testing.T) {
	rgb := []byte{10, 20, 30}
	gray := []byte{128}

	f := newPDF("1.4")
	f.add("<< /Type /Catalog /Pages 2 0 R >>")
	f.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.add("<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im0 4 0 R /Im1 5 0 R /Im2 6 0 R >> >> >>")
	f.addStream("/Subtype /Form /BBox [0 0 10 10]", []byte("q Q"))
	f.addStream("/Width 1 /Height 1 /Subtype /Image /ColorSpace /DeviceGray /BitsPerComponent 8", gray)
	f.addStream(fmt.Sprintf("/Width 1 /Height 1 %s", rgbImageDict), rgb)
	data := f.finish(1, "")

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if diff := cmp.Diff(rgb, raster.Pix); diff != "" {
		t.Errorf("expected /Im2 content (-want +got):\n%s", diff)
	}
}

func TestPageImageMissing(t *testing.T) {
	gray := []byte{128}

	bare := newPDF("1.4")
	bare.add("<< /Type /Catalog /Pages 2 0 R >>")
	bare.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	bare.add("<< /Type /Page /Parent 2 0 R >>")

	noXObj := newPDF("1.4")
	noXObj.add("<< /Type /Catalog /Pages 2 0 R >>")
	noXObj.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	noXObj.add("<< /Type /Page /Parent 2 0 R /Resources << /Font << >> >> >>")

	grayOnly := newPDF("1.4")
	grayOnly.add("<< /Type /Catalog /Pages 2 0 R >>")
	grayOnly.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	grayOnly.add("<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im0 4 0 R >> >> >>")
	grayOnly.addStream("/Width 1 /Height 1 /Subtype /Image /ColorSpace /DeviceGray /BitsPerComponent 8", gray)

	tests := []struct {
		name string
		data []byte
	}{
		{"no resources", bare.finish(1, "")},
		{"no xobjects", noXObj.finish(1, "")},
		{"no rgb image", grayOnly.finish(1, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FromBytes(tt.data)
			if err != nil {
				t.Fatalf("failed to read PDF: %v", err)
			}

			_, err = r.PageImage(0)
			if !errors.Is(err, ErrMissingImage) {
				t.Errorf("expected ErrMissingImage, got %v", err)
			}
		})
	}
}

func TestPageImageUnsupportedFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
	}{
		{"lzw", "/Filter /LZWDecode"},
		{"ascii85", "/Filter /ASCII85Decode"},
		{"chain", "/Filter [/ASCII85Decode /FlateDecode]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildImageDoc([]testImage{
				{width: 1, height: 1, dict: rgbImageDict + " " + tt.filter, data: []byte{1, 2, 3}},
			})

			r, err := FromBytes(data)
			if err != nil {
				t.Fatalf("failed to read PDF: %v", err)
			}

			_, err = r.PageImage(0)
			if !errors.Is(err, ErrUnsupportedFilter) {
				t.Errorf("expected ErrUnsupportedFilter, got %v", err)
			}
		})
	}
}

func TestPageImageSingleFilterArray(t *testing.T) {
	pix := makeRGB(3, 2)
	data := buildImageDoc([]testImage{
		{width: 3, height: 2, dict: rgbImageDict + " /Filter [/FlateDecode]", data: deflate(t, pix)},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if diff := cmp.Diff(pix, raster.Pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestPageImageSizeMismatch(t *testing.T) {
	tests := []struct {
		name string
		img  testImage
	}{
		{
			"raw truncated",
			testImage{width: 4, height: 4, dict: rgbImageDict, data: makeRGB(4, 4)[:40]},
		},
		{
			"flate wrong size",
			testImage{width: 4, height: 4, dict: rgbImageDict + " /Filter /FlateDecode", data: nil},
		},
	}
	tests[1].img.data = deflate(t, makeRGB(3, 3))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FromBytes(buildImageDoc([]testImage{tt.img}))
			if err != nil {
				t.Fatalf("failed to read PDF: %v", err)
			}

			_, err = r.PageImage(0)
			if !errors.Is(err, ErrSizeMismatch) {
				t.Errorf("expected ErrSizeMismatch, got %v", err)
			}
		})
	}
}

func TestPageImageOutOfRange(t *testing.T) {
	data := buildImageDoc([]testImage{
		{width: 1, height: 1, dict: rgbImageDict, data: []byte{1, 2, 3}},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	if _, err := r.PageImage(1); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := r.PageImage(-1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestPageImageIndirectAttributes(t *testing.T) {
	pix := makeRGB(4, 2)

	f := newPDF("1.4")
	f.add("<< /Type /Catalog /Pages 2 0 R >>")
	f.add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	f.add("<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im0 4 0 R >> >> >>")
	f.addStream("/Subtype /Image /Width 5 0 R /Height 2 /ColorSpace 6 0 R /BitsPerComponent 8", pix)
	f.add("4")
	f.add("/DeviceRGB")
	data := f.finish(1, "")

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	raster, err := r.PageImage(0)
	if err != nil {
		t.Fatalf("PageImage failed: %v", err)
	}
	if raster.Width != 4 || raster.Height != 2 {
		t.Errorf("expected 4x2 raster, got %dx%d", raster.Width, raster.Height)
	}
	if diff := cmp.Diff(pix, raster.Pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPageImages(t *testing.T) {
	pix1 := makeRGB(4, 3)
	pix2 := makeRGB(2, 2)
	pix3 := makeRGB(6, 1)

	data := buildImageDoc([]testImage{
		{width: 4, height: 3, dict: rgbImageDict, data: pix1},
		{width: 2, height: 2, dict: rgbImageDict + " /Filter /FlateDecode", data: deflate(t, pix2)},
		{width: 6, height: 1, dict: rgbImageDict + " /Filter /FlateDecode", data: deflate(t, filterRows(pix3, 6*3, 2))},
	})

	r, err := FromBytes(data)
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	rasters, err := r.ExtractPageImages()
	if err != nil {
		t.Fatalf("ExtractPageImages failed: %v", err)
	}
	if len(rasters) != 3 {
		t.Fatalf("expected 3 rasters, got %d", len(rasters))
	}

	want := [][]byte{pix1, pix2, pix3}
	for i, raster := range rasters {
		if diff := cmp.Diff(want[i], raster.Pix); diff != "" {
			t.Errorf("page %d pixel mismatch (-want +got):\n%s", i+1, diff)
		}
	}
}

func TestExtractPageImagesConcurrent(t *testing.T) {
	const n = 4
	imgs := make([]testImage, n)
	want := make([][]byte, n)
	for i := range imgs {
		want[i] = makeRGB(3+i, 2)
		imgs[i] = testImage{
			width:  3 + i,
			height: 2,
			dict:   rgbImageDict + " /Filter /FlateDecode",
			data:   deflate(t, want[i]),
		}
	}

	r, err := FromBytes(buildImageDoc(imgs))
	if err != nil {
		t.Fatalf("failed to read PDF: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n*4)
	for g := 0; g < 4; g++ {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				raster, err := r.PageImage(page)
				if err != nil {
					errs <- fmt.Errorf("page %d: %w", page, err)
					return
				}
				if !bytes.Equal(raster.Pix, want[page]) {
					errs <- fmt.Errorf("page %d: pixel mismatch", page)
				}
			}(i)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRasterNRGBA(t *testing.T) {
	raster := Raster{
		Width:  2,
		Height: 2,
		Pix: []byte{
			255, 0, 0, 0, 255, 0,
			0, 0, 255, 10, 20, 30,
		},
	}

	img := raster.NRGBA()
	if got := img.Bounds(); got.Dx() != 2 || got.Dy() != 2 {
		t.Fatalf("expected 2x2 bounds, got %v", got)
	}

	tests := []struct {
		x, y    int
		r, g, b byte
	}{
		{0, 0, 255, 0, 0},
		{1, 0, 0, 255, 0},
		{0, 1, 0, 0, 255},
		{1, 1, 10, 20, 30},
	}
	for _, tt := range tests {
		c := img.NRGBAAt(tt.x, tt.y)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != 255 {
			t.Errorf("pixel (%d,%d): got %v, want {%d %d %d 255}", tt.x, tt.y, c, tt.r, tt.g, tt.b)
		}
	}
}

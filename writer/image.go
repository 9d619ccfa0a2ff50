package writer

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/tsawler/imprint/core"
)

// addImage encodes img as a DeviceRGB image XObject and returns its
// reference.
func (d *Document) addImage(img *image.NRGBA, q Quality) (core.IndirectRef, error) {
	b := img.Bounds()
	dict := core.Dict{
		"Type":             core.Name("XObject"),
		"Subtype":          core.Name("Image"),
		"Width":            core.Int(b.Dx()),
		"Height":           core.Int(b.Dy()),
		"ColorSpace":       core.Name("DeviceRGB"),
		"BitsPerComponent": core.Int(8),
	}

	if level, ok := q.JPEG(); ok {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: level}); err != nil {
			return core.IndirectRef{}, fmt.Errorf("jpeg encode: %w", err)
		}
		dict.Set("Filter", core.Name("DCTDecode"))
		return d.AddStream(dict, buf.Bytes()), nil
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(flattenRGB(img)); err != nil {
		zw.Close()
		return core.IndirectRef{}, fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return core.IndirectRef{}, fmt.Errorf("deflate: %w", err)
	}
	dict.Set("Filter", core.Name("FlateDecode"))
	return d.AddStream(dict, buf.Bytes()), nil
}

// flattenRGB drops the alpha channel, returning tightly packed RGB
// bytes in row order.
func flattenRGB(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

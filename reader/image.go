package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/tsawler/imprint/core"
	"github.com/tsawler/imprint/internal/filters"
	"github.com/tsawler/imprint/pages"
)

// Raster is a decoded page image: 8-bit RGB samples with rows packed
// tightly, so len(Pix) == Width*Height*3.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NRGBA expands the raster to an NRGBA image with opaque alpha, the form
// the compositing functions work on.
func (ra Raster) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, ra.Width, ra.Height))
	si := 0
	for y := 0; y < ra.Height; y++ {
		di := y * img.Stride
		for x := 0; x < ra.Width; x++ {
			img.Pix[di+0] = ra.Pix[si+0]
			img.Pix[di+1] = ra.Pix[si+1]
			img.Pix[di+2] = ra.Pix[si+2]
			img.Pix[di+3] = 0xff
			si += 3
			di += 4
		}
	}
	return img
}

// Image returns the raster as a standard library image.
func (ra Raster) Image() image.Image {
	return ra.NRGBA()
}

// ImageStream describes the image XObject selected on a page, before its
// stream data is decoded.
type ImageStream struct {
	Name             string
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
	Filter           string
	Data             []byte
}

// ExtractPageImages decodes the qualifying image from every page, in
// ascending page order.
func (r *Reader) ExtractPageImages() ([]Raster, error) {
	if err := r.ensurePages(); err != nil {
		return nil, err
	}

	rasters := make([]Raster, len(r.entries))
	for i := range r.entries {
		raster, err := r.PageImage(i)
		if err != nil {
			return nil, err
		}
		rasters[i] = raster
	}
	return rasters, nil
}

// PageImage decodes the qualifying image on the page at index (0-based):
// the first XObject in name order that is an image with a DeviceRGB
// color space.
func (r *Reader) PageImage(index int) (Raster, error) {
	if err := r.ensurePages(); err != nil {
		return Raster{}, err
	}
	if index < 0 || index >= len(r.entries) {
		return Raster{}, fmt.Errorf("page index %d out of range [0, %d)", index, len(r.entries))
	}

	img, err := r.findPageImage(r.entries[index])
	if err != nil {
		return Raster{}, err
	}

	raster, err := decodeImage(img)
	if err != nil {
		return Raster{}, fmt.Errorf("page %d image %s: %w", r.entries[index].Number, img.Name, err)
	}
	return raster, nil
}

// findPageImage walks the page's XObject entries in name order and
// returns the first image stream whose color space is DeviceRGB.
// Entries that fail to resolve are skipped rather than failing the page.
func (r *Reader) findPageImage(entry pages.PageEntry) (*ImageStream, error) {
	resources, err := entry.Page.Resources()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", entry.Number, ErrMissingImage)
	}

	xobjObj := resources.Get("XObject")
	if xobjObj == nil {
		return nil, fmt.Errorf("page %d: %w", entry.Number, ErrMissingImage)
	}
	xobjects, err := r.res.ResolveToDict(xobjObj)
	if err != nil {
		return nil, fmt.Errorf("page %d: failed to resolve XObject dictionary: %w", entry.Number, err)
	}

	for _, name := range xobjects.SortedKeys() {
		resolved, err := r.res.Resolve(xobjects.Get(name))
		if err != nil {
			continue
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if !r.res.HasName(stream.Dict, "Subtype", "Image") {
			continue
		}
		if !r.res.HasName(stream.Dict, "ColorSpace", "DeviceRGB") {
			continue
		}

		img, err := r.describeImage(name, stream)
		if err != nil {
			return nil, fmt.Errorf("page %d image %s: %w", entry.Number, name, err)
		}
		return img, nil
	}

	return nil, fmt.Errorf("page %d: %w", entry.Number, ErrMissingImage)
}

// describeImage reads the dimensions and filter of a selected image
// stream.
func (r *Reader) describeImage(name string, stream *core.Stream) (*ImageStream, error) {
	width, err := r.res.Uint(stream.Dict, "Width")
	if err != nil {
		return nil, err
	}
	height, err := r.res.Uint(stream.Dict, "Height")
	if err != nil {
		return nil, err
	}

	bpc := 8
	if stream.Dict.Has("BitsPerComponent") {
		bpc, err = r.res.Uint(stream.Dict, "BitsPerComponent")
		if err != nil {
			return nil, err
		}
	}

	filter, err := r.imageFilter(stream.Dict)
	if err != nil {
		return nil, err
	}

	return &ImageStream{
		Name:             name,
		Width:            width,
		Height:           height,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: bpc,
		Filter:           filter,
		Data:             stream.Data,
	}, nil
}

// imageFilter returns the stream's filter name. An absent filter yields
// "". A one-element array is unwrapped; longer arrays are rejected
// because chained image filters cannot be size-sniffed.
func (r *Reader) imageFilter(dict core.Dict) (string, error) {
	filterObj := dict.Get("Filter")
	if filterObj == nil {
		return "", nil
	}

	resolved, err := r.res.Resolve(filterObj)
	if err != nil {
		return "", fmt.Errorf("failed to resolve /Filter: %w", err)
	}

	switch f := resolved.(type) {
	case core.Name:
		return string(f), nil
	case core.Array:
		if f.Len() == 1 {
			if name, ok := f.GetName(0); ok {
				return string(name), nil
			}
			return "", fmt.Errorf("%w: non-name filter entry", ErrUnsupportedFilter)
		}
		return "", fmt.Errorf("%w: filter chain of %d filters", ErrUnsupportedFilter, f.Len())
	default:
		return "", fmt.Errorf("%w: /Filter is %T", ErrUnsupportedFilter, resolved)
	}
}

// decodeImage turns an image stream into a raw RGB raster. Flate output
// is sniffed for PNG predictor encoding by size: an inflated payload of
// (width*3+1)*height bytes carries one leading filter byte per row.
func decodeImage(img *ImageStream) (Raster, error) {
	switch img.Filter {
	case "FlateDecode":
		data, err := filters.FlateDecode(img.Data, nil)
		if err != nil {
			return Raster{}, fmt.Errorf("failed to inflate image data: %w", err)
		}
		if len(data) == (img.Width*3+1)*img.Height {
			data, err = filters.ReversePNGRowsLenient(data, img.Width*3, 3)
			if err != nil {
				return Raster{}, fmt.Errorf("failed to reverse row predictor: %w", err)
			}
		}
		return newRaster(img.Width, img.Height, data)

	case "DCTDecode":
		decoded, err := jpeg.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return Raster{}, fmt.Errorf("failed to decode JPEG data: %w", err)
		}
		b := decoded.Bounds()
		if b.Dx() != img.Width || b.Dy() != img.Height {
			return Raster{}, fmt.Errorf("%w: JPEG is %dx%d, dictionary says %dx%d",
				ErrSizeMismatch, b.Dx(), b.Dy(), img.Width, img.Height)
		}
		return rasterFromImage(decoded), nil

	case "":
		return newRaster(img.Width, img.Height, img.Data)

	default:
		return Raster{}, fmt.Errorf("%w: %s", ErrUnsupportedFilter, img.Filter)
	}
}

// newRaster validates that data holds exactly width*height RGB samples.
func newRaster(width, height int, data []byte) (Raster, error) {
	if len(data) != width*height*3 {
		return Raster{}, fmt.Errorf("%w: got %d bytes, want %d for %dx%d RGB",
			ErrSizeMismatch, len(data), width*height*3, width, height)
	}
	return Raster{Width: width, Height: height, Pix: data}, nil
}

// rasterFromImage converts a decoded image to tightly packed RGB,
// dropping alpha.
func rasterFromImage(src image.Image) Raster {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	nrgba, ok := src.(*image.NRGBA)
	if !ok || !b.Min.Eq(image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	pix := make([]byte, w*h*3)
	di := 0
	for y := 0; y < h; y++ {
		si := y * nrgba.Stride
		for x := 0; x < w; x++ {
			pix[di+0] = nrgba.Pix[si+0]
			pix[di+1] = nrgba.Pix[si+1]
			pix[di+2] = nrgba.Pix[si+2]
			di += 3
			si += 4
		}
	}
	return Raster{Width: w, Height: h, Pix: pix}
}

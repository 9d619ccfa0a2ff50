package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // register decoders for sniffed formats
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/imprint/format"
)

// ErrInvalidWatermark indicates the watermark bytes could not be decoded
// by any supported image decoder.
var ErrInvalidWatermark = errors.New("invalid watermark image")

// Default sizing constraints, used when the corresponding Options field
// is unset.
const (
	DefaultMaxWidth  = 120
	DefaultMinWidth  = 107
	DefaultMinHeight = 21
)

// Options controls watermark preparation and placement.
type Options struct {
	// MaxWidth is the target width in pixels before minimum-size
	// correction. Values <= 0 mean DefaultMaxWidth.
	MaxWidth int

	// MinWidth and MinHeight are the smallest acceptable final
	// dimensions. Values <= 0 mean DefaultMinWidth and
	// DefaultMinHeight.
	MinWidth  int
	MinHeight int

	// Opacity scales the watermark alpha channel. Values outside
	// (0, 1] leave the alpha channel untouched.
	Opacity float64

	// Margin is the inset in pixels from the page edge applied by
	// Apply on non-centered axes. Negative values mean 0.
	Margin int
}

// normalized returns a copy of o with unset fields replaced by their
// defaults.
func (o Options) normalized() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MinWidth <= 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.MinHeight <= 0 {
		o.MinHeight = DefaultMinHeight
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		o.Opacity = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// Prepared is a watermark that has been decoded, resized, and
// alpha-scaled, ready for compositing. It is immutable once prepared
// and safe to share across goroutines.
type Prepared struct {
	img    *image.NRGBA
	margin int
}

// Width returns the final watermark width in pixels.
func (p *Prepared) Width() int {
	return p.img.Bounds().Dx()
}

// Height returns the final watermark height in pixels.
func (p *Prepared) Height() int {
	return p.img.Bounds().Dy()
}

// Image returns the resized watermark pixels. The caller must not
// modify the returned image.
func (p *Prepared) Image() *image.NRGBA {
	return p.img
}

// Prepare decodes logo bytes and resizes the image for stamping.
//
// The target size starts at Options.MaxWidth with the aspect ratio
// preserved; the height is then clamped up to MinHeight and the width
// up to MinWidth, in that order, each clamp recomputing the other
// dimension from the ratio. Resampling uses Lanczos. An Opacity below
// 1 scales every alpha byte of the result.
func Prepare(logo []byte, opts Options) (*Prepared, error) {
	o := opts.normalized()

	src, err := decodeLogo(logo)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	w, h := calcSize(b.Dx(), b.Dy(), o)

	img := imaging.Resize(src, w, h, imaging.Lanczos)
	if o.Opacity < 1 {
		scaleAlpha(img, o.Opacity)
	}

	return &Prepared{img: img, margin: o.Margin}, nil
}

// decodeFunc attempts to decode image bytes in one specific format.
type decodeFunc func([]byte) (image.Image, error)

func decodePNG(b []byte) (image.Image, error)  { return png.Decode(bytes.NewReader(b)) }
func decodeJPEG(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) }
func decodeAny(b []byte) (image.Image, error)  { return imaging.Decode(bytes.NewReader(b)) }

// decodeCandidates orders the decoders so that the format suggested by
// the magic bytes is tried first. PNG leads when the format is unknown;
// mislabeled data still falls through to the remaining decoders.
func decodeCandidates(f format.Format) []decodeFunc {
	switch f {
	case format.JPEG:
		return []decodeFunc{decodeJPEG, decodePNG, decodeAny}
	case format.GIF, format.BMP, format.TIFF, format.WebP:
		return []decodeFunc{decodeAny, decodePNG, decodeJPEG}
	default:
		return []decodeFunc{decodePNG, decodeJPEG, decodeAny}
	}
}

func decodeLogo(data []byte) (image.Image, error) {
	var firstErr error
	for _, decode := range decodeCandidates(format.DetectFromMagic(data)) {
		img, err := decode(data)
		if err == nil {
			return img, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidWatermark, firstErr)
}

// calcSize computes the final watermark dimensions. The height clamp
// runs before the width clamp, so a logo that violates both minimums
// ends up width-bound.
func calcSize(origW, origH int, o Options) (w, h int) {
	ratio := float64(origH) / float64(origW)

	w = o.MaxWidth
	h = int(math.Round(float64(w) * ratio))

	if h < o.MinHeight {
		h = o.MinHeight
		w = int(math.Round(float64(h) / ratio))
	}
	if w < o.MinWidth {
		w = o.MinWidth
		h = int(math.Round(float64(w) * ratio))
	}

	return w, h
}

// scaleAlpha multiplies every alpha byte by opacity. img must have the
// tight stride produced by imaging.Resize.
func scaleAlpha(img *image.NRGBA, opacity float64) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i]) * opacity)
	}
}

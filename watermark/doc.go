// Package watermark prepares logo images and composites them onto page
// rasters.
//
// # Preparation
//
// [Prepare] decodes logo bytes (PNG and JPEG natively, with BMP, TIFF,
// WebP, and GIF handled through format sniffing), resizes the image
// under min/max size constraints using Lanczos resampling, and
// optionally scales its alpha channel:
//
//	wm, err := watermark.Prepare(logoBytes, watermark.Options{
//		MaxWidth: 120,
//		Opacity:  0.8,
//	})
//
// The zero Options value selects the default sizing constraints.
//
// # Compositing
//
// [Apply] alpha-blends a prepared watermark over a page raster at one
// of nine placements addressed by two-character codes, "tl" through
// "br":
//
//	out := watermark.Apply(page, wm, watermark.ParsePosition("bc"))
//
// A [Prepared] watermark is immutable and may be shared by concurrent
// per-page workers.
package watermark

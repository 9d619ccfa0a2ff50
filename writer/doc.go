// Package writer assembles and serializes page-per-image PDF documents.
//
// # Building
//
// [BuildDocument] turns composited page rasters into a complete object
// graph: one DeviceRGB image XObject, content stream, and page object
// per raster, a single Pages node, a catalog, and an Info dictionary:
//
//	doc, err := writer.BuildDocument(rasters, writer.Config{
//		Quality: writer.JPEGQuality(85),
//	})
//
// Pages use a fixed media box (1376x768 points by default) and stretch
// their image to fill it. [Quality] selects the image encoding:
// [Lossless] deflate-compresses raw RGB, [JPEGQuality] re-encodes
// through image/jpeg.
//
// # Serializing
//
// [Document.Bytes] and [Document.WriteTo] emit the %PDF-1.4 header,
// objects in ascending number order, a classic cross-reference table,
// and the trailer. Output parses back through this module's reader.
//
// Lower-level assembly is available through [Document.AddObject] and
// [Document.AddStream] for callers composing their own graphs.
package writer

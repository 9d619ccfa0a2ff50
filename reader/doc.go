// Package reader provides high-level PDF document reading and page image
// extraction.
//
// This package orchestrates the lower-level core package to provide a
// convenient API for reading PDF documents and pulling the raster image
// off each page.
//
// # Opening Documents
//
// Use [Open] for a file on disk, [FromBytes] for a document already in
// memory, or [NewReader] for any io.ReaderAt:
//
//	r, err := reader.Open("slides.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// [WithRepair] enables a recovery scan for documents whose
// cross-reference data is damaged.
//
// # Document Structure
//
//   - Version() - PDF version from the header (e.g., 1.4)
//   - Trailer() - trailer dictionary
//   - Catalog() - document catalog dictionary
//   - Info() / InfoText() - document information dictionary
//   - PageCount() - number of pages found in the page tree
//
// # Page Images
//
// Each page of a rasterized presentation carries one full-page image
// XObject. [Reader.PageImage] decodes it for a single page and
// [Reader.ExtractPageImages] for every page:
//
//	rasters, err := r.ExtractPageImages()
//
// The selected XObject is the first one in name order with
// Subtype Image and ColorSpace DeviceRGB. Supported encodings are
// FlateDecode (with or without PNG row predictors), DCTDecode, and
// unfiltered data. Decoded pixels are returned as a [Raster] of packed
// 8-bit RGB.
//
// # Object Access
//
// GetObject loads any object by reference, transparently reading
// compressed objects out of their object streams. Loaded objects are
// cached, and all methods are safe for concurrent use, so pages can be
// processed by parallel workers.
package reader

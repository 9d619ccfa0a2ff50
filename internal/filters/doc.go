// Package filters provides PDF stream decompression filters.
//
// PDF streams can be compressed using various algorithms. This package
// implements the standard PDF decompression filters.
//
// # Supported Filters
//
// FlateDecode (zlib/deflate):
//
//	decoded, err := filters.FlateDecode(data, params)
//
// LZWDecode (PDF's early-change LZW variant):
//
//	decoded, err := filters.LZWDecode(data, params)
//
// Flate and LZW both honor the Predictor decode parameter:
//   - 1: no prediction (default)
//   - 2: TIFF Predictor 2
//   - 10-15: PNG row filters (None, Sub, Up, Average, Paeth)
//
// ASCIIHexDecode, ASCII85Decode and RunLengthDecode:
//
//	decoded, err := filters.ASCIIHexDecode(data)
//	decoded, err := filters.ASCII85Decode(data)
//	decoded, err := filters.RunLengthDecode(data)
//
// CCITTFaxDecode (Group 3/4 bi-level images):
//
//	decoded, err := filters.CCITTFaxDecode(data, params)
//
// # Decode Parameters
//
// Filters accept a Params map for additional parameters:
//
//	params := filters.Params{
//	    "Predictor": 12,
//	    "Columns":   100,
//	    "Colors":    3,
//	}
//	decoded, err := filters.FlateDecode(data, params)
//
// # PNG Row Filters
//
// [ReversePNGRows] and [ReversePNGRowsLenient] expose the PNG
// reconstruction step on its own for callers that receive pre-inflated
// row-filtered data, such as image streams written without /DecodeParms.
package filters

// Package core reads the object layer of a PDF file: the syntax, the
// cross-reference machinery, and the stream encodings. Higher layers
// hand it byte offsets and get back typed objects.
//
// # Object model
//
// Every PDF value satisfies the [Object] interface. The scalar kinds
// are [Null], [Bool], [Int], [Real], [String] and [Name]; the
// containers are [Array] and [Dict]. A [Stream] pairs a dictionary
// with raw data, and [IndirectRef] stands for an object defined
// elsewhere in the file. Dict and Array carry typed getters so callers
// can pull a /Width or a /MediaBox entry without writing the type
// assertions themselves.
//
// # Syntax
//
// [Lexer] tokenizes PDF syntax and [Parser] assembles tokens into
// objects, including full "num gen obj ... endobj" definitions with
// attached stream data. Parsing stops at the object layer: following
// an [IndirectRef] to its target is the caller's job, except for an
// indirect stream /Length, which the parser resolves through a
// [ReferenceResolver] so it can read the right number of data bytes.
//
// # Cross-reference data
//
// [XRefParser] locates the startxref pointer and reads both classic
// xref tables and PDF 1.5 xref streams into an [XRefTable], walking
// /Prev chains so that incrementally updated files resolve to their
// newest object versions. Objects packed into compressed object
// streams are unpacked by [ObjectStream].
//
// # Stream encodings
//
// [Stream.Decode] applies the /Filter chain to the stream data:
// FlateDecode, LZWDecode, RunLengthDecode, ASCIIHexDecode and
// ASCII85Decode, with PNG and TIFF predictors undone per the
// /DecodeParms of each filter. DCTDecode data is left as JPEG for the
// image layer to handle. [DecodeTextString] converts document
// metadata strings from UTF-16 or PDFDocEncoding to UTF-8.
package core

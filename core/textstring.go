package core

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// utf16Text decodes UTF-16 text strings. The BOM picks the byte order and
// is stripped from the output.
var utf16Text = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

// pdfDocDiffs lists the code points where PDFDocEncoding departs from
// Latin-1. Positions absent from this table decode as their Latin-1 value.
var pdfDocDiffs = map[byte]rune{
	0x18: '˘', // breve
	0x19: 'ˇ', // caron
	0x1A: 'ˆ', // circumflex
	0x1B: '˙', // dot above
	0x1C: '˝', // double acute
	0x1D: '˛', // ogonek
	0x1E: '˚', // ring above
	0x1F: '˜', // small tilde
	0x7F: utf8.RuneError,
	0x80: '•', // bullet
	0x81: '†', // dagger
	0x82: '‡', // double dagger
	0x83: '…', // ellipsis
	0x84: '—', // em dash
	0x85: '–', // en dash
	0x86: 'ƒ', // f with hook
	0x87: '⁄', // fraction slash
	0x88: '‹', // single guillemet left
	0x89: '›', // single guillemet right
	0x8A: '−', // minus sign
	0x8B: '‰', // per mille
	0x8C: '„', // double low-9 quote
	0x8D: '“', // left double quote
	0x8E: '”', // right double quote
	0x8F: '‘', // left single quote
	0x90: '’', // right single quote
	0x91: '‚', // single low-9 quote
	0x92: '™', // trademark
	0x93: 'ﬁ', // fi ligature
	0x94: 'ﬂ', // fl ligature
	0x95: 'Ł', // L with stroke
	0x96: 'Œ', // OE
	0x97: 'Š', // S with caron
	0x98: 'Ÿ', // Y with diaeresis
	0x99: 'Ž', // Z with caron
	0x9A: 'ı', // dotless i
	0x9B: 'ł', // l with stroke
	0x9C: 'œ', // oe
	0x9D: 'š', // s with caron
	0x9E: 'ž', // z with caron
	0x9F: utf8.RuneError,
	0xA0: '€', // euro
	0xAD: utf8.RuneError,
}

// DecodeTextString converts a text string object (an /Info value such as
// /Title or /Producer) to UTF-8. Strings opening with the UTF-16 byte order
// mark are UTF-16; everything else uses PDFDocEncoding.
func DecodeTextString(s String) string {
	b := []byte(s)

	if len(b) >= 2 && ((b[0] == 0xFE && b[1] == 0xFF) || (b[0] == 0xFF && b[1] == 0xFE)) {
		decoded, err := utf16Text.NewDecoder().Bytes(b)
		if err == nil {
			return string(decoded)
		}
		// Malformed UTF-16 falls back to byte decoding below.
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if r, ok := pdfDocDiffs[c]; ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

package filters

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax compressed data, the filter
// scanned bi-level images usually arrive with.
//
// Decode parameters:
//   - K: group selector (<0 Group 4, otherwise Group 3)
//   - Columns: row width in pixels (default 1728)
//   - Rows: image height (default 0, auto-detected)
//   - BlackIs1: bit sense (default false; maps to ccitt.Options.Invert)
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	k := getIntParam(params, "K", 0)
	blackIs1 := getBoolParam(params, "BlackIs1", false)

	subFormat := ccitt.Group3
	if k < 0 {
		subFormat = ccitt.Group4
	}

	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{Invert: blackIs1}
	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, subFormat, columns, rows, opts)
	return io.ReadAll(reader)
}

package filters

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode decompresses LZW-compressed data and undoes any predictor
// named in params. PDF's LZW variant switches code widths one code earlier
// than compress/lzw when /EarlyChange is 1 (the default), so this uses the
// hhrutter fork, which implements both behaviors.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	earlyChange := getIntParam(params, "EarlyChange", 1) == 1

	reader := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}
	return applyDecodeParms(buf.Bytes(), params)
}

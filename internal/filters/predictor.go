package filters

import "fmt"

// applyDecodeParms undoes the predictor named in the decode parameters.
// Flate and LZW share this step: Predictor 1 is identity, 2 is the TIFF
// horizontal predictor, 10-15 are the PNG row filters. The PNG values all
// decode identically because each row carries its own filter byte.
func applyDecodeParms(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	if predictor == 1 {
		return data, nil
	}

	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)

	switch {
	case predictor == 2:
		return reverseTIFFPredictor(data, columns, colors, bpc)
	case predictor >= 10 && predictor <= 15:
		if bpc != 8 {
			return nil, fmt.Errorf("PNG predictor supports 8 bits per component, got %d", bpc)
		}
		return ReversePNGRows(data, columns*colors, colors)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", predictor)
	}
}

// reverseTIFFPredictor undoes TIFF Predictor 2, which encodes each sample
// as the difference from the sample to its left.
func reverseTIFFPredictor(data []byte, columns, colors, bpc int) ([]byte, error) {
	if bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor supports 8 bits per component, got %d", bpc)
	}

	rowSize := columns * colors
	if rowSize <= 0 {
		return nil, fmt.Errorf("invalid row size %d", rowSize)
	}
	if len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row size %d", len(data), rowSize)
	}

	result := make([]byte, len(data))
	for row := 0; row < len(data)/rowSize; row++ {
		start := row * rowSize
		for col := 0; col < rowSize; col++ {
			idx := start + col
			if col < colors {
				result[idx] = data[idx]
			} else {
				result[idx] = data[idx] + result[idx-colors]
			}
		}
	}
	return result, nil
}

// ReversePNGRows undoes per-row PNG filtering. Each input row is one filter
// byte (0 None, 1 Sub, 2 Up, 3 Average, 4 Paeth) followed by rowBytes
// filtered bytes; the output holds the reconstructed rows without filter
// bytes. An unknown filter byte is an error.
func ReversePNGRows(data []byte, rowBytes, bytesPerPixel int) ([]byte, error) {
	return reversePNGRows(data, rowBytes, bytesPerPixel, false)
}

// ReversePNGRowsLenient is ReversePNGRows except that a row with an
// unknown filter byte is copied through unchanged. Image streams from
// producers that mislabel rows decode this way; the caller's size check
// still decides whether the result is usable.
func ReversePNGRowsLenient(data []byte, rowBytes, bytesPerPixel int) ([]byte, error) {
	return reversePNGRows(data, rowBytes, bytesPerPixel, true)
}

func reversePNGRows(data []byte, rowBytes, bytesPerPixel int, lenient bool) ([]byte, error) {
	if rowBytes <= 0 || bytesPerPixel <= 0 {
		return nil, fmt.Errorf("invalid row geometry: rowBytes=%d bytesPerPixel=%d", rowBytes, bytesPerPixel)
	}

	stride := rowBytes + 1
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of row stride %d", len(data), stride)
	}

	rows := len(data) / stride
	out := make([]byte, rows*rowBytes)

	for r := 0; r < rows; r++ {
		filter := data[r*stride]
		src := data[r*stride+1 : (r+1)*stride]
		dst := out[r*rowBytes : (r+1)*rowBytes]

		var prev []byte
		if r > 0 {
			prev = out[(r-1)*rowBytes : r*rowBytes]
		}

		if err := reconstructRow(filter, src, dst, prev, bytesPerPixel); err != nil {
			if !lenient {
				return nil, fmt.Errorf("row %d: %w", r, err)
			}
			copy(dst, src)
		}
	}
	return out, nil
}

// reconstructRow applies one PNG reconstruction function. src is the
// filtered row, dst receives the reconstructed bytes, prev is the
// already-reconstructed row above (nil for the first row). Neighbors
// outside the image are zero.
func reconstructRow(filter byte, src, dst, prev []byte, bpp int) error {
	switch filter {
	case 0: // None
		copy(dst, src)

	case 1: // Sub
		for i := range src {
			var left byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			dst[i] = src[i] + left
		}

	case 2: // Up
		for i := range src {
			var up byte
			if prev != nil {
				up = prev[i]
			}
			dst[i] = src[i] + up
		}

	case 3: // Average
		for i := range src {
			var left, up byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			if prev != nil {
				up = prev[i]
			}
			dst[i] = src[i] + byte((int(left)+int(up))/2)
		}

	case 4: // Paeth
		for i := range src {
			var left, up, upLeft byte
			if i >= bpp {
				left = dst[i-bpp]
			}
			if prev != nil {
				up = prev[i]
				if i >= bpp {
					upLeft = prev[i-bpp]
				}
			}
			dst[i] = src[i] + paethPredictor(left, up, upLeft)
		}

	default:
		return fmt.Errorf("unknown row filter %d", filter)
	}
	return nil
}

// paethPredictor picks the neighbor closest to the linear estimate
// p = left + above - upperLeft, breaking ties left, then above, then
// upper left, exactly as the PNG specification orders them.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

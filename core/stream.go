package core

import (
	"fmt"

	"github.com/tsawler/imprint/internal/filters"
)

// Decode runs the stream data through its /Filter chain, applying the
// matching /DecodeParms (predictors included) at each step. The result
// is cached; repeated calls return the same slice.
func (s *Stream) Decode() ([]byte, error) {
	if s.decoded != nil {
		return s.decoded, nil
	}

	chain, parms, err := s.filterChain()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range chain {
		data, err = decodeWithFilter(data, string(name), parms[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s) failed: %w", i, name, err)
		}
	}

	s.decoded = data
	return data, nil
}

// filterChain normalizes /Filter and /DecodeParms into parallel
// slices. A bare name acts as a one-element chain, and a bare
// parameter dictionary applies to every filter in the chain.
func (s *Stream) filterChain() ([]Name, []Dict, error) {
	var chain []Name
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		chain = []Name{f}
	case Array:
		for i, el := range f {
			name, ok := el.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, el)
			}
			chain = append(chain, name)
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", f)
	}

	parms := make([]Dict, len(chain))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		for i := range parms {
			parms[i] = p
		}
	case Array:
		for i := range parms {
			if i < len(p) {
				// Null placeholders stay nil.
				parms[i], _ = p[i].(Dict)
			}
		}
	}
	return chain, parms, nil
}

// decodeWithFilter applies one filter, looked up by its PDF name or
// inline-image abbreviation.
func decodeWithFilter(data []byte, filterName string, params Dict) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, toFilterParams(params))

	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, toFilterParams(params))

	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)

	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)

	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)

	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, toFilterParams(params))

	case "DCTDecode", "DCT":
		// JPEG stays encoded; image extraction hands it to the JPEG decoder.
		return data, nil

	case "JPXDecode", "JBIG2Decode", "Crypt":
		return nil, fmt.Errorf("%s not supported", filterName)

	default:
		return nil, fmt.Errorf("unknown filter: %s", filterName)
	}
}

// toFilterParams lowers a parameter dictionary to the plain Go values
// the filters package works with.
func toFilterParams(d Dict) filters.Params {
	if len(d) == 0 {
		return nil
	}
	p := make(filters.Params, len(d))
	for k, v := range d {
		switch t := v.(type) {
		case Int:
			p[k] = int(t)
		case Real:
			p[k] = float64(t)
		case Bool:
			p[k] = bool(t)
		case String:
			p[k] = string(t)
		case Name:
			p[k] = string(t)
		default:
			p[k] = v
		}
	}
	return p
}

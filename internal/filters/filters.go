package filters

// Params carries decode parameters from a stream's /DecodeParms dictionary.
// Values are Go primitives: int, float64, bool or string.
type Params map[string]interface{}

// getIntParam extracts an integer parameter, returning defaultValue if the
// parameter is missing or not numeric.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}

	obj, ok := params[key]
	if !ok {
		return defaultValue
	}

	switch v := obj.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// getBoolParam extracts a boolean parameter, returning defaultValue if the
// parameter is missing or not a bool.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}

	obj, ok := params[key]
	if !ok {
		return defaultValue
	}

	if v, ok := obj.(bool); ok {
		return v
	}
	return defaultValue
}

package request

import "github.com/mitchellh/copystructure"

// cloneValue deep-copies v, following pointers, structs, typed slices and maps
// nested at any depth. Values copystructure cannot walk are returned as is.
func cloneValue(v any) any {
	if v == nil {
		return nil
	}
	out, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return out
}

// cloneMap always returns a non-nil map.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneHeader always returns a non-nil map.
func cloneHeader(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// mergeMaps merges src into dst recursively. Nested maps merge, everything
// else in src overwrites dst. Nil src values are skipped.
func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if v == nil {
			continue
		}
		srcMap, srcOK := asMap(v)
		dstMap, dstOK := asMap(dst[k])
		if srcOK && dstOK {
			dst[k] = mergeMaps(cloneMap(dstMap), srcMap)
			continue
		}
		dst[k] = cloneValue(v)
	}
	return dst
}

// asMap reports whether v is record-shaped.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// present reports whether a body value counts as supplied. Nil, the empty
// string and an empty byte slice do not.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []byte:
		return len(t) > 0
	default:
		return true
	}
}

// EffectiveData computes the body (or form data) of a call from the global
// default and the call-supplied value. Two records are deep-merged with the
// call keys winning; on a type mismatch the call value wins; a lone value is
// used as is; nothing at all yields "".
func EffectiveData(global, call any) any {
	globalPresent, callPresent := present(global), present(call)
	switch {
	case globalPresent && callPresent:
		globalMap, globalOK := asMap(global)
		callMap, callOK := asMap(call)
		if globalOK && callOK {
			return mergeMaps(cloneMap(globalMap), callMap)
		}
		return cloneValue(call)
	case callPresent:
		return cloneValue(call)
	case globalPresent:
		return cloneValue(global)
	default:
		return ""
	}
}

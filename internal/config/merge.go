package config

import "slices"

// DeepMerge layers src over dst and returns dst. Top-level keys naming the
// same option in different spellings replace each other, so a layer using
// "anchor_target" overrides one using "anchorTarget". Nested tables merge
// key by key with exact names. Values taken from src are copied.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	spelling := make(map[string]string, len(dst))
	for key := range dst {
		spelling[NormalizeKey(key)] = key
	}
	for key, val := range src {
		norm := NormalizeKey(key)
		prev := dst[key]
		if old, ok := spelling[norm]; ok && old != key {
			prev = dst[old]
			delete(dst, old)
		}
		spelling[norm] = key
		dst[key] = mergeValue(prev, val)
	}
	return dst
}

func mergeValue(prev, val any) any {
	table, ok := val.(map[string]any)
	if !ok {
		return copyValue(val)
	}
	into, ok := prev.(map[string]any)
	if !ok {
		into = make(map[string]any, len(table))
	}
	for k, item := range table {
		into[k] = mergeValue(into[k], item)
	}
	return into
}

func copyValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return mergeValue(nil, v)
	case []any:
		out := slices.Clone(v)
		for i := range out {
			out[i] = copyValue(out[i])
		}
		return out
	}
	return val
}

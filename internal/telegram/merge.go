package telegram

// mergeParams returns base with over merged on top: nested objects merge
// recursively, lists concatenate and any other value from over replaces the
// one in base. Neither input is modified.
func mergeParams(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = cloneValue(v)
	}
	for k, v := range over {
		cur, ok := out[k]
		if !ok {
			out[k] = cloneValue(v)
			continue
		}
		switch cv := cur.(type) {
		case map[string]any:
			if ov, ok := v.(map[string]any); ok {
				out[k] = mergeParams(cv, ov)
				continue
			}
		case []any:
			if ov, ok := v.([]any); ok {
				out[k] = append(cv, cloneSlice(ov)...)
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		return cloneSlice(t)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

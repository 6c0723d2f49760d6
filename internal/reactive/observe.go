package reactive

import (
	"slices"
)

// Namer returns a fresh unique record name.
type Namer func() string

// Observe converts decoded data into observed values: maps become records,
// slices become lists, everything else is returned unchanged.
func Observe(v any, name Namer) any {
	switch val := v.(type) {
	case map[string]any:
		fields := make(map[string]any, len(val))
		for k, elem := range val {
			fields[k] = Observe(elem, name)
		}
		return Wrap(fields, name())
	case []any:
		items := make([]any, len(val))
		for i, elem := range val {
			items[i] = Observe(elem, name)
		}
		return NewList(items...)
	default:
		return v
	}
}

// Snapshot converts observed values back into plain maps and slices.
// Only a record's own fields are included.
func Snapshot(v any) any {
	switch val := v.(type) {
	case *Record:
		if val == nil {
			return nil
		}
		out := make(map[string]any, len(val.fields))
		for _, k := range val.keys {
			out[k] = Snapshot(val.fields[k])
		}
		return out
	case *List:
		if val == nil {
			return nil
		}
		out := make([]any, len(val.items))
		for i, elem := range val.items {
			out[i] = Snapshot(elem)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

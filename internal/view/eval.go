package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/strand/internal/reactive"
)

// dep is a record field read while evaluating a path.
type dep struct {
	rec *reactive.Record
	key string
}

// deps lists what an evaluation read. lists holds collections traversed on
// the way to the result; the result itself is not included.
type deps struct {
	fields []dep
	lists  []*reactive.List
}

// evaluate resolves a dotted path against scope.
//
// Segments index records (with delegation), collections (decimal index or
// "length") and plain maps. A missing segment yields nil, not an error.
func evaluate(scope *reactive.Record, path string) (any, deps, error) {
	var d deps
	segments := strings.Split(strings.TrimSpace(path), ".")
	for i, s := range segments {
		segments[i] = strings.TrimSpace(s)
		if segments[i] == "" {
			return nil, d, fmt.Errorf("invalid path %q: empty segment", path)
		}
	}

	var cur any = scope
	for i, seg := range segments {
		if i > 0 {
			if l, ok := cur.(*reactive.List); ok {
				d.lists = append(d.lists, l)
			}
		}
		switch val := cur.(type) {
		case *reactive.Record:
			owner := val.Owner(seg)
			if owner == nil {
				owner = val
			}
			d.fields = append(d.fields, dep{rec: owner, key: seg})
			cur, _ = owner.Own(seg)
		case map[string]any:
			cur = val[seg]
		case nil:
			return nil, d, nil
		default:
			coll, ok := reactive.AsCollection(cur)
			if !ok {
				return nil, d, nil
			}
			if seg == reactive.LengthProperty {
				cur = coll.Len()
				continue
			}
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, d, nil
			}
			cur = coll.At(idx)
		}
	}
	return cur, d, nil
}

// display formats a value for a text node.
func display(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *reactive.Record, *reactive.List:
		return fmt.Sprint(reactive.Snapshot(val))
	default:
		return fmt.Sprint(val)
	}
}

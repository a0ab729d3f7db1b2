package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// setPath writes value at a dotted path inside doc and returns the
// updated document. Path segments name object properties, or array
// indices when the segment is numeric and the node is an array.
// Missing intermediate objects are created; descending through a
// scalar, or indexing an array out of range, is an error.
//
// Nodes along the path are copied rather than mutated, so documents
// already handed out to readers are never modified underneath them.
func setPath(doc any, path string, value any) (any, error) {
	trimmed := strings.TrimPrefix(path, "$")
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return value, nil
	}

	parts := strings.Split(trimmed, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return setNested(doc, parts, value)
}

func setNested(node any, parts []string, value any) (any, error) {
	if len(parts) == 0 {
		return value, nil
	}

	seg := parts[0]
	rest := parts[1:]

	if idx, err := strconv.Atoi(seg); err == nil {
		if arr, ok := node.([]any); ok {
			if idx < 0 || idx >= len(arr) {
				return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, len(arr))
			}
			updated, err := setNested(arr[idx], rest, value)
			if err != nil {
				return nil, err
			}
			next := make([]any, len(arr))
			copy(next, arr)
			next[idx] = updated
			return next, nil
		}
		// A numeric segment on an object falls through and is
		// treated as a property name.
	}

	switch obj := node.(type) {
	case map[string]any:
		child := any(nil)
		if v, ok := obj[seg]; ok {
			child = v
		}
		if child == nil {
			child = map[string]any{}
		}

		var updated any
		var err error
		if len(rest) == 0 {
			updated = value
		} else {
			updated, err = setNested(child, rest, value)
			if err != nil {
				return nil, err
			}
		}

		next := make(map[string]any, len(obj)+1)
		for k, v := range obj {
			next[k] = v
		}
		next[seg] = updated
		return next, nil

	case nil:
		return setNested(map[string]any{}, parts, value)

	default:
		return nil, fmt.Errorf("%w: segment %q addresses a %T", ErrNotAnObject, seg, node)
	}
}

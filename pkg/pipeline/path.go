package pipeline

import (
	"strconv"
	"strings"
)

// ResolvePath walks a dotted path with optional [n] index segments
// (e.g. "orders[0].total") through a JSON-like value. The second return
// is false the moment a segment is missing, indexes out of bounds, or
// hits a non-container — it never panics. A present-but-null value
// resolves with ok=true; strict-mode reference checks care about
// presence, not nullness.
func ResolvePath(value any, path string) (any, bool) {
	if path == "" {
		return value, true
	}
	current := value
	for _, segment := range strings.Split(path, ".") {
		key, indexes, ok := splitSegment(segment)
		if !ok {
			return nil, false
		}
		if key != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			v, present := m[key]
			if !present {
				return nil, false
			}
			current = v
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// splitSegment parses "key", "key[1]" or "key[1][2]" into the key and
// its index chain.
func splitSegment(segment string) (string, []int, bool) {
	bracket := strings.IndexByte(segment, '[')
	if bracket < 0 {
		if segment == "" {
			return "", nil, false
		}
		return segment, nil, true
	}
	key := segment[:bracket]
	if key == "" {
		return "", nil, false
	}
	var indexes []int
	rest := segment[bracket:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		close := strings.IndexByte(rest, ']')
		if close < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:close])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, n)
		rest = rest[close+1:]
	}
	return key, indexes, true
}

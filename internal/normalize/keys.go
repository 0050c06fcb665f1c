package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var snakeSegment = regexp.MustCompile(`_[a-z]`)

// CamelKeys rewrites every object key of a decoded JSON value from snake_case to camelCase.
// Nested objects and arrays are walked, everything else is returned as is.
// When two keys collide after conversion, the one already in camelCase wins; otherwise
// the first in byte order does.
func CamelKeys(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]any, len(vv))
		for _, k := range keys {
			ck := camelKey(k)
			if _, taken := out[ck]; taken && ck != k {
				continue
			}
			out[ck] = CamelKeys(vv[k])
		}
		return out
	case []any:
		out := make([]any, len(vv))
		for i, elem := range vv {
			out[i] = CamelKeys(elem)
		}
		return out
	default:
		return v
	}
}

func camelKey(k string) string {
	return snakeSegment.ReplaceAllStringFunc(k, func(s string) string {
		return strings.ToUpper(s[1:])
	})
}

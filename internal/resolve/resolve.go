// Package resolve implements path, placeholder, and value-format resolution
// against a nested render context. Everything here is pure and never fails:
// a miss resolves to nil or an empty string so a single bad field cannot
// abort a render pass.
package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Path walks a dotted path through a nested context and returns the value at
// the end, or nil the first time a segment is missing, null, or the walked
// value is not a traversable record.
func Path(context map[string]interface{}, path string) interface{} {
	if context == nil || path == "" {
		return nil
	}

	var current interface{} = context
	for _, segment := range strings.Split(path, ".") {
		record, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}

		value, ok := record[segment]
		if !ok || value == nil {
			return nil
		}
		current = value
	}

	return current
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

// Compose expands {dotted.path} placeholders inside free text against the
// context. Unresolvable tokens become empty strings; text without tokens
// passes through unchanged. No formatting is applied, only raw coercion.
func Compose(context map[string]interface{}, template string) string {
	if !strings.Contains(template, "{") {
		return template
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		path := token[1 : len(token)-1]
		return Stringify(Path(context, path))
	})
}

// Stringify coerces a resolved value to its display string. Nil becomes the
// empty string; JSON numbers drop their trailing ".0" noise.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

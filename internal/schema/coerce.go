package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultArrayDelimiter separates array items in raw text input.
const DefaultArrayDelimiter = ","

// Coerce converts raw textual input into a value typed per the field spec.
// Failure is reported through the second return value, never as an error or
// panic: a coercion miss is a validation condition, not control flow.
func Coerce(raw string, f *FieldSpec) (any, bool) {
	return CoerceWith(raw, f, DefaultArrayDelimiter)
}

// CoerceWith is Coerce with an explicit array item delimiter.
func CoerceWith(raw string, f *FieldSpec, delim string) (any, bool) {
	switch f.Type {
	case TypeString:
		return raw, true

	case TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true

	case TypeNumber:
		// strconv is locale-independent: the decimal separator is always
		// a point regardless of the user's locale.
		x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, false
		}
		return x, true

	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		default:
			return nil, false
		}

	case TypeEnum:
		elem := &FieldSpec{Type: f.ElemType}
		v, ok := CoerceWith(raw, elem, delim)
		if !ok {
			return nil, false
		}
		for _, lit := range f.Enum {
			if literalString(v) == literalString(lit) {
				return lit, true
			}
		}
		return nil, false

	case TypeOneOf:
		for _, opt := range f.OneOf {
			if raw == opt.Const {
				return opt.Const, true
			}
		}
		return nil, false

	case TypeArray:
		if delim == "" {
			delim = DefaultArrayDelimiter
		}
		if strings.TrimSpace(raw) == "" {
			return []any{}, true
		}
		parts := strings.Split(raw, delim)
		values := make([]any, 0, len(parts))
		for _, part := range parts {
			v, ok := CoerceWith(strings.TrimSpace(part), f.Items, delim)
			if !ok {
				return nil, false
			}
			values = append(values, v)
		}
		return values, true

	default:
		return nil, false
	}
}

// FormatValue renders a typed value back to the textual form Coerce accepts,
// so that Coerce(FormatValue(v), f) round-trips for representable values.
// Used to pre-fill editable drafts during back navigation.
func FormatValue(v any, f *FieldSpec) string {
	return FormatValueWith(v, f, DefaultArrayDelimiter)
}

// FormatValueWith is FormatValue with an explicit array item delimiter.
func FormatValueWith(v any, f *FieldSpec, delim string) string {
	if v == nil {
		return ""
	}
	if f != nil && f.Type == TypeArray {
		if delim == "" {
			delim = DefaultArrayDelimiter
		}
		items, ok := v.([]any)
		if !ok {
			return literalString(v)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = FormatValueWith(item, f.Items, delim)
		}
		return strings.Join(parts, delim)
	}
	return literalString(v)
}

// literalString renders a scalar the way it would appear typed at a prompt.
// JSON numbers arrive as float64; integral ones are printed without a
// decimal point so enum membership checks against int64 input line up.
func literalString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

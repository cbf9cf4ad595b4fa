package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks a raw candidate for one field against the field's own
// constraints and the values accepted for earlier fields. It returns the
// coerced value and a list of human-readable error messages; an empty list
// means the candidate is valid. Validation is pure: accepted is never
// mutated.
//
// Check order: required-but-empty first (short-circuits everything else),
// then coercion, then type-specific constraints, then registered
// cross-field rules. All violated constraints are reported, not just the
// first.
func (m *Model) Validate(f *FieldSpec, raw string, accepted map[string]any) (any, []string) {
	return m.ValidateWith(f, raw, accepted, DefaultArrayDelimiter)
}

// ValidateWith is Validate with an explicit array item delimiter.
func (m *Model) ValidateWith(f *FieldSpec, raw string, accepted map[string]any, delim string) (any, []string) {
	value, errs := checkField(f, raw, delim)
	if value == nil && len(errs) == 0 {
		// Empty optional field: valid, nothing further to check.
		return nil, nil
	}
	if len(errs) == 0 {
		for _, rule := range m.rules[f.Name] {
			errs = append(errs, rule(f, value, accepted)...)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return value, nil
}

// checkField runs the field-local checks: required-empty, coercion, and
// declared constraints. Arrays are validated item by item so the error list
// identifies which item failed.
func checkField(f *FieldSpec, raw string, delim string) (any, []string) {
	if strings.TrimSpace(raw) == "" {
		if f.Required {
			return nil, []string{fmt.Sprintf("%s is required", f.Label())}
		}
		return nil, nil
	}

	if f.Type == TypeArray {
		return checkArray(f, raw, delim)
	}

	value, ok := CoerceWith(raw, f, delim)
	if !ok {
		return nil, []string{coercionError(f)}
	}

	if errs := checkConstraints(f, value); len(errs) > 0 {
		return nil, errs
	}
	return value, nil
}

// checkArray splits the raw input and validates each item against the items
// sub-schema, then applies the array-level constraints.
func checkArray(f *FieldSpec, raw string, delim string) (any, []string) {
	if delim == "" {
		delim = DefaultArrayDelimiter
	}
	parts := strings.Split(raw, delim)

	var errs []string
	values := make([]any, 0, len(parts))
	for i, part := range parts {
		itemRaw := strings.TrimSpace(part)
		if itemRaw == "" {
			errs = append(errs, fmt.Sprintf("%s: item %d is empty", f.Label(), i+1))
			continue
		}
		v, ok := CoerceWith(itemRaw, f.Items, delim)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: item %d (%q): %s", f.Label(), i+1, itemRaw, coercionReason(f.Items)))
			continue
		}
		for _, msg := range checkConstraints(f.Items, v) {
			errs = append(errs, fmt.Sprintf("%s: item %d (%q): %s", f.Label(), i+1, itemRaw, msg))
		}
		values = append(values, v)
	}

	if f.MinItems > 0 && len(values) < f.MinItems {
		errs = append(errs, fmt.Sprintf("%s: at least %d items required", f.Label(), f.MinItems))
	}
	if f.MaxItems != nil && len(values) > *f.MaxItems {
		errs = append(errs, fmt.Sprintf("%s: at most %d items allowed", f.Label(), *f.MaxItems))
	}
	if f.UniqueItems {
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			key := literalString(v)
			if seen[key] {
				errs = append(errs, fmt.Sprintf("%s: duplicate item %q", f.Label(), key))
			}
			seen[key] = true
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

// checkConstraints applies the declared constraints to an already coerced
// value. Every violated constraint contributes one message.
func checkConstraints(f *FieldSpec, value any) []string {
	var errs []string

	if num, ok := asNumber(value); ok {
		if f.Minimum != nil && num < *f.Minimum {
			errs = append(errs, fmt.Sprintf("%s must be >= %s", f.Label(), literalString(*f.Minimum)))
		}
		if f.Maximum != nil && num > *f.Maximum {
			errs = append(errs, fmt.Sprintf("%s must be <= %s", f.Label(), literalString(*f.Maximum)))
		}
	}

	if s, ok := value.(string); ok {
		length := utf8.RuneCountInString(s)
		if f.MinLength != nil && length < *f.MinLength {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters", f.Label(), *f.MinLength))
		}
		if f.MaxLength != nil && length > *f.MaxLength {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters", f.Label(), *f.MaxLength))
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			errs = append(errs, fmt.Sprintf("%s does not match pattern %s", f.Label(), f.Pattern.String()))
		}
	}

	return errs
}

// coercionError builds the single "wrong type" message for a field.
func coercionError(f *FieldSpec) string {
	return fmt.Sprintf("%s: %s", f.Label(), coercionReason(f))
}

func coercionReason(f *FieldSpec) string {
	switch f.Type {
	case TypeInteger:
		return "expected an integer"
	case TypeNumber:
		return "expected a number"
	case TypeBoolean:
		return "expected true or false"
	case TypeEnum:
		opts := make([]string, len(f.Enum))
		for i, lit := range f.Enum {
			opts[i] = literalString(lit)
		}
		return "must be one of: " + strings.Join(opts, ", ")
	case TypeOneOf:
		opts := make([]string, len(f.OneOf))
		for i, opt := range f.OneOf {
			opts[i] = opt.Const
		}
		return "must be one of: " + strings.Join(opts, ", ")
	default:
		return "value does not match expected type"
	}
}

// asNumber widens integer and float values for range checks.
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// Package schema parses a JSON Schema subset into an ordered, typed field
// model and provides coercion and incremental validation for form input.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// FieldType identifies the resolved type of a field. The set is closed:
// every field is resolved to exactly one of these at parse time so that
// downstream code dispatches over a fixed variant instead of inspecting
// raw schema maps.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeNumber
	TypeBoolean
	TypeEnum
	TypeOneOf
	TypeArray
)

// String returns the JSON Schema name for the field type.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeEnum:
		return "enum"
	case TypeOneOf:
		return "oneOf"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// ConfigurationError reports a malformed schema. It is returned from Parse
// before any wizard is created; a malformed schema is a caller bug, not a
// per-field validation failure.
type ConfigurationError struct {
	Field  string // Property name, empty for root-level problems
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema: field %q: %s", e.Field, e.Reason)
}

// OneOfOption is a single {const, title} pair from a oneOf list.
type OneOfOption struct {
	Const string
	Title string
}

// FieldSpec describes one schema property. Immutable once parsed.
type FieldSpec struct {
	Name        string
	Type        FieldType
	Required    bool
	Title       string
	Description string
	Default     any

	// Scalar constraints
	Minimum   *float64
	Maximum   *float64
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp

	// Enum holds the allowed literals. ElemType is the scalar type the
	// literals (and user input) are coerced to before membership checks.
	Enum     []any
	ElemType FieldType

	// OneOf options, in declaration order.
	OneOf []OneOfOption

	// Array constraints. Items is the sub-schema each element is
	// validated against (its Name is empty).
	Items       *FieldSpec
	MinItems    int
	MaxItems    *int
	UniqueItems bool
}

// Label returns the display title for the field, falling back to its name.
func (f *FieldSpec) Label() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// CrossFieldRule validates a candidate value for a field against values
// accepted for earlier fields. Rules must not mutate accepted.
type CrossFieldRule func(f *FieldSpec, value any, accepted map[string]any) []string

// Model is an ordered, read-only sequence of field specs parsed from a
// schema object. Field order is exactly the order properties appear in the
// source schema.
type Model struct {
	fields []*FieldSpec
	byName map[string]*FieldSpec
	rules  map[string][]CrossFieldRule
}

// Fields returns the fields in declaration order.
func (m *Model) Fields() []*FieldSpec { return m.fields }

// Len returns the number of fields.
func (m *Model) Len() int { return len(m.fields) }

// Field returns the spec for name, or nil if the schema has no such field.
func (m *Model) Field(name string) *FieldSpec { return m.byName[name] }

// AddRule registers a cross-field rule for the named field. Rules run after
// the field's own constraint checks, in registration order.
func (m *Model) AddRule(field string, rule CrossFieldRule) error {
	if m.byName[field] == nil {
		return fmt.Errorf("no such field: %s", field)
	}
	m.rules[field] = append(m.rules[field], rule)
	return nil
}

// rawField mirrors the supported JSON Schema keywords for one property.
type rawField struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Default     any    `json:"default"`
	Enum        []any  `json:"enum"`
	OneOf       []struct {
		Const any    `json:"const"`
		Title string `json:"title"`
	} `json:"oneOf"`
	Items       json.RawMessage `json:"items"`
	Minimum     *float64        `json:"minimum"`
	Maximum     *float64        `json:"maximum"`
	MinLength   *int            `json:"minLength"`
	MaxLength   *int            `json:"maxLength"`
	Pattern     string          `json:"pattern"`
	MinItems    int             `json:"minItems"`
	MaxItems    *int            `json:"maxItems"`
	UniqueItems bool            `json:"uniqueItems"`
}

// Parse builds a Model from raw JSON Schema bytes. The schema must be an
// object with a "properties" map; "required" at the root marks required
// fields. Property order in the source text is preserved.
//
// Parse fails with a *ConfigurationError when a property has no
// recognizable type discriminator (no type, enum, or oneOf), when an
// enum/oneOf list is empty, or when an array field has no items sub-schema.
func Parse(raw []byte) (*Model, error) {
	names, props, err := orderedProperties(raw)
	if err != nil {
		return nil, err
	}

	var root struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	required := make(map[string]bool, len(root.Required))
	for _, name := range root.Required {
		required[name] = true
	}

	m := &Model{
		byName: make(map[string]*FieldSpec, len(names)),
		rules:  make(map[string][]CrossFieldRule),
	}
	for _, name := range names {
		f, err := parseField(name, props[name])
		if err != nil {
			return nil, err
		}
		f.Required = required[name]
		m.fields = append(m.fields, f)
		m.byName[name] = f
	}
	return m, nil
}

// orderedProperties walks the JSON token stream to recover property names
// in declaration order, which plain map unmarshaling would lose.
func orderedProperties(raw []byte) ([]string, map[string]json.RawMessage, error) {
	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}
	if doc.Properties == nil {
		return nil, nil, &ConfigurationError{Reason: "schema has no properties"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, &ConfigurationError{Reason: err.Error()}
		}
		key, _ := keyTok.(string)
		if key != "properties" {
			// Skip the value of this root key.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, &ConfigurationError{Reason: err.Error()}
			}
			continue
		}

		if _, err := dec.Token(); err != nil { // properties {
			return nil, nil, &ConfigurationError{Reason: err.Error()}
		}
		var names []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, nil, &ConfigurationError{Reason: err.Error()}
			}
			name, _ := nameTok.(string)
			names = append(names, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, &ConfigurationError{Reason: err.Error()}
			}
		}
		return names, doc.Properties, nil
	}
	return nil, nil, &ConfigurationError{Reason: "schema has no properties"}
}

// parseField resolves one property to a typed FieldSpec.
func parseField(name string, raw json.RawMessage) (*FieldSpec, error) {
	var rf rawField
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil, &ConfigurationError{Field: name, Reason: err.Error()}
	}

	f := &FieldSpec{
		Name:        name,
		Title:       rf.Title,
		Description: rf.Description,
		Default:     rf.Default,
		Minimum:     rf.Minimum,
		Maximum:     rf.Maximum,
		MinLength:   rf.MinLength,
		MaxLength:   rf.MaxLength,
		MinItems:    rf.MinItems,
		MaxItems:    rf.MaxItems,
		UniqueItems: rf.UniqueItems,
	}

	if rf.Pattern != "" {
		re, err := regexp.Compile(rf.Pattern)
		if err != nil {
			return nil, &ConfigurationError{Field: name, Reason: fmt.Sprintf("bad pattern: %v", err)}
		}
		f.Pattern = re
	}

	switch {
	case rf.Type == "array":
		if len(rf.Items) == 0 || string(rf.Items) == "null" {
			return nil, &ConfigurationError{Field: name, Reason: "array field has no items sub-schema"}
		}
		items, err := parseField("", rf.Items)
		if err != nil {
			return nil, &ConfigurationError{Field: name, Reason: fmt.Sprintf("items: %v", err)}
		}
		f.Type = TypeArray
		f.Items = items

	case rf.OneOf != nil:
		if len(rf.OneOf) == 0 {
			return nil, &ConfigurationError{Field: name, Reason: "oneOf list is empty"}
		}
		f.Type = TypeOneOf
		for _, opt := range rf.OneOf {
			o := OneOfOption{Const: literalString(opt.Const), Title: opt.Title}
			if o.Title == "" {
				o.Title = o.Const
			}
			f.OneOf = append(f.OneOf, o)
		}

	case rf.Enum != nil:
		if len(rf.Enum) == 0 {
			return nil, &ConfigurationError{Field: name, Reason: "enum list is empty"}
		}
		f.Type = TypeEnum
		f.Enum = rf.Enum
		elem, ok := scalarType(rf.Type)
		if !ok && rf.Type != "" {
			return nil, &ConfigurationError{Field: name, Reason: fmt.Sprintf("unsupported enum type %q", rf.Type)}
		}
		if rf.Type == "" {
			elem = TypeString
		}
		f.ElemType = elem

	default:
		t, ok := scalarType(rf.Type)
		if !ok {
			return nil, &ConfigurationError{Field: name, Reason: "no recognizable type (need type, enum, or oneOf)"}
		}
		f.Type = t
	}

	return f, nil
}

// scalarType maps a JSON Schema type name to a scalar FieldType.
func scalarType(name string) (FieldType, bool) {
	switch name {
	case "string":
		return TypeString, true
	case "integer":
		return TypeInteger, true
	case "number":
		return TypeNumber, true
	case "boolean":
		return TypeBoolean, true
	default:
		return TypeString, false
	}
}

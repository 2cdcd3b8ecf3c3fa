package pane

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/fundiary/fundiary/pkg/types"
)

// ValueType is the declared type of one schema field.
type ValueType string

// Schema value types.
const (
	TypeString     ValueType = "string"
	TypeNumber     ValueType = "number"
	TypeInteger    ValueType = "integer"
	TypeBoolean    ValueType = "boolean"
	TypeDate       ValueType = "date"
	TypeStringList ValueType = "stringList"
)

// DateLayout is the calendar date encoding used for date fields.
const DateLayout = "2006-01-02"

// FieldSchema constrains the values of one data key. Min and Max bound
// numeric values inclusively. Enum restricts strings and list items.
// MinItems and MaxItems bound string lists.
type FieldSchema struct {
	Type     ValueType `json:"type"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Enum     []string  `json:"enum,omitempty"`
	MinItems *int      `json:"minItems,omitempty"`
	MaxItems *int      `json:"maxItems,omitempty"`
}

// Schema maps data keys to their constraints. Every key is required and
// keys outside the schema are rejected.
type Schema map[string]FieldSchema

// Keys returns the schema keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks data against the schema. Errors wrap ErrTypeMismatch,
// ErrOutOfRange, or ErrFieldNotFound from pkg/types.
func (s Schema) Validate(data map[string]any) error {
	for _, key := range s.Keys() {
		v, ok := data[key]
		if !ok {
			return fmt.Errorf("field %q missing: %w", key, types.ErrFieldNotFound)
		}
		if err := s[key].validate(v); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	for key := range data {
		if _, ok := s[key]; !ok {
			return fmt.Errorf("field %q not in schema: %w", key, types.ErrFieldNotFound)
		}
	}
	return nil
}

func (fs FieldSchema) validate(v any) error {
	switch fs.Type {
	case TypeString:
		str, ok := v.(string)
		if !ok {
			return mismatch(fs.Type, v)
		}
		return fs.checkEnum(str)
	case TypeNumber, TypeInteger:
		n, ok := v.(float64)
		if !ok {
			return mismatch(fs.Type, v)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%v is not finite: %w", n, types.ErrOutOfRange)
		}
		if fs.Type == TypeInteger && n != math.Trunc(n) {
			return fmt.Errorf("%v is not an integer: %w", n, types.ErrTypeMismatch)
		}
		if fs.Min != nil && n < *fs.Min {
			return fmt.Errorf("%v below minimum %v: %w", n, *fs.Min, types.ErrOutOfRange)
		}
		if fs.Max != nil && n > *fs.Max {
			return fmt.Errorf("%v above maximum %v: %w", n, *fs.Max, types.ErrOutOfRange)
		}
		return nil
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return mismatch(fs.Type, v)
		}
		return nil
	case TypeDate:
		str, ok := v.(string)
		if !ok {
			return mismatch(fs.Type, v)
		}
		if _, err := ParseDate(str); err != nil {
			return fmt.Errorf("%q is not a date: %w", str, types.ErrTypeMismatch)
		}
		return nil
	case TypeStringList:
		items, ok := v.([]any)
		if !ok {
			return mismatch(fs.Type, v)
		}
		if fs.MinItems != nil && len(items) < *fs.MinItems {
			return fmt.Errorf("%d items, want at least %d: %w", len(items), *fs.MinItems, types.ErrOutOfRange)
		}
		if fs.MaxItems != nil && len(items) > *fs.MaxItems {
			return fmt.Errorf("%d items, want at most %d: %w", len(items), *fs.MaxItems, types.ErrOutOfRange)
		}
		for i, item := range items {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("item %d: %w", i, mismatch(TypeString, item))
			}
			if err := fs.checkEnum(str); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown schema type %q: %w", fs.Type, types.ErrTypeMismatch)
	}
}

func (fs FieldSchema) checkEnum(s string) error {
	if len(fs.Enum) == 0 || slices.Contains(fs.Enum, s) {
		return nil
	}
	return fmt.Errorf("%q not in %v: %w", s, fs.Enum, types.ErrOutOfRange)
}

func (fs FieldSchema) clone() FieldSchema {
	out := fs
	out.Min = clonePtr(fs.Min)
	out.Max = clonePtr(fs.Max)
	out.MinItems = clonePtr(fs.MinItems)
	out.MaxItems = clonePtr(fs.MaxItems)
	out.Enum = slices.Clone(fs.Enum)
	return out
}

func (s Schema) clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}

func mismatch(want ValueType, got any) error {
	return fmt.Errorf("want %s, got %T: %w", want, got, types.ErrTypeMismatch)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// normalize converts Go values into the form encoding/json decodes into, so
// in-memory data compares equal to data read back from storage.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return v
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		return normalizeMap(t)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to f, for schema and input bounds.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n, for item count bounds.
func Int(n int) *int { return &n }

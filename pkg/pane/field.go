package pane

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fundiary/fundiary/pkg/types"
)

// FieldDescriptor binds one schema key to an editable input. It is the
// erased form of Field and is what descriptors store.
type FieldDescriptor struct {
	DataKey     string `json:"dataKey"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsParam     bool   `json:"isParam"`
	Input       Input  `json:"input"`
}

func (f FieldDescriptor) clone() FieldDescriptor {
	out := f
	out.Input = f.Input.clone()
	return out
}

// FieldOption adjusts a field under construction.
type FieldOption func(*FieldDescriptor)

// Describe sets the field's description.
func Describe(text string) FieldOption {
	return func(f *FieldDescriptor) { f.Description = text }
}

// Param marks the field as supplied per use, such as when a diary is
// created from a template.
func Param() FieldOption {
	return func(f *FieldDescriptor) { f.IsParam = true }
}

// Placeholder sets the hint shown in an empty input.
func Placeholder(text string) FieldOption {
	return func(f *FieldDescriptor) { f.Input.Placeholder = text }
}

// Length bounds the length of title and text inputs.
func Length(minLen, maxLen int) FieldOption {
	return func(f *FieldDescriptor) {
		f.Input.MinLength = Int(minLen)
		f.Input.MaxLength = Int(maxLen)
	}
}

// Range bounds a number input.
func Range(minVal, maxVal float64) FieldOption {
	return func(f *FieldDescriptor) {
		f.Input.Min = Float(minVal)
		f.Input.Max = Float(maxVal)
	}
}

// Step sets the increment of a number input.
func Step(step float64) FieldOption {
	return func(f *FieldDescriptor) { f.Input.Step = Float(step) }
}

// Unit labels a number input.
func Unit(unit string) FieldOption {
	return func(f *FieldDescriptor) { f.Input.Unit = unit }
}

// AutoToday fills an empty date input with the current day.
func AutoToday() FieldOption {
	return func(f *FieldDescriptor) { f.Input.AutoToday = true }
}

// Items bounds the item count of a bullet list input.
func Items(minItems, maxItems int) FieldOption {
	return func(f *FieldDescriptor) {
		f.Input.MinItems = Int(minItems)
		f.Input.MaxItems = Int(maxItems)
	}
}

// Accept sets the media type patterns of an image input.
func Accept(patterns ...string) FieldOption {
	return func(f *FieldDescriptor) { f.Input.Accept = patterns }
}

// MaxSize sets the byte ceiling of an image input.
func MaxSize(n int64) FieldOption {
	return func(f *FieldDescriptor) { f.Input.MaxSizeBytes = &n }
}

// Field is a typed handle on one data key. Get and Set convert between the
// JSON form held in PaneInstance.Data and T.
type Field[T any] struct {
	desc   FieldDescriptor
	decode func(any) (T, error)
	encode func(T) any
}

func newField[T any](kind InputKind, key, name string, decode func(any) (T, error), encode func(T) any, opts []FieldOption) Field[T] {
	desc := FieldDescriptor{DataKey: key, Name: name, Input: Input{Kind: kind}}
	for _, opt := range opts {
		opt(&desc)
	}
	return Field[T]{desc: desc, decode: decode, encode: encode}
}

// Key returns the data key the field binds.
func (f Field[T]) Key() string { return f.desc.DataKey }

// Erase drops the value type and returns the field's descriptor.
func (f Field[T]) Erase() FieldDescriptor { return f.desc.clone() }

// Get reads the field from inst.
func (f Field[T]) Get(inst types.PaneInstance) (T, error) {
	var zero T
	v, ok := inst.Data[f.desc.DataKey]
	if !ok {
		return zero, fmt.Errorf("get %q: %w", f.desc.DataKey, types.ErrFieldNotFound)
	}
	out, err := f.decode(v)
	if err != nil {
		return zero, fmt.Errorf("get %q: %w", f.desc.DataKey, err)
	}
	return out, nil
}

// Set writes the field on inst. Like SetField it does not validate.
func (f Field[T]) Set(inst *types.PaneInstance, v T) error {
	return SetField(inst, f.desc.DataKey, f.encode(v))
}

// TitleField is a single-line string field.
func TitleField(key, name string, opts ...FieldOption) Field[string] {
	return newField(KindTitle, key, name, asString, encodeAny[string], opts)
}

// TextField is a multi-line string field.
func TextField(key, name string, opts ...FieldOption) Field[string] {
	return newField(KindText, key, name, asString, encodeAny[string], opts)
}

// NumberField is a numeric field.
func NumberField(key, name string, opts ...FieldOption) Field[float64] {
	return newField(KindNumber, key, name, asFloat, encodeAny[float64], opts)
}

// CheckboxField is a boolean field.
func CheckboxField(key, name string, opts ...FieldOption) Field[bool] {
	return newField(KindCheckbox, key, name, asBool, encodeAny[bool], opts)
}

// ColorField is a 24-bit RGB field stored as an integer.
func ColorField(key, name string, opts ...FieldOption) Field[colorful.Color] {
	return newField(KindColor, key, name, asColor, encodeColor, opts)
}

// DateField is a calendar date field stored as YYYY-MM-DD.
func DateField(key, name string, opts ...FieldOption) Field[time.Time] {
	return newField(KindDate, key, name, asDate, encodeDate, opts)
}

// SelectField picks one of options.
func SelectField(key, name string, options []Option, opts ...FieldOption) Field[string] {
	opts = append([]FieldOption{withOptions(options, false)}, opts...)
	return newField(KindSelect, key, name, asString, encodeAny[string], opts)
}

// MultiSelectField picks any subset of options.
func MultiSelectField(key, name string, options []Option, opts ...FieldOption) Field[[]string] {
	opts = append([]FieldOption{withOptions(options, true)}, opts...)
	return newField(KindSelect, key, name, asStrings, encodeStrings, opts)
}

// BulletListField is an ordered list of strings.
func BulletListField(key, name string, opts ...FieldOption) Field[[]string] {
	return newField(KindBulletList, key, name, asStrings, encodeStrings, opts)
}

// ImageField holds the id of a row in the Images table.
func ImageField(key, name string, opts ...FieldOption) Field[string] {
	return newField(KindImage, key, name, asString, encodeAny[string], opts)
}

// ImageListField holds an ordered list of Images table ids.
func ImageListField(key, name string, opts ...FieldOption) Field[[]string] {
	return newField(KindImage, key, name, asStrings, encodeStrings, opts)
}

func withOptions(options []Option, multiple bool) FieldOption {
	return func(f *FieldDescriptor) {
		f.Input.Options = options
		f.Input.Multiple = multiple
	}
}

func encodeAny[T any](v T) any { return v }

func encodeStrings(v []string) any { return normalize(v) }

func encodeColor(c colorful.Color) any { return float64(ColorValue(c)) }

func encodeDate(t time.Time) any { return t.Format(DateLayout) }

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch(TypeString, v)
	}
	return s, nil
}

func asFloat(v any) (float64, error) {
	f, ok := normalize(v).(float64)
	if !ok {
		return 0, mismatch(TypeNumber, v)
	}
	return f, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(TypeBoolean, v)
	}
	return b, nil
}

func asDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, mismatch(TypeDate, v)
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, types.ErrTypeMismatch)
	}
	return t, nil
}

func asStrings(v any) ([]string, error) {
	items, ok := normalize(v).([]any)
	if !ok {
		return nil, mismatch(TypeStringList, v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: %w", i, mismatch(TypeString, item))
		}
		out[i] = s
	}
	return out, nil
}

func asColor(v any) (colorful.Color, error) {
	f, err := asFloat(v)
	if err != nil {
		return colorful.Color{}, err
	}
	return ColorFromValue(int(f))
}

package pane

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/fundiary/fundiary/pkg/types"
)

// InputKind selects the editor used for a field.
type InputKind string

// Input kinds.
const (
	KindTitle      InputKind = "title"
	KindText       InputKind = "text"
	KindCheckbox   InputKind = "checkbox"
	KindNumber     InputKind = "number"
	KindColor      InputKind = "color"
	KindDate       InputKind = "date"
	KindSelect     InputKind = "select"
	KindBulletList InputKind = "bulletList"
	KindImage      InputKind = "image"
)

// Kinds lists every input kind.
var Kinds = []InputKind{
	KindTitle, KindText, KindCheckbox, KindNumber, KindColor,
	KindDate, KindSelect, KindBulletList, KindImage,
}

// Option is one choice of a select input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Input describes how a field is edited. Only the constraints relevant to
// Kind are consulted.
type Input struct {
	Kind        InputKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`

	// title, text
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`

	// number
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
	Unit string   `json:"unit,omitempty"`

	// date
	AutoToday bool `json:"autoToday,omitempty"`

	// select
	Options  []Option `json:"options,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`

	// bulletList
	MinItems *int `json:"minItems,omitempty"`
	MaxItems *int `json:"maxItems,omitempty"`

	// image
	Accept       []string `json:"accept,omitempty"`
	MaxSizeBytes *int64   `json:"maxSizeBytes,omitempty"`
}

// AcceptsMedia checks a media type and byte size against an image input.
// Accept patterns may end in /* to match a whole top-level type. An empty
// Accept list allows any media type.
func (in Input) AcceptsMedia(mimeType string, size int64) error {
	if in.Kind != KindImage {
		return fmt.Errorf("%s input takes no media: %w", in.Kind, types.ErrMediaRejected)
	}
	if in.MaxSizeBytes != nil && size > *in.MaxSizeBytes {
		return fmt.Errorf("%d bytes exceeds limit of %d: %w", size, *in.MaxSizeBytes, types.ErrMediaRejected)
	}
	if len(in.Accept) == 0 {
		return nil
	}
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	for _, pattern := range in.Accept {
		if ok, _ := path.Match(strings.ToLower(pattern), base); ok {
			return nil
		}
	}
	return fmt.Errorf("media type %q not in %v: %w", mimeType, in.Accept, types.ErrMediaRejected)
}

// OptionValues returns the values of a select input's options.
func (in Input) OptionValues() []string {
	out := make([]string, len(in.Options))
	for i, o := range in.Options {
		out[i] = o.Value
	}
	return out
}

func (in Input) clone() Input {
	out := in
	out.MinLength = clonePtr(in.MinLength)
	out.MaxLength = clonePtr(in.MaxLength)
	out.Min = clonePtr(in.Min)
	out.Max = clonePtr(in.Max)
	out.Step = clonePtr(in.Step)
	out.MinItems = clonePtr(in.MinItems)
	out.MaxItems = clonePtr(in.MaxItems)
	out.MaxSizeBytes = clonePtr(in.MaxSizeBytes)
	out.Options = slices.Clone(in.Options)
	out.Accept = slices.Clone(in.Accept)
	return out
}

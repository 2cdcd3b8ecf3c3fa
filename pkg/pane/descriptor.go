package pane

import (
	"slices"

	"github.com/fundiary/fundiary/pkg/types"
)

// ResizePolicy limits how a pane's footprint may change. Nil bounds are
// unconstrained. When LockAspect is set the width:height ratio of the
// current size must be kept.
type ResizePolicy struct {
	Min        *types.Size `json:"min,omitempty"`
	Max        *types.Size `json:"max,omitempty"`
	LockAspect bool        `json:"lockAspect,omitempty"`
}

func (p *ResizePolicy) clone() *ResizePolicy {
	if p == nil {
		return nil
	}
	return &ResizePolicy{Min: clonePtr(p.Min), Max: clonePtr(p.Max), LockAspect: p.LockAspect}
}

// Descriptor describes a pane type.
type Descriptor struct {
	Identifier string
	Name       string
	Size       types.Size
	Schema     Schema
	InitData   func() map[string]any
	Fields     []FieldDescriptor
	Resize     *ResizePolicy

	// Component is the render capability of the type. It is stored and
	// handed back to callers but never invoked here.
	Component any
}

// Default returns a fresh copy of the type's default data in JSON form.
func (d Descriptor) Default() map[string]any {
	if d.InitData == nil {
		return map[string]any{}
	}
	return normalizeMap(d.InitData())
}

// Field returns the field bound to key.
func (d Descriptor) Field(key string) (FieldDescriptor, bool) {
	i := slices.IndexFunc(d.Fields, func(f FieldDescriptor) bool { return f.DataKey == key })
	if i < 0 {
		return FieldDescriptor{}, false
	}
	return d.Fields[i].clone(), true
}

// Params returns the fields marked IsParam, in order.
func (d Descriptor) Params() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range d.Fields {
		if f.IsParam {
			out = append(out, f.clone())
		}
	}
	return out
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Schema = d.Schema.clone()
	out.Resize = d.Resize.clone()
	out.Fields = make([]FieldDescriptor, len(d.Fields))
	for i, f := range d.Fields {
		out.Fields[i] = f.clone()
	}
	return out
}

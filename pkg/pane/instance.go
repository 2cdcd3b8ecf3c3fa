package pane

import (
	"fmt"

	"github.com/fundiary/fundiary/pkg/types"
)

// Create builds a new instance of d at pos with a fresh id and the type's
// default data. A zero size selects the type's default footprint.
func Create(d Descriptor, pos types.Position, size types.Size) types.PaneInstance {
	if size == (types.Size{}) {
		size = d.Size
	}
	return types.PaneInstance{
		ID:   NewInstanceID(),
		Name: d.Name,
		Pane: d.Identifier,
		Pos:  pos,
		Size: size,
		Data: d.Default(),
	}
}

// SetField replaces one data value in place. The key must already be
// present in the instance data. The value is not checked against the
// schema; call Registry.Validate before persisting.
func SetField(inst *types.PaneInstance, key string, value any) error {
	if _, ok := inst.Data[key]; !ok {
		return fmt.Errorf("set %q on pane %s: %w", key, inst.ID, types.ErrFieldNotFound)
	}
	inst.Data[key] = normalize(value)
	return nil
}

// ErasedField is a field descriptor paired with the instance's value.
type ErasedField struct {
	FieldDescriptor
	Value any `json:"value"`
}

// ErasedInstance is a pane instance with its fields described generically,
// for transport to editors that do not know the pane type.
type ErasedInstance struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Pane   string         `json:"pane"`
	Pos    types.Position `json:"pos"`
	Size   types.Size     `json:"size"`
	Fields []ErasedField  `json:"fields"`
}

// Erase pairs each field of d with its value in inst, in field order.
// Data keys without a field are not included.
func Erase(d Descriptor, inst types.PaneInstance) ErasedInstance {
	out := ErasedInstance{
		ID:     inst.ID,
		Name:   inst.Name,
		Pane:   inst.Pane,
		Pos:    inst.Pos,
		Size:   inst.Size,
		Fields: make([]ErasedField, 0, len(d.Fields)),
	}
	data := inst.Clone().Data
	for _, f := range d.Fields {
		out.Fields = append(out.Fields, ErasedField{FieldDescriptor: f.clone(), Value: data[f.DataKey]})
	}
	return out
}

package template

import (
	"errors"
	"fmt"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// Param is a field the user fills in before the draft is first saved.
type Param struct {
	PaneID   string           `json:"paneId"`
	PaneName string           `json:"paneName"`
	Field    pane.ErasedField `json:"field"`
}

// Draft is an unsaved diary created from a template.
type Draft struct {
	registry *pane.Registry
	diary    *types.Diary
}

// Diary returns the draft document. Pass it to DiaryTable.Save to persist.
func (d *Draft) Diary() *types.Diary {
	return d.diary
}

// Params lists the param fields of every pane, in pane then field order.
// Panes whose type is not registered contribute nothing.
func (d *Draft) Params() []Param {
	var out []Param
	for _, p := range d.diary.Panes {
		desc, ok := d.registry.Get(p.Pane)
		if !ok {
			continue
		}
		for _, f := range pane.Erase(desc, p).Fields {
			if f.IsParam {
				out = append(out, Param{PaneID: p.ID, PaneName: p.Name, Field: f})
			}
		}
	}
	return out
}

// SetParam sets a param field on one pane of the draft. Fields not marked
// as params keep the template's values and cannot be set this way.
func (d *Draft) SetParam(paneID, key string, value any) error {
	for n := range d.diary.Panes {
		p := &d.diary.Panes[n]
		if p.ID != paneID {
			continue
		}
		desc, ok := d.registry.Get(p.Pane)
		if !ok {
			return fmt.Errorf("set param on pane %s: %w", paneID, types.ErrUnknownPane)
		}
		f, ok := desc.Field(key)
		if !ok || !f.IsParam {
			return fmt.Errorf("set param %q on pane %s: not a param field: %w", key, paneID, types.ErrFieldNotFound)
		}
		return pane.SetField(p, key, value)
	}
	return fmt.Errorf("set param on pane %s: %w", paneID, types.ErrNotFound)
}

// Validate checks every pane of the draft against its type.
func (d *Draft) Validate() error {
	var errs []error
	for _, p := range d.diary.Panes {
		if err := d.registry.Validate(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

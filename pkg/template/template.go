// Package template turns stored templates into unsaved diary drafts.
package template

import (
	"context"
	"fmt"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

// Source loads templates. types.TemplateTable satisfies it.
type Source interface {
	Get(ctx context.Context, id string) (*types.Template, error)
}

// Instantiator creates diary drafts from templates.
type Instantiator struct {
	source      Source
	registry    *pane.Registry
	resetParams bool
}

// Option configures an Instantiator.
type Option func(*Instantiator)

// WithResetParams makes drafts start param fields from the pane type's
// default data instead of the template's values.
func WithResetParams() Option {
	return func(i *Instantiator) { i.resetParams = true }
}

// NewInstantiator creates an Instantiator reading from source.
func NewInstantiator(source Source, registry *pane.Registry, opts ...Option) *Instantiator {
	i := &Instantiator{source: source, registry: registry}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Instantiate loads the template and returns a draft diary. Every pane is
// copied under a fresh id; the draft keeps the template's grid size and
// records the template's id and name. Errors from the source are returned
// unchanged, so a missing template yields types.ErrNotFound.
func (i *Instantiator) Instantiate(ctx context.Context, templateID string) (*Draft, error) {
	tmpl, err := i.source.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	panes := make([]types.PaneInstance, len(tmpl.Panes))
	for n, p := range tmpl.Panes {
		c := p.Clone()
		c.ID = pane.NewInstanceID()
		if i.resetParams {
			if err := i.reset(&c); err != nil {
				return nil, err
			}
		}
		panes[n] = c
	}

	id, name := tmpl.TemplateID, tmpl.Name
	return &Draft{
		registry: i.registry,
		diary: &types.Diary{
			TemplateID:   &id,
			TemplateName: &name,
			Version:      types.SchemaVersion,
			ColSize:      tmpl.ColSize,
			RowSize:      tmpl.RowSize,
			Panes:        panes,
		},
	}, nil
}

func (i *Instantiator) reset(p *types.PaneInstance) error {
	d, ok := i.registry.Get(p.Pane)
	if !ok {
		return &types.ValidationError{
			Table:  "DiaryTemplates",
			Reason: fmt.Sprintf("pane %s: type %q", p.ID, p.Pane),
			Err:    types.ErrUnknownPane,
		}
	}
	defaults := d.Default()
	for _, f := range d.Params() {
		if v, ok := defaults[f.DataKey]; ok {
			p.Data[f.DataKey] = v
		}
	}
	return nil
}

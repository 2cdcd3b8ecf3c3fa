package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

type memorySource map[string]*types.Template

func (m memorySource) Get(_ context.Context, id string) (*types.Template, error) {
	t, ok := m[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	out := *t
	out.Panes = make([]types.PaneInstance, len(t.Panes))
	for i, p := range t.Panes {
		out.Panes[i] = p.Clone()
	}
	return &out, nil
}

func setupTemplate(t *testing.T) (*pane.Registry, memorySource, *types.Template) {
	t.Helper()
	reg := pane.NewDefaultRegistry()

	title := pane.Create(pane.TextPane(), types.Position{}, types.Size{Width: 2, Height: 1})
	require.NoError(t, pane.SetField(&title, "text", "Morning pages"))
	require.NoError(t, pane.SetField(&title, "fontSize", 32))

	photo := pane.Create(pane.ImagePane(), types.Position{X: 2}, types.Size{})
	require.NoError(t, pane.SetField(&photo, "objectFit", "contain"))

	tmpl := &types.Template{
		TemplateID: "tmpl-1",
		Name:       "Daily",
		Version:    types.SchemaVersion,
		ColSize:    3,
		RowSize:    1,
		Panes:      []types.PaneInstance{title, photo},
	}
	return reg, memorySource{tmpl.TemplateID: tmpl}, tmpl
}

func TestInstantiate(t *testing.T) {
	reg, src, tmpl := setupTemplate(t)
	draft, err := NewInstantiator(src, reg).Instantiate(context.Background(), "tmpl-1")
	require.NoError(t, err)

	d := draft.Diary()
	assert.True(t, d.IsDraft())
	require.NotNil(t, d.TemplateID)
	assert.Equal(t, "tmpl-1", *d.TemplateID)
	assert.Equal(t, "Daily", d.TemplateLabel())
	assert.Equal(t, types.SchemaVersion, d.Version)
	assert.Equal(t, 3, d.ColSize)
	assert.Equal(t, 1, d.RowSize)
	require.Len(t, d.Panes, 2)

	for i, p := range d.Panes {
		orig := tmpl.Panes[i]
		assert.NotEqual(t, orig.ID, p.ID, "fresh id per pane")
		assert.Equal(t, orig.Pane, p.Pane)
		assert.Equal(t, orig.Pos, p.Pos)
		assert.Equal(t, orig.Size, p.Size)
		assert.Equal(t, orig.Data, p.Data, "values forwarded from the template")
	}
	assert.NoError(t, draft.Validate())
}

func TestInstantiateDoesNotAlias(t *testing.T) {
	reg, src, tmpl := setupTemplate(t)
	draft, err := NewInstantiator(src, reg).Instantiate(context.Background(), "tmpl-1")
	require.NoError(t, err)

	require.NoError(t, draft.SetParam(draft.Diary().Panes[0].ID, "text", "changed"))
	assert.Equal(t, "Morning pages", tmpl.Panes[0].Data["text"])
}

func TestInstantiateResetParams(t *testing.T) {
	reg, src, tmpl := setupTemplate(t)
	draft, err := NewInstantiator(src, reg, WithResetParams()).Instantiate(context.Background(), "tmpl-1")
	require.NoError(t, err)

	d := draft.Diary()
	assert.Equal(t, "", d.Panes[0].Data["text"], "param reset to the type default")
	assert.Equal(t, 32.0, d.Panes[0].Data["fontSize"], "non-param keeps the template value")
	assert.Equal(t, "", d.Panes[1].Data["imageId"])
	assert.Equal(t, "contain", d.Panes[1].Data["objectFit"])
	assert.Equal(t, tmpl.Panes[1].Data["borderRadius"], d.Panes[1].Data["borderRadius"])
}

func TestInstantiateMissingTemplate(t *testing.T) {
	reg, src, _ := setupTemplate(t)
	_, err := NewInstantiator(src, reg).Instantiate(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestInstantiateResetUnknownType(t *testing.T) {
	reg, src, tmpl := setupTemplate(t)
	tmpl.Panes[1].Pane = "ext:gone"
	_, err := NewInstantiator(src, reg, WithResetParams()).Instantiate(context.Background(), "tmpl-1")
	assert.ErrorIs(t, err, types.ErrUnknownPane)
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestDraftParams(t *testing.T) {
	reg, src, _ := setupTemplate(t)
	draft, err := NewInstantiator(src, reg).Instantiate(context.Background(), "tmpl-1")
	require.NoError(t, err)

	params := draft.Params()
	require.Len(t, params, 2)

	panes := draft.Diary().Panes
	assert.Equal(t, panes[0].ID, params[0].PaneID)
	assert.Equal(t, "Text", params[0].PaneName)
	assert.Equal(t, "text", params[0].Field.DataKey)
	assert.Equal(t, "Morning pages", params[0].Field.Value)

	assert.Equal(t, panes[1].ID, params[1].PaneID)
	assert.Equal(t, "imageId", params[1].Field.DataKey)
	assert.Equal(t, pane.KindImage, params[1].Field.Input.Kind)
}

func TestDraftSetParam(t *testing.T) {
	reg, src, _ := setupTemplate(t)
	draft, err := NewInstantiator(src, reg).Instantiate(context.Background(), "tmpl-1")
	require.NoError(t, err)
	first := draft.Diary().Panes[0].ID

	tests := []struct {
		name    string
		paneID  string
		key     string
		wantErr error
	}{
		{"param field", first, "text", nil},
		{"non-param field", first, "fontSize", types.ErrFieldNotFound},
		{"unknown field", first, "nope", types.ErrFieldNotFound},
		{"unknown pane", "missing", "text", types.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := draft.SetParam(tt.paneID, tt.key, "value")
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "value", draft.Diary().Panes[0].Data[tt.key])
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 32.0, draft.Diary().Panes[0].Data["fontSize"])
}

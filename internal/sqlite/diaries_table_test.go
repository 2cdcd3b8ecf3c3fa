package sqlite

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/template"
	"github.com/fundiary/fundiary/pkg/types"
)

func textPane(t *testing.T, text string, x, y int) types.PaneInstance {
	t.Helper()
	p := pane.Create(pane.TextPane(), types.Position{X: x, Y: y}, types.Size{})
	require.NoError(t, pane.SetField(&p, "text", text))
	return p
}

// insertRawDiary writes a Diaries row directly, bypassing validation.
func insertRawDiary(t *testing.T, b *Backend, id string, version, cols, rows int, data string) {
	t.Helper()
	now := formatTime(time.Now())
	_, err := b.db.Exec(
		`INSERT INTO Diaries (id, templateId, templateName, version, createdAt, updatedAt, colSize, rowSize, data)
		 VALUES (?, NULL, NULL, ?, ?, ?, ?, ?, ?)`,
		id, version, now, now, cols, rows, data)
	require.NoError(t, err)
}

func TestDiaryRoundTrip(t *testing.T) {
	image := pane.Create(pane.ImagePane(), types.Position{X: 1, Y: 2}, types.Size{Width: 2, Height: 2})
	require.NoError(t, pane.SetField(&image, "imageId", "img-1"))

	tests := []struct {
		name       string
		panes      []types.PaneInstance
		cols, rows int
	}{
		{"no panes", nil, 0, 0},
		{"one pane", []types.PaneInstance{textPane(t, "solo", 0, 0)}, 1, 1},
		{"many panes", []types.PaneInstance{textPane(t, "a", 0, 0), textPane(t, "b", 4, 0), image}, 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			ctx := context.Background()

			diary := &types.Diary{Panes: tt.panes}
			id, err := b.Diaries().Save(ctx, diary)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Equal(t, id, diary.DiaryID)

			got, err := b.Diaries().Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, diary.Panes, got.Panes)
			assert.Len(t, got.Panes, len(tt.panes))
			assert.Equal(t, tt.cols, got.ColSize)
			assert.Equal(t, tt.rows, got.RowSize)
			assert.Equal(t, types.SchemaVersion, got.Version)
			assert.True(t, got.CreatedAt.Equal(diary.CreatedAt))
			assert.True(t, got.UpdatedAt.Equal(diary.UpdatedAt))
		})
	}
}

func TestDiaryTextPaneScenario(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	desc, ok := b.registry.Get(pane.TextPaneID)
	require.True(t, ok)
	inst := pane.Create(desc, types.Position{X: 0, Y: 0}, types.Size{Width: 1, Height: 1})
	require.NoError(t, pane.SetField(&inst, "text", "hello"))

	id, err := b.Diaries().Save(ctx, &types.Diary{Panes: []types.PaneInstance{inst}})
	require.NoError(t, err)

	got, err := b.Diaries().Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Panes, 1)
	assert.Equal(t, "hello", got.Panes[0].Data["text"])
	assert.Equal(t, 1, got.ColSize)
	assert.Equal(t, 1, got.RowSize)
}

func TestDiaryUpdateKeepsIdentity(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := setupBackend(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	diary := &types.Diary{Panes: []types.PaneInstance{textPane(t, "draft", 0, 0)}}
	id, err := b.Diaries().Save(ctx, diary)
	require.NoError(t, err)
	created, firstUpdate := diary.CreatedAt, diary.UpdatedAt

	diary.Panes = append(diary.Panes, textPane(t, "more", 0, 1))
	again, err := b.Diaries().Save(ctx, diary)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := b.Diaries().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.DiaryID)
	assert.True(t, got.CreatedAt.Equal(created), "createdAt unchanged")
	assert.True(t, got.UpdatedAt.After(firstUpdate), "updatedAt strictly increases")
	assert.Len(t, got.Panes, 2)
	assert.Equal(t, 2, got.RowSize)

	results, err := b.Diaries().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1, "update does not add a row")
}

func TestDiarySaveRejectsCorruptTimestamps(t *testing.T) {
	for _, column := range []string{"createdAt", "updatedAt"} {
		t.Run(column, func(t *testing.T) {
			b := setupBackend(t)
			ctx := context.Background()

			diary := &types.Diary{Panes: []types.PaneInstance{textPane(t, "entry", 0, 0)}}
			id, err := b.Diaries().Save(ctx, diary)
			require.NoError(t, err)
			_, err = b.db.Exec("UPDATE Diaries SET "+column+" = 'yesterday' WHERE id = ?", id)
			require.NoError(t, err)

			_, err = b.Diaries().Save(ctx, diary)
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, id, ve.ID)
			assert.Contains(t, ve.Reason, column)
		})
	}
}

func TestDiarySaveRejectsInvalidPanes(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	bad := textPane(t, "x", 0, 0)
	require.NoError(t, pane.SetField(&bad, "color", 20000000))
	dup := textPane(t, "y", 0, 0)

	tests := []struct {
		name  string
		panes []types.PaneInstance
	}{
		{"schema violation", []types.PaneInstance{bad}},
		{"unknown pane type", []types.PaneInstance{{ID: "p1", Pane: "ext:gone", Size: types.Size{Width: 1, Height: 1}}}},
		{"duplicate pane id", []types.PaneInstance{dup, dup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diary := &types.Diary{Panes: tt.panes}
			_, err := b.Diaries().Save(ctx, diary)
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tableDiaries, ve.Table)
			assert.True(t, diary.IsDraft(), "rejected save leaves the draft unsaved")
		})
	}

	results, err := b.Diaries().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDiaryInvalidStoredColour(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	insertRawDiary(t, b, "bad", types.SchemaVersion, 1, 1,
		`[{"id":"p1","name":"Text","pane":"base:text","pos":{"x":0,"y":0},"size":{"width":1,"height":1},
		  "data":{"text":"hi","fontSize":16,"color":20000000}}]`)

	var d *types.Diary
	var err error
	require.NotPanics(t, func() { d, err = b.Diaries().Get(ctx, "bad") })
	assert.Nil(t, d)

	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "bad", ve.ID)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestDiaryStoredRowFailures(t *testing.T) {
	tests := []struct {
		name    string
		version int
		data    string
	}{
		{"malformed json", types.SchemaVersion, `[{"id":`},
		{"not an array", types.SchemaVersion, `{"id":"p1"}`},
		{"wrong version", 999, `[]`},
		{"unknown pane type", types.SchemaVersion,
			`[{"id":"p1","name":"X","pane":"ext:gone","pos":{"x":0,"y":0},"size":{"width":1,"height":1},"data":{}}]`},
		{"zero size pane", types.SchemaVersion,
			`[{"id":"p1","name":"Text","pane":"base:text","pos":{"x":0,"y":0},"size":{"width":0,"height":1},
			  "data":{"text":"","fontSize":16,"color":0}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			insertRawDiary(t, b, "row", tt.version, 0, 0, tt.data)

			_, err := b.Diaries().Get(context.Background(), "row")
			var ve *types.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestDiaryListIsolatesBadRows(t *testing.T) {
	var logs bytes.Buffer
	b := setupBackend(t, WithLogger(zerolog.New(&logs)))
	ctx := context.Background()

	first, err := b.Diaries().Save(ctx, &types.Diary{Panes: []types.PaneInstance{textPane(t, "one", 0, 0)}})
	require.NoError(t, err)
	insertRawDiary(t, b, "corrupt", types.SchemaVersion, 0, 0, `not json`)
	last, err := b.Diaries().Save(ctx, &types.Diary{Panes: []types.PaneInstance{textPane(t, "two", 0, 0)}})
	require.NoError(t, err)

	results, err := b.Diaries().List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, first, results[0].ID)
	assert.True(t, results[0].OK())
	assert.Equal(t, "corrupt", results[1].ID)
	assert.False(t, results[1].OK())
	assert.ErrorIs(t, results[1].Err, types.ErrInvalidData)
	assert.Equal(t, last, results[2].ID)
	assert.True(t, results[2].OK())
	assert.Contains(t, logs.String(), "corrupt")

	// The failed row does not disturb later operations.
	_, err = b.Diaries().Save(ctx, &types.Diary{})
	assert.NoError(t, err)
}

func TestDiaryListPagination(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := b.Diaries().Save(ctx, &types.Diary{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	tests := []struct {
		name          string
		limit, offset int
		want          []string
	}{
		{"all", 0, 0, ids},
		{"first page", 2, 0, ids[:2]},
		{"second page", 2, 2, ids[2:4]},
		{"last page", 2, 4, ids[4:]},
		{"past the end", 2, 10, nil},
		{"negative offset", 2, -3, ids[:2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := b.Diaries().List(ctx, tt.limit, tt.offset)
			require.NoError(t, err)
			var got []string
			for _, r := range results {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiaryBoundsRecomputedOnRead(t *testing.T) {
	var logs bytes.Buffer
	b := setupBackend(t, WithLogger(zerolog.New(&logs)))

	insertRawDiary(t, b, "stale", types.SchemaVersion, 9, 9,
		`[{"id":"p1","name":"Text","pane":"base:text","pos":{"x":1,"y":0},"size":{"width":2,"height":1},
		  "data":{"text":"","fontSize":16,"color":0}}]`)

	got, err := b.Diaries().Get(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ColSize)
	assert.Equal(t, 1, got.RowSize)
	assert.Contains(t, logs.String(), "stored grid size disagrees with panes")
}

func TestDiarySurvivesTemplateDelete(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	tmpl := &types.Template{Name: "Daily", Panes: []types.PaneInstance{textPane(t, "Title", 0, 0)}}
	tmplID, err := b.Templates().Save(ctx, tmpl)
	require.NoError(t, err)

	draft, err := template.NewInstantiator(b.Templates(), b.registry).Instantiate(ctx, tmplID)
	require.NoError(t, err)
	diaryID, err := b.Diaries().Save(ctx, draft.Diary())
	require.NoError(t, err)

	got, err := b.Diaries().Get(ctx, diaryID)
	require.NoError(t, err)
	assert.Equal(t, "Daily", got.TemplateLabel())

	require.NoError(t, b.Templates().Delete(ctx, tmplID))

	got, err = b.Diaries().Get(ctx, diaryID)
	require.NoError(t, err, "diary stays loadable")
	assert.Nil(t, got.TemplateID)
	assert.Nil(t, got.TemplateName)
	assert.Equal(t, types.NoTemplateName, got.TemplateLabel())
	assert.Equal(t, "Title", got.Panes[0].Data["text"])
}

func TestDiaryTemplateSnapshot(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	tmplID, err := b.Templates().Save(ctx, &types.Template{Name: "Before"})
	require.NoError(t, err)

	diary := &types.Diary{TemplateID: &tmplID}
	id, err := b.Diaries().Save(ctx, diary)
	require.NoError(t, err)
	require.NotNil(t, diary.TemplateName)
	assert.Equal(t, "Before", *diary.TemplateName, "name snapshotted on save")

	require.NoError(t, b.Templates().Rename(ctx, tmplID, "After"))
	got, err := b.Diaries().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Before", got.TemplateLabel(), "rename does not touch the snapshot")
}

func TestDiarySaveDropsMissingTemplate(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	missing, name := "no-such-template", "Ghost"
	diary := &types.Diary{TemplateID: &missing, TemplateName: &name}
	id, err := b.Diaries().Save(ctx, diary)
	require.NoError(t, err)
	assert.Nil(t, diary.TemplateID)

	got, err := b.Diaries().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.NoTemplateName, got.TemplateLabel())
}

func TestDiaryListByDate(t *testing.T) {
	clock := steppingClock(
		time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC),
	)
	b := setupBackend(t, WithClock(clock))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		id, err := b.Diaries().Save(ctx, &types.Diary{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	tests := []struct {
		name string
		day  time.Time
		want []string
	}{
		{"utc day", time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC), ids[:2]},
		{"next utc day", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), ids[2:3]},
		{"local day", time.Date(2024, 5, 2, 9, 0, 0, 0, time.FixedZone("JST", 9*3600)), ids[1:3]},
		{"empty day", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := b.Diaries().ListByDate(ctx, tt.day)
			require.NoError(t, err)
			var got []string
			for _, r := range results {
				require.True(t, r.OK())
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiaryDelete(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	id, err := b.Diaries().Save(ctx, &types.Diary{})
	require.NoError(t, err)

	require.NoError(t, b.Diaries().Delete(ctx, id))
	_, err = b.Diaries().Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, b.Diaries().Delete(ctx, id), types.ErrNotFound)
	assert.ErrorIs(t, b.Diaries().Delete(ctx, ""), types.ErrInvalidID)
	_, err = b.Diaries().Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestDiaryDeleteKeepsImages(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	imgID, err := b.Images().Save(ctx, &types.Image{
		ImageMetadata: types.ImageMetadata{Name: "a.png", MimeType: "image/png"},
		Data:          []byte{1, 2, 3},
	})
	require.NoError(t, err)

	p := pane.Create(pane.ImagePane(), types.Position{}, types.Size{})
	require.NoError(t, pane.ImageRef.Set(&p, imgID))
	id, err := b.Diaries().Save(ctx, &types.Diary{Panes: []types.PaneInstance{p}})
	require.NoError(t, err)

	require.NoError(t, b.Diaries().Delete(ctx, id))
	_, err = b.Images().GetMetadata(ctx, imgID)
	assert.NoError(t, err)
}

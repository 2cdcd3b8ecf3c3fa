package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fundiary/fundiary/pkg/grid"
	"github.com/fundiary/fundiary/pkg/types"
)

// Table names as they appear in the database.
const (
	tableDiaries   = "Diaries"
	tableTemplates = "DiaryTemplates"
	tableImages    = "Images"
)

// diaryRow is one Diaries row joined with the existence of its template.
type diaryRow struct {
	ID             string         `db:"id"`
	TemplateID     sql.NullString `db:"templateId"`
	TemplateName   sql.NullString `db:"templateName"`
	TemplateExists bool           `db:"templateExists"`
	Version        int            `db:"version"`
	CreatedAt      string         `db:"createdAt"`
	UpdatedAt      string         `db:"updatedAt"`
	ColSize        int            `db:"colSize"`
	RowSize        int            `db:"rowSize"`
	Data           string         `db:"data"`
}

// templateRow is one DiaryTemplates row.
type templateRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Version   int    `db:"version"`
	CreatedAt string `db:"createdAt"`
	UpdatedAt string `db:"updatedAt"`
	ColSize   int    `db:"colSize"`
	RowSize   int    `db:"rowSize"`
	Template  string `db:"template"`
}

// imageRow is one Images row. Data stays nil for metadata-only queries.
type imageRow struct {
	ID        string        `db:"id"`
	Name      string        `db:"name"`
	MimeType  string        `db:"mimeType"`
	Size      int64         `db:"size"`
	Width     sql.NullInt64 `db:"width"`
	Height    sql.NullInt64 `db:"height"`
	Data      []byte        `db:"data"`
	CreatedAt string        `db:"createdAt"`
}

// documentRow holds the columns Diaries and DiaryTemplates share.
type documentRow struct {
	table     string
	id        string
	version   int
	createdAt string
	updatedAt string
	colSize   int
	rowSize   int
	panes     string
}

// document is the decoded form of a documentRow.
type document struct {
	createdAt time.Time
	updatedAt time.Time
	bounds    types.GridSize
	panes     []types.PaneInstance
}

// encodePanes validates panes and returns their JSON encoding and bounds.
func (b *Backend) encodePanes(table, id string, panes []types.PaneInstance) (string, types.GridSize, error) {
	fail := func(reason string, err error) error {
		return &types.ValidationError{Table: table, ID: id, Reason: reason, Err: err}
	}
	seen := make(map[string]bool, len(panes))
	for _, p := range panes {
		if seen[p.ID] {
			return "", types.GridSize{}, fail(fmt.Sprintf("duplicate pane id %s", p.ID), types.ErrInvalidID)
		}
		seen[p.ID] = true
		if err := b.registry.Validate(p); err != nil {
			return "", types.GridSize{}, fail("validate panes", err)
		}
	}
	if panes == nil {
		panes = []types.PaneInstance{}
	}
	data, err := json.Marshal(panes)
	if err != nil {
		return "", types.GridSize{}, fail("encode panes", err)
	}
	return string(data), grid.Bounds(panes), nil
}

// decode checks the version tag, timestamps, and panes of a stored row and
// recomputes its bounds from the panes.
func (b *Backend) decode(row documentRow) (*document, error) {
	fail := func(reason string, err error) error {
		return &types.ValidationError{Table: row.table, ID: row.id, Reason: reason, Err: err}
	}
	if row.version != types.SchemaVersion {
		return nil, fail(fmt.Sprintf("unsupported version %d", row.version), nil)
	}
	createdAt, err := parseTime(row.createdAt)
	if err != nil {
		return nil, fail("parse createdAt", err)
	}
	updatedAt, err := parseTime(row.updatedAt)
	if err != nil {
		return nil, fail("parse updatedAt", err)
	}

	var panes []types.PaneInstance
	if err := json.Unmarshal([]byte(row.panes), &panes); err != nil {
		return nil, fail("decode panes", err)
	}
	if panes == nil {
		panes = []types.PaneInstance{}
	}
	for _, p := range panes {
		if err := b.registry.Validate(p); err != nil {
			return nil, fail("validate panes", err)
		}
	}

	bounds := grid.Bounds(panes)
	if bounds.Cols != row.colSize || bounds.Rows != row.rowSize {
		b.logger.Warn().
			Str("table", row.table).
			Str("id", row.id).
			Int("storedCols", row.colSize).
			Int("storedRows", row.rowSize).
			Int("cols", bounds.Cols).
			Int("rows", bounds.Rows).
			Msg("stored grid size disagrees with panes")
	}
	return &document{createdAt: createdAt, updatedAt: updatedAt, bounds: bounds, panes: panes}, nil
}

func (r diaryRow) document() documentRow {
	return documentRow{
		table: tableDiaries, id: r.ID, version: r.Version,
		createdAt: r.CreatedAt, updatedAt: r.UpdatedAt,
		colSize: r.ColSize, rowSize: r.RowSize, panes: r.Data,
	}
}

func (r templateRow) document() documentRow {
	return documentRow{
		table: tableTemplates, id: r.ID, version: r.Version,
		createdAt: r.CreatedAt, updatedAt: r.UpdatedAt,
		colSize: r.ColSize, rowSize: r.RowSize, panes: r.Template,
	}
}

// hydrateDiary decodes a row into a Diary. A template reference whose
// template no longer exists is dropped.
func (b *Backend) hydrateDiary(r diaryRow) (*types.Diary, error) {
	doc, err := b.decode(r.document())
	if err != nil {
		return nil, err
	}
	d := &types.Diary{
		DiaryID:   r.ID,
		Version:   r.Version,
		CreatedAt: doc.createdAt,
		UpdatedAt: doc.updatedAt,
		ColSize:   doc.bounds.Cols,
		RowSize:   doc.bounds.Rows,
		Panes:     doc.panes,
	}
	if r.TemplateID.Valid && r.TemplateExists {
		id := r.TemplateID.String
		d.TemplateID = &id
		if r.TemplateName.Valid {
			name := r.TemplateName.String
			d.TemplateName = &name
		}
	}
	return d, nil
}

// hydrateTemplate decodes a row into a Template.
func (b *Backend) hydrateTemplate(r templateRow) (*types.Template, error) {
	doc, err := b.decode(r.document())
	if err != nil {
		return nil, err
	}
	return &types.Template{
		TemplateID: r.ID,
		Name:       r.Name,
		Version:    r.Version,
		CreatedAt:  doc.createdAt,
		UpdatedAt:  doc.updatedAt,
		ColSize:    doc.bounds.Cols,
		RowSize:    doc.bounds.Rows,
		Panes:      doc.panes,
	}, nil
}

// hydrateImage converts a row into an Image. Data is nil for metadata rows.
func hydrateImage(r imageRow) (*types.Image, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, &types.ValidationError{Table: tableImages, ID: r.ID, Reason: "parse createdAt", Err: err}
	}
	img := &types.Image{
		ImageMetadata: types.ImageMetadata{
			ImageID:   r.ID,
			Name:      r.Name,
			MimeType:  r.MimeType,
			Size:      r.Size,
			CreatedAt: createdAt,
		},
		Data: r.Data,
	}
	if r.Width.Valid {
		w := int(r.Width.Int64)
		img.Width = &w
	}
	if r.Height.Valid {
		h := int(r.Height.Int64)
		img.Height = &h
	}
	return img, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

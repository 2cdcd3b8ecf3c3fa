package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fundiary/fundiary/pkg/types"
)

// Compile-time interface check.
var _ types.TemplateTable = (*templatesTable)(nil)

// templatesTable implements types.TemplateTable on the DiaryTemplates table.
type templatesTable struct {
	backend *Backend
}

const selectTemplates = `SELECT id, name, version, createdAt, updatedAt, colSize, rowSize, template
FROM DiaryTemplates`

// Save validates and writes the template. The name must not be blank.
func (tt *templatesTable) Save(ctx context.Context, tmpl *types.Template) (string, error) {
	if tmpl == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(tmpl.Name) == "" {
		return "", types.ErrInvalidName
	}
	b := tt.backend
	data, bounds, err := b.encodePanes(tableTemplates, tmpl.TemplateID, tmpl.Panes)
	if err != nil {
		return "", err
	}

	saved := *tmpl
	err = b.write(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		var prev struct {
			CreatedAt string `db:"createdAt"`
			UpdatedAt string `db:"updatedAt"`
		}
		exists := false
		if saved.TemplateID == "" {
			saved.TemplateID = generateUUID()
		} else {
			err := tx.GetContext(ctx, &prev, "SELECT createdAt, updatedAt FROM DiaryTemplates WHERE id = ?", saved.TemplateID)
			switch {
			case err == nil:
				exists = true
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("reading template %s: %w", saved.TemplateID, err)
			}
		}

		saved.Version = types.SchemaVersion
		saved.ColSize, saved.RowSize = bounds.Cols, bounds.Rows

		if exists {
			createdAt, err := parseTime(prev.CreatedAt)
			if err != nil {
				return &types.ValidationError{Table: tableTemplates, ID: saved.TemplateID, Reason: "parse createdAt", Err: err}
			}
			updatedAt, err := parseTime(prev.UpdatedAt)
			if err != nil {
				return &types.ValidationError{Table: tableTemplates, ID: saved.TemplateID, Reason: "parse updatedAt", Err: err}
			}
			saved.CreatedAt = createdAt
			saved.UpdatedAt = b.timestamp(updatedAt)
			_, err = tx.ExecContext(ctx,
				`UPDATE DiaryTemplates SET name = ?, version = ?, updatedAt = ?, colSize = ?, rowSize = ?, template = ?
				 WHERE id = ?`,
				saved.Name, saved.Version, formatTime(saved.UpdatedAt), saved.ColSize, saved.RowSize, data, saved.TemplateID)
			if err != nil {
				return fmt.Errorf("updating template %s: %w", saved.TemplateID, err)
			}
		} else {
			saved.UpdatedAt = b.timestamp(time.Time{})
			saved.CreatedAt = saved.UpdatedAt
			_, err = tx.ExecContext(ctx,
				`INSERT INTO DiaryTemplates (id, name, version, createdAt, updatedAt, colSize, rowSize, template)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				saved.TemplateID, saved.Name, saved.Version, formatTime(saved.CreatedAt), formatTime(saved.UpdatedAt),
				saved.ColSize, saved.RowSize, data)
			if err != nil {
				return fmt.Errorf("inserting template: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing template %s: %w", saved.TemplateID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if saved.Panes == nil {
		saved.Panes = []types.PaneInstance{}
	}
	*tmpl = saved
	return tmpl.TemplateID, nil
}

// Get loads one template.
func (tt *templatesTable) Get(ctx context.Context, id string) (*types.Template, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row templateRow
	err := tt.backend.read(func(db *sqlx.DB) error {
		return db.GetContext(ctx, &row, selectTemplates+" WHERE id = ?", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting template %s: %w", id, err)
	}
	return tt.backend.hydrateTemplate(row)
}

// List pages through templates in insertion order.
func (tt *templatesTable) List(ctx context.Context, limit, offset int) ([]types.Result[types.Template], error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []templateRow
	err := tt.backend.read(func(db *sqlx.DB) error {
		return db.SelectContext(ctx, &rows, selectTemplates+" ORDER BY rowid LIMIT ? OFFSET ?", limit, max(offset, 0))
	})
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	results := make([]types.Result[types.Template], 0, len(rows))
	for _, row := range rows {
		t, err := tt.backend.hydrateTemplate(row)
		if err != nil {
			tt.backend.logger.Warn().Err(err).Str("table", tableTemplates).Str("id", row.ID).Msg("invalid row")
		}
		results = append(results, types.Result[types.Template]{ID: row.ID, Value: t, Err: err})
	}
	return results, nil
}

// Rename changes a template's name. Diaries keep their name snapshot.
func (tt *templatesTable) Rename(ctx context.Context, id, name string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if strings.TrimSpace(name) == "" {
		return types.ErrInvalidName
	}
	b := tt.backend
	return b.write(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		var prev string
		err = tx.GetContext(ctx, &prev, "SELECT updatedAt FROM DiaryTemplates WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("reading template %s: %w", id, err)
		}
		updatedAt, err := parseTime(prev)
		if err != nil {
			return &types.ValidationError{Table: tableTemplates, ID: id, Reason: "parse updatedAt", Err: err}
		}
		if _, err := tx.ExecContext(ctx, "UPDATE DiaryTemplates SET name = ?, updatedAt = ? WHERE id = ?",
			name, formatTime(b.timestamp(updatedAt)), id); err != nil {
			return fmt.Errorf("renaming template %s: %w", id, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing template %s: %w", id, err)
		}
		return nil
	})
}

// Delete removes a template. Diaries created from it remain and report no
// template.
func (tt *templatesTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, tt.backend, tableTemplates, id)
}

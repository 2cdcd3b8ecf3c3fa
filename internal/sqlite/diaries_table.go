package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fundiary/fundiary/pkg/types"
)

// Compile-time interface check.
var _ types.DiaryTable = (*diariesTable)(nil)

// diariesTable implements types.DiaryTable on the Diaries table.
type diariesTable struct {
	backend *Backend
}

const selectDiaries = `SELECT d.id, d.templateId, d.templateName, d.version, d.createdAt, d.updatedAt,
       d.colSize, d.rowSize, d.data, t.id IS NOT NULL AS templateExists
FROM Diaries d
LEFT JOIN DiaryTemplates t ON t.id = d.templateId`

// Save validates and writes the diary. On success the diary's ID,
// timestamps, version, and grid size reflect the stored row.
func (dt *diariesTable) Save(ctx context.Context, diary *types.Diary) (string, error) {
	if diary == nil {
		return "", types.ErrInvalidData
	}
	b := dt.backend
	data, bounds, err := b.encodePanes(tableDiaries, diary.DiaryID, diary.Panes)
	if err != nil {
		return "", err
	}

	var saved types.Diary
	err = b.write(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		saved = *diary
		if err := dt.resolveTemplate(ctx, tx, &saved); err != nil {
			return err
		}

		var prev struct {
			CreatedAt string `db:"createdAt"`
			UpdatedAt string `db:"updatedAt"`
		}
		exists := false
		if saved.DiaryID == "" {
			saved.DiaryID = generateUUID()
		} else {
			err := tx.GetContext(ctx, &prev, "SELECT createdAt, updatedAt FROM Diaries WHERE id = ?", saved.DiaryID)
			switch {
			case err == nil:
				exists = true
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("reading diary %s: %w", saved.DiaryID, err)
			}
		}

		saved.Version = types.SchemaVersion
		saved.ColSize, saved.RowSize = bounds.Cols, bounds.Rows

		if exists {
			createdAt, err := parseTime(prev.CreatedAt)
			if err != nil {
				return &types.ValidationError{Table: tableDiaries, ID: saved.DiaryID, Reason: "parse createdAt", Err: err}
			}
			updatedAt, err := parseTime(prev.UpdatedAt)
			if err != nil {
				return &types.ValidationError{Table: tableDiaries, ID: saved.DiaryID, Reason: "parse updatedAt", Err: err}
			}
			saved.CreatedAt = createdAt
			saved.UpdatedAt = b.timestamp(updatedAt)
			_, err = tx.ExecContext(ctx,
				`UPDATE Diaries SET templateId = ?, templateName = ?, version = ?, updatedAt = ?,
				 colSize = ?, rowSize = ?, data = ? WHERE id = ?`,
				nullString(saved.TemplateID), nullString(saved.TemplateName), saved.Version,
				formatTime(saved.UpdatedAt), saved.ColSize, saved.RowSize, data, saved.DiaryID)
			if err != nil {
				return fmt.Errorf("updating diary %s: %w", saved.DiaryID, err)
			}
		} else {
			saved.UpdatedAt = b.timestamp(time.Time{})
			saved.CreatedAt = saved.UpdatedAt
			_, err = tx.ExecContext(ctx,
				`INSERT INTO Diaries (id, templateId, templateName, version, createdAt, updatedAt, colSize, rowSize, data)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				saved.DiaryID, nullString(saved.TemplateID), nullString(saved.TemplateName), saved.Version,
				formatTime(saved.CreatedAt), formatTime(saved.UpdatedAt), saved.ColSize, saved.RowSize, data)
			if err != nil {
				return fmt.Errorf("inserting diary: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing diary %s: %w", saved.DiaryID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if saved.Panes == nil {
		saved.Panes = []types.PaneInstance{}
	}
	*diary = saved
	return diary.DiaryID, nil
}

// resolveTemplate snapshots the template name when the diary has none and
// drops a reference to a template that no longer exists.
func (dt *diariesTable) resolveTemplate(ctx context.Context, tx *sqlx.Tx, d *types.Diary) error {
	if d.TemplateID == nil {
		d.TemplateName = nil
		return nil
	}
	var name string
	err := tx.GetContext(ctx, &name, "SELECT name FROM DiaryTemplates WHERE id = ?", *d.TemplateID)
	if errors.Is(err, sql.ErrNoRows) {
		dt.backend.logger.Debug().Str("template", *d.TemplateID).Msg("dropping reference to deleted template")
		d.TemplateID, d.TemplateName = nil, nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading template %s: %w", *d.TemplateID, err)
	}
	if d.TemplateName == nil || *d.TemplateName == "" {
		d.TemplateName = &name
	}
	return nil
}

// Get loads one diary.
func (dt *diariesTable) Get(ctx context.Context, id string) (*types.Diary, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row diaryRow
	err := dt.backend.read(func(db *sqlx.DB) error {
		return db.GetContext(ctx, &row, selectDiaries+" WHERE d.id = ?", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting diary %s: %w", id, err)
	}
	return dt.backend.hydrateDiary(row)
}

// List pages through diaries in insertion order. A limit of zero or less
// returns every row from offset on.
func (dt *diariesTable) List(ctx context.Context, limit, offset int) ([]types.Result[types.Diary], error) {
	if limit <= 0 {
		limit = -1
	}
	return dt.query(ctx, selectDiaries+" ORDER BY d.rowid LIMIT ? OFFSET ?", limit, max(offset, 0))
}

// ListByDate returns the diaries created on the calendar day of day in its
// location, oldest first.
func (dt *diariesTable) ListByDate(ctx context.Context, day time.Time) ([]types.Result[types.Diary], error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return dt.query(ctx, selectDiaries+" WHERE d.createdAt >= ? AND d.createdAt < ? ORDER BY d.createdAt",
		formatTime(start), formatTime(end))
}

func (dt *diariesTable) query(ctx context.Context, query string, args ...any) ([]types.Result[types.Diary], error) {
	var rows []diaryRow
	err := dt.backend.read(func(db *sqlx.DB) error {
		return db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("listing diaries: %w", err)
	}

	results := make([]types.Result[types.Diary], 0, len(rows))
	for _, row := range rows {
		d, err := dt.backend.hydrateDiary(row)
		if err != nil {
			dt.backend.logger.Warn().Err(err).Str("table", tableDiaries).Str("id", row.ID).Msg("invalid row")
		}
		results = append(results, types.Result[types.Diary]{ID: row.ID, Value: d, Err: err})
	}
	return results, nil
}

// Delete removes one diary. Images it references are kept.
func (dt *diariesTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, dt.backend, tableDiaries, id)
}

// deleteRow removes a row by id from table. Returns ErrNotFound when no row
// matched.
func deleteRow(ctx context.Context, b *Backend, table, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return b.write(func(db *sqlx.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting %s %s: %w", table, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting %s %s: %w", table, id, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

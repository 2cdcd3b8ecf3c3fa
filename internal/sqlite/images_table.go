package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fundiary/fundiary/pkg/types"
)

// Compile-time interface check.
var _ types.ImageTable = (*imagesTable)(nil)

// imagesTable implements types.ImageTable on the Images table.
type imagesTable struct {
	backend *Backend
}

const selectImageMetadata = `SELECT id, name, mimeType, size, width, height, createdAt FROM Images`

// Save writes an image. Size is taken from the payload when unset and must
// otherwise match it. An existing id keeps its createdAt.
func (it *imagesTable) Save(ctx context.Context, img *types.Image) (string, error) {
	if img == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(img.Name) == "" {
		return "", types.ErrInvalidName
	}
	fail := func(reason string) error {
		return &types.ValidationError{Table: tableImages, ID: img.ImageID, Reason: reason}
	}
	if img.MimeType == "" {
		return "", fail("empty mime type")
	}
	if img.Data == nil {
		return "", fail("no image data")
	}
	if img.Size == 0 {
		img.Size = int64(len(img.Data))
	}
	if img.Size != int64(len(img.Data)) {
		return "", fail(fmt.Sprintf("size %d does not match %d data bytes", img.Size, len(img.Data)))
	}

	b := it.backend
	saved := *img
	err := b.write(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		exists := false
		if saved.ImageID == "" {
			saved.ImageID = generateUUID()
		} else {
			var created string
			err := tx.GetContext(ctx, &created, "SELECT createdAt FROM Images WHERE id = ?", saved.ImageID)
			switch {
			case err == nil:
				exists = true
				if saved.CreatedAt, err = parseTime(created); err != nil {
					return &types.ValidationError{Table: tableImages, ID: saved.ImageID, Reason: "parse createdAt", Err: err}
				}
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("reading image %s: %w", saved.ImageID, err)
			}
		}

		if exists {
			_, err = tx.ExecContext(ctx,
				"UPDATE Images SET name = ?, mimeType = ?, size = ?, width = ?, height = ?, data = ? WHERE id = ?",
				saved.Name, saved.MimeType, saved.Size, nullInt(saved.Width), nullInt(saved.Height), saved.Data, saved.ImageID)
		} else {
			saved.CreatedAt = b.timestamp(time.Time{})
			_, err = tx.ExecContext(ctx,
				`INSERT INTO Images (id, name, mimeType, size, width, height, data, createdAt)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				saved.ImageID, saved.Name, saved.MimeType, saved.Size, nullInt(saved.Width), nullInt(saved.Height),
				saved.Data, formatTime(saved.CreatedAt))
		}
		if err != nil {
			return fmt.Errorf("writing image %s: %w", saved.ImageID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing image %s: %w", saved.ImageID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	*img = saved
	return img.ImageID, nil
}

// Get loads an image with its payload.
func (it *imagesTable) Get(ctx context.Context, id string) (*types.Image, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row imageRow
	err := it.backend.read(func(db *sqlx.DB) error {
		return db.GetContext(ctx, &row,
			"SELECT id, name, mimeType, size, width, height, data, createdAt FROM Images WHERE id = ?", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", id, err)
	}
	return hydrateImage(row)
}

// GetMetadata loads an image without reading its payload.
func (it *imagesTable) GetMetadata(ctx context.Context, id string) (*types.ImageMetadata, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var row imageRow
	err := it.backend.read(func(db *sqlx.DB) error {
		return db.GetContext(ctx, &row, selectImageMetadata+" WHERE id = ?", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", id, err)
	}
	img, err := hydrateImage(row)
	if err != nil {
		return nil, err
	}
	return &img.ImageMetadata, nil
}

// List returns image metadata, newest first.
func (it *imagesTable) List(ctx context.Context, limit, offset int) ([]types.Result[types.ImageMetadata], error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []imageRow
	err := it.backend.read(func(db *sqlx.DB) error {
		return db.SelectContext(ctx, &rows, selectImageMetadata+" ORDER BY createdAt DESC, rowid DESC LIMIT ? OFFSET ?",
			limit, max(offset, 0))
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	results := make([]types.Result[types.ImageMetadata], 0, len(rows))
	for _, row := range rows {
		res := types.Result[types.ImageMetadata]{ID: row.ID}
		img, err := hydrateImage(row)
		if err != nil {
			it.backend.logger.Warn().Err(err).Str("table", tableImages).Str("id", row.ID).Msg("invalid row")
			res.Err = err
		} else {
			res.Value = &img.ImageMetadata
		}
		results = append(results, res)
	}
	return results, nil
}

// DataURL returns the image as a base64 data URL.
func (it *imagesTable) DataURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", types.ErrInvalidID
	}
	var row struct {
		MimeType string `db:"mimeType"`
		Data     []byte `db:"data"`
	}
	err := it.backend.read(func(db *sqlx.DB) error {
		return db.GetContext(ctx, &row, "SELECT mimeType, data FROM Images WHERE id = ?", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", id, err)
	}
	return "data:" + row.MimeType + ";base64," + base64.StdEncoding.EncodeToString(row.Data), nil
}

// Delete removes an image. Panes that reference it are not changed.
func (it *imagesTable) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, it.backend, tableImages, id)
}

package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/fundiary/fundiary/pkg/types"
)

// Backup file names inside an export directory.
const (
	templatesFile = "templates.jsonl"
	diariesFile   = "diaries.jsonl"
	imagesFile    = "images.jsonl"
)

// imageRecord is the JSONL form of an image, payload included.
type imageRecord struct {
	types.ImageMetadata
	Data []byte `json:"data"`
}

// Report counts the records handled by Export or Import. Skipped counts
// rows or lines that failed validation or decoding.
type Report struct {
	Templates int `json:"templates"`
	Diaries   int `json:"diaries"`
	Images    int `json:"images"`
	Skipped   int `json:"skipped"`
}

// Export writes every valid template, diary, and image to JSONL files in
// dir. Invalid rows are skipped and counted.
func (b *Backend) Export(ctx context.Context, dir string) (Report, error) {
	var rep Report
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rep, fmt.Errorf("creating export dir: %w", err)
	}

	templates, err := b.Templates().List(ctx, 0, 0)
	if err != nil {
		return rep, err
	}
	var recs []json.RawMessage
	for _, r := range templates {
		if !r.OK() {
			rep.Skipped++
			continue
		}
		if recs, err = appendRecord(recs, r.Value); err != nil {
			return rep, err
		}
		rep.Templates++
	}
	if err := writeJSONL(filepath.Join(dir, templatesFile), recs); err != nil {
		return rep, err
	}

	diaries, err := b.Diaries().List(ctx, 0, 0)
	if err != nil {
		return rep, err
	}
	recs = nil
	for _, r := range diaries {
		if !r.OK() {
			rep.Skipped++
			continue
		}
		if recs, err = appendRecord(recs, r.Value); err != nil {
			return rep, err
		}
		rep.Diaries++
	}
	if err := writeJSONL(filepath.Join(dir, diariesFile), recs); err != nil {
		return rep, err
	}

	images, err := b.Images().List(ctx, 0, 0)
	if err != nil {
		return rep, err
	}
	recs = nil
	for _, r := range images {
		if !r.OK() {
			rep.Skipped++
			continue
		}
		img, err := b.Images().Get(ctx, r.ID)
		if err != nil {
			return rep, err
		}
		if recs, err = appendRecord(recs, imageRecord{ImageMetadata: img.ImageMetadata, Data: img.Data}); err != nil {
			return rep, err
		}
		rep.Images++
	}
	if err := writeJSONL(filepath.Join(dir, imagesFile), recs); err != nil {
		return rep, err
	}
	return rep, nil
}

func appendRecord(recs []json.RawMessage, v any) ([]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return recs, fmt.Errorf("encoding record: %w", err)
	}
	return append(recs, data), nil
}

// Import loads JSONL files written by Export from dir. Records keep their
// ids and timestamps and replace rows with the same id. Loading is
// transactional: either every valid record is stored or none is. Malformed
// lines and records that fail validation are skipped and counted.
func (b *Backend) Import(ctx context.Context, dir string) (Report, error) {
	var rep Report
	files := make(map[string][]json.RawMessage, 3)
	for _, name := range []string{templatesFile, diariesFile, imagesFile} {
		recs, skipped, err := readJSONL(filepath.Join(dir, name))
		if err != nil {
			return rep, err
		}
		files[name] = recs
		rep.Skipped += skipped
	}

	err := b.write(func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning import: %w", err)
		}
		defer tx.Rollback()

		for _, raw := range files[templatesFile] {
			ok, err := b.importTemplate(ctx, tx, raw)
			if err != nil {
				return err
			}
			count(&rep.Templates, &rep.Skipped, ok)
		}
		for _, raw := range files[diariesFile] {
			ok, err := b.importDiary(ctx, tx, raw)
			if err != nil {
				return err
			}
			count(&rep.Diaries, &rep.Skipped, ok)
		}
		for _, raw := range files[imagesFile] {
			ok, err := b.importImage(ctx, tx, raw)
			if err != nil {
				return err
			}
			count(&rep.Images, &rep.Skipped, ok)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing import: %w", err)
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	return rep, nil
}

func count(stored, skipped *int, ok bool) {
	if ok {
		*stored++
	} else {
		*skipped++
	}
}

// importTemplate upserts one template record. It reports false for records
// that fail validation; errors are reserved for database failures.
func (b *Backend) importTemplate(ctx context.Context, tx *sqlx.Tx, raw json.RawMessage) (bool, error) {
	var t types.Template
	if err := json.Unmarshal(raw, &t); err != nil || t.TemplateID == "" || t.Name == "" {
		return false, nil
	}
	data, bounds, err := b.encodePanes(tableTemplates, t.TemplateID, t.Panes)
	if err != nil {
		b.logger.Warn().Err(err).Str("id", t.TemplateID).Msg("skipping template record")
		return false, nil
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO DiaryTemplates (id, name, version, createdAt, updatedAt, colSize, rowSize, template)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, version = excluded.version,
		   createdAt = excluded.createdAt, updatedAt = excluded.updatedAt,
		   colSize = excluded.colSize, rowSize = excluded.rowSize, template = excluded.template`,
		t.TemplateID, t.Name, types.SchemaVersion, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		bounds.Cols, bounds.Rows, data)
	if err != nil {
		return false, fmt.Errorf("importing template %s: %w", t.TemplateID, err)
	}
	return true, nil
}

// importDiary upserts one diary record, dropping a dangling template
// reference.
func (b *Backend) importDiary(ctx context.Context, tx *sqlx.Tx, raw json.RawMessage) (bool, error) {
	var d types.Diary
	if err := json.Unmarshal(raw, &d); err != nil || d.DiaryID == "" {
		return false, nil
	}
	data, bounds, err := b.encodePanes(tableDiaries, d.DiaryID, d.Panes)
	if err != nil {
		b.logger.Warn().Err(err).Str("id", d.DiaryID).Msg("skipping diary record")
		return false, nil
	}
	dt := &diariesTable{backend: b}
	if err := dt.resolveTemplate(ctx, tx, &d); err != nil {
		return false, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO Diaries (id, templateId, templateName, version, createdAt, updatedAt, colSize, rowSize, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET templateId = excluded.templateId, templateName = excluded.templateName,
		   version = excluded.version, createdAt = excluded.createdAt, updatedAt = excluded.updatedAt,
		   colSize = excluded.colSize, rowSize = excluded.rowSize, data = excluded.data`,
		d.DiaryID, nullString(d.TemplateID), nullString(d.TemplateName), types.SchemaVersion,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt), bounds.Cols, bounds.Rows, data)
	if err != nil {
		return false, fmt.Errorf("importing diary %s: %w", d.DiaryID, err)
	}
	return true, nil
}

// importImage upserts one image record.
func (b *Backend) importImage(ctx context.Context, tx *sqlx.Tx, raw json.RawMessage) (bool, error) {
	var rec imageRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.ImageID == "" || rec.MimeType == "" || rec.Data == nil {
		return false, nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO Images (id, name, mimeType, size, width, height, data, createdAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, mimeType = excluded.mimeType, size = excluded.size,
		   width = excluded.width, height = excluded.height, data = excluded.data, createdAt = excluded.createdAt`,
		rec.ImageID, rec.Name, rec.MimeType, int64(len(rec.Data)), nullInt(rec.Width), nullInt(rec.Height),
		rec.Data, formatTime(rec.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("importing image %s: %w", rec.ImageID, err)
	}
	return true, nil
}

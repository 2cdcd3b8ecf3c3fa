package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables.
const (
	createDiaryTemplates = `CREATE TABLE IF NOT EXISTS DiaryTemplates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    version INTEGER NOT NULL,
    createdAt TEXT NOT NULL,
    updatedAt TEXT NOT NULL,
    colSize INTEGER NOT NULL CHECK (colSize >= 0),
    rowSize INTEGER NOT NULL CHECK (rowSize >= 0),
    template TEXT NOT NULL
);`

	createDiaries = `CREATE TABLE IF NOT EXISTS Diaries (
    id TEXT PRIMARY KEY,
    templateId TEXT REFERENCES DiaryTemplates(id) ON DELETE SET NULL,
    templateName TEXT,
    version INTEGER NOT NULL,
    createdAt TEXT NOT NULL,
    updatedAt TEXT NOT NULL,
    colSize INTEGER NOT NULL CHECK (colSize >= 0),
    rowSize INTEGER NOT NULL CHECK (rowSize >= 0),
    data TEXT NOT NULL
);`

	createImages = `CREATE TABLE IF NOT EXISTS Images (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    mimeType TEXT NOT NULL,
    size INTEGER NOT NULL CHECK (size >= 0),
    width INTEGER,
    height INTEGER,
    data BLOB NOT NULL,
    createdAt TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxDiariesCreated  = `CREATE INDEX IF NOT EXISTS idx_diaries_created ON Diaries(createdAt);`
	idxDiariesTemplate = `CREATE INDEX IF NOT EXISTS idx_diaries_template ON Diaries(templateId);`
	idxImagesCreated   = `CREATE INDEX IF NOT EXISTS idx_images_created ON Images(createdAt);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createDiaryTemplates,
	createDiaries,
	createImages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxDiariesCreated,
	idxDiariesTemplate,
	idxImagesCreated,
}

// createSchema creates any missing tables and indexes.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

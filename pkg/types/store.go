package types

import (
	"context"
	"errors"
	"time"
)

// Store defines backend-agnostic access to diaries, templates, and images.
// Callers attach to a backend, use the typed tables, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error

	Diaries() DiaryTable
	Templates() TemplateTable
	Images() ImageTable
}

// DiaryTable persists finished diary entries.
type DiaryTable interface {
	// Save validates the panes, recomputes grid bounds, and writes the row.
	// A diary with an empty DiaryID is inserted under a new UUID v7;
	// otherwise the existing row is overwritten and UpdatedAt refreshed.
	Save(ctx context.Context, diary *Diary) (string, error)

	// Get returns ErrNotFound when no row exists, or a *ValidationError when
	// the stored row fails decoding or schema checks.
	Get(ctx context.Context, id string) (*Diary, error)

	// List pages through rows in storage order. Failures are reported per
	// row in Result.Err so one corrupt diary does not hide the rest.
	List(ctx context.Context, limit, offset int) ([]Result[Diary], error)

	// ListByDate returns the diaries created on the calendar day of day,
	// interpreted in day's location.
	ListByDate(ctx context.Context, day time.Time) ([]Result[Diary], error)

	Delete(ctx context.Context, id string) error
}

// TemplateTable persists reusable diary templates.
type TemplateTable interface {
	Save(ctx context.Context, template *Template) (string, error)
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, limit, offset int) ([]Result[Template], error)

	// Rename changes the template name. Diaries keep the name they
	// snapshotted when they were created.
	Rename(ctx context.Context, id, name string) error

	// Delete removes the template. Diaries created from it are kept and
	// report no template afterwards.
	Delete(ctx context.Context, id string) error
}

// ImageTable stores image blobs referenced by imageId pane fields.
type ImageTable interface {
	Save(ctx context.Context, image *Image) (string, error)
	Get(ctx context.Context, id string) (*Image, error)

	// GetMetadata reads everything except the blob.
	GetMetadata(ctx context.Context, id string) (*ImageMetadata, error)

	// List returns metadata only, newest first.
	List(ctx context.Context, limit, offset int) ([]Result[ImageMetadata], error)

	// DataURL returns the image as a data: URL suitable for display.
	DataURL(ctx context.Context, id string) (string, error)

	Delete(ctx context.Context, id string) error
}

// Result is one row of a listing: either a decoded value or the error that
// prevented decoding it.
type Result[T any] struct {
	ID    string
	Value *T
	Err   error
}

// OK reports whether the row decoded successfully.
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Value != nil
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

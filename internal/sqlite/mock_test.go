package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundiary/fundiary/pkg/pane"
	"github.com/fundiary/fundiary/pkg/types"
)

var errDisk = errors.New("disk I/O error")

// setupMockBackend binds a backend to a sqlmock connection.
func setupMockBackend(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b := NewBackend(pane.NewDefaultRegistry())
	b.mu.Lock()
	b.bind(sqlx.NewDb(db, "sqlmock"), types.Config{Backend: types.BackendSQLite})
	b.mu.Unlock()
	return b, mock
}

var diaryColumns = []string{
	"id", "templateId", "templateName", "version", "createdAt", "updatedAt",
	"colSize", "rowSize", "data", "templateExists",
}

func TestGetIOErrorIsIsolated(t *testing.T) {
	b, mock := setupMockBackend(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM Diaries d").WithArgs("d1").WillReturnError(errDisk)
	mock.ExpectQuery("SELECT (.+) FROM Diaries d").WithArgs("d1").WillReturnRows(
		sqlmock.NewRows(diaryColumns).AddRow(
			"d1", nil, nil, types.SchemaVersion,
			"2024-05-01T09:00:00.000000Z", "2024-05-01T09:00:00.000000Z",
			0, 0, "[]", false))

	_, err := b.Diaries().Get(ctx, "d1")
	require.ErrorIs(t, err, errDisk)
	var ve *types.ValidationError
	assert.False(t, errors.As(err, &ve), "I/O failures are not validation failures")

	d, err := b.Diaries().Get(ctx, "d1")
	require.NoError(t, err, "the next read succeeds")
	assert.Equal(t, "d1", d.DiaryID)
	assert.Empty(t, d.Panes)
	assert.Equal(t, types.NoTemplateName, d.TemplateLabel())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListIOError(t *testing.T) {
	b, mock := setupMockBackend(t)

	mock.ExpectQuery("SELECT (.+) FROM Diaries d").WillReturnError(errDisk)

	results, err := b.Diaries().List(context.Background(), 0, 0)
	assert.ErrorIs(t, err, errDisk)
	assert.Nil(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveIOErrorRollsBack(t *testing.T) {
	b, mock := setupMockBackend(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Diaries").WillReturnError(errDisk)
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Diaries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	diary := &types.Diary{}
	_, err := b.Diaries().Save(ctx, diary)
	require.ErrorIs(t, err, errDisk)
	assert.True(t, diary.IsDraft(), "failed save leaves the diary untouched")

	id, err := b.Diaries().Save(ctx, diary)
	require.NoError(t, err)
	assert.Equal(t, id, diary.DiaryID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteIOError(t *testing.T) {
	b, mock := setupMockBackend(t)

	mock.ExpectExec("DELETE FROM Images").WithArgs("img").WillReturnError(errDisk)

	err := b.Images().Delete(context.Background(), "img")
	assert.ErrorIs(t, err, errDisk)
	assert.NotErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

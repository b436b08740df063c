package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/dkorchagin/entryvault/internal/errs"
)

func TestEntryRepo_Count(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM entries WHERE owner_id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	n, err := r.Count(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestEntryRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT allowance FROM users WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"allowance"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM entries WHERE owner_id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO entries \(owner_id, salt, name, content, last_change\) VALUES \(\$1, \$2, \$3, \$4, now\(\)\) RETURNING id`).
		WithArgs(int64(1), []byte("s"), []byte("n"), []byte("c")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()

	id, err := r.Create(context.Background(), 1, []byte("s"), []byte("n"), []byte("c"))
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestEntryRepo_Create_NoUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT allowance FROM users WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := r.Create(context.Background(), 1, []byte("s"), []byte("n"), []byte("c"))
	require.ErrorIs(t, err, errs.ErrNoUser)
}

func TestEntryRepo_Create_LimitExceeded(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT allowance FROM users WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"allowance"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM entries WHERE owner_id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	_, err := r.Create(context.Background(), 1, []byte("s"), []byte("n"), []byte("c"))
	require.ErrorIs(t, err, errs.ErrLimitExceeded)
}

func TestEntryRepo_Update(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectExec(`UPDATE entries SET salt=\$3, name=\$4, content=\$5, last_change=now\(\) WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2), []byte("s"), []byte("n"), []byte("c")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Update(context.Background(), 1, 2, []byte("s"), []byte("n"), []byte("c")))

	mock.ExpectExec(`UPDATE entries SET salt=\$3, name=\$4, content=\$5, last_change=now\(\) WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2), []byte("s"), []byte("n"), []byte("c")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Update(context.Background(), 1, 2, []byte("s"), []byte("n"), []byte("c")), errs.ErrNotFound)
}

func TestEntryRepo_Delete_NotIdempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	mock.ExpectExec(`DELETE FROM entries WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(context.Background(), 1, 2))

	// same id again: row is gone, must report absence
	mock.ExpectExec(`DELETE FROM entries WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(context.Background(), 1, 2), errs.ErrNotFound)
}

func TestEntryRepo_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, owner_id, salt, name, content, last_change FROM entries WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "salt", "name", "content", "last_change"}).
			AddRow(int64(2), int64(1), []byte("s"), []byte("n"), []byte("c"), now))
	e, err := r.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), e.ID)
	require.Equal(t, now, e.LastChange)

	mock.ExpectQuery(`SELECT id, owner_id, salt, name, content, last_change FROM entries WHERE owner_id=\$1 AND id=\$2`).
		WithArgs(int64(1), int64(2)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(context.Background(), 1, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEntryRepo_Changes(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()

	mock.ExpectQuery(`SELECT id, last_change FROM entries WHERE owner_id=\$1 ORDER BY last_change ASC`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "last_change"}).
			AddRow(int64(10), t1).
			AddRow(int64(11), t2))
	cs, err := r.Changes(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	require.Equal(t, int64(10), cs[0].ID)
	require.True(t, cs[0].LastChange.Before(cs[1].LastChange))
}

func TestEntryRepo_ChangedAfter(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	since := time.Now().Add(-time.Minute)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, owner_id, salt, name, content, last_change FROM entries WHERE owner_id=\$1 AND last_change>\$2 ORDER BY last_change ASC`).
		WithArgs(int64(1), since).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "salt", "name", "content", "last_change"}).
			AddRow(int64(2), int64(1), []byte("s"), []byte("n"), []byte("c"), now))
	es, err := r.ChangedAfter(context.Background(), 1, since)
	require.NoError(t, err)
	require.Len(t, es, 1)
	require.Equal(t, int64(2), es[0].ID)

	// nothing newer than ts -> empty result, no error
	mock.ExpectQuery(`SELECT id, owner_id, salt, name, content, last_change FROM entries WHERE owner_id=\$1 AND last_change>\$2 ORDER BY last_change ASC`).
		WithArgs(int64(1), now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "salt", "name", "content", "last_change"}))
	es, err = r.ChangedAfter(context.Background(), 1, now)
	require.NoError(t, err)
	require.Empty(t, es)
}

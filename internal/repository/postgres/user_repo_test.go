package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		Username:  "a@x.com",
		PwdHash:   []byte("h"),
		PwdSalt:   []byte("s"),
		Allowance: model.DefaultAllowance,
	}

	// OK
	mock.ExpectQuery(`INSERT INTO users \(username, pwd_hash, pwd_salt, allowance\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id`).
		WithArgs(u.Username, u.PwdHash, u.PwdSalt, u.Allowance).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	id, err := r.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)

	// Unique violation
	mock.ExpectQuery(`INSERT INTO users \(username, pwd_hash, pwd_salt, allowance\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING id`).
		WithArgs(u.Username, u.PwdHash, u.PwdSalt, u.Allowance).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, username, pwd_hash, pwd_salt, allowance, created_at FROM users WHERE id=\$1`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "pwd_hash", "pwd_salt", "allowance", "created_at"}).
			AddRow(int64(3), "u", []byte("h"), []byte("s"), 4096, time.Now()))
	u, err := r.GetByID(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, 4096, u.Allowance)

	mock.ExpectQuery(`SELECT id, username, pwd_hash, pwd_salt, allowance, created_at FROM users WHERE id=\$1`).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, 3)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	name := "b@x.com"

	mock.ExpectQuery(`SELECT id, username, pwd_hash, pwd_salt, allowance, created_at FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "pwd_hash", "pwd_salt", "allowance", "created_at"}).
			AddRow(int64(5), name, []byte("h"), []byte("s"), 4096, time.Now()))
	u, err := r.GetByUsername(ctx, name)
	require.NoError(t, err)
	require.Equal(t, name, u.Username)

	mock.ExpectQuery(`SELECT id, username, pwd_hash, pwd_salt, allowance, created_at FROM users WHERE username=\$1`).
		WithArgs(name).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByUsername(ctx, name)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, 9))

	mock.ExpectExec(`DELETE FROM users WHERE id=\$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, 9), errs.ErrNotFound)
}

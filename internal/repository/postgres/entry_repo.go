package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkorchagin/entryvault/internal/errs"
	"github.com/dkorchagin/entryvault/internal/model"
)

// EntryRepo implements repository.EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

// Count returns the number of entries the owner currently holds.
func (r *EntryRepo) Count(ctx context.Context, ownerID int64) (int, error) {
	const q = `SELECT count(*) FROM entries WHERE owner_id=$1`
	var n int
	if err := r.db.Pool.QueryRow(ctx, q, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts an entry under the owner's allowance. The owner row is
// locked for the duration of the transaction, so concurrent creates for the
// same owner serialize and the quota check cannot be raced past.
func (r *EntryRepo) Create(
	ctx context.Context, ownerID int64, salt, name, content []byte,
) (id int64, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const lock = `SELECT allowance FROM users WHERE id=$1 FOR UPDATE`
	var allowance int
	if err = tx.QueryRow(ctx, lock, ownerID).Scan(&allowance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNoUser
		}
		return 0, err
	}

	const cnt = `SELECT count(*) FROM entries WHERE owner_id=$1`
	var n int
	if err = tx.QueryRow(ctx, cnt, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	if n >= allowance {
		return 0, errs.ErrLimitExceeded
	}

	const ins = `
INSERT INTO entries (owner_id, salt, name, content, last_change)
VALUES ($1, $2, $3, $4, now())
RETURNING id`
	if err = tx.QueryRow(ctx, ins, ownerID, salt, name, content).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, errs.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return 0, errs.ErrNoUser
		}
		return 0, err
	}
	return id, nil
}

// Update replaces the opaque fields and bumps last_change in one statement.
func (r *EntryRepo) Update(ctx context.Context, ownerID, id int64, salt, name, content []byte) error {
	const q = `
UPDATE entries SET salt=$3, name=$4, content=$5, last_change=now()
WHERE owner_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, ownerID, id, salt, name, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes exactly one entry; a repeat on the same id reports ErrNotFound.
func (r *EntryRepo) Delete(ctx context.Context, ownerID, id int64) error {
	const q = `DELETE FROM entries WHERE owner_id=$1 AND id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Get returns a single entry by id.
func (r *EntryRepo) Get(ctx context.Context, ownerID, id int64) (*model.Entry, error) {
	const q = `
SELECT id, owner_id, salt, name, content, last_change
FROM entries WHERE owner_id=$1 AND id=$2`
	row := r.db.Pool.QueryRow(ctx, q, ownerID, id)
	var e model.Entry
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Salt, &e.Name, &e.Content, &e.LastChange); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Changes returns the (id, last_change) manifest for all owner entries.
func (r *EntryRepo) Changes(ctx context.Context, ownerID int64) ([]model.EntryChange, error) {
	const q = `
SELECT id, last_change
FROM entries
WHERE owner_id=$1
ORDER BY last_change ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EntryChange
	for rows.Next() {
		var c model.EntryChange
		if err = rows.Scan(&c.ID, &c.LastChange); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChangedAfter returns entries changed strictly after ts, oldest first.
func (r *EntryRepo) ChangedAfter(ctx context.Context, ownerID int64, ts time.Time) ([]model.Entry, error) {
	const q = `
SELECT id, owner_id, salt, name, content, last_change
FROM entries
WHERE owner_id=$1 AND last_change>$2
ORDER BY last_change ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, ts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var e model.Entry
		if err = rows.Scan(&e.ID, &e.OwnerID, &e.Salt, &e.Name, &e.Content, &e.LastChange); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

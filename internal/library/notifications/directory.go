package notifications

import (
	"context"
	"database/sql"
	"errors"
)

var ErrRecipientNotFound = errors.New("recipient not found")

// SQLDirectory reads recipients straight from the users table.
type SQLDirectory struct {
	db *sql.DB
}

func NewSQLDirectory(db *sql.DB) *SQLDirectory { return &SQLDirectory{db: db} }

func (d *SQLDirectory) FindUser(ctx context.Context, id uint64) (Recipient, error) {
	const q = `SELECT user_id, username, email FROM users WHERE user_id = ?`
	var r Recipient
	err := d.db.QueryRowContext(ctx, q, id).Scan(&r.ID, &r.Username, &r.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipient{}, ErrRecipientNotFound
	}
	if err != nil {
		return Recipient{}, err
	}
	return r, nil
}

func (d *SQLDirectory) Admins(ctx context.Context) ([]Recipient, error) {
	const q = `SELECT user_id, username, email FROM users WHERE role = 'ADMIN' ORDER BY user_id`
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Username, &r.Email); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

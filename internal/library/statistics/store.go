package statistics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const selectStatistic = `
	SELECT s.statistic_id, s.username, s.registration_date, s.late_returned, s.in_time_returned
	FROM statistics s`

// CreateTx inserts the zeroed row for a freshly registered user.
func (s *Store) CreateTx(ctx context.Context, tx db.DBTX, username string, registeredAt time.Time) error {
	const q = `
	INSERT INTO statistics (username, registration_date, late_returned, in_time_returned)
	VALUES (?, ?, 0, 0)`
	if _, err := tx.ExecContext(ctx, q, username, registeredAt); err != nil {
		return fmt.Errorf("insert statistic: %w", err)
	}
	return nil
}

// IncrementTx bumps exactly one counter. It runs inside the return transaction so the
// counter and the reservation's returned flag commit together.
func (s *Store) IncrementTx(ctx context.Context, tx db.DBTX, username string, late bool) error {
	q := `UPDATE statistics SET in_time_returned = in_time_returned + 1 WHERE username = ?`
	if late {
		q = `UPDATE statistics SET late_returned = late_returned + 1 WHERE username = ?`
	}
	res, err := tx.ExecContext(ctx, q, username)
	if err != nil {
		return fmt.Errorf("update statistic: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return ErrStatisticNotFound
	}
	return nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*Statistic, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectStatistic+` WHERE s.username = ?`, username))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*Statistic, error) {
	const join = ` JOIN users u ON u.username = s.username WHERE u.email = ?`
	return s.scanOne(s.db.QueryRowContext(ctx, selectStatistic+join, email))
}

func (s *Store) scanOne(row *sql.Row) (*Statistic, error) {
	var st Statistic
	err := row.Scan(&st.StatisticID, &st.Username, &st.RegistrationDate, &st.LateReturned, &st.InTimeReturned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStatisticNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"library-backend/internal/platform/db"
)

// StatsCounter bumps the borrower's return counters inside the return transaction.
type StatsCounter interface {
	IncrementTx(ctx context.Context, tx db.DBTX, username string, late bool) error
}

type Store struct {
	db    *sql.DB
	stats StatsCounter
}

func NewStore(conn *sql.DB, stats StatsCounter) *Store {
	return &Store{db: conn, stats: stats}
}

var dialect = goqu.Dialect("mysql")

var reservationColumns = []any{
	"reservation_id", "reservation_ulid", "book_id", "user_id",
	"is_returned", "is_deadline_missed", "start_date", "finish_date",
}

// lockBook takes the row lock that serializes reserve and return per book id.
func lockBook(ctx context.Context, tx db.DBTX, bookID uint64) (reserved bool, err error) {
	const q = `SELECT is_reserved FROM books WHERE book_id = ? FOR UPDATE`
	if err := tx.QueryRowContext(ctx, q, bookID).Scan(&reserved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrBookNotFound
		}
		return false, fmt.Errorf("lock book %d: %w", bookID, err)
	}
	return reserved, nil
}

func setBookReserved(ctx context.Context, tx db.DBTX, bookID uint64, reserved bool) error {
	const q = `UPDATE books SET is_reserved = ? WHERE book_id = ?`
	res, err := tx.ExecContext(ctx, q, reserved, bookID)
	if err != nil {
		return fmt.Errorf("update book %d: %w", bookID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return fmt.Errorf("update book %d: %d rows affected", bookID, n)
	}
	return nil
}

// Reserve checks availability and inserts r in one transaction. On success
// r.ReservationID is set.
func (s *Store) Reserve(ctx context.Context, r *Reservation) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		reserved, err := lockBook(ctx, tx, r.BookID)
		if err != nil {
			return err
		}
		if reserved {
			return ErrNotAvailable
		}

		const q = `
		INSERT INTO reservations
		(reservation_ulid, book_id, user_id, is_returned, is_deadline_missed, start_date, finish_date)
		VALUES
		(?, ?, ?, 0, 0, ?, ?)`
		res, err := tx.ExecContext(ctx, q, r.ReservationULID, r.BookID, r.UserID, r.StartDate, r.FinishDate)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		r.ReservationID = uint64(id)

		return setBookReserved(ctx, tx, r.BookID, true)
	})
}

// Return closes the active reservation of bookID. The statistics counter is chosen
// from the locked row's is_deadline_missed and commits with the returned flag.
func (s *Store) Return(ctx context.Context, bookID uint64) (*Reservation, error) {
	var out *Reservation
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := lockBook(ctx, tx, bookID); err != nil {
			if errors.Is(err, ErrBookNotFound) {
				return ErrNoActiveReservation
			}
			return err
		}

		r, err := lockActive(ctx, tx, bookID)
		if err != nil {
			return err
		}

		if err := s.stats.IncrementTx(ctx, tx, r.Username, r.IsDeadlineMissed); err != nil {
			return fmt.Errorf("count return for %s: %w", r.Username, err)
		}

		const q = `UPDATE reservations SET is_returned = 1 WHERE reservation_id = ? AND is_returned = 0`
		res, err := tx.ExecContext(ctx, q, r.ReservationID)
		if err != nil {
			return fmt.Errorf("close reservation %d: %w", r.ReservationID, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return ErrNoActiveReservation
		}

		if err := setBookReserved(ctx, tx, bookID, false); err != nil {
			return err
		}
		r.IsReturned = true
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockActive(ctx context.Context, tx db.DBTX, bookID uint64) (*Reservation, error) {
	const q = `
	SELECT r.reservation_id, r.reservation_ulid, r.book_id, r.user_id, u.username,
	       r.is_returned, r.is_deadline_missed, r.start_date, r.finish_date
	FROM reservations r
	JOIN users u ON u.user_id = r.user_id
	WHERE r.book_id = ? AND r.is_returned = 0
	LIMIT 1
	FOR UPDATE`
	var r Reservation
	err := tx.QueryRowContext(ctx, q, bookID).Scan(
		&r.ReservationID, &r.ReservationULID, &r.BookID, &r.UserID, &r.Username,
		&r.IsReturned, &r.IsDeadlineMissed, &r.StartDate, &r.FinishDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveReservation
	}
	if err != nil {
		return nil, fmt.Errorf("lock reservation for book %d: %w", bookID, err)
	}
	return &r, nil
}

// MarkDeadlineMissed flips the flag only on an active, not yet flagged row, so a
// concurrent return or an earlier sweep leaves it untouched.
func (s *Store) MarkDeadlineMissed(ctx context.Context, reservationID uint64) (bool, error) {
	const q = `
	UPDATE reservations SET is_deadline_missed = 1
	WHERE reservation_id = ? AND is_returned = 0 AND is_deadline_missed = 0`
	res, err := s.db.ExecContext(ctx, q, reservationID)
	if err != nil {
		return false, fmt.Errorf("flag reservation %d: %w", reservationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("flag reservation %d: %w", reservationID, err)
	}
	return n == 1, nil
}

func buildListQuery(f Filter) (string, []any, error) {
	conds := make([]exp.Expression, 0, 3)
	if f.Returned != nil {
		v := 0
		if *f.Returned {
			v = 1
		}
		conds = append(conds, goqu.C("is_returned").Eq(v))
	}
	if f.UserID != nil {
		conds = append(conds, goqu.C("user_id").Eq(*f.UserID))
	}
	if f.BookID != nil {
		conds = append(conds, goqu.C("book_id").Eq(*f.BookID))
	}

	ds := dialect.From("reservations").
		Select(reservationColumns...).
		Order(goqu.I("reservation_id").Asc()).
		Prepared(true)
	if len(conds) > 0 {
		ds = ds.Where(goqu.And(conds...))
	}
	return ds.ToSQL()
}

func (s *Store) List(ctx context.Context, f Filter) ([]Reservation, error) {
	q, args, err := buildListQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := []Reservation{}
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(
			&r.ReservationID, &r.ReservationULID, &r.BookID, &r.UserID,
			&r.IsReturned, &r.IsDeadlineMissed, &r.StartDate, &r.FinishDate,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetByULID(ctx context.Context, ulid string) (*Reservation, error) {
	const q = `
	SELECT reservation_id, reservation_ulid, book_id, user_id,
	       is_returned, is_deadline_missed, start_date, finish_date
	FROM reservations WHERE reservation_ulid = ?`
	var r Reservation
	err := s.db.QueryRowContext(ctx, q, ulid).Scan(
		&r.ReservationID, &r.ReservationULID, &r.BookID, &r.UserID,
		&r.IsReturned, &r.IsDeadlineMissed, &r.StartDate, &r.FinishDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %s: %w", ulid, err)
	}
	return &r, nil
}

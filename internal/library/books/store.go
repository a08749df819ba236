package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const selectBook = `SELECT book_id, title, author, description, is_reserved FROM books`

func (s *Store) Create(ctx context.Context, b *Book) error {
	const q = `INSERT INTO books (title, author, description, is_reserved) VALUES (?, ?, ?, 0)`
	res, err := s.db.ExecContext(ctx, q, b.Title, b.Author, b.Description)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	b.BookID = uint64(id)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx, selectBook+` WHERE book_id = ?`, id).
		Scan(&b.BookID, &b.Title, &b.Author, &b.Description, &b.IsReserved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context) ([]Book, error) {
	return s.query(ctx, selectBook+` ORDER BY book_id`)
}

func (s *Store) FindByTitle(ctx context.Context, title string) ([]Book, error) {
	return s.query(ctx, selectBook+` WHERE title = ? ORDER BY book_id`, title)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.Description, &b.IsReserved); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update rewrites the catalog fields. is_reserved belongs to the reservation engine
// and is never written here.
func (s *Store) Update(ctx context.Context, b *Book) error {
	const q = `UPDATE books SET title = ?, author = ?, description = ? WHERE book_id = ?`
	if _, err := s.db.ExecContext(ctx, q, b.Title, b.Author, b.Description, b.BookID); err != nil {
		return fmt.Errorf("update book %d: %w", b.BookID, err)
	}
	return nil
}

// Delete removes an unreserved book. The row lock keeps a concurrent reserve from
// slipping in between the check and the delete.
func (s *Store) Delete(ctx context.Context, id uint64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var reserved bool
		err := tx.QueryRowContext(ctx, `SELECT is_reserved FROM books WHERE book_id = ? FOR UPDATE`, id).Scan(&reserved)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("lock book %d: %w", id, err)
		}
		if reserved {
			return ErrBookReserved
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("delete book %d: %w", id, err)
		}
		return nil
	})
}

package reservations

import "context"

// Repository is everything the engine needs from persistence. Reserve and Return
// are atomic per book id; MarkDeadlineMissed reports whether it changed a row.
type Repository interface {
	Reserve(ctx context.Context, r *Reservation) error
	Return(ctx context.Context, bookID uint64) (*Reservation, error)
	MarkDeadlineMissed(ctx context.Context, reservationID uint64) (bool, error)
	List(ctx context.Context, f Filter) ([]Reservation, error)
	GetByULID(ctx context.Context, ulid string) (*Reservation, error)
}

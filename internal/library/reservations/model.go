package reservations

import "time"

// Reservation is one row of the reservations table. Returned rows are history and
// never change again.
type Reservation struct {
	ReservationID    uint64
	ReservationULID  string
	BookID           uint64
	UserID           uint64
	Username         string // filled only where the query joins users
	IsReturned       bool
	IsDeadlineMissed bool
	StartDate        time.Time
	FinishDate       time.Time
}

// Filter narrows List. Nil fields do not filter.
type Filter struct {
	UserID   *uint64
	BookID   *uint64
	Returned *bool
}

func activeOnly() Filter {
	f := false
	return Filter{Returned: &f}
}

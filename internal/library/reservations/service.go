package reservations

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"library-backend/internal/library/notifications"
	"library-backend/internal/platform/logging"
)

// Fixed loan period and reminder window.
const (
	loanMonths         = 1
	reminderWindowDays = 5
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Notifier is the part of notifications.Notifier the engine uses.
type Notifier interface {
	DeadlineExpired(ctx context.Context, loan notifications.Loan) error
	Reminder(ctx context.Context, loan notifications.Loan, daysLeft int) error
	Returned(ctx context.Context, loan notifications.Loan) error
}

// Service is the reservation engine. It trusts its caller: role checks happen in
// the HTTP layer.
type Service struct {
	repo   Repository
	notify Notifier
	clock  Clock
	id     IDGen
	log    logging.Logger
}

func NewService(repo Repository, notify Notifier, log logging.Logger) *Service {
	return &Service{
		repo:   repo,
		notify: notify,
		clock:  realClock{},
		id:     ulidGen{},
		log:    log.With("component", "reservations"),
	}
}

// PATCH /book/reservation/:bookId
func (s *Service) Reserve(ctx context.Context, bookID, userID uint64) (ReservationResponse, error) {
	if bookID == 0 {
		return ReservationResponse{}, ErrInvalid("book id required")
	}
	if userID == 0 {
		return ReservationResponse{}, ErrInvalid("user id required")
	}

	now := s.clock.Now()
	r := &Reservation{
		ReservationULID: s.id.NewULID(now),
		BookID:          bookID,
		UserID:          userID,
		StartDate:       now,
		FinishDate:      loanDeadline(now),
	}
	if err := s.repo.Reserve(ctx, r); err != nil {
		return ReservationResponse{}, err
	}

	s.log.Info(ctx, "book reserved", "book_id", bookID, "user_id", userID, "reservation", r.ReservationULID)
	return toResponse(*r), nil
}

// PATCH /book/reservation/return/:bookId
// The state change is committed before anyone is notified; a failed notification
// is only logged.
func (s *Service) ReturnBook(ctx context.Context, bookID uint64) (ReservationResponse, error) {
	if bookID == 0 {
		return ReservationResponse{}, ErrInvalid("book id required")
	}

	r, err := s.repo.Return(ctx, bookID)
	if err != nil {
		return ReservationResponse{}, err
	}
	s.log.Info(ctx, "book returned",
		"book_id", bookID, "user_id", r.UserID, "reservation", r.ReservationULID, "late", r.IsDeadlineMissed)

	if err := s.notify.Returned(ctx, loanOf(*r)); err != nil {
		s.log.Warn(ctx, "return notification failed", "book_id", bookID, "error", err)
	}
	return toResponse(*r), nil
}

// GET /book/reservation
func (s *Service) ActiveUserReservations(ctx context.Context, userID uint64) ([]ReservationResponse, error) {
	f := activeOnly()
	f.UserID = &userID
	rs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return toResponses(rs), nil
}

// GET /book/reservation/all
func (s *Service) AllActiveReservations(ctx context.Context) ([]ReservationResponse, error) {
	rs, err := s.repo.List(ctx, activeOnly())
	if err != nil {
		return nil, err
	}
	return toResponses(rs), nil
}

// GET /book/reservation/id/:ulid
func (s *Service) GetReservation(ctx context.Context, id string) (ReservationResponse, error) {
	id = strings.TrimSpace(id)
	if _, err := ulid.ParseStrict(id); err != nil {
		return ReservationResponse{}, ErrInvalid("malformed reservation id")
	}
	r, err := s.repo.GetByULID(ctx, id)
	if err != nil {
		return ReservationResponse{}, err
	}
	return toResponse(*r), nil
}

// loanDeadline adds the loan period and clamps the day to the target month:
// Jan 31 + 1 month = Feb 29 (or 28).
func loanDeadline(start time.Time) time.Time {
	y, m, d := start.Date()
	first := time.Date(y, m+loanMonths, 1,
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func loanOf(r Reservation) notifications.Loan {
	return notifications.Loan{
		BookID:     r.BookID,
		UserID:     r.UserID,
		StartDate:  r.StartDate,
		FinishDate: r.FinishDate,
	}
}

package statistics

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Finder interface {
	FindByUsername(ctx context.Context, username string) (*Statistic, error)
	FindByEmail(ctx context.Context, email string) (*Statistic, error)
}

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	store Finder
	clock Clock
}

func NewService(store Finder) *Service {
	return &Service{store: store, clock: realClock{}}
}

func (s *Service) ByUsername(ctx context.Context, username string) (StatisticResponse, error) {
	if strings.TrimSpace(username) == "" {
		return StatisticResponse{}, ErrInvalid("username required")
	}
	st, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return StatisticResponse{}, err
	}
	return s.toResponse(st), nil
}

func (s *Service) ByEmail(ctx context.Context, email string) (StatisticResponse, error) {
	if strings.TrimSpace(email) == "" {
		return StatisticResponse{}, ErrInvalid("email required")
	}
	st, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return StatisticResponse{}, err
	}
	return s.toResponse(st), nil
}

func (s *Service) toResponse(st *Statistic) StatisticResponse {
	return StatisticResponse{
		Username:       st.Username,
		InTimeReturned: st.InTimeReturned,
		LateReturned:   st.LateReturned,
		ExistedFor:     ExistedFor(st.RegistrationDate, s.clock.Now()),
	}
}

// ExistedFor renders the calendar period between two dates.
func ExistedFor(from, to time.Time) string {
	y, m, d := period(from, to)
	return fmt.Sprintf("%d years, %d months, %d days", y, m, d)
}

// period counts whole months first, then the remaining days, on calendar dates.
func period(from, to time.Time) (years, months, days int) {
	start := dateOf(from)
	end := dateOf(to.In(from.Location()))
	if end.Before(start) {
		return 0, 0, 0
	}

	total := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	days = end.Day() - start.Day()
	if total > 0 && days < 0 {
		total--
		anchor := addMonthsClamped(start, total)
		days = int(end.Sub(anchor).Hours() / 24)
	}
	return total / 12, total % 12, days
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// addMonthsClamped keeps the day inside the target month: Jan 31 + 1 month = Feb 28/29.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

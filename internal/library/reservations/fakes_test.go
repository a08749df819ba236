package reservations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"library-backend/internal/library/notifications"
	"library-backend/internal/platform/logging"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewULID(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("01HZZZZZZZZZZZZZZZZZZZZ%03d", g.n)
}

// memRepo keeps books, reservations and counters in memory; one mutex stands in
// for the row locks.
type memRepo struct {
	mu        sync.Mutex
	books     map[uint64]bool // book id -> is_reserved
	usernames map[uint64]string
	rows      []*Reservation
	late      map[string]int
	inTime    map[string]int

	listErr error
	flipErr map[uint64]error
	getErr  map[string]error
	// afterList runs once List has released the lock.
	afterList func()
	writes    int
}

func newMemRepo(bookIDs ...uint64) *memRepo {
	m := &memRepo{
		books:     map[uint64]bool{},
		usernames: map[uint64]string{1: "alice", 2: "bob"},
		late:      map[string]int{},
		inTime:    map[string]int{},
		flipErr:   map[uint64]error{},
		getErr:    map[string]error{},
	}
	for _, id := range bookIDs {
		m.books[id] = false
	}
	return m
}

// seed inserts an active reservation directly, bypassing Reserve.
func (m *memRepo) seed(bookID, userID uint64, start, finish time.Time) *Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &Reservation{
		ReservationID:   uint64(len(m.rows) + 1),
		ReservationULID: fmt.Sprintf("seed-%d", len(m.rows)+1),
		BookID:          bookID,
		UserID:          userID,
		StartDate:       start,
		FinishDate:      finish,
	}
	m.books[bookID] = true
	m.rows = append(m.rows, r)
	return r
}

func (m *memRepo) Reserve(_ context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reserved, ok := m.books[r.BookID]
	if !ok {
		return ErrBookNotFound
	}
	if reserved {
		return ErrNotAvailable
	}
	r.ReservationID = uint64(len(m.rows) + 1)
	cp := *r
	m.rows = append(m.rows, &cp)
	m.books[r.BookID] = true
	m.writes++
	return nil
}

func (m *memRepo) Return(_ context.Context, bookID uint64) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.BookID != bookID || r.IsReturned {
			continue
		}
		name := m.usernames[r.UserID]
		if r.IsDeadlineMissed {
			m.late[name]++
		} else {
			m.inTime[name]++
		}
		r.IsReturned = true
		m.books[bookID] = false
		m.writes++
		cp := *r
		cp.Username = name
		return &cp, nil
	}
	return nil, ErrNoActiveReservation
}

func (m *memRepo) MarkDeadlineMissed(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.flipErr[id]; err != nil {
		return false, err
	}
	for _, r := range m.rows {
		if r.ReservationID == id && !r.IsReturned && !r.IsDeadlineMissed {
			r.IsDeadlineMissed = true
			m.writes++
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) List(_ context.Context, f Filter) ([]Reservation, error) {
	out, err := m.list(f)
	if m.afterList != nil {
		m.afterList()
	}
	return out, err
}

func (m *memRepo) list(f Filter) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []Reservation{}
	for _, r := range m.rows {
		if f.Returned != nil && r.IsReturned != *f.Returned {
			continue
		}
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		if f.BookID != nil && r.BookID != *f.BookID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *memRepo) GetByULID(_ context.Context, id string) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[id]; err != nil {
		return nil, err
	}
	for _, r := range m.rows {
		if r.ReservationULID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrReservationNotFound
}

func (m *memRepo) active(bookID uint64) []Reservation {
	id := bookID
	f := activeOnly()
	f.BookID = &id
	rs, _ := m.list(f)
	return rs
}

type reminderCall struct {
	loan notifications.Loan
	days int
}

type fakeNotifier struct {
	mu        sync.Mutex
	expired   []notifications.Loan
	reminders []reminderCall
	returned  []notifications.Loan
	err       error
}

func (n *fakeNotifier) DeadlineExpired(_ context.Context, loan notifications.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, loan)
	return n.err
}

func (n *fakeNotifier) Reminder(_ context.Context, loan notifications.Loan, daysLeft int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, reminderCall{loan: loan, days: daysLeft})
	return n.err
}

func (n *fakeNotifier) Returned(_ context.Context, loan notifications.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.returned = append(n.returned, loan)
	return n.err
}

var testNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(repo Repository, n Notifier) (*Service, *fixedClock) {
	clock := &fixedClock{t: testNow}
	svc := NewService(repo, n, logging.Discard())
	svc.clock = clock
	svc.id = &seqIDs{}
	return svc, clock
}

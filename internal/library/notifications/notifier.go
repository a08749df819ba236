package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/platform/logging"
)

type Recipient struct {
	ID       uint64
	Username string
	Email    string
}

// Directory resolves message recipients.
type Directory interface {
	FindUser(ctx context.Context, id uint64) (Recipient, error)
	Admins(ctx context.Context) ([]Recipient, error)
}

// Sender delivers one message to one address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Loan is the part of a reservation the messages talk about.
type Loan struct {
	BookID     uint64
	UserID     uint64
	StartDate  time.Time
	FinishDate time.Time
}

// Notifier sends deadline and return messages. Every method is best effort: it
// tries all recipients and returns the joined failures for the caller to log.
type Notifier struct {
	dir    Directory
	sender Sender
	fmt    *Formatter
	log    logging.Logger
}

func NewNotifier(dir Directory, sender Sender, f *Formatter, log logging.Logger) *Notifier {
	return &Notifier{dir: dir, sender: sender, fmt: f, log: log.With("component", "notifier")}
}

// DeadlineExpired tells the borrower and every administrator that the loan is overdue.
func (n *Notifier) DeadlineExpired(ctx context.Context, loan Loan) error {
	user, err := n.dir.FindUser(ctx, loan.UserID)
	if err != nil {
		return fmt.Errorf("find user %d: %w", loan.UserID, err)
	}

	errs := []error{n.send(ctx, user.Email, KindDeadlineExpiredUser, n.args(loan, user)...)}
	errs = append(errs, n.toAdmins(ctx, KindDeadlineExpiredAdmin, append(n.args(loan, user), user.Email))...)
	return errors.Join(errs...)
}

// Reminder is sent to the borrower only.
func (n *Notifier) Reminder(ctx context.Context, loan Loan, daysLeft int) error {
	user, err := n.dir.FindUser(ctx, loan.UserID)
	if err != nil {
		return fmt.Errorf("find user %d: %w", loan.UserID, err)
	}
	return n.send(ctx, user.Email, KindReminder, append(n.args(loan, user), n.fmt.DaysLeft(daysLeft))...)
}

// Returned confirms a completed return to the borrower and every administrator.
func (n *Notifier) Returned(ctx context.Context, loan Loan) error {
	user, err := n.dir.FindUser(ctx, loan.UserID)
	if err != nil {
		return fmt.Errorf("find user %d: %w", loan.UserID, err)
	}

	args := append(n.args(loan, user), user.Email)
	errs := []error{n.send(ctx, user.Email, KindReturned, args...)}
	errs = append(errs, n.toAdmins(ctx, KindReturned, args)...)
	return errors.Join(errs...)
}

func (n *Notifier) toAdmins(ctx context.Context, kind Kind, args []any) []error {
	admins, err := n.dir.Admins(ctx)
	if err != nil {
		return []error{fmt.Errorf("list admins: %w", err)}
	}
	errs := make([]error, 0, len(admins))
	for _, a := range admins {
		errs = append(errs, n.send(ctx, a.Email, kind, args...))
	}
	return errs
}

func (n *Notifier) args(loan Loan, user Recipient) []any {
	return []any{loan.BookID, n.fmt.Date(loan.StartDate), n.fmt.Date(loan.FinishDate), user.Username}
}

func (n *Notifier) send(ctx context.Context, to string, kind Kind, args ...any) error {
	subject, body, err := n.fmt.Format(kind, args...)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		n.log.Warn(ctx, "send failed", "kind", kind, "to", to, "err", err)
		return fmt.Errorf("send %s to %s: %w", kind, to, err)
	}
	n.log.Debug(ctx, "sent", "kind", kind, "to", to)
	return nil
}

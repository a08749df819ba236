package reservations

import (
	"context"
	"time"
)

// UpdateMissedDeadlines is the deadline sweep. It reads the active reservations
// once, flags the overdue ones and reminds borrowers whose deadline is inside the
// reminder window; a reminder is sent only if a fresh read still shows the
// reservation active. A failing item is counted and skipped; only the initial read
// aborts the pass.
func (s *Service) UpdateMissedDeadlines(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	active, err := s.repo.List(ctx, activeOnly())
	if err != nil {
		s.log.Error(ctx, "deadline sweep: list active reservations", "error", err)
		return report, err
	}

	now := s.clock.Now()
	windowEnd := now.AddDate(0, 0, reminderWindowDays)

	for _, r := range active {
		report.Checked++

		if r.FinishDate.Before(now) {
			if r.IsDeadlineMissed {
				continue
			}
			flipped, err := s.repo.MarkDeadlineMissed(ctx, r.ReservationID)
			if err != nil {
				report.Failed++
				s.log.Error(ctx, "deadline sweep: flag reservation", "reservation", r.ReservationULID, "error", err)
				continue
			}
			// Returned or flagged concurrently.
			if !flipped {
				continue
			}
			report.Expired++
			if err := s.notify.DeadlineExpired(ctx, loanOf(r)); err != nil {
				report.NotifyFailed++
				s.log.Warn(ctx, "deadline sweep: expiry notification failed", "reservation", r.ReservationULID, "error", err)
			}
			continue
		}

		if r.FinishDate.Before(windowEnd) {
			// The snapshot may be stale; a book returned since then gets no reminder.
			cur, err := s.repo.GetByULID(ctx, r.ReservationULID)
			if err != nil {
				report.Failed++
				s.log.Error(ctx, "deadline sweep: re-read reservation", "reservation", r.ReservationULID, "error", err)
				continue
			}
			if cur.IsReturned {
				continue
			}
			report.Reminded++
			if err := s.notify.Reminder(ctx, loanOf(*cur), daysBetween(now, cur.FinishDate)); err != nil {
				report.NotifyFailed++
				s.log.Warn(ctx, "deadline sweep: reminder failed", "reservation", r.ReservationULID, "error", err)
			}
		}
	}

	s.log.Info(ctx, "deadline sweep done",
		"checked", report.Checked, "expired", report.Expired, "reminded", report.Reminded,
		"failed", report.Failed, "notify_failed", report.NotifyFailed)
	return report, nil
}

// daysBetween counts calendar days from the date of from to the date of to, in UTC.
func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.UTC().Date()
	y2, m2, d2 := to.UTC().Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

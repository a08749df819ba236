package reservations

import "time"

type ReservationResponse struct {
	ReservationULID  string    `json:"reservation_id"`
	BookID           uint64    `json:"book_id"`
	UserID           uint64    `json:"user_id"`
	IsReturned       bool      `json:"is_returned"`
	IsDeadlineMissed bool      `json:"is_deadline_missed"`
	StartDate        time.Time `json:"start_date"`
	FinishDate       time.Time `json:"finish_date"`
}

// SweepReport summarizes one deadline sweep.
type SweepReport struct {
	Checked      int `json:"checked"`
	Expired      int `json:"expired"`
	Reminded     int `json:"reminded"`
	Failed       int `json:"failed"`
	NotifyFailed int `json:"notify_failed"`
}

func toResponse(r Reservation) ReservationResponse {
	return ReservationResponse{
		ReservationULID:  r.ReservationULID,
		BookID:           r.BookID,
		UserID:           r.UserID,
		IsReturned:       r.IsReturned,
		IsDeadlineMissed: r.IsDeadlineMissed,
		StartDate:        r.StartDate,
		FinishDate:       r.FinishDate,
	}
}

func toResponses(rs []Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toResponse(r))
	}
	return out
}

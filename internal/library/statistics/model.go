package statistics

import "time"

// Statistic is one row of the statistics table: per-user return counters.
type Statistic struct {
	StatisticID      uint64
	Username         string
	RegistrationDate time.Time
	LateReturned     uint64
	InTimeReturned   uint64
}

package statistics

type StatisticResponse struct {
	Username       string `json:"username"`
	InTimeReturned uint64 `json:"in_time_returned"`
	LateReturned   uint64 `json:"late_returned"`
	// "1 years, 2 months, 5 days" since registration
	ExistedFor string `json:"existed_for"`
}

package http

type JobResultDTO struct {
	Name     string         `json:"name"`
	OK       bool           `json:"ok"`
	Skipped  bool           `json:"skipped,omitempty"`
	Error    string         `json:"error,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

type DailyResponse struct {
	OK      bool           `json:"ok"`
	Skipped bool           `json:"skipped,omitempty"`
	Jobs    []JobResultDTO `json:"jobs,omitempty"`
}

type JobResponse struct {
	OK       bool           `json:"ok"`
	Skipped  bool           `json:"skipped,omitempty"`
	Error    string         `json:"error,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

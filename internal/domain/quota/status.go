package quota

// Unlimited marks a limit or remaining count that does not apply.
const Unlimited = -1

// Status is the allowance view returned to clients.
type Status struct {
	CanSearch         bool   `json:"canSearch"`
	SearchCount       int64  `json:"searchCount"`
	SearchLimit       int64  `json:"searchLimit"`
	RemainingSearches int64  `json:"remainingSearches"`
	Message           string `json:"message"`
}

// NewStatus derives the allowance view from a counter value and a limit.
func NewStatus(count, limit int64) Status {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	s := Status{
		CanSearch:         count < limit,
		SearchCount:       count,
		SearchLimit:       limit,
		RemainingSearches: remaining,
	}
	if s.CanSearch {
		s.Message = "You can perform searches"
	} else {
		s.Message = "You have reached your daily search limit"
	}
	return s
}

// UnlimitedStatus is reported when quota enforcement is bypassed.
func UnlimitedStatus() Status {
	return Status{
		CanSearch:         true,
		SearchLimit:       Unlimited,
		RemainingSearches: Unlimited,
		Message:           "Development mode: unlimited searches",
	}
}

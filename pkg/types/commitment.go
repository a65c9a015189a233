package types

// Commitments maps a donor id to the ids of the needs they committed to.
// Each list holds a need id at most once.
type Commitments map[string][]string

func (c Commitments) Has(donorID, needID string) bool {
	for _, id := range c[donorID] {
		if id == needID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with c.
func (c Commitments) Clone() Commitments {
	out := make(Commitments, len(c))
	for donorID, ids := range c {
		out[donorID] = append([]string(nil), ids...)
	}
	return out
}

type NGOStats struct {
	TotalRequests     int `json:"totalRequests"`
	OpenRequests      int `json:"openRequests"`
	CompletedRequests int `json:"completedRequests"`
	ScoredRequests    int `json:"scoredRequests"`
}

type DonorStats struct {
	AvailableRequests int `json:"availableRequests"`
	DonationsMade     int `json:"donationsMade"`
	HighPriority      int `json:"highPriority"`
}

package ledger

import "samaajseva/pkg/types"

// Needs returns every need, newest first.
func (l *Ledger) Needs() []types.Need {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]types.Need{}, l.needs...)
}

func (l *Ledger) Need(needID string) (*types.Need, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, n := range l.needs {
		if n.ID == needID {
			return &n, true
		}
	}
	return nil, false
}

func (l *Ledger) NeedsByNGO(ngoID string) []types.Need {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Need, 0)
	for _, n := range l.needs {
		if n.NGOID == ngoID {
			out = append(out, n)
		}
	}
	return out
}

// Commitments returns the ids of the needs donorID committed to.
func (l *Ledger) Commitments(donorID string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]string{}, l.commitments[donorID]...)
}

func (l *Ledger) HasCommitted(donorID, needID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.commitments.Has(donorID, needID)
}

func (l *Ledger) NGOStats(ngoID string) types.NGOStats {
	var stats types.NGOStats
	for _, n := range l.NeedsByNGO(ngoID) {
		stats.TotalRequests++
		switch n.Status {
		case types.NeedStatusPending:
			stats.OpenRequests++
		case types.NeedStatusFulfilled:
			stats.CompletedRequests++
		}
		if n.Urgency.Scored() {
			stats.ScoredRequests++
		}
	}
	return stats
}

func (l *Ledger) DonorStats(donorID string) types.DonorStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := types.DonorStats{DonationsMade: len(l.commitments[donorID])}
	for _, n := range l.needs {
		if n.Status == types.NeedStatusFulfilled {
			continue
		}
		stats.AvailableRequests++
		if n.Urgency == types.UrgencyHigh {
			stats.HighPriority++
		}
	}
	return stats
}

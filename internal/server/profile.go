package server

import (
	"errors"
	"net/http"
	"strings"

	"samaajseva/pkg/types"
)

type dashboardResponse struct {
	Profile *types.Profile    `json:"profile"`
	NGO     *types.NGOStats   `json:"ngoStats,omitempty"`
	Donor   *types.DonorStats `json:"donorStats,omitempty"`
	Needs   []types.Need      `json:"needs"`
}

type commitmentsResponse struct {
	NeedIDs []string     `json:"needIds"`
	Needs   []types.Need `json:"needs"`
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("id"))

	profile, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch profile")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, profile)
}

// handleGetDashboard returns the NGO's own needs and totals, or for a donor
// the open needs and their giving totals.
func (s *Service) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profileFromContext(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	data := dashboardResponse{Profile: profile}

	switch profile.Role {
	case types.UserRoleNGO:
		stats := s.ledger.NGOStats(profile.ID)
		data.NGO = &stats
		data.Needs = s.ledger.NeedsByNGO(profile.ID)
	case types.UserRoleDonor:
		stats := s.ledger.DonorStats(profile.ID)
		data.Donor = &stats
		data.Needs = make([]types.Need, 0)
		for _, n := range s.ledger.Needs() {
			if n.Status == types.NeedStatusPending {
				data.Needs = append(data.Needs, n)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, data)
}

func (s *Service) handleListCommitments(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profileFromContext(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	ids := s.ledger.Commitments(profile.ID)
	data := commitmentsResponse{
		NeedIDs: ids,
		Needs:   make([]types.Need, 0, len(ids)),
	}
	for _, id := range ids {
		// ids of needs that no longer exist are kept but not expanded
		if n, ok := s.ledger.Need(id); ok {
			data.Needs = append(data.Needs, *n)
		}
	}

	s.writeJSON(w, http.StatusOK, data)
}

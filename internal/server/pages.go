package server

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

type needsResponse struct {
	Needs []types.Need `json:"needs"`
}

type commitRequest struct {
	Amount *float64 `json:"amount" form:"amount"`
}

type commitResponse struct {
	Need         *types.Need `json:"need"`
	HasCommitted bool        `json:"hasCommitted"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleListNeeds returns needs newest first, optionally narrowed to one NGO
// with ?ngo=<id> or to one status with ?status=pending|fulfilled.
func (s *Service) handleListNeeds(w http.ResponseWriter, r *http.Request) {
	ngoID := strings.TrimSpace(r.URL.Query().Get("ngo"))
	status := types.NeedStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	var needs []types.Need
	if ngoID != "" {
		needs = s.ledger.NeedsByNGO(ngoID)
	} else {
		needs = s.ledger.Needs()
	}

	if status != "" {
		filtered := make([]types.Need, 0, len(needs))
		for _, n := range needs {
			if n.Status == status {
				filtered = append(filtered, n)
			}
		}
		needs = filtered
	}

	s.writeJSON(w, http.StatusOK, needsResponse{Needs: needs})
}

func (s *Service) handleGetNeed(w http.ResponseWriter, r *http.Request) {
	needID := strings.TrimSpace(r.PathValue("id"))

	need, ok := s.ledger.Need(needID)
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("need not found"))
		return
	}

	s.writeJSON(w, http.StatusOK, need)
}

func (s *Service) handleCreateNeed(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	profile, err := s.profileFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	var attrs types.NeedAttributes
	if err := decodeRequest(r, &attrs); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if fieldErrors := validateNeedInput(attrs); len(fieldErrors) > 0 {
		s.logger.WithField("field_errors", fieldErrors).Info("validation errors during need creation")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "Please fix the highlighted fields.",
			FieldErrors: fieldErrors,
		})
		return
	}

	// classification output is never taken from the caller
	attrs.Urgency = ""
	attrs.Confidence = 0
	attrs.PredictionMethod = ""

	need, err := s.intake.Submit(ctx, profile, attrs)
	switch {
	case errors.Is(err, types.ErrSubmissionInFlight):
		s.writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, types.ErrForbiddenRole):
		s.writeError(w, http.StatusForbidden, err)
		return
	case err != nil:
		s.logger.WithError(err).WithField("user_id", profile.ID).Error("failed to create need")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, need)
}

func (s *Service) handleCommitToNeed(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	profile, err := s.profileFromContext(ctx)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	needID := strings.TrimSpace(r.PathValue("id"))

	var req commitRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	amount := 1.0
	if req.Amount != nil {
		amount = *req.Amount
	}

	need, err := s.ledger.CommitOnce(ctx, needID, profile.ID, amount)
	switch {
	case errors.Is(err, types.ErrAlreadyCommitted):
		s.writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, types.ErrInvalidAmount):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"need_id":  needID,
			"donor_id": profile.ID,
		}).Error("failed to commit to need")
		s.internalServerError(w)
		return
	case need == nil:
		s.writeError(w, http.StatusNotFound, errors.New("need not found"))
		return
	}

	s.writeJSON(w, http.StatusOK, commitResponse{Need: need, HasCommitted: true})
}

// validateNeedInput mirrors the NGO request form: the fields the form marks
// required, and counts that cannot go below zero.
func validateNeedInput(attrs types.NeedAttributes) map[string]string {
	errs := map[string]string{}

	required := []struct {
		field string
		value string
		msg   string
	}{
		{field: "title", value: attrs.Title, msg: "Title is required."},
		{field: "domain", value: attrs.Domain, msg: "Domain is required."},
		{field: "state", value: attrs.State, msg: "State is required."},
		{field: "district", value: attrs.District, msg: "District is required."},
		{field: "resourceType", value: attrs.ResourceType, msg: "Resource type is required."},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = r.msg
		}
	}

	if attrs.QuantityNeeded < 0 || math.IsNaN(attrs.QuantityNeeded) || math.IsInf(attrs.QuantityNeeded, 0) {
		errs["quantityNeeded"] = "Quantity needed must be zero or more."
	}

	if attrs.PeopleAffected < 0 {
		errs["peopleAffected"] = "People affected must be zero or more."
	}

	return errs
}

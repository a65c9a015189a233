package types

import (
	"time"
)

type NeedStatus string

const (
	NeedStatusPending   NeedStatus = "pending"
	NeedStatusFulfilled NeedStatus = "fulfilled"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"

	// UrgencyManual marks a need whose classification failed and
	// needs a human to set priority.
	UrgencyManual Urgency = "MANUAL"

	// UrgencyUnscored marks a need created without asking the classifier.
	UrgencyUnscored Urgency = "UNSCORED"
)

// Scored reports whether u came from the classifier.
func (u Urgency) Scored() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

type Need struct {
	ID     string `json:"id"`
	NGOID  string `json:"ngoId"`
	Title  string `json:"title"`
	Domain string `json:"domain"`

	// Category mirrors Domain for older records that only carried a category.
	Category    string `json:"category"`
	Description string `json:"description"`

	NeedLocation

	PeopleAffected int    `json:"peopleAffected"`
	ResourceType   string `json:"resourceType"`
	UrgencyReason  string `json:"urgencyReason"`
	Timeline       string `json:"timeline"`

	QuantityNeeded    float64    `json:"quantityNeeded"`
	QuantityCommitted float64    `json:"quantityCommitted"`
	Status            NeedStatus `json:"status"`

	Urgency          Urgency `json:"urgency"`
	Confidence       float64 `json:"confidence"`
	PredictionMethod string  `json:"predictionMethod,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type NeedLocation struct {
	State     string `json:"state" form:"state"`
	District  string `json:"district" form:"district"`
	LocalArea string `json:"localArea" form:"local_area"`
}

// NeedAttributes is the caller supplied part of a need. Identity, progress
// and status fields are owned by the ledger.
type NeedAttributes struct {
	Title          string  `json:"title" form:"title"`
	Domain         string  `json:"domain" form:"domain"`
	Description    string  `json:"description" form:"description"`
	State          string  `json:"state" form:"state"`
	District       string  `json:"district" form:"district"`
	LocalArea      string  `json:"localArea" form:"local_area"`
	PeopleAffected int     `json:"peopleAffected" form:"people_affected"`
	ResourceType   string  `json:"resourceType" form:"resource_type"`
	UrgencyReason  string  `json:"urgencyReason" form:"urgency_reason"`
	Timeline       string  `json:"timeline" form:"timeline"`
	QuantityNeeded float64 `json:"quantityNeeded" form:"quantity_needed"`

	Urgency          Urgency `json:"urgency" form:"-"`
	Confidence       float64 `json:"confidence" form:"-"`
	PredictionMethod string  `json:"predictionMethod" form:"-"`
}

// Recompute derives Status from the committed and needed quantities.
func (n *Need) Recompute() {
	if n.QuantityCommitted >= n.QuantityNeeded {
		n.Status = NeedStatusFulfilled
		return
	}
	n.Status = NeedStatusPending
}

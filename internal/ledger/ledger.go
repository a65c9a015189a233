// Package ledger owns the needs posted by NGOs and the commitments donors
// make against them. Every mutation writes the whole affected collection to
// the store before it returns.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"samaajseva/internal/kv"
	"samaajseva/internal/metrics"
	"samaajseva/internal/utils"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	NeedsKey       = "samaajseva_needs"
	CommitmentsKey = "samaajseva_commitments"
)

type Ledger struct {
	mu          sync.RWMutex
	store       kv.Store
	logger      logrus.FieldLogger
	metrics     *metrics.Metrics
	now         func() time.Time
	needs       []types.Need
	commitments types.Commitments
}

func New(ctx context.Context, store kv.Store, logger logrus.FieldLogger, m *metrics.Metrics) (*Ledger, error) {
	l := &Ledger{
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}

	if err := l.Reload(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// Reload replaces the in-memory state with what the store holds. Records
// that cannot be decoded are logged and treated as empty.
func (l *Ledger) Reload(ctx context.Context) error {
	var needs []types.Need
	err := kv.GetJSON(ctx, l.store, NeedsKey, &needs)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		if !errors.Is(err, kv.ErrMalformed) {
			return fmt.Errorf("failed to load needs: %w", err)
		}
		l.logger.WithError(err).Error("error loading needs from store")
		needs = nil
	}

	commitments := types.Commitments{}
	err = kv.GetJSON(ctx, l.store, CommitmentsKey, &commitments)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		if !errors.Is(err, kv.ErrMalformed) {
			return fmt.Errorf("failed to load commitments: %w", err)
		}
		l.logger.WithError(err).Error("error loading commitments from store")
		commitments = types.Commitments{}
	}
	if commitments == nil {
		commitments = types.Commitments{}
	}

	l.mu.Lock()
	l.needs = needs
	l.commitments = commitments
	l.mu.Unlock()

	l.logger.WithFields(logrus.Fields{
		"needs":  len(needs),
		"donors": len(commitments),
	}).Debug("ledger loaded")

	return nil
}

// CreateNeed records a new need for ngoID at the front of the collection.
// attrs is not validated here.
func (l *Ledger) CreateNeed(ctx context.Context, attrs types.NeedAttributes, ngoID string) (*types.Need, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	need := types.Need{
		ID:     utils.NanoID(),
		NGOID:  ngoID,
		Title:  attrs.Title,
		Domain: attrs.Domain,

		Category:    attrs.Domain,
		Description: attrs.Description,
		NeedLocation: types.NeedLocation{
			State:     attrs.State,
			District:  attrs.District,
			LocalArea: attrs.LocalArea,
		},
		PeopleAffected: attrs.PeopleAffected,
		ResourceType:   attrs.ResourceType,
		UrgencyReason:  attrs.UrgencyReason,
		Timeline:       attrs.Timeline,

		QuantityNeeded:    attrs.QuantityNeeded,
		QuantityCommitted: 0,
		Status:            types.NeedStatusPending,

		Urgency:          attrs.Urgency,
		Confidence:       attrs.Confidence,
		PredictionMethod: attrs.PredictionMethod,

		CreatedAt: l.now().UTC(),
	}
	if need.Urgency == "" {
		need.Urgency = types.UrgencyUnscored
	}

	next := make([]types.Need, 0, len(l.needs)+1)
	next = append(next, need)
	next = append(next, l.needs...)

	if err := kv.SetJSON(ctx, l.store, NeedsKey, next); err != nil {
		return nil, fmt.Errorf("failed to persist needs: %w", err)
	}
	l.needs = next

	l.metrics.NeedsCreated.Inc()
	l.logger.WithFields(logrus.Fields{
		"need_id": need.ID,
		"ngo_id":  ngoID,
		"urgency": need.Urgency,
	}).Info("need created")

	return &need, nil
}

// CommitToNeed adds amount to the need's committed quantity, recomputes its
// status and records needID in the donor's commitment set.
//
// An unknown needID is a no-op: nothing is written and the returned need is
// nil. Committing twice to the same need grows the quantity twice while the
// donor's set keeps a single entry.
func (l *Ledger) CommitToNeed(ctx context.Context, needID, donorID string, amount float64) (*types.Need, error) {
	if !validAmount(amount) {
		return nil, types.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.commit(ctx, needID, donorID, amount)
}

// CommitOnce is CommitToNeed for callers that allow a single commitment per
// donor and need. It returns ErrAlreadyCommitted, writing nothing, when
// donorID already committed to needID.
func (l *Ledger) CommitOnce(ctx context.Context, needID, donorID string, amount float64) (*types.Need, error) {
	if !validAmount(amount) {
		return nil, types.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.commitments.Has(donorID, needID) {
		l.metrics.Commitments.WithLabelValues("rejected").Inc()
		return nil, types.ErrAlreadyCommitted
	}

	return l.commit(ctx, needID, donorID, amount)
}

func validAmount(amount float64) bool {
	return amount >= 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// commit must be called with l.mu held.
func (l *Ledger) commit(ctx context.Context, needID, donorID string, amount float64) (*types.Need, error) {
	idx := -1
	for i := range l.needs {
		if l.needs[i].ID == needID {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.metrics.Commitments.WithLabelValues("missing").Inc()
		l.logger.WithFields(logrus.Fields{
			"need_id":  needID,
			"donor_id": donorID,
		}).Warn("commit to unknown need ignored")
		return nil, nil
	}

	nextNeeds := append([]types.Need(nil), l.needs...)
	need := &nextNeeds[idx]
	need.QuantityCommitted += amount
	need.Recompute()

	if err := kv.SetJSON(ctx, l.store, NeedsKey, nextNeeds); err != nil {
		return nil, fmt.Errorf("failed to persist needs: %w", err)
	}
	l.needs = nextNeeds
	l.metrics.QuantityCommitted.Add(amount)

	result := "repeat"
	if !l.commitments.Has(donorID, needID) {
		nextCommitments := l.commitments.Clone()
		nextCommitments[donorID] = append(nextCommitments[donorID], needID)

		if err := kv.SetJSON(ctx, l.store, CommitmentsKey, nextCommitments); err != nil {
			return nil, fmt.Errorf("failed to persist commitments: %w", err)
		}
		l.commitments = nextCommitments
		result = "new"
	}
	l.metrics.Commitments.WithLabelValues(result).Inc()

	l.logger.WithFields(logrus.Fields{
		"need_id":            needID,
		"donor_id":           donorID,
		"amount":             amount,
		"quantity_committed": need.QuantityCommitted,
		"status":             need.Status,
	}).Info("commitment recorded")

	out := *need
	return &out, nil
}

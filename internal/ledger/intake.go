package ledger

import (
	"context"
	"sync"

	"samaajseva/internal/classifier"
	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

type Classifier interface {
	Classify(ctx context.Context, req classifier.Request) classifier.Result
}

// Intake runs the need creation flow: classify once, then create. Each
// submitter may have a single submission in flight.
type Intake struct {
	ledger     *Ledger
	classifier Classifier
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	inflight map[string]*semaphore.Weighted
}

// NewIntake wires the flow. A nil classifier creates needs as UNSCORED.
func NewIntake(l *Ledger, c Classifier, logger logrus.FieldLogger, m *metrics.Metrics) *Intake {
	return &Intake{
		ledger:     l,
		classifier: c,
		logger:     logger,
		metrics:    m,
		inflight:   make(map[string]*semaphore.Weighted),
	}
}

// acquire claims the submission slot for userID. The map only holds
// submitters with a submission in flight.
func (i *Intake) acquire(userID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	sem, ok := i.inflight[userID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		i.inflight[userID] = sem
	}
	return sem.TryAcquire(1)
}

func (i *Intake) release(userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if sem, ok := i.inflight[userID]; ok {
		sem.Release(1)
		delete(i.inflight, userID)
	}
}

// Submit classifies attrs and records the need for ngo. Classification
// failures never fail the submission.
func (i *Intake) Submit(ctx context.Context, ngo *types.Profile, attrs types.NeedAttributes) (*types.Need, error) {
	if ngo == nil {
		return nil, types.ErrNotAuthenticated
	}
	if ngo.Role != types.UserRoleNGO {
		return nil, types.ErrForbiddenRole
	}

	if !i.acquire(ngo.ID) {
		return nil, types.ErrSubmissionInFlight
	}
	defer i.release(ngo.ID)

	logger := i.logger.WithField("ngo_id", ngo.ID)

	if attrs.Description == "" {
		attrs.Description = attrs.Title
	}

	if i.classifier == nil {
		i.metrics.Classifications.WithLabelValues("skipped").Inc()
		attrs.Urgency = types.UrgencyUnscored
		attrs.Confidence = 0
		attrs.PredictionMethod = ""
	} else {
		logger.Debug("classifying request")
		result := i.classifier.Classify(ctx, classifier.Request{
			State:          attrs.State,
			PeopleAffected: attrs.PeopleAffected,
			Domain:         attrs.Domain,
			ResourceType:   attrs.ResourceType,
			UrgencyReason:  attrs.UrgencyReason,
			Timeline:       attrs.Timeline,
		})
		attrs.Urgency = result.Urgency
		attrs.Confidence = result.Confidence
		attrs.PredictionMethod = result.Method

		logger.WithFields(logrus.Fields{
			"urgency":    result.Urgency,
			"confidence": result.Confidence,
			"fallback":   !result.BackendUsed,
		}).Debug("request classified")
	}

	// the request may have been abandoned while classifying; the need is
	// still recorded so the submission is not lost
	return i.ledger.CreateNeed(context.WithoutCancel(ctx), attrs, ngo.ID)
}

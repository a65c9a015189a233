package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samaajseva/internal/kv"
	"samaajseva/internal/kv/memory"
	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"
)

func newTestLedger(t *testing.T, store kv.Store) *Ledger {
	t.Helper()
	logger, _ := test.NewNullLogger()
	l, err := New(context.Background(), store, logger, metrics.New())
	require.NoError(t, err)
	return l
}

func foodDrive(qty float64) types.NeedAttributes {
	return types.NeedAttributes{
		Title:          "Emergency Food Drive for 50 Families",
		Domain:         "Food",
		State:          "Maharashtra",
		District:       "Mumbai",
		ResourceType:   "Food Kits",
		QuantityNeeded: qty,
	}
}

func TestCreateNeed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := newTestLedger(t, store)

	first, err := l.CreateNeed(ctx, foodDrive(50), "ngo-1")
	require.NoError(t, err)
	second, err := l.CreateNeed(ctx, foodDrive(10), "ngo-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "ngo-1", first.NGOID)
	assert.Equal(t, "Food", first.Category)
	assert.Zero(t, first.QuantityCommitted)
	assert.Equal(t, types.NeedStatusPending, first.Status)
	assert.Equal(t, types.UrgencyUnscored, first.Urgency)

	needs := l.Needs()
	require.Len(t, needs, 2)
	assert.Equal(t, second.ID, needs[0].ID, "newest need comes first")
	assert.Equal(t, first.ID, needs[1].ID)

	// a second ledger over the same store sees the same collection
	reopened := newTestLedger(t, store)
	assert.Equal(t, needs, reopened.Needs())
}

func TestCommitToNeed(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	need, err := l.CreateNeed(ctx, foodDrive(10), "ngo-1")
	require.NoError(t, err)

	tests := []struct {
		amount     float64
		wantTotal  float64
		wantStatus types.NeedStatus
	}{
		{amount: 3, wantTotal: 3, wantStatus: types.NeedStatusPending},
		{amount: 6, wantTotal: 9, wantStatus: types.NeedStatusPending},
		{amount: 1, wantTotal: 10, wantStatus: types.NeedStatusFulfilled},
		{amount: 5, wantTotal: 15, wantStatus: types.NeedStatusFulfilled},
	}

	for _, tt := range tests {
		got, err := l.CommitToNeed(ctx, need.ID, "donor-1", tt.amount)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tt.wantTotal, got.QuantityCommitted)
		assert.Equal(t, tt.wantStatus, got.Status)

		stored, ok := l.Need(need.ID)
		require.True(t, ok)
		assert.Equal(t, *got, *stored)
	}
}

func TestCommitToZeroQuantityNeedIsFulfilled(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	need, err := l.CreateNeed(ctx, foodDrive(0), "ngo-1")
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusPending, need.Status, "status only changes on commit")

	got, err := l.CommitToNeed(ctx, need.ID, "donor-1", 0)
	require.NoError(t, err)
	assert.Equal(t, types.NeedStatusFulfilled, got.Status)
}

func TestCommitTwiceGrowsQuantityButNotSet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := newTestLedger(t, store)

	need, err := l.CreateNeed(ctx, foodDrive(50), "ngo-1")
	require.NoError(t, err)

	_, err = l.CommitToNeed(ctx, need.ID, "donor-1", 1)
	require.NoError(t, err)
	got, err := l.CommitToNeed(ctx, need.ID, "donor-1", 1)
	require.NoError(t, err)

	assert.Equal(t, float64(2), got.QuantityCommitted)
	assert.Equal(t, []string{need.ID}, l.Commitments("donor-1"))

	var persisted types.Commitments
	require.NoError(t, kv.GetJSON(ctx, store, CommitmentsKey, &persisted))
	assert.Equal(t, types.Commitments{"donor-1": {need.ID}}, persisted)
}

func TestCommitToUnknownNeedIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := newTestLedger(t, store)

	need, err := l.CreateNeed(ctx, foodDrive(5), "ngo-1")
	require.NoError(t, err)
	_, err = l.CommitToNeed(ctx, need.ID, "donor-1", 1)
	require.NoError(t, err)

	needsBefore, err := store.Get(ctx, NeedsKey)
	require.NoError(t, err)
	commitmentsBefore, err := store.Get(ctx, CommitmentsKey)
	require.NoError(t, err)

	got, err := l.CommitToNeed(ctx, "deleted-or-never-existed", "donor-2", 4)
	require.NoError(t, err)
	assert.Nil(t, got)

	needsAfter, err := store.Get(ctx, NeedsKey)
	require.NoError(t, err)
	commitmentsAfter, err := store.Get(ctx, CommitmentsKey)
	require.NoError(t, err)

	assert.Equal(t, needsBefore, needsAfter)
	assert.Equal(t, commitmentsBefore, commitmentsAfter)
	assert.Len(t, l.Needs(), 1)
	assert.Empty(t, l.Commitments("donor-2"))
}

func TestCommitInvalidAmount(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	need, err := l.CreateNeed(ctx, foodDrive(5), "ngo-1")
	require.NoError(t, err)

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = l.CommitToNeed(ctx, need.ID, "donor-1", amount)
		assert.ErrorIs(t, err, types.ErrInvalidAmount, "amount %v", amount)
	}

	stored, _ := l.Need(need.ID)
	assert.Zero(t, stored.QuantityCommitted)
}

func TestReloadMalformedRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, NeedsKey, []byte("not json")))
	require.NoError(t, store.Set(ctx, CommitmentsKey, []byte("[1,2")))

	logger, hook := test.NewNullLogger()
	l, err := New(ctx, store, logger, metrics.New())
	require.NoError(t, err)

	assert.Empty(t, l.Needs())
	assert.Empty(t, l.Commitments("anyone"))
	assert.Len(t, hook.AllEntries(), 2)
}

type failingStore struct {
	kv.Store
	failSet bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errDiskFull
	}
	return s.Store.Set(ctx, key, value)
}

func TestPersistFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.New()}
	l := newTestLedger(t, store)

	need, err := l.CreateNeed(ctx, foodDrive(5), "ngo-1")
	require.NoError(t, err)

	store.failSet = true

	_, err = l.CreateNeed(ctx, foodDrive(7), "ngo-1")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Len(t, l.Needs(), 1)

	_, err = l.CommitToNeed(ctx, need.ID, "donor-1", 2)
	assert.ErrorIs(t, err, errDiskFull)

	stored, _ := l.Need(need.ID)
	assert.Zero(t, stored.QuantityCommitted)
	assert.False(t, l.HasCommitted("donor-1", need.ID))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	high := foodDrive(5)
	high.Urgency = types.UrgencyHigh
	open, err := l.CreateNeed(ctx, high, "ngo-1")
	require.NoError(t, err)

	done, err := l.CreateNeed(ctx, foodDrive(1), "ngo-1")
	require.NoError(t, err)
	_, err = l.CommitToNeed(ctx, done.ID, "donor-1", 1)
	require.NoError(t, err)

	_, err = l.CreateNeed(ctx, foodDrive(3), "ngo-2")
	require.NoError(t, err)

	assert.Equal(t, types.NGOStats{
		TotalRequests:     2,
		OpenRequests:      1,
		CompletedRequests: 1,
		ScoredRequests:    1,
	}, l.NGOStats("ngo-1"))

	assert.Equal(t, types.DonorStats{
		AvailableRequests: 2,
		DonationsMade:     1,
		HighPriority:      1,
	}, l.DonorStats("donor-1"))

	assert.Len(t, l.NeedsByNGO("ngo-2"), 1)
	assert.True(t, l.HasCommitted("donor-1", done.ID))
	assert.False(t, l.HasCommitted("donor-1", open.ID))
}

func TestCommitOnce(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	need, err := l.CreateNeed(ctx, foodDrive(50), "ngo-1")
	require.NoError(t, err)

	got, err := l.CommitOnce(ctx, need.ID, "donor-1", 20)
	require.NoError(t, err)
	assert.Equal(t, float64(20), got.QuantityCommitted)

	_, err = l.CommitOnce(ctx, need.ID, "donor-1", 20)
	assert.ErrorIs(t, err, types.ErrAlreadyCommitted)

	stored, _ := l.Need(need.ID)
	assert.Equal(t, float64(20), stored.QuantityCommitted)

	got, err = l.CommitOnce(ctx, "missing", "donor-1", 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = l.CommitOnce(ctx, need.ID, "donor-2", math.NaN())
	assert.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestCommitOnceConcurrent(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, memory.New())

	need, err := l.CreateNeed(ctx, foodDrive(50), "ngo-1")
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.CommitOnce(ctx, need.ID, "donor-1", 1); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	stored, _ := l.Need(need.ID)
	assert.Equal(t, float64(1), stored.QuantityCommitted)
}

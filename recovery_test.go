package renamebatch

import (
	"context"
	"testing"
	"time"

	"github.com/bmizerany/assert"

	"github.com/renamekit/renamebatch/store"
	"github.com/renamekit/renamebatch/util"
)

func newTestRecovery() (*RecoveryManager, *store.MemoryStore) {
	kv := store.NewMemoryStore()
	return NewRecoveryManager(kv), kv
}

func testState(ts time.Time) *OperationState {
	return &OperationState{
		Timestamp: ts.UnixMilli(),
		Context:   "photo album",
		Items: []Item{
			{ID: "1", Name: "a"},
			{ID: "2", Name: "b"},
			{ID: "3", Name: "c"},
		},
		Rule: "prefix x_",
	}
}

func TestCheckRecoverableOperation_Fresh(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestRecovery()
	err := m.SaveOperationState(ctx, testState(time.Now()))
	assert.Equal(t, nil, err)

	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, (*OperationState)(nil), state)
	assert.Equal(t, "photo album", state.Context)
}

func TestCheckRecoverableOperation_Absent(t *testing.T) {
	m, _ := newTestRecovery()
	state, err := m.CheckRecoverableOperation(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, (*OperationState)(nil), state)
}

func TestCheckRecoverableOperation_ExpiredDeleted(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestRecovery()
	err := m.SaveOperationState(ctx, testState(time.Now().Add(-31*time.Minute)))
	assert.Equal(t, nil, err)

	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, (*OperationState)(nil), state)

	_, ok, _ := kv.Get(ctx, "renamebatch.operation_state")
	assert.Equal(t, false, ok)
}

func TestCheckRecoverableOperation_FullyCompletedDeleted(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestRecovery()
	st := testState(time.Now())
	st.CompletedIndices = []int{0, 1, 2}
	err := m.SaveOperationState(ctx, st)
	assert.Equal(t, nil, err)

	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, (*OperationState)(nil), state)

	_, ok, _ := kv.Get(ctx, "renamebatch.operation_state")
	assert.Equal(t, false, ok)
}

func TestMarkAndPending(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestRecovery()
	err := m.SaveOperationState(ctx, testState(time.Now()))
	assert.Equal(t, nil, err)

	assert.Equal(t, nil, m.MarkCompleted(ctx, 0))
	assert.Equal(t, nil, m.MarkFailed(ctx, 2))
	//marking twice must not duplicate the index
	assert.Equal(t, nil, m.MarkCompleted(ctx, 0))

	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, []int{0}, state.CompletedIndices)
	assert.Equal(t, []int{2}, state.FailedIndices)
	//completed and failed sets stay disjoint
	for _, i := range state.CompletedIndices {
		assert.Equal(t, false, util.ContainsInt(state.FailedIndices, i))
	}

	pending := m.GetPendingItems(state)
	assert.Equal(t, 1, len(pending))
	assert.Equal(t, "2", pending[0].ID)
}

func TestClearOperationState(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestRecovery()
	assert.Equal(t, nil, m.SaveOperationState(ctx, testState(time.Now())))
	assert.Equal(t, nil, m.ClearOperationState(ctx))
	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, (*OperationState)(nil), state)
}

func TestOfferRecovery(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestRecovery()
	st := testState(time.Now())
	st.CompletedIndices = []int{0}
	assert.Equal(t, nil, m.SaveOperationState(ctx, st))

	var seen RecoverySummary
	state, err := m.OfferRecovery(ctx, func(s RecoverySummary) bool {
		seen = s
		return true
	})
	assert.Equal(t, nil, err)
	assert.NotEqual(t, (*OperationState)(nil), state)
	assert.Equal(t, "photo album", seen.Context)
	assert.Equal(t, 3, seen.Total)
	assert.Equal(t, 1, seen.Completed)
	assert.Equal(t, 2, seen.Pending)

	//declining keeps the checkpoint for a later offer
	state, err = m.OfferRecovery(ctx, func(s RecoverySummary) bool { return false })
	assert.Equal(t, nil, err)
	assert.Equal(t, (*OperationState)(nil), state)
	state, err = m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, (*OperationState)(nil), state)
}

func TestMark_RefreshesTimestamp(t *testing.T) {
	//a batch still making progress must not let its own checkpoint age
	//past the recovery window
	ctx := context.Background()
	m, _ := newTestRecovery()
	old := time.Now().Add(-31 * time.Minute)
	assert.Equal(t, nil, m.SaveOperationState(ctx, testState(old)))

	assert.Equal(t, nil, m.MarkCompleted(ctx, 0))

	state, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, (*OperationState)(nil), state)
	assert.Equal(t, true, state.Timestamp > old.UnixMilli())
}

func TestSaveOperationState_FillsTimestamp(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestRecovery()
	st := testState(time.Time{})
	st.Timestamp = 0
	assert.Equal(t, nil, m.SaveOperationState(ctx, st))
	loaded, err := m.CheckRecoverableOperation(ctx)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, int64(0), loaded.Timestamp)
}

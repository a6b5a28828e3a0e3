package renamebatch

import (
	"context"
	"sync"
	"time"

	"github.com/renamekit/renamebatch/store"
	"github.com/renamekit/renamebatch/util"
)

//RecoveryTTL checkpoints older than this are discarded on check
const RecoveryTTL = 30 * time.Minute

const operationStateKey = "renamebatch.operation_state"

//OperationState the persisted checkpoint describing in-flight batch
//progress. One active checkpoint per process, last write wins.
type OperationState struct {
	Timestamp        int64  `json:"timestamp"`
	Context          string `json:"context"`
	Items            []Item `json:"items"`
	Rule             string `json:"rule"`
	CompletedIndices []int  `json:"completedIndices"`
	FailedIndices    []int  `json:"failedIndices"`
}

//RecoverySummary counts shown to the user before offering resumption
type RecoverySummary struct {
	Context   string
	Total     int
	Completed int
	Failed    int
	Pending   int
	Age       time.Duration
}

//Confirmer yes/no decision hook for recovery. Pure confirmation, no
//side effects beyond the prompt.
type Confirmer func(summary RecoverySummary) bool

//RecoveryManager persists and reads the crash-recovery checkpoint
//through a durable key-value store
type RecoveryManager struct {
	mu    sync.Mutex
	store store.Store
}

//NewRecoveryManager new instance
func NewRecoveryManager(s store.Store) *RecoveryManager {
	if s == nil {
		panic("store must not be nil")
	}
	return &RecoveryManager{store: s}
}

//SaveOperationState persist the checkpoint, overwriting any prior one.
//A zero Timestamp is filled with the current time.
func (m *RecoveryManager) SaveOperationState(ctx context.Context, state *OperationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(ctx, state)
}

func (m *RecoveryManager) saveLocked(ctx context.Context, state *OperationState) error {
	if state.Timestamp == 0 {
		state.Timestamp = time.Now().UnixMilli()
	}
	str, err := util.ToJson(state)
	if err != nil {
		return WrapBatchError(ErrCodeGeneral, err, "marshal operation state failed")
	}
	if err = m.store.Set(ctx, operationStateKey, str); err != nil {
		return WrapBatchError(ErrCodeStoreFail, err, "save operation state failed")
	}
	return nil
}

func (m *RecoveryManager) loadLocked(ctx context.Context) (*OperationState, error) {
	str, ok, err := m.store.Get(ctx, operationStateKey)
	if err != nil {
		return nil, WrapBatchError(ErrCodeStoreFail, err, "load operation state failed")
	}
	if !ok {
		return nil, nil
	}
	state := &OperationState{}
	if err = util.FromJson(str, state); err != nil {
		return nil, WrapBatchError(ErrCodeGeneral, err, "parse operation state failed")
	}
	return state, nil
}

//CheckRecoverableOperation returns the checkpoint if it is worth
//resuming. Absent, expired (older than RecoveryTTL) and fully
//completed checkpoints yield nil and are deleted.
func (m *RecoveryManager) CheckRecoverableOperation(ctx context.Context) (*OperationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.loadLocked(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	age := time.Since(time.UnixMilli(state.Timestamp))
	if age > RecoveryTTL || len(state.CompletedIndices) >= len(state.Items) {
		if err = m.store.Remove(ctx, operationStateKey); err != nil {
			return nil, WrapBatchError(ErrCodeStoreFail, err, "clear operation state failed")
		}
		return nil, nil
	}
	return state, nil
}

//GetPendingItems items whose index is in neither the completed nor the
//failed set
func (m *RecoveryManager) GetPendingItems(state *OperationState) []Item {
	var pending []Item
	for i, item := range state.Items {
		if util.ContainsInt(state.CompletedIndices, i) || util.ContainsInt(state.FailedIndices, i) {
			continue
		}
		pending = append(pending, item)
	}
	return pending
}

//MarkCompleted append index to the checkpoint's completed set
func (m *RecoveryManager) MarkCompleted(ctx context.Context, index int) error {
	return m.mark(ctx, index, true)
}

//MarkFailed append index to the checkpoint's failed set
func (m *RecoveryManager) MarkFailed(ctx context.Context, index int) error {
	return m.mark(ctx, index, false)
}

func (m *RecoveryManager) mark(ctx context.Context, index int, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.loadLocked(ctx)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	if completed {
		state.CompletedIndices = util.AppendIntOnce(state.CompletedIndices, index)
	} else {
		state.FailedIndices = util.AppendIntOnce(state.FailedIndices, index)
	}
	//each mark proves the batch is alive, keep the checkpoint fresh
	state.Timestamp = time.Now().UnixMilli()
	return m.saveLocked(ctx, state)
}

//ClearOperationState delete the checkpoint
func (m *RecoveryManager) ClearOperationState(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Remove(ctx, operationStateKey); err != nil {
		return WrapBatchError(ErrCodeStoreFail, err, "clear operation state failed")
	}
	return nil
}

//OfferRecovery check for a recoverable checkpoint and put the decision
//to the confirmer. Returns the checkpoint when the user accepts, nil
//otherwise. Declining does not delete the checkpoint.
func (m *RecoveryManager) OfferRecovery(ctx context.Context, confirm Confirmer) (*OperationState, error) {
	state, err := m.CheckRecoverableOperation(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	if confirm == nil {
		return state, nil
	}
	summary := RecoverySummary{
		Context:   state.Context,
		Total:     len(state.Items),
		Completed: len(state.CompletedIndices),
		Failed:    len(state.FailedIndices),
		Pending:   len(m.GetPendingItems(state)),
		Age:       time.Since(time.UnixMilli(state.Timestamp)),
	}
	if !confirm(summary) {
		return nil, nil
	}
	return state, nil
}

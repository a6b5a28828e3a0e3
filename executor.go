package renamebatch

import (
	"context"
	"sync"
	"time"

	"github.com/renamekit/renamebatch/status"
)

//Config collaborators and knobs for an Executor. Either Items+Rule or
//an explicit Tasks override must be supplied; Op is mandatory.
type Config struct {
	//Items ordered item list, planned with Rule at construction time
	Items []Item
	//Rule pure naming function, invoked exactly once per item
	Rule NamingRule
	//Tasks explicit task override, e.g. the failed subset of a prior
	//batch. When set, Items and Rule are ignored.
	Tasks []Task
	//SkipUnchanged drop tasks whose target equals the current name
	SkipUnchanged bool
	//Op the remote mutation adapter
	Op RemoteOperation
	//MaxConcurrent worker pool bound, floor 1, capped at task count
	MaxConcurrent int
	//RequestInterval minimum gap between remote request starts
	RequestInterval time.Duration
	//MaxRetries when > 1, Op is wrapped with WithRetry
	MaxRetries int
	//BaseDelay first backoff delay for the retry wrapper
	BaseDelay time.Duration
	//RetryNotice advisory retry callback, may be nil
	RetryNotice RetryNotice
	//Progress per-task progress sink. Runs on the finishing worker
	//with internal state locked: it must not block and must not call
	//back into the Executor.
	Progress ProgressFunc
	//Listeners optional batch lifecycle hooks
	Listeners []BatchListener
	//Recovery optional crash-recovery checkpoint manager
	Recovery *RecoveryManager
	//Context human-readable label stored in the checkpoint
	Context string
	//RuleLabel descriptor of the rule stored in the checkpoint, so a
	//restarted process can rehydrate the same rule
	RuleLabel string
}

//Executor the batch execution engine: bounded worker pool, global
//rate limiter, pause/cancel state machine and result aggregation
type Executor struct {
	tasks     []Task
	op        RemoteOperation
	limiter   *rateLimiter
	workers   int
	progress  ProgressFunc
	listeners []BatchListener
	recovery  *RecoveryManager
	label     string
	ruleLabel string

	mu           sync.Mutex
	checkpointed bool
	state        status.BatchStatus
	gate         chan struct{}
	cancelCh     chan struct{}
	cursor       int
	results      BatchResults
	startTime    time.Time
}

//New build an Executor. Fails synchronously on precondition errors:
//missing adapter, or neither a task list nor items with a rule.
func New(cfg Config) (*Executor, error) {
	if cfg.Op == nil {
		return nil, NewBatchError(ErrCodeInvalid, "remote operation adapter must not be nil")
	}
	tasks := cfg.Tasks
	if tasks == nil {
		if len(cfg.Items) == 0 {
			return nil, NewBatchError(ErrCodeInvalid, "item list must not be empty")
		}
		if cfg.Rule == nil {
			return nil, NewBatchError(ErrCodeInvalid, "naming rule must not be nil")
		}
		tasks = Plan(cfg.Items, cfg.Rule, cfg.SkipUnchanged)
	}
	workers := cfg.MaxConcurrent
	if workers < 1 {
		workers = DefaultMaxConcurrent
	}
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}
	op := cfg.Op
	if cfg.MaxRetries > 1 {
		base := cfg.BaseDelay
		if base <= 0 {
			base = DefaultBaseDelay
		}
		op = WithRetry(op, cfg.MaxRetries, base, cfg.RetryNotice)
	}
	return &Executor{
		tasks:     tasks,
		op:        op,
		limiter:   newRateLimiter(cfg.RequestInterval),
		workers:   workers,
		progress:  cfg.Progress,
		listeners: cfg.Listeners,
		recovery:  cfg.Recovery,
		label:     cfg.Context,
		ruleLabel: cfg.RuleLabel,
		state:     status.IDLE,
		cancelCh:  make(chan struct{}),
	}, nil
}

//Execute run the batch to a terminal status and return the aggregated
//results. Only precondition errors are returned; per-task failures
//surface inside BatchResults. A batch with zero scheduled tasks
//completes immediately with empty results and no remote calls.
func (e *Executor) Execute(ctx context.Context) (BatchResults, error) {
	e.mu.Lock()
	if e.state == status.CANCELLED {
		res := e.snapshotLocked()
		e.mu.Unlock()
		return res, nil
	}
	if e.state != status.IDLE {
		st := e.state
		e.mu.Unlock()
		return BatchResults{}, NewBatchError(ErrCodeInvalid, "batch can not start from status:%v", st)
	}
	e.state = status.RUNNING
	e.startTime = time.Now()
	total := len(e.tasks)
	e.mu.Unlock()

	logger.Info(ctx, "batch execution started, context:%v, tasks:%v, workers:%v", e.label, total, e.workers)
	for _, l := range e.listeners {
		l.BeforeBatch(total)
	}

	if total == 0 {
		e.finish(ctx)
		res, st := e.resultsAndState()
		for _, l := range e.listeners {
			l.AfterBatch(res, st)
		}
		return res, nil
	}

	if e.recovery != nil {
		if err := e.saveCheckpoint(ctx); err != nil {
			logger.Error(ctx, "save initial checkpoint failed, context:%v, err:%v", e.label, err)
		}
	}

	pool := newTaskPool(e.workers)
	defer pool.Release()
	futures := make([]Future, e.workers)
	for i := range futures {
		futures[i] = pool.Submit(ctx, func() error {
			e.runWorker(ctx)
			return nil
		})
	}
	for _, f := range futures {
		if err := f.Get(); err != nil {
			logger.Error(ctx, "rename worker exited abnormally, context:%v, err:%v", e.label, err)
		}
	}

	e.finish(ctx)
	res, st := e.resultsAndState()
	logger.Info(ctx, "batch execution finished, context:%v, status:%v, success:%v, failed:%v", e.label, st, len(res.Success), len(res.Failed))
	for _, l := range e.listeners {
		l.AfterBatch(res, st)
	}
	return res, nil
}

//finish move a drained batch to COMPLETED unless it was cancelled, and
//drop any checkpoint this batch wrote
func (e *Executor) finish(ctx context.Context) {
	e.mu.Lock()
	if status.CanTransition(e.state, status.COMPLETED) {
		e.state = status.COMPLETED
		//a pause may have landed after the last claim; drop its gate
		if e.gate != nil {
			close(e.gate)
			e.gate = nil
		}
	}
	checkpointed := e.checkpointed
	e.mu.Unlock()
	if e.recovery != nil && checkpointed {
		if err := e.recovery.ClearOperationState(ctx); err != nil {
			logger.Error(ctx, "clear checkpoint failed, context:%v, err:%v", e.label, err)
		}
	}
}

func (e *Executor) saveCheckpoint(ctx context.Context) error {
	items := make([]Item, len(e.tasks))
	for i, t := range e.tasks {
		items[i] = t.Item
	}
	e.mu.Lock()
	e.checkpointed = true
	e.mu.Unlock()
	return e.recovery.SaveOperationState(ctx, &OperationState{
		Context: e.label,
		Items:   items,
		Rule:    e.ruleLabel,
	})
}

//runWorker claim tasks from the shared cursor until the queue drains
//or the batch is cancelled. Pause/cancel state is checked before
//requesting a rate-limiter slot and again after acquiring it, before
//the remote call is issued.
func (e *Executor) runWorker(ctx context.Context) {
	for {
		if !e.proceed() {
			return
		}
		task, pos, ok := e.claim()
		if !ok {
			return
		}
		if !e.limiter.Acquire(e.cancelCh) {
			return
		}
		if !e.proceed() {
			return
		}
		e.runTask(ctx, task, pos)
	}
}

//proceed block on the pause gate while paused; report false once the
//batch is cancelled
func (e *Executor) proceed() bool {
	for {
		e.mu.Lock()
		st := e.state
		gate := e.gate
		e.mu.Unlock()
		switch st {
		case status.CANCELLED:
			return false
		case status.PAUSED:
			select {
			case <-gate:
			case <-e.cancelCh:
				return false
			}
		default:
			return true
		}
	}
}

//claim take the next task exclusively; no two workers ever see the
//same position
func (e *Executor) claim() (Task, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Terminal() || e.cursor >= len(e.tasks) {
		return Task{}, 0, false
	}
	pos := e.cursor
	e.cursor++
	return e.tasks[pos], pos, true
}

//runTask issue the remote call for one task and record its outcome.
//Every per-task error, returned or panicked, is downgraded to a failed
//entry; nothing escapes to abort the batch.
func (e *Executor) runTask(ctx context.Context, task Task, pos int) {
	newName, err := e.callOp(ctx, task)

	e.mu.Lock()
	if err != nil {
		e.results.Failed = append(e.results.Failed, FailureEntry{
			ItemID: task.Item.ID,
			Item:   task.Item,
			Err:    err,
			Index:  task.OriginalIndex,
		})
	} else {
		if newName == "" {
			newName = task.TargetName
		}
		e.results.Success = append(e.results.Success, SuccessEntry{
			ItemID:       task.Item.ID,
			OriginalName: task.Item.Name,
			NewName:      newName,
			Index:        task.OriginalIndex,
		})
	}
	ev := ProgressEvent{
		Completed:     len(e.results.Success) + len(e.results.Failed),
		Total:         len(e.tasks),
		CurrentItemID: task.Item.ID,
		SuccessCount:  len(e.results.Success),
		FailedCount:   len(e.results.Failed),
		TargetName:    task.TargetName,
		Status:        ProgressSuccess,
		Err:           err,
	}
	if err != nil {
		ev.Status = ProgressFailed
	}
	//emitted under the lock so events arrive strictly in completion order
	if e.progress != nil {
		e.progress(ev)
	}
	e.mu.Unlock()

	if err != nil {
		logger.Warn(ctx, "rename task failed, itemId:%v, target:%v, err:%v", task.Item.ID, task.TargetName, err)
	}
	if e.recovery != nil {
		var markErr error
		if err != nil {
			markErr = e.recovery.MarkFailed(ctx, pos)
		} else {
			markErr = e.recovery.MarkCompleted(ctx, pos)
		}
		if markErr != nil {
			logger.Error(ctx, "update checkpoint failed, itemId:%v, err:%v", task.Item.ID, markErr)
		}
	}
}

func (e *Executor) callOp(ctx context.Context, task Task) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewBatchError(ErrCodeGeneral, "panic in remote operation:%v", r)
		}
	}()
	return e.op.Rename(ctx, task.Item.ID, task.TargetName)
}

//Pause suspend the batch. Only effective while RUNNING; workers block
//at their next checkpoint. Reports whether the transition happened.
func (e *Executor) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !status.CanTransition(e.state, status.PAUSED) {
		return false
	}
	e.state = status.PAUSED
	e.gate = make(chan struct{})
	return true
}

//Resume release the pause gate. Only effective while PAUSED.
func (e *Executor) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != status.PAUSED {
		return false
	}
	e.state = status.RUNNING
	close(e.gate)
	e.gate = nil
	return true
}

//Cancel move the batch to CANCELLED from any non-terminal status. The
//pause gate is released so blocked workers observe the cancellation.
//Cooperative: already-issued remote calls run to completion.
func (e *Executor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !status.CanTransition(e.state, status.CANCELLED) {
		return false
	}
	e.state = status.CANCELLED
	if e.gate != nil {
		close(e.gate)
		e.gate = nil
	}
	close(e.cancelCh)
	return true
}

//Done abort signal closed on cancellation. A remote adapter may select
//on it to interrupt in-flight calls; the engine itself never does.
func (e *Executor) Done() <-chan struct{} {
	return e.cancelCh
}

//State current executor status
func (e *Executor) State() status.BatchStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

//Results a consistent snapshot of the result slices at call time
func (e *Executor) Results() BatchResults {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Executor) snapshotLocked() BatchResults {
	res := BatchResults{
		Success: make([]SuccessEntry, len(e.results.Success)),
		Failed:  make([]FailureEntry, len(e.results.Failed)),
	}
	copy(res.Success, e.results.Success)
	copy(res.Failed, e.results.Failed)
	return res
}

func (e *Executor) resultsAndState() (BatchResults, status.BatchStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(), e.state
}

//FailedTasks the failed subset as a task override for a fresh
//Executor, original indexes preserved
func (e *Executor) FailedTasks() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	failed := make(map[int]bool, len(e.results.Failed))
	for _, f := range e.results.Failed {
		failed[f.Index] = true
	}
	var tasks []Task
	for _, t := range e.tasks {
		if failed[t.OriginalIndex] {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

//Statistics derived counters, computed on demand from the result
//slices and the recorded start time
func (e *Executor) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Statistics{
		Total:        len(e.tasks),
		SuccessCount: len(e.results.Success),
		FailedCount:  len(e.results.Failed),
	}
	st.Completed = st.SuccessCount + st.FailedCount
	if st.Total > 0 {
		st.Percent = float64(st.Completed) / float64(st.Total) * 100
	}
	if !e.startTime.IsZero() {
		st.Elapsed = time.Since(e.startTime)
	}
	return st
}

//EstimatedTimeRemaining linear extrapolation from the observed average
//time per finished task; zero until the first task finishes
func (e *Executor) EstimatedTimeRemaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	completed := len(e.results.Success) + len(e.results.Failed)
	if completed == 0 || e.startTime.IsZero() {
		return 0
	}
	remaining := len(e.tasks) - completed
	if remaining <= 0 {
		return 0
	}
	avg := time.Since(e.startTime) / time.Duration(completed)
	return avg * time.Duration(remaining)
}

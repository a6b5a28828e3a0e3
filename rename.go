package renamebatch

import (
	"context"
	"time"
)

//Item one remote item to rename. Immutable for the duration of a batch.
type Item struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

//NamingRule computes the target name for an item. Pure and
//deterministic; invoked exactly once per item at planning time.
type NamingRule func(name string, index, total int) string

//Task one planned rename operation
type Task struct {
	Item          Item   `json:"item"`
	TargetName    string `json:"targetName"`
	OriginalIndex int    `json:"originalIndex"`
}

//RemoteOperation the narrow external mutation API. Returns the name
//the remote side settled on. A nil error means the rename took effect;
//any error is a failed attempt, there is no separate failure return.
type RemoteOperation interface {
	Rename(ctx context.Context, itemID, newName string) (string, error)
}

//RemoteOperationFunc adapter to use a plain function as RemoteOperation
type RemoteOperationFunc func(ctx context.Context, itemID, newName string) (string, error)

func (f RemoteOperationFunc) Rename(ctx context.Context, itemID, newName string) (string, error) {
	return f(ctx, itemID, newName)
}

//ProgressEvent emitted exactly once per finished task, in completion order
type ProgressEvent struct {
	Completed     int
	Total         int
	CurrentItemID string
	SuccessCount  int
	FailedCount   int
	TargetName    string
	Status        string
	Err           error
}

const (
	//ProgressSuccess task finished successfully
	ProgressSuccess = "success"
	//ProgressFailed task finished with an error
	ProgressFailed = "failed"
)

//ProgressFunc progress sink, must not block
type ProgressFunc func(event ProgressEvent)

//SuccessEntry a task recorded as renamed
type SuccessEntry struct {
	ItemID       string `json:"itemId"`
	OriginalName string `json:"originalName"`
	NewName      string `json:"newName"`
	Index        int    `json:"index"`
}

//FailureEntry a task recorded as failed
type FailureEntry struct {
	ItemID string `json:"itemId"`
	Item   Item   `json:"item"`
	Err    error  `json:"-"`
	Index  int    `json:"index"`
}

//BatchResults aggregated outcome of a batch. Each scheduled task
//contributes to at most one of the two slices, exactly once.
type BatchResults struct {
	Success []SuccessEntry
	Failed  []FailureEntry
}

//Statistics derived batch counters, computed on demand
type Statistics struct {
	Total        int
	SuccessCount int
	FailedCount  int
	Completed    int
	Percent      float64
	Elapsed      time.Duration
}

package renamebatch

import (
	"context"
	"time"
)

//RetryNotice advisory callback invoked before each backoff sleep. Must
//not block; the wait proceeds regardless.
type RetryNotice func(attempt int, wait time.Duration, err error)

type retryOperation struct {
	op         RemoteOperation
	maxRetries int
	baseDelay  time.Duration
	notice     RetryNotice
}

//WithRetry wraps a RemoteOperation with bounded exponential-backoff
//retry. Only transient failures are retried; terminal failures return
//immediately. The wrapped operation is a drop-in substitute for the
//raw one. maxRetries counts total attempts; the delay before attempt
//n+1 is baseDelay * 2^(n-1).
func WithRetry(op RemoteOperation, maxRetries int, baseDelay time.Duration, notice RetryNotice) RemoteOperation {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &retryOperation{
		op:         op,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		notice:     notice,
	}
}

func (r *retryOperation) Rename(ctx context.Context, itemID, newName string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		name, err := r.op.Rename(ctx, itemID, newName)
		if err == nil {
			return name, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return "", err
		}
		if attempt == r.maxRetries {
			break
		}
		wait := r.baseDelay << uint(attempt-1)
		logger.Warn(ctx, "transient rename failure, will retry, itemId:%v, attempt:%v, wait:%v, err:%v", itemID, attempt, wait, err)
		if r.notice != nil {
			r.notice(attempt, wait, err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

package renamebatch

import (
	"context"

	"github.com/panjf2000/ants/v2"
)

type taskPool struct {
	pool *ants.Pool
}

func newTaskPool(size int) *taskPool {
	pool, _ := ants.NewPool(size)
	return &taskPool{
		pool: pool,
	}
}

// Future get worker outcome in future
type Future interface {
	Get() error
}

type futureImpl struct {
	ch <-chan error
}

func (f *futureImpl) Get() error {
	return <-f.ch
}

func (pool *taskPool) Submit(ctx context.Context, task func() error) Future {
	result := make(chan error, 1)
	err := pool.pool.Submit(func() {
		var taskErr error
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "panic in rename worker, err:%v", r)
				taskErr = NewBatchError(ErrCodeGeneral, "panic in rename worker:%v", r)
			}
			result <- taskErr
			close(result)
		}()
		taskErr = task()
	})
	if err != nil {
		result <- err
		close(result)
	}
	return &futureImpl{
		ch: result,
	}
}

func (pool *taskPool) Release() {
	pool.pool.Release()
}

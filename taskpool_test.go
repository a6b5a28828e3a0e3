package renamebatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/bmizerany/assert"
)

func TestFutureImpl_Get(t *testing.T) {
	ctx := context.Background()
	pool := newTaskPool(2)

	fu := pool.Submit(ctx, func() error {
		return nil
	})
	assert.Equal(t, nil, fu.Get())

	fu = pool.Submit(ctx, func() error {
		return fmt.Errorf("worker failed")
	})
	assert.NotEqual(t, nil, fu.Get())

	fu = pool.Submit(ctx, func() error {
		var m []string
		_ = m[0]
		return nil
	})
	err := fu.Get()
	assert.NotEqual(t, nil, err)
	be, ok := err.(BatchError)
	assert.Equal(t, true, ok)
	assert.Equal(t, ErrCodeGeneral, be.Code())

	pool.Release()
	fu = pool.Submit(ctx, func() error {
		return nil
	})
	assert.NotEqual(t, nil, fu.Get())
}

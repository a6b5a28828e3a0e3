package renamebatch

import (
	"fmt"
	"testing"

	"github.com/bmizerany/assert"
	pkgerrors "github.com/pkg/errors"
)

func TestNewBatchError(t *testing.T) {
	be := NewBatchError(ErrCodeGeneral, "something broke")
	assert.Equal(t, ErrCodeGeneral, be.Code())
	assert.Equal(t, "something broke", be.Message())
	assert.NotEqual(t, 0, len(be.StackTrace()))

	formatted := NewBatchError(ErrCodeGeneral, "item:%v failed", "abc")
	assert.Equal(t, "item:abc failed", formatted.Message())
}

func TestWrapBatchError(t *testing.T) {
	cause := fmt.Errorf("low level failure")
	wrapped := WrapBatchError(ErrCodeStoreFail, cause, "save failed")
	assert.Equal(t, ErrCodeStoreFail, wrapped.Code())
	assert.Equal(t, "save failed: low level failure", wrapped.Message())

	formatted := WrapBatchError(ErrCodeGeneral, cause, "item:%v failed", "abc")
	assert.Equal(t, "item:abc failed: low level failure", formatted.Message())
}

func TestWrapBatchError_PassThrough(t *testing.T) {
	orig := NewBatchError(ErrCodeConflict, "name taken")
	same := WrapBatchError(ErrCodeGeneral, orig, "outer")
	assert.Equal(t, ErrCodeConflict, same.Code())
}

func TestIsTransient(t *testing.T) {
	assert.Equal(t, false, IsTransient(nil))

	//structured codes are authoritative
	assert.Equal(t, true, IsTransient(NewBatchError(ErrCodeTransient, "flaky link")))
	assert.Equal(t, false, IsTransient(NewBatchError(ErrCodeConflict, "connection refused")))
	assert.Equal(t, false, IsTransient(NewBatchError(ErrCodeNotFound, "gone")))

	//untagged errors fall back to the message heuristic
	assert.Equal(t, true, IsTransient(fmt.Errorf("network error")))
	assert.Equal(t, true, IsTransient(fmt.Errorf("request Timed Out")))
	assert.Equal(t, true, IsTransient(pkgerrors.New("connection reset by peer")))
	assert.Equal(t, false, IsTransient(fmt.Errorf("file already exists")))
	assert.Equal(t, false, IsTransient(fmt.Errorf("permission denied")))
}

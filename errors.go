package renamebatch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// BatchError error interface for renamebatch
type BatchError interface {
	Code() string
	Message() string
	Error() string
	StackTrace() errors.StackTrace
}

type batchErr struct {
	code string
	err  error
}

func (e *batchErr) Code() string {
	return e.code
}

func (e *batchErr) Message() string {
	return e.err.Error()
}

func (e *batchErr) Error() string {
	return fmt.Sprintf("batch err, code:%v, message:%v", e.code, e.err.Error())
}

func (e *batchErr) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := e.err.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

func (e *batchErr) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "batch err, code:%v, message:%+v", e.code, e.err)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(f, e.Error())
	case 'q':
		fmt.Fprintf(f, "%q", e.Error())
	}
}

// NewBatchError build a BatchError with code and a printf-style message
func NewBatchError(code string, msg string, args ...interface{}) BatchError {
	if len(args) == 0 {
		return &batchErr{code: code, err: errors.New(msg)}
	}
	return &batchErr{code: code, err: errors.Errorf(msg, args...)}
}

// WrapBatchError build a BatchError annotating cause with a printf-style
// message. A cause that is already a BatchError passes through unchanged
// and keeps its original code.
func WrapBatchError(code string, cause error, msg string, args ...interface{}) BatchError {
	if be, ok := cause.(BatchError); ok {
		return be
	}
	return &batchErr{code: code, err: errors.Wrapf(cause, msg, args...)}
}

const (
	// ErrCodeInvalid precondition violation, batch never starts
	ErrCodeInvalid = "invalid"
	// ErrCodeTransient likely-recoverable failure, eligible for retry
	ErrCodeTransient = "transient"
	// ErrCodeConflict target name already exists on the remote side
	ErrCodeConflict = "conflict"
	// ErrCodeNotFound item does not exist on the remote side
	ErrCodeNotFound = "not_found"
	// ErrCodePermission remote side refused the mutation
	ErrCodePermission = "permission"
	// ErrCodeStoreFail checkpoint store failure
	ErrCodeStoreFail = "store_fail"
	// ErrCodeGeneral anything else
	ErrCodeGeneral = "general"
)

var transientHints = []string{
	"network",
	"timeout",
	"timed out",
	"connection",
	"temporarily",
	"unreachable",
	"reset by peer",
	"broken pipe",
}

// IsTransient reports whether err is worth retrying. A BatchError code
// is authoritative either way; untagged errors fall back to a message
// heuristic.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if be, ok := err.(BatchError); ok {
		return be.Code() == ErrCodeTransient
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

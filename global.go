package renamebatch

import (
	"os"
	"time"

	"github.com/renamekit/renamebatch/internal/logs"
)

//log
var logger logs.Logger = logs.NewLogger(os.Stdout, logs.Info)

//SetLogger set a logger instance for renamebatch
func SetLogger(l logs.Logger) {
	logger = l
}

const (
	//DefaultMaxConcurrent default number of parallel rename workers
	DefaultMaxConcurrent = 3
	//DefaultRequestInterval default minimum gap between remote request starts
	DefaultRequestInterval = 300 * time.Millisecond
	//DefaultMaxRetries default retry attempts for transient failures
	DefaultMaxRetries = 3
	//DefaultBaseDelay default first backoff delay
	DefaultBaseDelay = time.Second
)

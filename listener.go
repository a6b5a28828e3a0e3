package renamebatch

import "github.com/renamekit/renamebatch/status"

//BatchListener batch listener
type BatchListener interface {
	//BeforeBatch execute before the first task is claimed
	BeforeBatch(total int)
	//AfterBatch execute after the batch reaches a terminal status
	AfterBatch(results BatchResults, finalStatus status.BatchStatus)
}

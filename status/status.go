package status

//BatchStatus status of a batch execution
type BatchStatus string

const (
	//IDLE batch constructed but not started
	IDLE BatchStatus = "IDLE"
	//RUNNING batch is executing tasks
	RUNNING BatchStatus = "RUNNING"
	//PAUSED batch is suspended, workers blocked at the pause gate
	PAUSED BatchStatus = "PAUSED"
	//COMPLETED every scheduled task has finished
	COMPLETED BatchStatus = "COMPLETED"
	//CANCELLED batch was cancelled before the queue drained
	CANCELLED BatchStatus = "CANCELLED"
)

//transitions the full state machine: RUNNING<->PAUSED is the only
//bidirectional edge, everything else is one-way. PAUSED->COMPLETED
//covers a pause landing after the last task has already been claimed:
//the drained queue still terminates the batch.
var transitions = map[BatchStatus][]BatchStatus{
	IDLE:    {RUNNING, CANCELLED},
	RUNNING: {PAUSED, COMPLETED, CANCELLED},
	PAUSED:  {RUNNING, COMPLETED, CANCELLED},
}

//CanTransition report whether moving from one status to another is legal
func CanTransition(from, to BatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

//Terminal report whether the status permits no further task claims
func (s BatchStatus) Terminal() bool {
	return s == COMPLETED || s == CANCELLED
}

package renamebatch

import "context"

//Conflict one flagged task whose target name collides
type Conflict struct {
	ItemID        string `json:"itemId"`
	TargetName    string `json:"targetName"`
	OriginalIndex int    `json:"originalIndex"`
	Reason        string `json:"reason"`
}

//ExistenceChecker optional collaborator answering whether a name
//already exists among the remote siblings
type ExistenceChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

//DetectConflicts flags every task whose target name is exactly equal
//to another task's target name within the batch. Both sides of a
//duplicate are flagged; unique names never are. Conflicts are
//advisory, the caller decides whether to proceed.
func DetectConflicts(tasks []Task) []Conflict {
	counts := make(map[string]int, len(tasks))
	for _, t := range tasks {
		counts[t.TargetName]++
	}
	var conflicts []Conflict
	for _, t := range tasks {
		if counts[t.TargetName] > 1 {
			conflicts = append(conflicts, Conflict{
				ItemID:        t.Item.ID,
				TargetName:    t.TargetName,
				OriginalIndex: t.OriginalIndex,
				Reason:        "duplicate target name within batch",
			})
		}
	}
	return conflicts
}

//DetectConflictsWith additionally flags targets that already exist
//among pre-existing sibling names, through the supplied checker. A
//task renaming an item onto its own current name is not an existence
//conflict. Lookup errors fail the whole check: a half-checked batch
//is worse than none.
func DetectConflictsWith(ctx context.Context, tasks []Task, checker ExistenceChecker) ([]Conflict, error) {
	conflicts := DetectConflicts(tasks)
	if checker == nil {
		return conflicts, nil
	}
	flagged := make(map[int]bool, len(conflicts))
	for _, c := range conflicts {
		flagged[c.OriginalIndex] = true
	}
	for _, t := range tasks {
		if flagged[t.OriginalIndex] || t.TargetName == t.Item.Name {
			continue
		}
		exists, err := checker.Exists(ctx, t.TargetName)
		if err != nil {
			return conflicts, WrapBatchError(ErrCodeGeneral, err, "existence lookup failed for:%v", t.TargetName)
		}
		if exists {
			conflicts = append(conflicts, Conflict{
				ItemID:        t.Item.ID,
				TargetName:    t.TargetName,
				OriginalIndex: t.OriginalIndex,
				Reason:        "target name already exists",
			})
		}
	}
	return conflicts, nil
}

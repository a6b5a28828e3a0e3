package renamebatch

import (
	"context"
	"testing"

	"github.com/bmizerany/assert"
)

func tasksWithTargets(targets ...string) []Task {
	tasks := make([]Task, len(targets))
	for i, target := range targets {
		tasks[i] = Task{
			Item:          Item{ID: string(rune('A' + i)), Name: "item"},
			TargetName:    target,
			OriginalIndex: i,
		}
	}
	return tasks
}

func TestDetectConflicts(t *testing.T) {
	conflicts := DetectConflicts(tasksWithTargets("a", "b", "a", "c"))
	assert.Equal(t, 2, len(conflicts))
	assert.Equal(t, 0, conflicts[0].OriginalIndex)
	assert.Equal(t, 2, conflicts[1].OriginalIndex)
	assert.Equal(t, "a", conflicts[0].TargetName)
	assert.Equal(t, "a", conflicts[1].TargetName)
}

func TestDetectConflicts_NoneOnUniqueNames(t *testing.T) {
	conflicts := DetectConflicts(tasksWithTargets("a", "b", "c"))
	assert.Equal(t, 0, len(conflicts))
}

func TestDetectConflicts_TripleCollision(t *testing.T) {
	conflicts := DetectConflicts(tasksWithTargets("x", "x", "x"))
	assert.Equal(t, 3, len(conflicts))
}

type mapChecker map[string]bool

func (m mapChecker) Exists(ctx context.Context, name string) (bool, error) {
	return m[name], nil
}

func TestDetectConflictsWith_Existing(t *testing.T) {
	tasks := tasksWithTargets("a", "b", "c")
	conflicts, err := DetectConflictsWith(context.Background(), tasks, mapChecker{"b": true})
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(conflicts))
	assert.Equal(t, "b", conflicts[0].TargetName)
	assert.Equal(t, "target name already exists", conflicts[0].Reason)
}

func TestDetectConflictsWith_OwnNameNotFlagged(t *testing.T) {
	tasks := []Task{{Item: Item{ID: "A", Name: "same"}, TargetName: "same"}}
	conflicts, err := DetectConflictsWith(context.Background(), tasks, mapChecker{"same": true})
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(conflicts))
}

func TestDetectConflictsWith_NilChecker(t *testing.T) {
	conflicts, err := DetectConflictsWith(context.Background(), tasksWithTargets("a", "a"), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(conflicts))
}

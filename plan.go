package renamebatch

//Plan turns an ordered item list and a naming rule into an ordered task
//list. The rule is called exactly once per item, never again during
//execution or retry. With skipUnchanged set, tasks whose target equals
//the current name are dropped before scheduling.
func Plan(items []Item, rule NamingRule, skipUnchanged bool) []Task {
	total := len(items)
	tasks := make([]Task, 0, total)
	for i, item := range items {
		target := rule(item.Name, i, total)
		if skipUnchanged && target == item.Name {
			continue
		}
		tasks = append(tasks, Task{
			Item:          item,
			TargetName:    target,
			OriginalIndex: i,
		})
	}
	return tasks
}

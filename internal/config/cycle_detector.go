package config

import (
	"slices"
	"sort"
)

// detectCycle returns the tasks participating in a dependency cycle, or nil if no cycle exists.
func detectCycle(tasks []Task) []string {
	graph := dependencyGraph(tasks)

	visiting := make(map[string]bool, len(tasks))
	visited := make(map[string]bool, len(tasks))
	var stack []string

	var cycle []string
	var dfs func(string) bool
	dfs = func(node string) bool {
		visiting[node] = true
		stack = append(stack, node)

		for _, dep := range graph[node] {
			if !visited[dep] {
				if visiting[dep] {
					idx := slices.Index(stack, dep)
					if idx >= 0 {
						cycle = append([]string{}, stack[idx:]...)
						cycle = append(cycle, dep)
					}
					return true
				}
				if dfs(dep) {
					return true
				}
			}
		}

		visiting[node] = false
		visited[node] = true
		stack = stack[:len(stack)-1]
		return false
	}

	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if visited[id] {
			continue
		}
		if dfs(id) {
			break
		}
	}

	return cycle
}

// Order returns the enabled tasks so that every task follows its
// dependencies. Independent tasks keep their declaration order.
// Dependencies on disabled tasks are ignored.
func Order(tasks []Task) []Task {
	graph := dependencyGraph(tasks)
	done := make(map[string]bool, len(graph))
	out := make([]Task, 0, len(graph))

	for len(out) < len(graph) {
		progressed := false
		for _, task := range tasks {
			if !task.Enabled || done[task.ID] {
				continue
			}
			ready := true
			for _, dep := range graph[task.ID] {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				done[task.ID] = true
				out = append(out, task)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

func dependencyGraph(tasks []Task) map[string][]string {
	enabled := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.Enabled {
			enabled[task.ID] = true
		}
	}

	graph := make(map[string][]string, len(enabled))
	for _, task := range tasks {
		if !enabled[task.ID] {
			continue
		}
		deps := make([]string, 0, len(task.DependsOn))
		for _, dep := range task.DependsOn {
			if enabled[dep] {
				deps = append(deps, dep)
			}
		}
		graph[task.ID] = deps
	}
	return graph
}

// Package depgraph orders condition IDs so that every preequilibration
// condition precedes all conditions that depend on it.
package depgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cellrun/cellrun/model/table"
	"github.com/gammazero/deque"
)

// ErrCircularDependency indicates a cycle among preequilibration
// dependencies. A cycle is a modeling error in the input tables, never a
// transient fault, so callers must treat it as fatal.
var ErrCircularDependency = errors.New("depgraph: circular dependency detected among conditions")

// Order returns the distinct condition IDs of the measurement table in
// dependency order (Kahn's algorithm). When the table declares no
// preequilibration column the distinct first-seen order is returned as-is.
func Order(measurements *table.Measurements) ([]string, error) {
	if !measurements.HasPreequilibration {
		return measurements.DistinctConditions(), nil
	}

	// Node set in first-seen order keeps the output deterministic.
	var nodes []string
	seen := map[string]bool{}
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		nodes = append(nodes, id)
	}
	for _, row := range measurements.Rows {
		add(row.SimulationConditionID)
		add(row.PreequilibrationConditionID)
	}

	successors := map[string][]string{}
	indegree := make(map[string]int, len(nodes))
	edges := map[string]bool{}
	for _, node := range nodes {
		indegree[node] = 0
	}
	for _, row := range measurements.Rows {
		pre, sim := row.PreequilibrationConditionID, row.SimulationConditionID
		if pre == "" || sim == "" {
			continue
		}
		edge := pre + "\x00" + sim
		if edges[edge] {
			continue
		}
		edges[edge] = true
		successors[pre] = append(successors[pre], sim)
		indegree[sim]++
	}

	var queue deque.Deque[string]
	for _, node := range nodes {
		if indegree[node] == 0 {
			queue.PushBack(node)
		}
	}

	ordered := make([]string, 0, len(nodes))
	for queue.Len() > 0 {
		node := queue.PopFront()
		ordered = append(ordered, node)
		for _, successor := range successors[node] {
			indegree[successor]--
			if indegree[successor] == 0 {
				queue.PushBack(successor)
			}
		}
	}

	if len(ordered) != len(nodes) {
		return nil, fmt.Errorf("%w: unable to resolve order for %v", ErrCircularDependency, unresolved(indegree))
	}
	return ordered, nil
}

// unresolved lists the conditions still holding unresolved dependencies.
func unresolved(indegree map[string]int) string {
	var stuck []string
	for node, degree := range indegree {
		if degree > 0 {
			stuck = append(stuck, node)
		}
	}
	sort.Strings(stuck)
	return strings.Join(stuck, ", ")
}

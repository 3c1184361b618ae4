package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/docket/internal/ir"
)

// CycleWarning reports symbols whose documentation inheritance loops back
// on itself.
//
// Cycles are warnings, not errors: ingestion breaks them by letting each
// symbol on the cycle keep its own text.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["s:A", "s:B", "s:A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeInheritance finds documentation inheritance cycles among the
// graph's own symbols.
//
// The algorithm:
//  1. Build usr -> inherited usr edges from implements, overrides and
//     restates relationships whose target is declared in the graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle warning
//
// An acyclic graph returns an empty warning list.
func AnalyzeInheritance(g ir.PackageGraph) []CycleWarning {
	graph := buildInheritanceGraph(g)
	if len(graph) == 0 {
		return []CycleWarning{}
	}

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// inheritanceGraph maps usr -> usrs it may inherit documentation from.
type inheritanceGraph map[string][]string

func buildInheritanceGraph(g ir.PackageGraph) inheritanceGraph {
	declared := make(map[string]bool, len(g.Symbols))
	for _, s := range g.Symbols {
		declared[s.USR] = true
	}

	graph := make(inheritanceGraph)
	for _, s := range g.Symbols {
		for _, r := range s.Relationships {
			if r.InheritsDocumentation() && declared[r.Target] {
				graph[s.USR] = append(graph[s.USR], r.Target)
			}
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph inheritanceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the result is deterministic.
func tarjanSCC(graph inheritanceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph inheritanceGraph) CycleWarning {
	if len(scc) == 1 {
		usr := scc[0]
		return CycleWarning{
			Path:    []string{usr, usr},
			Message: fmt.Sprintf("Symbol inherits its own documentation: %s → %s", usr, usr),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Documentation inheritance cycle: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath starts at the smallest member of the SCC and follows
// edges within the SCC until it returns to the start.
func reconstructCyclePath(scc []string, graph inheritanceGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := slices.Min(scc)
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

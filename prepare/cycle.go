// SPDX-License-Identifier: Unlicense OR MIT

package prepare

import (
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// checkAcyclic builds a directed graph over scene's node names (an
// edge node -> child.Node for every ChildRef) and runs DFS cycle
// detection over it (spec.md §9's resolution for the "object graph
// with cycles" Open Question: reject at preparation time via
// three-color DFS rather than bounding instance depth at trace time).
// Nodes are added in sorted order so the error path is deterministic
// across runs.
func checkAcyclic(scene *Scene) error {
	names := make([]string, 0, len(scene.Nodes))
	for name := range scene.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	g := core.NewGraph(core.WithDirected(true))
	for _, name := range names {
		if err := g.AddVertex(name); err != nil {
			return err
		}
	}
	for _, name := range names {
		node := scene.Nodes[name]
		for _, child := range node.Children {
			if _, ok := scene.Nodes[child.Node]; !ok {
				return &PreparationError{Kind: ErrUnknownNode, Node: name, Subject: child.Node}
			}
			if _, err := g.AddEdge(name, child.Node, 1); err != nil {
				return err
			}
		}
	}

	hasCycle, cycles, err := dfs.DetectCycles(g)
	if err != nil {
		return err
	}
	if hasCycle {
		subject := ""
		if len(cycles) > 0 && len(cycles[0]) > 0 {
			subject = cycles[0][0]
		}
		return &PreparationError{Kind: ErrCycle, Node: scene.Root, Subject: subject}
	}
	return nil
}

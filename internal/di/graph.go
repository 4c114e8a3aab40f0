package di

import (
	"github.com/xraph/beanforge/internal/errors"
)

// DependencyGraph orders bean names so that every bean follows the beans it
// depends on.
type DependencyGraph struct {
	nodes map[string]*node
	order []string // registration order
}

type node struct {
	name         string
	dependencies []string
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*node),
		order: make([]string, 0),
	}
}

// AddNode adds a node with its dependencies. Adding a name twice replaces its
// dependencies and keeps its original position.
func (g *DependencyGraph) AddNode(name string, dependencies []string) {
	if n, ok := g.nodes[name]; ok {
		n.dependencies = dependencies
		return
	}
	g.nodes[name] = &node{
		name:         name,
		dependencies: dependencies,
	}
	g.order = append(g.order, name)
}

// TopologicalSort returns nodes in dependency order.
// Nodes without dependencies keep their registration order.
// Returns a CIRCULAR_DEPENDENCY error naming the cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))
	var path []string

	for _, name := range g.order {
		if err := g.visit(name, visited, visiting, &path, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (g *DependencyGraph) visit(name string, visited, visiting map[string]bool, path, result *[]string) error {
	if visited[name] {
		return nil
	}

	if visiting[name] {
		return errors.ErrCircularDependency(cycleFrom(*path, name))
	}

	n := g.nodes[name]
	if n == nil {
		// unknown names are resolved (or reported) at creation time
		return nil
	}

	visiting[name] = true
	*path = append(*path, name)

	for _, dep := range n.dependencies {
		if err := g.visit(dep, visited, visiting, path, result); err != nil {
			return err
		}
	}

	*path = (*path)[:len(*path)-1]
	visiting[name] = false
	visited[name] = true
	*result = append(*result, name)

	return nil
}

// cycleFrom returns the part of path starting at name, closed with name.
func cycleFrom(path []string, name string) []string {
	for i, p := range path {
		if p == name {
			cycle := append([]string(nil), path[i:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}

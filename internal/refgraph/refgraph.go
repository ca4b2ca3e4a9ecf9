// Package refgraph tracks which output files call functions defined in other output files.
// An edge A -> B means a function in A calls a function whose definition was grouped into B.
package refgraph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dominikbraun/graph"
)

// ErrUnknownFile is returned when a query names a file that was never added.
var ErrUnknownFile = errors.New("unknown file")

// FileNode is a vertex of the reference graph.
type FileNode struct {
	File      string
	Index     int // insertion order, used for deterministic results
	Functions []string
	Calls     []string
}

// Graph is a directed file-to-file reference graph.
type Graph struct {
	mu    sync.RWMutex
	g     graph.Graph[string, *FileNode]
	nodes []*FileNode
	owner map[string]string // function name -> defining file
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		g:     graph.New(func(n *FileNode) string { return n.File }, graph.Directed()),
		owner: make(map[string]string),
	}
}

// AddFile registers a file with the functions it defines and the identifiers it calls.
// A function defined in more than one file belongs to the first file that defined it.
func (r *Graph) AddFile(file string, functions, calls []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := &FileNode{
		File:      file,
		Index:     len(r.nodes),
		Functions: append([]string(nil), functions...),
		Calls:     append([]string(nil), calls...),
	}
	if err := r.g.AddVertex(node); err != nil {
		return fmt.Errorf("failed to add file %s: %w", file, err)
	}
	r.nodes = append(r.nodes, node)

	for _, fn := range functions {
		if _, ok := r.owner[fn]; !ok {
			r.owner[fn] = file
		}
	}
	return nil
}

// Link resolves every recorded call to its defining file and adds the edges.
// Calls to functions outside the listing and calls within the same file add nothing.
func (r *Graph) Link() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, node := range r.nodes {
		for _, call := range node.Calls {
			target, ok := r.owner[call]
			if !ok || target == node.File {
				continue
			}
			if err := r.g.AddEdge(node.File, target); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Errorf("failed to link %s -> %s: %w", node.File, target, err)
			}
		}
	}
	return nil
}

// Owner returns the file that defines function.
func (r *Graph) Owner(function string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.owner[function]
	return file, ok
}

// Dependencies returns the files whose functions file calls, in insertion order.
func (r *Graph) Dependencies(file string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adj, err := r.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	targets, ok := adj[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, file)
	}
	return r.ordered(targets), nil
}

// Dependents returns the files that call into file, in insertion order.
func (r *Graph) Dependents(file string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pred, err := r.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	sources, ok := pred[file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, file)
	}
	return r.ordered(sources), nil
}

// EdgeCount returns the number of distinct file-to-file edges.
func (r *Graph) EdgeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size, err := r.g.Size()
	if err != nil {
		return 0
	}
	return size
}

func (r *Graph) ordered(set map[string]graph.Edge[string]) []string {
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return r.index(files[i]) < r.index(files[j])
	})
	return files
}

func (r *Graph) index(file string) int {
	node, err := r.g.Vertex(file)
	if err != nil {
		return len(r.nodes)
	}
	return node.Index
}

package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNodeNotFound is returned when no node has the requested identifier.
var ErrNodeNotFound = errors.New("cms: node not found")

// Repository reads content nodes.
type Repository interface {
	Root(ctx context.Context) (*Node, error)
	Node(ctx context.Context, id string) (*Node, error)
}

type document struct {
	Root  string      `yaml:"root"`
	Nodes []nodeEntry `yaml:"nodes"`
}

type nodeEntry struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	Properties map[string]any    `yaml:"properties"`
	Refs       map[string]string `yaml:"refs"`
	Children   []string          `yaml:"children"`
}

// MemoryRepository is a read-only repository loaded from a YAML document.
// It is safe for concurrent use once loaded.
type MemoryRepository struct {
	root  string
	nodes map[string]*Node
}

// LoadFile loads a repository from a YAML file.
func LoadFile(path string) (*MemoryRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load reads a YAML document of the form
//
//	root: blog
//	nodes:
//	  - id: blog
//	    type: blognt:blog
//	    properties: {jcr:title: My blog}
//	    children: [post-1]
//	  - id: post-1
//	    type: blognt:post
//	    refs: {author: author-1}
//
// Child and reference ids must name nodes in the same document.
func Load(r io.Reader) (*MemoryRepository, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	repo := &MemoryRepository{root: doc.Root, nodes: make(map[string]*Node, len(doc.Nodes))}
	for _, entry := range doc.Nodes {
		if entry.ID == "" {
			return nil, errors.New("cms: node without id")
		}
		if _, dup := repo.nodes[entry.ID]; dup {
			return nil, fmt.Errorf("cms: duplicate node %q", entry.ID)
		}
		name := entry.Name
		if name == "" {
			name = entry.ID
		}
		props := entry.Properties
		if props == nil {
			props = map[string]any{}
		}
		repo.nodes[entry.ID] = &Node{
			ID:         entry.ID,
			Type:       entry.Type,
			Name:       name,
			URL:        entry.URL,
			Properties: props,
		}
	}

	for _, entry := range doc.Nodes {
		n := repo.nodes[entry.ID]
		for _, childID := range entry.Children {
			child, ok := repo.nodes[childID]
			if !ok {
				return nil, fmt.Errorf("cms: node %q: child %q: %w", entry.ID, childID, ErrNodeNotFound)
			}
			n.children = append(n.children, child)
		}
		for prop, refID := range entry.Refs {
			target, ok := repo.nodes[refID]
			if !ok {
				return nil, fmt.Errorf("cms: node %q: ref %s=%q: %w", entry.ID, prop, refID, ErrNodeNotFound)
			}
			if n.refs == nil {
				n.refs = make(map[string]*Node)
			}
			n.refs[prop] = target
		}
	}

	if repo.root == "" && len(doc.Nodes) > 0 {
		repo.root = doc.Nodes[0].ID
	}
	return repo, nil
}

// Root returns the root node.
func (r *MemoryRepository) Root(ctx context.Context) (*Node, error) {
	return r.Node(ctx, r.root)
}

// Node returns the node with the given identifier.
func (r *MemoryRepository) Node(_ context.Context, id string) (*Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return n, nil
}

// Len returns the number of nodes.
func (r *MemoryRepository) Len() int { return len(r.nodes) }

// NewNode builds a detached node, mainly for tests and fixtures.
func NewNode(id, nodeType string, props map[string]any) *Node {
	if props == nil {
		props = map[string]any{}
	}
	return &Node{ID: id, Type: nodeType, Name: id, Properties: props}
}

// AddChild appends child to n.
func (n *Node) AddChild(child *Node) *Node {
	n.children = append(n.children, child)
	return n
}

// SetRef sets the node referenced by property name.
func (n *Node) SetRef(name string, target *Node) *Node {
	if n.refs == nil {
		n.refs = make(map[string]*Node)
	}
	n.refs[name] = target
	return n
}

package graph

import (
	"fmt"
	"sort"
)

// Graph is the top-level immutable data structure produced by recipe
// evaluation. It is never mutated in place; each evaluation produces a new
// graph.
type Graph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *Graph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *Graph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *Graph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Root returns the robot root, or nil when there is none.
func (g *Graph) Root() *Node {
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Kind == NodeRobot {
			return n
		}
	}
	return nil
}

// NameOf returns the link name for id, resolving BaseID.
func (g *Graph) NameOf(id NodeID) string {
	if id == BaseID {
		return BaseLinkName
	}
	if n := g.Nodes[id]; n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// ofKind returns the nodes of kind k ordered by name, then ID.
func (g *Graph) ofKind(k NodeKind) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Links returns all link nodes, sorted by name.
func (g *Graph) Links() []*Node { return g.ofKind(NodeLink) }

// Mirrors returns all mirror nodes, sorted by name.
func (g *Graph) Mirrors() []*Node { return g.ofKind(NodeMirror) }

// Joints returns all joint nodes, sorted by name.
func (g *Graph) Joints() []*Node { return g.ofKind(NodeJoint) }

// ParentJoint returns the joint whose child is id, or nil.
func (g *Graph) ParentJoint(id NodeID) *Node {
	for _, n := range g.Joints() {
		if jd, ok := n.Data.(JointData); ok && jd.Child == id {
			return n
		}
	}
	return nil
}

// Children returns the child nodes of the given node.
func (g *Graph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

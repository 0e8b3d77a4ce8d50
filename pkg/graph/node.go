package graph

// NodeKind enumerates the types of nodes in the assembly graph.
type NodeKind int

const (
	NodeLink   NodeKind = iota // part with mesh or primitive geometry
	NodeMirror                 // reflected copy of another link
	NodeJoint                  // parent/child connection
	NodeRobot                  // assembly root
)

func (k NodeKind) String() string {
	switch k {
	case NodeLink:
		return "link"
	case NodeMirror:
		return "mirror"
	case NodeJoint:
		return "joint"
	case NodeRobot:
		return "robot"
	default:
		return "unknown"
	}
}

// IsLink reports whether nodes of this kind become URDF links.
func (k NodeKind) IsLink() bool {
	return k == NodeLink || k == NodeMirror
}

// Node is the fundamental element of the assembly graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

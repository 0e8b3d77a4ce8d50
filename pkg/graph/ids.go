package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed node identifier: the hex SHA-256 of the
// node's recipe path (for example "link/L_arm").
type NodeID string

// ZeroID is the unset NodeID.
const ZeroID NodeID = ""

// BaseLinkName is the reserved name of the implicit root link.
const BaseLinkName = "base_link"

// BaseID identifies the implicit base_link. It is valid as a joint parent
// without a node in the graph.
var BaseID = NewNodeID("link/" + BaseLinkName)

// NewNodeID hashes path into a NodeID.
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id NodeID) String() string { return string(id) }

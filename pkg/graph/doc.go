// Package graph defines the assembly graph produced by evaluating a robot
// recipe. The graph is an immutable set of links, mirrored links, joints
// and a single robot root; the build package walks it to produce URDF.
package graph

// SPDX-License-Identifier: Unlicense OR MIT

package prepare

import (
	"echorenderer/geometry"
	"echorenderer/material"
)

// TriangleAuthoring is one authored triangle: three vertices with
// per-vertex normals (zero for flat shading) and UVs, referencing a
// material by name.
type TriangleAuthoring struct {
	V0, V1, V2    geometry.Float3
	N0, N1, N2    geometry.Float3
	UV0, UV1, UV2 geometry.Float3
	Material      string
}

// SphereAuthoring is one authored sphere.
type SphereAuthoring struct {
	Center   geometry.Float3
	Radius   float64
	Material string
}

// ChildRef places another node's content as a nested instance under
// transform.
type ChildRef struct {
	Node      string
	Transform geometry.Affine
}

// Node is one authored scene-graph node: direct geometry plus
// references to child nodes, each under its own transform. A pack is
// built for every node reachable from the scene's root, memoized by
// name so a node referenced by several ChildRefs is prepared once.
type Node struct {
	Triangles []TriangleAuthoring
	Spheres   []SphereAuthoring
	Children  []ChildRef
}

// Scene is the authoring-time input to Prepare: a named set of nodes,
// a root to start from, and the named materials those nodes reference.
type Scene struct {
	Nodes     map[string]Node
	Root      string
	Materials map[string]material.Material
}

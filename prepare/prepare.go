// SPDX-License-Identifier: Unlicense OR MIT

package prepare

import (
	"sort"

	"echorenderer/geometry"
	"echorenderer/instance"
	"echorenderer/internal/accel"
	"echorenderer/prim"
)

// Builder turns a Scene into a tree of instance.PreparedPack, bottom
// up: a node's children must be fully built before the node itself,
// since NewPreparedInstance needs the child pack's PowerTotal to
// precompute the instance's own Power contribution.
type Builder struct {
	scene       *Scene
	extractor   *SwatchExtractor
	accelerator accel.Profile
	built       map[string]*instance.PreparedPack
	building    map[string]bool // cycle guard backstop; checkAcyclic already rejects cycles up front
}

// NewBuilder constructs a Builder over scene using accelerator for
// every pack's aggregator selection.
func NewBuilder(scene *Scene, accelerator accel.Profile) *Builder {
	names := make([]string, 0, len(scene.Materials))
	for name := range scene.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Builder{
		scene:       scene,
		extractor:   NewSwatchExtractor(names, scene.Materials),
		accelerator: accelerator,
		built:       make(map[string]*instance.PreparedPack),
		building:    make(map[string]bool),
	}
}

// Prepare validates scene (cycles, material/node references, uniform
// instance scale, zero-area emissive triangles) and, if it's
// well-formed, builds and returns the root node's PreparedPack.
func Prepare(scene *Scene, accelerator accel.Profile) (*instance.PreparedPack, error) {
	if err := checkAcyclic(scene); err != nil {
		return nil, err
	}
	b := NewBuilder(scene, accelerator)
	return b.build(scene.Root)
}

func (b *Builder) build(name string) (*instance.PreparedPack, error) {
	if pack, ok := b.built[name]; ok {
		return pack, nil
	}
	if b.building[name] {
		// checkAcyclic runs before any build() call, so this only
		// fires on a Builder bug, not authored scene data.
		return nil, &PreparationError{Kind: ErrCycle, Node: name}
	}
	node, ok := b.scene.Nodes[name]
	if !ok {
		return nil, &PreparationError{Kind: ErrUnknownNode, Node: b.scene.Root, Subject: name}
	}
	b.building[name] = true
	defer delete(b.building, name)

	triangles := make([]prim.Triangle, 0, len(node.Triangles))
	for _, tri := range node.Triangles {
		matIdx, err := b.extractor.Resolve(name, tri.Material)
		if err != nil {
			return nil, err
		}
		prepared := prim.NewTriangle(tri.V0, tri.V1, tri.V2, tri.N0, tri.N1, tri.N2, tri.UV0, tri.UV1, tri.UV2, matIdx)
		if em, isEmitter := b.extractor.Swatch().EmitterAt(matIdx); isEmitter && em.EmittedPower() > 0 && prepared.Area() <= 0 {
			return nil, &PreparationError{Kind: ErrZeroAreaEmissiveTriangle, Node: name}
		}
		triangles = append(triangles, prepared)
	}

	spheres := make([]prim.Sphere, 0, len(node.Spheres))
	for _, sph := range node.Spheres {
		matIdx, err := b.extractor.Resolve(name, sph.Material)
		if err != nil {
			return nil, err
		}
		spheres = append(spheres, prim.Sphere{Center: sph.Center, Radius: sph.Radius, Material: matIdx})
	}

	instances := make([]*instance.PreparedInstance, 0, len(node.Children))
	bounds := boundsOf(triangles, spheres)
	for _, child := range node.Children {
		if _, ok := child.Transform.UniformScaleMagnitude(); !ok {
			return nil, &PreparationError{Kind: ErrNonUniformScale, Node: name, Subject: child.Node}
		}
		childPack, err := b.build(child.Node)
		if err != nil {
			return nil, err
		}
		inst := instance.NewPreparedInstance(childPack, child.Transform, childPack.PowerTotal())
		instances = append(instances, inst)
		bounds = bounds.Union(inst.WorldAABB())
	}

	pack := instance.NewPreparedPack(triangles, spheres, instances, b.extractor.Swatch(), b.accelerator, bounds)
	b.built[name] = pack
	return pack, nil
}

func boundsOf(triangles []prim.Triangle, spheres []prim.Sphere) geometry.AABB {
	box := geometry.EmptyAABB()
	for _, t := range triangles {
		box = box.Union(t.AABB())
	}
	for _, s := range spheres {
		box = box.Union(s.AABB())
	}
	return box
}

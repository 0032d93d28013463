// SPDX-License-Identifier: Unlicense OR MIT

package prepare

import (
	"math"
	"testing"

	"echorenderer/colorspace"
	"echorenderer/geometry"
	"echorenderer/internal/accel"
	"echorenderer/material"
	"echorenderer/prim"
	"echorenderer/token"
)

func flatTriangle(matName string) TriangleAuthoring {
	return TriangleAuthoring{
		V0:       geometry.Float3{X: 0, Y: 0, Z: 0},
		V1:       geometry.Float3{X: 1, Y: 0, Z: 0},
		V2:       geometry.Float3{X: 0, Y: 1, Z: 0},
		Material: matName,
	}
}

func TestPrepareSimpleSceneBuildsTraceablePack(t *testing.T) {
	scene := &Scene{
		Root: "root",
		Nodes: map[string]Node{
			"root": {
				Spheres: []SphereAuthoring{
					{Center: geometry.Float3{}, Radius: 1, Material: "white"},
				},
			},
		},
		Materials: map[string]material.Material{
			"white": material.Diffuse{Albedo: colorspace.RGB128{R: 1, G: 1, B: 1}},
		},
	}

	pack, err := Prepare(scene, accel.Profile{})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	ray := geometry.NewRay(geometry.Float3{Z: -5}, geometry.Float3{Z: 1})
	q := prim.NewTraceQuery(ray, math.Inf(1), token.Hierarchy{})
	pack.Trace(&q)
	if q.Token.IsEmpty() {
		t.Fatal("expected a hit on the prepared sphere")
	}
}

func TestPrepareRejectsCycle(t *testing.T) {
	scene := &Scene{
		Root: "a",
		Nodes: map[string]Node{
			"a": {Children: []ChildRef{{Node: "b", Transform: geometry.Identity}}},
			"b": {Children: []ChildRef{{Node: "a", Transform: geometry.Identity}}},
		},
		Materials: map[string]material.Material{},
	}
	_, err := Prepare(scene, accel.Profile{})
	perr, ok := err.(*PreparationError)
	if !ok || perr.Kind != ErrCycle {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestPrepareRejectsUnknownMaterial(t *testing.T) {
	scene := &Scene{
		Root: "root",
		Nodes: map[string]Node{
			"root": {Triangles: []TriangleAuthoring{flatTriangle("nonexistent")}},
		},
		Materials: map[string]material.Material{},
	}
	_, err := Prepare(scene, accel.Profile{})
	perr, ok := err.(*PreparationError)
	if !ok || perr.Kind != ErrUnknownMaterial {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
}

func TestPrepareRejectsNonUniformScale(t *testing.T) {
	scene := &Scene{
		Root: "root",
		Nodes: map[string]Node{
			"root": {Children: []ChildRef{{Node: "child", Transform: geometry.NewAffine(
				[3]geometry.Float3{{X: 1}, {Y: 2}, {Z: 1}}, geometry.Float3{})}}},
			"child": {Spheres: []SphereAuthoring{{Center: geometry.Float3{}, Radius: 1, Material: "white"}}},
		},
		Materials: map[string]material.Material{
			"white": material.Diffuse{Albedo: colorspace.RGB128{R: 1, G: 1, B: 1}},
		},
	}
	_, err := Prepare(scene, accel.Profile{})
	perr, ok := err.(*PreparationError)
	if !ok || perr.Kind != ErrNonUniformScale {
		t.Fatalf("expected ErrNonUniformScale, got %v", err)
	}
}

func TestPrepareRejectsZeroAreaEmissiveTriangle(t *testing.T) {
	degenerate := TriangleAuthoring{
		V0: geometry.Float3{}, V1: geometry.Float3{}, V2: geometry.Float3{},
		Material: "light",
	}
	scene := &Scene{
		Root: "root",
		Nodes: map[string]Node{
			"root": {Triangles: []TriangleAuthoring{degenerate}},
		},
		Materials: map[string]material.Material{
			"light": material.Emissive{Radiance: colorspace.RGB128{R: 5, G: 5, B: 5}},
		},
	}
	_, err := Prepare(scene, accel.Profile{})
	perr, ok := err.(*PreparationError)
	if !ok || perr.Kind != ErrZeroAreaEmissiveTriangle {
		t.Fatalf("expected ErrZeroAreaEmissiveTriangle, got %v", err)
	}
}

func TestPrepareMemoizesSharedChildNode(t *testing.T) {
	scene := &Scene{
		Root: "root",
		Nodes: map[string]Node{
			"root": {Children: []ChildRef{
				{Node: "leaf", Transform: geometry.Translation(geometry.Float3{X: 5})},
				{Node: "leaf", Transform: geometry.Translation(geometry.Float3{X: -5})},
			}},
			"leaf": {Spheres: []SphereAuthoring{{Center: geometry.Float3{}, Radius: 1, Material: "white"}}},
		},
		Materials: map[string]material.Material{
			"white": material.Diffuse{Albedo: colorspace.RGB128{R: 1, G: 1, B: 1}},
		},
	}
	b := NewBuilder(scene, accel.Profile{})
	if err := checkAcyclic(scene); err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}
	root, err := b.build("root")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(root.Instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(root.Instances))
	}
	if root.Instances[0].Pack != root.Instances[1].Pack {
		t.Error("expected both instances to share the same memoized child pack")
	}
}

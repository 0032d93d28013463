// SPDX-License-Identifier: Unlicense OR MIT

// Package prepare turns an authored scene graph (plain Go values, no
// file format implied) into the immutable instance.PreparedPack tree
// the renderer traces against: resolving material references, folding
// per-node geometry into prim.Triangle/prim.Sphere arrays, validating
// instance transforms, and detecting reference cycles before any
// packs are built.
package prepare

import "fmt"

// ErrorKind classifies a PreparationError, letting callers branch on
// the failure without string-matching Error().
type ErrorKind int

const (
	ErrUnknownMaterial ErrorKind = iota
	ErrUnknownNode
	ErrNonUniformScale
	ErrCycle
	ErrZeroAreaEmissiveTriangle
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownMaterial:
		return "unknown material"
	case ErrUnknownNode:
		return "unknown node"
	case ErrNonUniformScale:
		return "non-uniform scale"
	case ErrCycle:
		return "instance reference cycle"
	case ErrZeroAreaEmissiveTriangle:
		return "zero-area emissive triangle"
	default:
		return "preparation error"
	}
}

// PreparationError reports a scene-authoring defect caught before any
// geometry is traced, naming the offending node/reference so the
// caller doesn't have to re-derive it from a bare string.
type PreparationError struct {
	Kind    ErrorKind
	Node    string
	Subject string // material name, child node name, or similar
}

func (e *PreparationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("prepare: %s in node %q", e.Kind, e.Node)
	}
	return fmt.Sprintf("prepare: %s in node %q: %q", e.Kind, e.Node, e.Subject)
}

// SPDX-License-Identifier: Unlicense OR MIT

package prepare

import (
	"echorenderer/instance"
	"echorenderer/material"
)

// SwatchExtractor builds the scene's single shared PreparedSwatch and
// resolves material names to indices into it.
type SwatchExtractor struct {
	swatch *instance.PreparedSwatch
	byName map[string]material.MaterialIndex
}

// NewSwatchExtractor builds the shared swatch from a scene's named
// materials, sorted by name for a deterministic index assignment.
func NewSwatchExtractor(names []string, materials map[string]material.Material) *SwatchExtractor {
	list := make([]material.Material, len(names))
	byName := make(map[string]material.MaterialIndex, len(names))
	for i, name := range names {
		list[i] = materials[name]
		byName[name] = material.MaterialIndex(i)
	}
	return &SwatchExtractor{
		swatch: instance.NewPreparedSwatch(list),
		byName: byName,
	}
}

// Resolve returns the MaterialIndex for name, or an error if it was
// never declared on the scene.
func (e *SwatchExtractor) Resolve(node, name string) (material.MaterialIndex, error) {
	idx, ok := e.byName[name]
	if !ok {
		return 0, &PreparationError{Kind: ErrUnknownMaterial, Node: node, Subject: name}
	}
	return idx, nil
}

// Swatch returns the shared PreparedSwatch every node's pack points at.
func (e *SwatchExtractor) Swatch() *instance.PreparedSwatch {
	return e.swatch
}

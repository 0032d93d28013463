// SPDX-License-Identifier: Unlicense OR MIT

package instance

import (
	"echorenderer/material"
)

// PreparedSwatch is a pack's dense Material table: MaterialIndex i
// names Materials[i]. Emissive holds the subset of indices whose
// Material also implements material.Emitter with positive
// EmittedPower (this module's resolution of spec.md §9's emissive
// detection Open Question).
type PreparedSwatch struct {
	Materials []material.Material
	Emissive  []material.MaterialIndex
}

// NewPreparedSwatch builds a swatch from a dense material list,
// scanning for emitters once up front so render-time light sampling
// never has to type-switch per hit.
func NewPreparedSwatch(materials []material.Material) *PreparedSwatch {
	s := &PreparedSwatch{Materials: materials}
	for i, m := range materials {
		if em, ok := m.(material.Emitter); ok && em.EmittedPower() > 0 {
			s.Emissive = append(s.Emissive, material.MaterialIndex(i))
		}
	}
	return s
}

// At returns the material named by idx.
func (s *PreparedSwatch) At(idx material.MaterialIndex) material.Material {
	return s.Materials[idx]
}

// EmitterAt returns the material named by idx as an Emitter, and
// whether it actually is one (a zero-power or non-emissive index
// reached by mistake returns ok=false rather than panicking).
func (s *PreparedSwatch) EmitterAt(idx material.MaterialIndex) (em material.Emitter, ok bool) {
	em, ok = s.Materials[idx].(material.Emitter)
	if !ok || em.EmittedPower() <= 0 {
		return nil, false
	}
	return em, true
}

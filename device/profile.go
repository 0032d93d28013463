// SPDX-License-Identifier: Unlicense OR MIT

package device

import (
	"strconv"

	"github.com/BurntSushi/toml"

	"echorenderer/internal/accel"
)

// EvaluatorProfile holds the recognized on-disk configuration fields
// (spec §6): tile geometry, sample budget, and the aggregator
// selection policy a Device applies uniformly to every pack it
// renders against.
type EvaluatorProfile struct {
	TileSize           int    `toml:"tile_size"`
	PixelSample        int    `toml:"pixel_sample"`
	AdaptiveSample     int    `toml:"adaptive_sample"`
	BounceLimit        int    `toml:"bounce_limit"`
	AcceleratorType    string `toml:"accelerator_type"`
	LinearForInstances bool   `toml:"linear_for_instances"`
}

// DefaultEvaluatorProfile returns a profile with reasonable defaults
// for every field (spec §6 names no defaults explicitly; these follow
// the teacher's pattern of a usable zero-config starting point).
func DefaultEvaluatorProfile() EvaluatorProfile {
	return EvaluatorProfile{
		TileSize:       32,
		PixelSample:    16,
		AdaptiveSample: 0,
		BounceLimit:    8,
	}
}

// LoadEvaluatorProfile decodes path as TOML into an EvaluatorProfile
// and validates it, returning a *ConfigurationError on any invalid
// field before the profile is ever handed to a Device.
func LoadEvaluatorProfile(path string) (EvaluatorProfile, error) {
	profile := DefaultEvaluatorProfile()
	if _, err := toml.DecodeFile(path, &profile); err != nil {
		return EvaluatorProfile{}, err
	}
	if err := profile.Validate(); err != nil {
		return EvaluatorProfile{}, err
	}
	return profile, nil
}

// Validate reports the first ConfigurationError found in p, or nil if
// every field is well-formed.
func (p EvaluatorProfile) Validate() error {
	if p.TileSize <= 0 {
		return &ConfigurationError{Field: "tile_size", Value: strconv.Itoa(p.TileSize), Reason: "must be positive"}
	}
	if p.PixelSample <= 0 {
		return &ConfigurationError{Field: "pixel_sample", Value: strconv.Itoa(p.PixelSample), Reason: "must be positive"}
	}
	if p.AdaptiveSample < 0 {
		return &ConfigurationError{Field: "adaptive_sample", Value: strconv.Itoa(p.AdaptiveSample), Reason: "must not be negative"}
	}
	if p.BounceLimit <= 0 {
		return &ConfigurationError{Field: "bounce_limit", Value: strconv.Itoa(p.BounceLimit), Reason: "must be positive"}
	}
	if _, ok := acceleratorKind(p.AcceleratorType); !ok {
		return &ConfigurationError{Field: "accelerator_type", Value: p.AcceleratorType, Reason: "not a recognized aggregator (\"\", \"linear\", \"bvh\", \"qbvh\")"}
	}
	return nil
}

// AcceleratorProfile translates the profile's accelerator fields into
// the accel package's own selection policy type.
func (p EvaluatorProfile) AcceleratorProfile() accel.Profile {
	kind, _ := acceleratorKind(p.AcceleratorType)
	return accel.Profile{
		Explicit:           kind,
		LinearForInstances: p.LinearForInstances,
	}
}

func acceleratorKind(name string) (accel.Kind, bool) {
	switch name {
	case "":
		return accel.KindAuto, true
	case "linear":
		return accel.KindLinear, true
	case "bvh":
		return accel.KindBVH, true
	case "qbvh":
		return accel.KindQBVH, true
	default:
		return accel.KindAuto, false
	}
}

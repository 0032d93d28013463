// SPDX-License-Identifier: Unlicense OR MIT

package material

import (
	"math"

	"echorenderer/geometry"
)

// FresnelDielectric returns the unpolarized Fresnel reflectance for a
// dielectric interface, cosine being the cosine of the incident angle
// measured from the surface normal (may be negative, meaning the ray
// is inside the denser medium looking out). etaIncident/etaTransmit
// are the two sides' indices of refraction.
func FresnelDielectric(cosine, etaIncident, etaTransmit float64) float64 {
	cosine = geometry.Clamp(cosine, -1, 1)
	if cosine < 0 {
		etaIncident, etaTransmit = etaTransmit, etaIncident
		cosine = -cosine
	}
	sinIncident2 := math.Max(0, 1-cosine*cosine)
	sinTransmit2 := sinIncident2 * (etaIncident / etaTransmit) * (etaIncident / etaTransmit)
	if sinTransmit2 >= 1 {
		return 1 // total internal reflection
	}
	cosTransmit := math.Sqrt(1 - sinTransmit2)

	rParallel := (etaTransmit*cosine - etaIncident*cosTransmit) / (etaTransmit*cosine + etaIncident*cosTransmit)
	rPerpendicular := (etaIncident*cosine - etaTransmit*cosTransmit) / (etaIncident*cosine + etaTransmit*cosTransmit)
	return (rParallel*rParallel + rPerpendicular*rPerpendicular) / 2
}

// FresnelSchlick is the cheap polynomial approximation to
// FresnelDielectric, parameterized by normal-incidence reflectance r0.
func FresnelSchlick(cosine, r0 float64) float64 {
	c := geometry.Clamp(1-math.Abs(cosine), 0, 1)
	c2 := c * c
	return r0 + (1-r0)*c2*c2*c
}

// FresnelConductor returns the unpolarized reflectance of a conductor
// interface given its complex index of refraction (eta, k).
func FresnelConductor(cosine, eta, k float64) float64 {
	cosine = geometry.Clamp(math.Abs(cosine), 0, 1)
	cos2 := cosine * cosine
	sin2 := 1 - cos2
	eta2, k2 := eta*eta, k*k

	t0 := eta2 - k2 - sin2
	a2b2 := math.Sqrt(math.Max(0, t0*t0+4*eta2*k2))
	t1 := a2b2 + cos2
	a := math.Sqrt(math.Max(0, (a2b2+t0)/2))
	t2 := 2 * a * cosine
	rs := (t1 - t2) / (t1 + t2)

	t3 := cos2*a2b2 + sin2*sin2
	t4 := t2 * sin2
	rp := rs * (t3 - t4) / (t3 + t4)

	return (rs + rp) / 2
}

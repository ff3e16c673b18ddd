package atmosphere

import gomath "math"

// UniformPhase is the isotropic phase function 1/(4π).
const UniformPhase = 1 / (4 * gomath.Pi)

// RayleighPhase is 3/(16π)·(1+cos²θ).
func RayleighPhase(cosTheta float64) float64 {
	return 3 / (16 * gomath.Pi) * (1 + cosTheta*cosTheta)
}

// HenyeyGreensteinPhase evaluates the HG lobe with asymmetry g, where
// cosTheta is the cosine between the light's travel direction and the
// scattered direction. g > 0 peaks forward.
func HenyeyGreensteinPhase(g, cosTheta float64) float64 {
	numer := 1 - g*g
	denom := gomath.Max(1+g*g-2*g*cosTheta, 1e-9)
	return numer / (4 * gomath.Pi * denom * gomath.Sqrt(denom))
}

package clouds

import (
	gomath "math"

	"github.com/Faultbox/skyscatter/pkg/atmosphere"
	"github.com/Faultbox/skyscatter/pkg/math"
)

const (
	cloudSteps             = 64
	lightSteps             = 6
	cloudsMinTransmittance = 0.1
)

var noiseKernel = [lightSteps]math.Vec3{
	{X: 0.38051305, Y: 0.92453449, Z: -0.02111345},
	{X: -0.50625799, Y: -0.03590792, Z: -0.86163418},
	{X: -0.32509218, Y: -0.94557439, Z: 0.01428793},
	{X: 0.09026238, Y: -0.27376545, Z: 0.95755165},
	{X: 0.28128598, Y: 0.42443639, Z: -0.86065785},
	{X: -0.16852403, Y: 0.14748697, Z: 0.97460106},
}

// bayerFilter is the 4x4 ordered dither, indexed by (x%4)*4 + y%4.
var bayerFilter = [16]float64{
	0.0 / 16, 8.0 / 16, 2.0 / 16, 10.0 / 16,
	12.0 / 16, 4.0 / 16, 14.0 / 16, 6.0 / 16,
	3.0 / 16, 11.0 / 16, 1.0 / 16, 9.0 / 16,
	15.0 / 16, 7.0 / 16, 13.0 / 16, 5.0 / 16,
}

// RaymarchToLight returns the transmittance from o towards the sun through a
// widening cone of six samples.
func (m *Model) RaymarchToLight(o math.Vec3, stepSize float64, lightDir math.Vec3) float64 {
	const coneStep = 1.0 / lightSteps
	ds := stepSize * lightSteps
	rayStep := lightDir.Scale(ds)
	sigmaDs := -ds * m.params.Absorption

	start := o
	coneRadius := 1.0
	var density float64
	T := 1.0
	for i := 0; i < lightSteps; i++ {
		pos := start.Add(noiseKernel[i].Scale(coneRadius * ds * float64(i)))
		if m.HeightFraction(pos) >= 0 {
			cloudDensity := m.SampleCloudDensity(pos, density > 0.3, float64(i)/16)
			if cloudDensity > 0 {
				T *= gomath.Exp(cloudDensity * sigmaDs)
				density += cloudDensity
			}
		}
		start = start.Add(rayStep)
		coneRadius += coneStep
	}
	return T
}

// phase blends two weak HG lobes and adds a silver-lining forward lobe.
func (m *Model) phase(lightDotEye float64) float64 {
	base := math.Mix(
		atmosphere.HenyeyGreensteinPhase(-0.08, lightDotEye),
		atmosphere.HenyeyGreensteinPhase(0.08, lightDotEye),
		math.Saturate(lightDotEye*0.5+0.5))
	base = gomath.Max(base, 1)
	silver := m.params.SilverIntensity * atmosphere.HenyeyGreensteinPhase(0.99-m.params.SilverSpread, lightDotEye)
	return gomath.Max(base, silver)
}

func powder(density float64) float64 {
	return 1 - gomath.Exp(-2*density)
}

// MarchResult is the outcome of RaymarchToCloud.
type MarchResult struct {
	// Color is the in-scattered radiance; W is the cloud opacity 1 - T.
	Color math.Vec4
	// CloudPos is the first sample with non-zero density, valid when Entered.
	CloudPos math.Vec3
	Entered  bool
}

// RaymarchToCloud integrates cloud radiance from start to end. fragX and
// fragY pick the dither offset of the first sample.
func (m *Model) RaymarchToCloud(start, end, bg math.Vec3, fragX, fragY int, sunColor, sunDir math.Vec3) MarchResult {
	var result MarchResult
	path := end.Sub(start)
	length := path.Length()
	if length <= 0 {
		return result
	}
	ds := length / cloudSteps
	dir := path.Scale(1 / length)
	step := dir.Scale(ds)
	pos := start.Add(step.Scale(bayerFilter[(fragX&3)*4+(fragY&3)]))

	lightDotEye := sunDir.Normalize().Dot(dir)
	scatteringPhase := m.phase(lightDotEye)
	sigmaDs := -ds * m.params.Density

	var col math.Vec3
	T := 1.0
	for i := 0; i < cloudSteps; i++ {
		densitySample := m.SampleCloudDensity(pos, true, float64(i)/16)
		if densitySample > 0 {
			if !result.Entered {
				result.CloudPos = pos
				result.Entered = true
			}
			ambient := m.params.ColorBottom.Lerp(m.params.ColorTop, math.Saturate(m.HeightFraction(pos)))
			lightT := m.RaymarchToLight(pos, ds*0.1, sunDir)
			powderTerm := 1.0
			if m.params.EnablePowder {
				powderTerm = powder(densitySample)
			}

			S := ambient.Scale(1.8).Lerp(bg, 0.2).
				Lerp(sunColor.Scale(scatteringPhase), powderTerm*lightT).
				Scale(0.6 * densitySample)
			dTrans := gomath.Exp(densitySample * sigmaDs)
			Sint := S.Sub(S.Scale(dTrans)).Scale(1 / densitySample)
			col = col.Add(Sint.Scale(T))
			T *= dTrans
		}
		if T <= cloudsMinTransmittance {
			break
		}
		pos = pos.Add(step)
	}
	result.Color = math.V4(col, 1-T)
	return result
}

// ComputeFogAmount is the horizon fog in [0,1) between the camera and p.
func (m *Model) ComputeFogAmount(p, cameraPos math.Vec3, factor float64) float64 {
	dist := p.Distance(cameraPos)
	radius := (cameraPos.Y + m.bottomRadius) * 0.3
	alpha := dist / radius
	return 1 - gomath.Exp(-dist*alpha*factor)
}

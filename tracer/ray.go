package tracer

import (
	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/scene"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

// Virtual image plane parameters.
const (
	viewportHeight float32 = 2.0
	focalLength    float32 = 1.0
)

// Gradient endpoints used for rays that miss every sphere.
var (
	SkyBottom = types.XYZ(1.0, 1.0, 1.0)
	SkyTop    = types.XYZ(0.5, 0.7, 1.0)
)

type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Map a pixel to normalized image plane coordinates. The v axis is flipped so
// that the top image row maps to v = 1.
func PixelUV(x, y, width, height uint32) types.Vec2 {
	extentX := float32(maxU32(width, 2) - 1)
	extentY := float32(maxU32(height, 2) - 1)
	return types.XY(float32(x)/extentX, 1-float32(y)/extentY)
}

// Build the world-space ray through uv on the camera's image plane.
func GenerateRay(aspectRatio float32, cam scene.RawCamera, uv types.Vec2) Ray {
	viewportWidth := viewportHeight / aspectRatio

	horizontal := types.XYZ(viewportWidth, 0, 0)
	vertical := types.XYZ(0, viewportHeight, 0)
	lowerLeft := horizontal.Mul(-0.5).Sub(vertical.Mul(0.5)).Sub(types.XYZ(0, 0, focalLength))
	localDir := lowerLeft.Add(horizontal.Mul(uv[0])).Add(vertical.Mul(uv[1]))

	return Ray{
		Origin:    cam.Position.Vec3(),
		Direction: cam.Rotation.Mul4x1(localDir.Vec4(0)).Vec3(),
	}
}

// Get the distance along the ray to the nearest intersection with the sphere
// that lies in front of the ray origin, or -1 if there is none.
func SphereCheck(ray Ray, sphere scene.Sphere) float32 {
	oc := ray.Origin.Sub(sphere.Center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - sphere.Radius*sphere.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return -1
	}

	root := math32.Sqrt(disc)
	if near := (-b - root) / (2 * a); near >= 0 {
		return near
	}
	if far := (-b + root) / (2 * a); far >= 0 {
		return far
	}
	return -1
}

// Shade a hit by its surface normal.
func ShadeHit(point, center types.Vec3) types.Vec4 {
	n := point.Sub(center).Normalize()
	return n.AddScalar(1).Mul(0.5).Vec4(1)
}

// Shade a miss with the vertical sky gradient.
func ShadeMiss(direction types.Vec3) types.Vec4 {
	t := 0.5 * (direction.Normalize()[1] + 1)
	return SkyBottom.Lerp(SkyTop, t).Vec4(1)
}

// Trace a ray against the spheres and return its color. Hits are accepted
// when minDepth <= t <= maxDepth; the nearest one wins. Spheres with a
// negative radius terminate the list.
func Trace(ray Ray, spheres []scene.Sphere, minDepth, maxDepth float32) types.Vec4 {
	nearest := maxDepth
	hit := -1
	for i, sphere := range spheres {
		if sphere.Radius < 0 {
			break
		}

		t := SphereCheck(ray, sphere)
		if t >= minDepth && t <= nearest {
			nearest = t
			hit = i
		}
	}

	if hit < 0 {
		return ShadeMiss(ray.Direction)
	}
	return ShadeHit(ray.At(nearest), spheres[hit].Center)
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts sun angles in degrees to the direction light travels.
// Longitude rotates around the Y axis; latitude is the elevation above the
// horizon. The result is normalized and points from the sun into the scene.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(longitude))
	lat := float64(mgl32.DegToRad(latitude))

	toSun := mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
	return toSun.Mul(-1)
}

package model

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// writeTexture writes a 2x2 opaque PNG under dir.
func writeTexture(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		img.Set(i%2, i/2, color.RGBA{uint8(60 * i), 128, 255, 255})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// triangle returns three vertices with distinct attributes and one triangle.
func triangle() ([]Vertex, []uint32) {
	vertices := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, TexCoords: mgl32.Vec2{0, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, Bitangent: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, TexCoords: mgl32.Vec2{1, 0}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, Bitangent: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec3{0, 1, 0}, TexCoords: mgl32.Vec2{0, 1}, Normal: mgl32.Vec3{0, 0, 1}, Tangent: mgl32.Vec3{1, 0, 0}, Bitangent: mgl32.Vec3{0, 1, 0}},
	}
	return vertices, []uint32{0, 1, 2}
}

// quadGeometry returns four vertices and two triangles.
func quadGeometry() ([]Vertex, []uint32) {
	vertices := []Vertex{
		{Position: mgl32.Vec3{-1, -1, 0}, TexCoords: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, -1, 0}, TexCoords: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, TexCoords: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-1, 1, 0}, TexCoords: mgl32.Vec2{0, 1}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

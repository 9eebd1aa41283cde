package model

import "github.com/go-gl/mathgl/mgl32"

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return !b.valid }

// Extend grows b to contain p.
func (b *Bounds) Extend(p mgl32.Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows b to contain other.
func (b *Bounds) Union(other Bounds) {
	if other.Empty() {
		return
	}
	b.Extend(other.Min)
	b.Extend(other.Max)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents along each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Bounds) Radius() float32 {
	return b.Size().Len() / 2
}

func vertexBounds(vertices []Vertex) Bounds {
	var b Bounds
	for i := range vertices {
		b.Extend(vertices[i].Position)
	}
	return b
}

// Bounds returns the box around every vertex of the mesh.
func (m *Mesh) Bounds() Bounds { return vertexBounds(m.vertices) }

// Bounds returns the box around every vertex of the record.
func (r *MeshRecord) Bounds() Bounds { return vertexBounds(r.Vertices) }

// Bounds returns the box around every mesh of the model.
func (m *Model) Bounds() Bounds {
	var b Bounds
	for _, mesh := range m.meshes {
		b.Union(mesh.Bounds())
	}
	return b
}

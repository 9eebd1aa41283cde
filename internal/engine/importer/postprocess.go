package importer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PostProcess selects steps applied to a scene after reading.
type PostProcess uint32

const (
	// Triangulate splits polygons into triangles and drops point and line faces.
	Triangulate PostProcess = 1 << iota
	// GenSmoothNormals computes normals for meshes that have none.
	GenSmoothNormals
	// CalcTangentSpace computes tangents and bitangents for meshes with UVs.
	CalcTangentSpace
	// FlipUVs replaces every v with 1-v.
	FlipUVs
)

// Has reports whether all steps in s are selected.
func (p PostProcess) Has(s PostProcess) bool {
	return p&s == s
}

// positionEpsilon is the grid used to find vertices that share a position.
const positionEpsilon float32 = 0.001

// Apply runs the selected steps on every mesh in a fixed order:
// triangulate, normals, tangent space, UV flip.
func (p PostProcess) Apply(scene *Scene) {
	for _, m := range scene.Meshes {
		if p.Has(Triangulate) {
			triangulate(m)
		}
		if p.Has(GenSmoothNormals) && !m.HasNormals() {
			genSmoothNormals(m)
		}
		if p.Has(CalcTangentSpace) && m.HasTexCoords() && !m.HasTangentSpace() {
			calcTangentSpace(m)
		}
		if p.Has(FlipUVs) {
			for i := range m.TexCoords {
				m.TexCoords[i][1] = 1 - m.TexCoords[i][1]
			}
		}
	}
}

// triangulate fan-splits faces with more than three vertices.
func triangulate(m *Mesh) {
	faces := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		switch {
		case len(f) < 3:
			continue
		case len(f) == 3:
			faces = append(faces, f)
		default:
			for i := 1; i+1 < len(f); i++ {
				faces = append(faces, Face{f[0], f[i], f[i+1]})
			}
		}
	}
	m.Faces = faces
}

// eachTriangle calls fn for every triangle, fanning larger polygons.
func eachTriangle(m *Mesh, fn func(i0, i1, i2 uint32)) {
	n := uint32(len(m.Positions))
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f); i++ {
			i0, i1, i2 := f[0], f[i], f[i+1]
			if i0 >= n || i1 >= n || i2 >= n {
				continue
			}
			fn(i0, i1, i2)
		}
	}
}

func positionKey(p mgl32.Vec3) [3]int32 {
	return [3]int32{
		int32(p[0] / positionEpsilon),
		int32(p[1] / positionEpsilon),
		int32(p[2] / positionEpsilon),
	}
}

// genSmoothNormals accumulates area-weighted face normals per vertex, then
// averages them across vertices that share a position.
func genSmoothNormals(m *Mesh) {
	accum := make([]mgl32.Vec3, len(m.Positions))

	eachTriangle(m, func(i0, i1, i2 uint32) {
		p0, p1, p2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		// Length proportional to triangle area
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	})

	shared := make(map[[3]int32]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		k := positionKey(p)
		shared[k] = shared[k].Add(accum[i])
	}

	m.Normals = make([]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		n := shared[positionKey(p)]
		if n.Len() < 1e-6 {
			// Degenerate: default to up
			m.Normals[i] = mgl32.Vec3{0, 1, 0}
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}

// calcTangentSpace derives tangents and bitangents from UV gradients.
// Tangents are orthogonalized against the normal when one is present.
func calcTangentSpace(m *Mesh) {
	tan := make([]mgl32.Vec3, len(m.Positions))
	btan := make([]mgl32.Vec3, len(m.Positions))

	eachTriangle(m, func(i0, i1, i2 uint32) {
		p0, p1, p2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		uv0, uv1, uv2 := m.TexCoords[i0], m.TexCoords[i1], m.TexCoords[i2]

		edge1, edge2 := p1.Sub(p0), p2.Sub(p0)
		duv1, duv2 := uv1.Sub(uv0), uv2.Sub(uv0)

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			return
		}
		inv := 1 / det

		t := edge1.Mul(duv2[1]).Sub(edge2.Mul(duv1[1])).Mul(inv)
		b := edge2.Mul(duv1[0]).Sub(edge1.Mul(duv2[0])).Mul(inv)
		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	})

	hasNormals := m.HasNormals()
	m.Tangents = make([]mgl32.Vec3, len(m.Positions))
	m.Bitangents = make([]mgl32.Vec3, len(m.Positions))
	for i := range m.Positions {
		t, b := tan[i], btan[i]
		if hasNormals {
			// Gram-Schmidt: T' = T - N * dot(N, T)
			n := m.Normals[i]
			t = t.Sub(n.Mul(n.Dot(t)))
		}
		if t.Len() < 1e-6 {
			t = mgl32.Vec3{1, 0, 0}
		} else {
			t = t.Normalize()
		}
		if b.Len() < 1e-6 && hasNormals {
			b = m.Normals[i].Cross(t)
		}
		if b.Len() < 1e-6 {
			b = mgl32.Vec3{0, 1, 0}
		}
		m.Tangents[i] = t
		m.Bitangents[i] = b.Normalize()
	}
}

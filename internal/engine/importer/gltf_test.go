package importer

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{Name: "Main"}}
	return doc
}

func saveGLB(t *testing.T, doc *gltf.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

// twoNodeDoc builds node A with a textured quad and its child B with an
// untextured triangle.
func twoNodeDoc() *gltf.Document {
	doc := newDoc()

	quadPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	quadUV := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	quadIdx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})
	triPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}})

	doc.Images = []*gltf.Image{{URI: "wood%20grain.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		Name: "wood",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes = []*gltf.Mesh{
		{Name: "quad", Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{"POSITION": quadPos, "TEXCOORD_0": quadUV},
			Indices:    gltf.Index(quadIdx),
			Material:   gltf.Index(0),
		}}},
		{Name: "tri", Primitives: []*gltf.Primitive{{
			Attributes: gltf.PrimitiveAttributes{"POSITION": triPos},
		}}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "A", Mesh: gltf.Index(0), Children: []int{1}},
		{Name: "B", Mesh: gltf.Index(1)},
	}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func TestReadGLTFTwoNodes(t *testing.T) {
	scene, err := ReadGLTF(saveGLB(t, twoNodeDoc()))
	require.NoError(t, err)
	require.False(t, scene.Incomplete(), scene.Warnings)

	require.NotNil(t, scene.Root)
	assert.Equal(t, "A", scene.Root.Name)
	assert.Equal(t, []int{0}, scene.Root.Meshes)
	require.Len(t, scene.Root.Children, 1)
	assert.Equal(t, "B", scene.Root.Children[0].Name)
	assert.Equal(t, []int{1}, scene.Root.Children[0].Meshes)

	require.Len(t, scene.Meshes, 2)
	q := scene.Meshes[0]
	assert.Equal(t, "quad", q.Name)
	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}}, q.Faces)
	assert.True(t, q.HasTexCoords())
	assert.False(t, q.HasNormals())

	tex, ok := scene.Materials[q.MaterialIndex].Texture(TextureDiffuse, 0)
	require.True(t, ok)
	assert.Equal(t, "wood grain.png", tex)

	tri := scene.Meshes[1]
	assert.Equal(t, []Face{{0, 1, 2}}, tri.Faces)
	assert.False(t, tri.HasTexCoords())
	def := scene.Materials[tri.MaterialIndex]
	assert.Equal(t, defaultMaterialName, def.Name)
	assert.Zero(t, def.TextureCount(TextureDiffuse))
}

func TestReadGLTFPrimitiveModes(t *testing.T) {
	doc := newDoc()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{Name: "shapes", Primitives: []*gltf.Primitive{
		{Attributes: gltf.PrimitiveAttributes{"POSITION": pos}, Mode: gltf.PrimitiveTriangleStrip},
		{Attributes: gltf.PrimitiveAttributes{"POSITION": pos}, Mode: gltf.PrimitivePoints},
		{Attributes: gltf.PrimitiveAttributes{"POSITION": pos}, Mode: gltf.PrimitiveTriangleFan},
	}}}
	doc.Nodes = []*gltf.Node{{Name: "shapes", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	scene, err := ReadGLTF(saveGLB(t, doc))
	require.NoError(t, err)

	require.Len(t, scene.Meshes, 2)
	assert.Equal(t, "shapes_0", scene.Meshes[0].Name)
	assert.Equal(t, []Face{{0, 1, 2}, {2, 1, 3}}, scene.Meshes[0].Faces)
	assert.Equal(t, "shapes_2", scene.Meshes[1].Name)
	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}}, scene.Meshes[1].Faces)
	assert.Equal(t, []int{0, 1}, scene.Root.Meshes)
	assert.NotEmpty(t, scene.Warnings)
}

func TestReadGLTFTangents(t *testing.T) {
	doc := newDoc()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	tan := modeler.WriteTangent(doc, [][4]float32{{1, 0, 0, -1}, {1, 0, 0, -1}, {1, 0, 0, -1}})
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{{
		Attributes: gltf.PrimitiveAttributes{"POSITION": pos, "NORMAL": nrm, "TANGENT": tan},
	}}}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	scene, err := ReadGLTF(saveGLB(t, doc))
	require.NoError(t, err)

	m := scene.Meshes[0]
	require.True(t, m.HasTangentSpace())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Tangents[0])
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, m.Bitangents[0])
}

func TestReadGLTFMultipleRoots(t *testing.T) {
	doc := twoNodeDoc()
	doc.Nodes[0].Children = nil
	doc.Scenes[0].Nodes = []int{0, 1}

	scene, err := ReadGLTF(saveGLB(t, doc))
	require.NoError(t, err)

	assert.Equal(t, "Main", scene.Root.Name)
	assert.Empty(t, scene.Root.Meshes)
	require.Len(t, scene.Root.Children, 2)
	assert.Equal(t, "A", scene.Root.Children[0].Name)
	assert.Equal(t, "B", scene.Root.Children[1].Name)
}

func TestReadGLTFIncomplete(t *testing.T) {
	t.Run("no scenes", func(t *testing.T) {
		doc := twoNodeDoc()
		doc.Scenes = nil
		doc.Scene = nil

		scene, err := ReadGLTF(saveGLB(t, doc))
		require.NoError(t, err)
		assert.True(t, scene.Incomplete())
	})

	t.Run("bad accessor", func(t *testing.T) {
		doc := twoNodeDoc()
		doc.Meshes[1].Primitives[0].Attributes["POSITION"] = 99

		scene, err := ReadGLTF(saveGLB(t, doc))
		require.NoError(t, err)
		assert.True(t, scene.Incomplete())
	})

	t.Run("bad node", func(t *testing.T) {
		doc := twoNodeDoc()
		doc.Nodes[0].Children = []int{7}

		scene, err := ReadGLTF(saveGLB(t, doc))
		require.NoError(t, err)
		assert.True(t, scene.Incomplete())
	})
}

func TestReadGLTFOpenError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "junk.gltf", "{not json")

	scene, err := ReadGLTF(path)
	assert.Nil(t, scene)
	assert.Error(t, err)
}

func TestPrimitiveFaces(t *testing.T) {
	idx := []uint32{0, 1, 2, 3, 4}

	assert.Equal(t, []Face{{0, 1, 2}}, primitiveFaces(gltf.PrimitiveTriangles, idx))
	assert.Equal(t, []Face{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}, primitiveFaces(gltf.PrimitiveTriangleStrip, idx))
	assert.Equal(t, []Face{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}, primitiveFaces(gltf.PrimitiveTriangleFan, idx))
	assert.Empty(t, primitiveFaces(gltf.PrimitiveTriangles, idx[:2]))
}

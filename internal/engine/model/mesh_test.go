package model

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/meshport/internal/engine/texture"
)

func TestVertexLayout(t *testing.T) {
	assert.EqualValues(t, VertexSize, unsafe.Sizeof(Vertex{}))
	assert.EqualValues(t, VertexSize, VertexLayout.Stride)

	offsets := make([]uintptr, len(VertexLayout.Attributes))
	for i, a := range VertexLayout.Attributes {
		assert.EqualValues(t, i, a.Location)
		offsets[i] = a.Offset
	}
	assert.Equal(t, []uintptr{0, 12, 20, 32, 44}, offsets)
}

func TestNewMesh(t *testing.T) {
	dev := gfxtest.NewDevice()
	vertices, indices := quadGeometry()

	m, err := NewMesh(dev, "quad", vertices, indices)
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Name())
	assert.NotZero(t, m.VertexArray())
	assert.NotZero(t, m.VertexBuffer())
	assert.NotZero(t, m.IndexBuffer())
	assert.EqualValues(t, 6, m.IndexCount())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Nil(t, m.Material())

	rec, ok := dev.Buffers(m.VertexArray())
	require.True(t, ok)
	assert.Len(t, rec.Vertices, 4*VertexSize)
	assert.Equal(t, indices, rec.Indices)
	assert.Equal(t, VertexLayout.Stride, rec.Layout.Stride)
}

func TestNewMeshInvalidIndices(t *testing.T) {
	vertices, _ := triangle()

	tests := map[string][]uint32{
		"partial triangle": {0, 1},
		"out of range":     {0, 1, 3},
		"quad face":        {0, 1, 2, 0},
	}

	for name, indices := range tests {
		t.Run(name, func(t *testing.T) {
			dev := gfxtest.NewDevice()
			m, err := NewMesh(dev, "bad", vertices, indices)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrInvalidIndices)
			assert.Zero(t, dev.LiveBuffers())
		})
	}
}

func TestNewMeshEmpty(t *testing.T) {
	m, err := NewMesh(gfxtest.NewDevice(), "empty", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, m.IndexCount())
}

func TestRebuild(t *testing.T) {
	dev := gfxtest.NewDevice()
	vertices, indices := triangle()
	m, err := NewMesh(dev, "tri", vertices, indices)
	require.NoError(t, err)
	oldVAO := m.VertexArray()

	qv, qi := quadGeometry()
	require.NoError(t, m.Rebuild("quad", qv, qi))

	assert.Equal(t, "quad", m.Name())
	assert.NotEqual(t, oldVAO, m.VertexArray())
	assert.EqualValues(t, 6, m.IndexCount())
	old, _ := dev.Buffers(oldVAO)
	assert.Equal(t, 1, old.Deletes)
	assert.Equal(t, 1, dev.LiveBuffers())
}

func TestRebuildInvalidKeepsMesh(t *testing.T) {
	dev := gfxtest.NewDevice()
	vertices, indices := triangle()
	m, err := NewMesh(dev, "tri", vertices, indices)
	require.NoError(t, err)
	vao := m.VertexArray()

	err = m.Rebuild("broken", vertices, []uint32{0, 1, 7})

	assert.ErrorIs(t, err, ErrInvalidIndices)
	assert.Equal(t, "tri", m.Name())
	assert.Equal(t, vao, m.VertexArray())
	assert.Equal(t, 1, dev.LiveBuffers())
}

func TestMeshRelease(t *testing.T) {
	dev := gfxtest.NewDevice()
	vertices, indices := triangle()
	m, err := NewMesh(dev, "tri", vertices, indices)
	require.NoError(t, err)

	tex := texture.NewSize(dev, 1, 1, gfx.FormatRGBA8)
	mat := NewMaterial("m")
	mat.SetTexture(SlotAlbedo, tex)
	m.SetMaterial(mat)

	m.Release()

	assert.Zero(t, dev.LiveBuffers())
	assert.Zero(t, dev.LiveTextures())
	assert.Nil(t, m.Material())
	assert.Zero(t, m.VertexArray())

	// Second release is a no-op
	assert.NotPanics(t, m.Release)
}

func TestSetMaterialReleasesPrevious(t *testing.T) {
	dev := gfxtest.NewDevice()
	vertices, indices := triangle()
	m, err := NewMesh(dev, "tri", vertices, indices)
	require.NoError(t, err)

	first := NewMaterial("first")
	first.SetTexture(SlotAlbedo, texture.NewSize(dev, 1, 1, gfx.FormatRGBA8))
	m.SetMaterial(first)
	m.SetMaterial(first)
	assert.Equal(t, 1, dev.LiveTextures())

	m.SetMaterial(NewMaterial("second"))
	assert.Zero(t, dev.LiveTextures())
	assert.Equal(t, "second", m.Material().Name())
}

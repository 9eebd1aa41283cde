package model

import (
	"sync/atomic"

	"github.com/Faultbox/meshport/internal/engine/texture"
)

// Slot names a material texture binding. The slot value is the texture unit.
type Slot uint32

const (
	SlotAlbedo Slot = iota

	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotAlbedo:
		return "albedo"
	}
	return "unknown"
}

// Material holds one texture reference per slot. An empty slot is absent,
// which is different from a slot holding a texture whose decode failed.
type Material struct {
	name     string
	textures [slotCount]*texture.Texture
	refs     atomic.Int32
}

// NewMaterial returns a material with no textures and one reference.
func NewMaterial(name string) *Material {
	m := &Material{name: name}
	m.refs.Store(1)
	return m
}

func (m *Material) Name() string { return m.name }

// SetTexture stores t in slot, taking over the caller's reference.
// A previous texture in the slot is released.
func (m *Material) SetTexture(slot Slot, t *texture.Texture) {
	if slot >= slotCount {
		return
	}
	if prev := m.textures[slot]; prev != nil && prev != t {
		prev.Release()
	}
	m.textures[slot] = t
}

// Texture returns the texture in slot, nil when the slot is absent.
func (m *Material) Texture(slot Slot) *texture.Texture {
	if m == nil || slot >= slotCount {
		return nil
	}
	return m.textures[slot]
}

// Has reports whether slot holds a texture.
func (m *Material) Has(slot Slot) bool {
	return m.Texture(slot) != nil
}

// Bind binds every present slot to the texture unit of the same number.
func (m *Material) Bind() {
	if m == nil {
		return
	}
	for slot, t := range m.textures {
		t.Bind(uint32(slot))
	}
}

// Acquire adds a reference for a mesh sharing this material.
func (m *Material) Acquire() *Material {
	m.refs.Add(1)
	return m
}

// Release drops a reference; the last one releases every texture.
func (m *Material) Release() {
	if m == nil || m.refs.Add(-1) != 0 {
		return
	}
	for i, t := range m.textures {
		t.Release()
		m.textures[i] = nil
	}
}

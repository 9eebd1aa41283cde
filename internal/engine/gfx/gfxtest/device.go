// Package gfxtest provides an in-memory gfx.Device for tests that have no GL context.
package gfxtest

import (
	"sync"

	"github.com/Faultbox/meshport/internal/engine/gfx"
)

// Texture is the recorded state of one texture allocation.
type Texture struct {
	Props     gfx.TextureProperties
	Mipmapped bool
	Pixels    []byte
	Uploads   int
	Mipmaps   int
	Deletes   int
}

// Buffers is the recorded state of one mesh buffer allocation.
type Buffers struct {
	gfx.MeshBuffers
	Layout   gfx.VertexLayout
	Vertices []byte
	Indices  []uint32
	Deletes  int
}

// Device records every call. Handles start at 1 and are never reused.
type Device struct {
	mu       sync.Mutex
	next     uint32
	textures map[uint32]*Texture
	buffers  map[uint32]*Buffers
	bound    map[uint32]uint32
}

var _ gfx.Device = (*Device)(nil)

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		textures: make(map[uint32]*Texture),
		buffers:  make(map[uint32]*Buffers),
		bound:    make(map[uint32]uint32),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateTexture(props gfx.TextureProperties, mipmapped bool) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.handle()
	d.textures[h] = &Texture{Props: props, Mipmapped: mipmapped}
	return h
}

func (d *Device) UploadTexture(handle uint32, props gfx.TextureProperties, pixels []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[handle]; ok {
		t.Pixels = append([]byte(nil), pixels...)
		t.Uploads++
	}
}

func (d *Device) GenerateMipmaps(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[handle]; ok {
		t.Mipmaps++
	}
}

func (d *Device) BindTexture(slot uint32, handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound[slot] = handle
}

func (d *Device) DeleteTexture(handle uint32) {
	if handle == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.textures[handle]; ok {
		t.Deletes++
	}
}

func (d *Device) CreateMeshBuffers(layout gfx.VertexLayout, vertices []byte, indices []uint32) gfx.MeshBuffers {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := gfx.MeshBuffers{
		VertexArray:  d.handle(),
		VertexBuffer: d.handle(),
		IndexBuffer:  d.handle(),
		IndexCount:   int32(len(indices)),
	}
	d.buffers[b.VertexArray] = &Buffers{
		MeshBuffers: b,
		Layout:      layout,
		Vertices:    append([]byte(nil), vertices...),
		Indices:     append([]uint32(nil), indices...),
	}
	return b
}

func (d *Device) DeleteMeshBuffers(b gfx.MeshBuffers) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rec, ok := d.buffers[b.VertexArray]; ok {
		rec.Deletes++
	}
}

// Texture returns the recorded state for handle.
func (d *Device) Texture(handle uint32) (Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[handle]
	if !ok {
		return Texture{}, false
	}
	return *t, true
}

// Buffers returns the recorded state for the vertex array handle.
func (d *Device) Buffers(vertexArray uint32) (Buffers, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[vertexArray]
	if !ok {
		return Buffers{}, false
	}
	return *b, true
}

// Bound returns the handle last bound to slot.
func (d *Device) Bound(slot uint32) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bound[slot]
}

// TextureCount returns how many textures were ever created.
func (d *Device) TextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// LiveTextures returns how many created textures have not been deleted.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, t := range d.textures {
		if t.Deletes == 0 {
			n++
		}
	}
	return n
}

// LiveBuffers returns how many mesh buffer sets have not been deleted.
func (d *Device) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, b := range d.buffers {
		if b.Deletes == 0 {
			n++
		}
	}
	return n
}

// Package renderer draws imported models with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/engine/model"
	"github.com/Faultbox/meshport/internal/engine/shader"
	"github.com/Faultbox/meshport/internal/engine/texture"
	"github.com/Faultbox/meshport/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	ClearColor mgl32.Vec4
	LightDir   mgl32.Vec3
	Ambient    float32
}

// DefaultConfig returns the settings used by the viewer.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:      width,
		Height:     height,
		ClearColor: mgl32.Vec4{0.1, 0.1, 0.15, 1.0},
		LightDir:   SunDirection(30, 50),
		Ambient:    0.3,
	}
}

// Renderer draws models with a single albedo-textured, directionally lit program.
// IMPORTANT: every method must run on the thread that owns the OpenGL context.
type Renderer struct {
	config  Config
	program *shader.Program

	// Bound in place of absent or unusable albedo textures
	white *texture.Texture
}

// New creates the mesh program and the 1x1 white fallback texture on dev.
// The OpenGL context must already be current (see opengl.New).
func New(dev gfx.Device, cfg Config) (*Renderer, error) {
	program, err := shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}

	r := &Renderer{
		config:  cfg,
		program: program,
		white:   newWhiteTexture(dev),
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	logger.Debug("renderer created",
		zap.Uint32("program", program.ID()),
		zap.Uint32("white_texture", r.white.Handle()),
	)
	return r, nil
}

func newWhiteTexture(dev gfx.Device) *texture.Texture {
	t := texture.NewSize(dev, 1, 1, gfx.FormatRGBA8)
	t.SetData([]byte{255, 255, 255, 255})
	return t
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.white.Release()
	r.white = nil
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize. width and height are in pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
}

// ReadPixels reads the current framebuffer as RGBA, bottom row first.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	if width <= 0 || height <= 0 {
		return nil, 0, 0
	}
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// DrawModel draws every mesh of m with the given camera matrices.
func (r *Renderer) DrawModel(m *model.Model, view, projection mgl32.Mat4) {
	if m == nil {
		return
	}
	calls := drawList(m.Meshes(), r.white)
	if len(calls) == 0 {
		return
	}

	r.program.Use()
	r.program.SetMat4("uModel", mgl32.Ident4())
	r.program.SetMat4("uView", view)
	r.program.SetMat4("uProjection", projection)
	r.program.SetVec3("uLightDir", r.config.LightDir)
	gl.Uniform1f(r.program.Uniform("uAmbient"), r.config.Ambient)
	r.program.SetInt("uAlbedo", int32(model.SlotAlbedo))

	for _, call := range calls {
		call.albedo.Bind(uint32(model.SlotAlbedo))
		gl.BindVertexArray(call.vertexArray)
		gl.DrawElements(gl.TRIANGLES, call.indexCount, gl.UNSIGNED_INT, nil)
	}
}

// drawCall is one indexed draw.
type drawCall struct {
	vertexArray uint32
	indexCount  int32
	albedo      *texture.Texture
}

// drawList resolves the draws in mesh order. Meshes without GPU buffers or
// indices are skipped. A mesh whose albedo is absent or a sentinel gets
// fallback instead.
func drawList(meshes []*model.Mesh, fallback *texture.Texture) []drawCall {
	calls := make([]drawCall, 0, len(meshes))
	for _, mesh := range meshes {
		if mesh.VertexArray() == 0 || mesh.IndexCount() == 0 {
			continue
		}
		albedo := mesh.Material().Texture(model.SlotAlbedo)
		if !albedo.Valid() {
			albedo = fallback
		}
		calls = append(calls, drawCall{
			vertexArray: mesh.VertexArray(),
			indexCount:  mesh.IndexCount(),
			albedo:      albedo,
		})
	}
	return calls
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/config"
	"github.com/Faultbox/meshport/internal/engine/camera"
	"github.com/Faultbox/meshport/internal/engine/debug"
	"github.com/Faultbox/meshport/internal/engine/gfx/opengl"
	"github.com/Faultbox/meshport/internal/engine/input"
	"github.com/Faultbox/meshport/internal/engine/model"
	"github.com/Faultbox/meshport/internal/engine/renderer"
	"github.com/Faultbox/meshport/internal/engine/texture"
	"github.com/Faultbox/meshport/internal/engine/window"
	"github.com/Faultbox/meshport/internal/logger"
)

const reloadDelay = 200 * time.Millisecond

// viewer owns the window, the GL resources and the currently shown model.
// Everything except the file watcher runs on the main thread.
type viewer struct {
	cfg  *config.Config
	path string

	window   *window.Window
	device   *opengl.Device
	textures *texture.Cache
	loader   *model.Loader
	renderer *renderer.Renderer
	camera   *camera.OrbitCamera
	input    *input.Input
	watcher  *watcher
	shots    *debug.ScreenshotCapture

	model *model.Model

	screenshotRequested bool
}

func newViewer(cfg *config.Config, path string) (*viewer, error) {
	v := &viewer{
		cfg:    cfg,
		path:   path,
		camera: camera.NewOrbitCamera(),
		input:  input.New(),
		shots:  debug.NewScreenshotCapture(cfg.Window.ScreenshotDir, "meshport"),
	}

	var err error
	v.window, err = window.New("meshport", cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The device needs the context created by the window
	v.device, err = opengl.New()
	if err != nil {
		v.window.Close()
		return nil, err
	}

	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(v.device, renderer.DefaultConfig(width, height))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.textures = newTextureCache(v.device, cfg.Texture)
	v.loader = newLoader(v.device, v.textures, cfg)

	if cfg.Import.Watch {
		v.watcher, err = watchModel(path, reloadDelay)
		if err != nil {
			// The viewer still works without live reload
			logger.Warn("failed to watch model", zap.String("path", path), zap.Error(err))
		}
	}

	v.load()
	return v, nil
}

// load imports the model, replacing the current one. Textures are decoded
// again so edited images show up too.
func (v *viewer) load() {
	if v.model != nil {
		v.model.Release()
	}
	v.textures.Close()

	start := time.Now()
	v.model = v.loader.Load(v.path)
	hits, misses := v.textures.Stats()
	logger.Debug("load finished",
		zap.String("path", v.path),
		zap.Int("textures", v.textures.Len()),
		zap.Int("texture_hits", hits),
		zap.Int("texture_misses", misses),
		zap.Duration("took", time.Since(start)),
	)

	exportModel(v.model, v.cfg.Import.ExportDir)
	for _, dir := range textureDirs(v.model) {
		if err := v.watcher.Watch(dir); err != nil {
			logger.Warn("failed to watch texture directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	v.frame()

	title := fmt.Sprintf("meshport - %s (%d meshes)", filepath.Base(v.path), len(v.model.Meshes()))
	if v.model.Err() != nil {
		title = fmt.Sprintf("meshport - %s (import failed)", filepath.Base(v.path))
	}
	v.window.SetTitle(title)
}

// frame points the camera at the model's bounds.
func (v *viewer) frame() {
	b := v.model.Bounds()
	if b.Empty() {
		return
	}
	v.camera.FitToBounds(b.Min, b.Max)
}

// Run runs the main loop until the window is closed.
func (v *viewer) Run() error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting viewer loop")

	for {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			return nil
		}
		if quit := v.handleEvents(); quit {
			return nil
		}

		select {
		case <-v.watcher.Reloads():
			logger.Info("model changed on disk, re-importing", zap.String("path", v.path))
			v.load()
		default:
		}

		v.renderer.Begin()
		v.renderer.DrawModel(v.model, v.camera.ViewMatrix(), v.camera.Projection(v.renderer.Aspect()))
		v.renderer.End()

		if v.screenshotRequested {
			v.screenshotRequested = false
			v.screenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// handleEvents applies this frame's input. It reports whether to quit.
func (v *viewer) handleEvents() bool {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_R:
				v.load()
			case sdl.SCANCODE_F:
				v.frame()
			case sdl.SCANCODE_F12:
				v.screenshotRequested = true
			}
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(e.Wheel)
		}
	}
	return false
}

// screenshot saves the frame just drawn, before it is presented.
func (v *viewer) screenshot() {
	pixels, width, height := v.renderer.ReadPixels()
	name, err := v.shots.CaptureFromPixels(pixels, width, height)
	if err != nil {
		logger.Error("failed to save screenshot", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// Close releases everything in reverse order of creation.
func (v *viewer) Close() {
	logger.Info("closing viewer")

	if err := v.watcher.Close(); err != nil {
		logger.Warn("failed to close watcher", zap.Error(err))
	}
	if v.model != nil {
		v.model.Release()
	}
	if v.textures != nil {
		v.textures.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/meshport/internal/config"
)

func TestWindowFlags(t *testing.T) {
	cfg := config.Default().Window
	cfg.Fullscreen = false

	flags := windowFlags(cfg)
	assert.NotZero(t, flags&sdl.WINDOW_OPENGL)
	assert.NotZero(t, flags&sdl.WINDOW_RESIZABLE)
	assert.NotZero(t, flags&sdl.WINDOW_ALLOW_HIGHDPI)
	assert.Zero(t, flags&sdl.WINDOW_FULLSCREEN)

	cfg.Fullscreen = true
	assert.NotZero(t, windowFlags(cfg)&sdl.WINDOW_FULLSCREEN)
}

func TestSwapInterval(t *testing.T) {
	assert.Equal(t, 1, swapInterval(true))
	assert.Equal(t, 0, swapInterval(false))
}

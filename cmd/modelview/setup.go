package main

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/config"
	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/engine/importer"
	"github.com/Faultbox/meshport/internal/engine/model"
	"github.com/Faultbox/meshport/internal/engine/texture"
	"github.com/Faultbox/meshport/internal/logger"
)

// importFlags maps the import settings to post-process steps.
func importFlags(cfg config.ImportConfig) importer.PostProcess {
	var flags importer.PostProcess
	if cfg.Triangulate {
		flags |= importer.Triangulate
	}
	if cfg.GenSmoothNormals {
		flags |= importer.GenSmoothNormals
	}
	if cfg.CalcTangentSpace {
		flags |= importer.CalcTangentSpace
	}
	if cfg.FlipUVs {
		flags |= importer.FlipUVs
	}
	return flags
}

// newTextureCache builds a cache keyed the way cfg asks.
func newTextureCache(dev gfx.Device, cfg config.TextureConfig) *texture.Cache {
	if cfg.CacheKey == config.CacheKeyPath {
		return texture.NewCache(dev, texture.WithKeyFunc(texture.PathKey))
	}
	return texture.NewCache(dev)
}

// newLoader builds a model loader from the import and texture settings.
func newLoader(dev gfx.Device, textures *texture.Cache, cfg *config.Config) *model.Loader {
	l := model.NewLoader(dev, textures)
	l.Flags = importFlags(cfg.Import)
	l.ShareMaterials = cfg.Import.ShareMaterials
	l.SRGBAlbedo = cfg.Texture.SRGBAlbedo
	return l
}

// exportModel writes every mesh of m into dir. Failures are logged, and the
// files written before the failure are returned.
func exportModel(m *model.Model, dir string) []string {
	if dir == "" || m.Empty() {
		return nil
	}
	paths, err := m.Export(dir)
	if err != nil {
		logger.Error("failed to export meshes", zap.String("dir", dir), zap.Error(err))
	}
	return paths
}

// textureDirs returns the sorted directories holding the model's texture files.
func textureDirs(m *model.Model) []string {
	seen := make(map[string]struct{})
	for _, mesh := range m.Meshes() {
		path := mesh.Material().Texture(model.SlotAlbedo).Path()
		if path == "" {
			continue
		}
		seen[filepath.Dir(path)] = struct{}{}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

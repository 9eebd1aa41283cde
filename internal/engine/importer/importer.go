package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/logger"
)

// ErrUnsupportedFormat is returned by ReadFile when no reader handles the file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Reader parses the file at path into a Scene.
type Reader func(path string) (*Scene, error)

// Importer dispatches files to readers by extension and post-processes the result.
// It remembers the message of the last failed or incomplete read.
type Importer struct {
	readers map[string]Reader
	lastErr string
}

// New returns an Importer with the glTF and Wavefront OBJ readers registered.
func New() *Importer {
	imp := &Importer{readers: make(map[string]Reader)}
	imp.RegisterFormat(".gltf", ReadGLTF)
	imp.RegisterFormat(".glb", ReadGLTF)
	imp.RegisterFormat(".obj", ReadOBJ)
	return imp
}

// RegisterFormat adds or replaces the reader for a file extension.
// The extension is matched case-insensitively and must include the dot.
func (imp *Importer) RegisterFormat(ext string, r Reader) {
	imp.readers[strings.ToLower(ext)] = r
}

// Extensions returns the registered extensions, sorted.
func (imp *Importer) Extensions() []string {
	exts := make([]string, 0, len(imp.readers))
	for ext := range imp.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// CanRead reports whether a reader is registered for path's extension.
func (imp *Importer) CanRead(path string) bool {
	_, ok := imp.readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadFile reads path and applies the post-process steps in flags.
//
// A scene flagged SceneIncomplete is returned without post-processing and
// with a nil error; ErrorString describes what went wrong.
func (imp *Importer) ReadFile(path string, flags PostProcess) (*Scene, error) {
	imp.lastErr = ""

	ext := strings.ToLower(filepath.Ext(path))
	read, ok := imp.readers[ext]
	if !ok {
		return nil, imp.fail(fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext))
	}

	scene, err := read(path)
	if err != nil {
		return nil, imp.fail(err)
	}
	if scene == nil {
		return nil, imp.fail(fmt.Errorf("reader returned no scene for %s", path))
	}

	for _, w := range scene.Warnings {
		logger.Debug("import warning", zap.String("path", path), zap.String("warning", w))
	}

	if scene.Incomplete() {
		imp.lastErr = "scene is incomplete: " + strings.Join(scene.Warnings, "; ")
		return scene, nil
	}

	flags.Apply(scene)

	if err := validate(scene); err != nil {
		return nil, imp.fail(err)
	}
	return scene, nil
}

// ErrorString returns the message of the last failed or incomplete read,
// or an empty string if the last read succeeded.
func (imp *Importer) ErrorString() string {
	return imp.lastErr
}

func (imp *Importer) fail(err error) error {
	imp.lastErr = err.Error()
	return err
}

// validate checks mesh array lengths, face indices and node references.
func validate(scene *Scene) error {
	for i, m := range scene.Meshes {
		n := len(m.Positions)
		if len(m.Normals) != 0 && len(m.Normals) != n {
			return fmt.Errorf("mesh %d (%s): %d normals for %d positions", i, m.Name, len(m.Normals), n)
		}
		if len(m.TexCoords) != 0 && len(m.TexCoords) != n {
			return fmt.Errorf("mesh %d (%s): %d uvs for %d positions", i, m.Name, len(m.TexCoords), n)
		}
		if len(m.Tangents) != len(m.Bitangents) || (len(m.Tangents) != 0 && len(m.Tangents) != n) {
			return fmt.Errorf("mesh %d (%s): tangent space does not match positions", i, m.Name)
		}
		for fi, f := range m.Faces {
			for _, idx := range f {
				if int(idx) >= n {
					return fmt.Errorf("mesh %d (%s): face %d index %d out of range [0,%d)", i, m.Name, fi, idx, n)
				}
			}
		}
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(scene.Materials) {
			return fmt.Errorf("mesh %d (%s): material index %d out of range", i, m.Name, m.MaterialIndex)
		}
	}

	var err error
	scene.Root.Walk(func(node *Node) {
		for _, mi := range node.Meshes {
			if err == nil && (mi < 0 || mi >= len(scene.Meshes)) {
				err = fmt.Errorf("node %q references mesh %d of %d", node.Name, mi, len(scene.Meshes))
			}
		}
	})
	return err
}

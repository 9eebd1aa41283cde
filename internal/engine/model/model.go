package model

import (
	"errors"
)

// ErrImportFailure is wrapped by Model.Err when a file could not be imported.
var ErrImportFailure = errors.New("model import failure")

// Model is the result of one import: a flat list of meshes in scene traversal order.
// A failed import yields a Model with no meshes and a non-nil Err.
type Model struct {
	name     string
	filePath string
	meshes   []*Mesh
	err      error
}

// Name is the name of the scene's root node.
func (m *Model) Name() string { return m.name }

// FilePath is the path the model was imported from.
func (m *Model) FilePath() string { return m.filePath }

// Meshes returns the meshes in depth-first pre-order of the scene hierarchy.
func (m *Model) Meshes() []*Mesh { return m.meshes }

// Err returns the import failure, if any.
func (m *Model) Err() error { return m.err }

// Empty reports whether the model has no meshes.
func (m *Model) Empty() bool { return len(m.meshes) == 0 }

// Release frees every mesh. The model is empty afterwards.
func (m *Model) Release() {
	for _, mesh := range m.meshes {
		mesh.Release()
	}
	m.meshes = nil
}

package model

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/internal/engine/gfx"
	"github.com/Faultbox/meshport/internal/logger"
)

// Mesh record layout, little-endian:
//
//	magic    [4]byte  "MESH"
//	version  uint16
//	name     uint32 length + bytes
//	vertices uint32 count + count * Vertex (14 float32)
//	indices  uint32 count + count * uint32
const (
	MeshMagic   = "MESH"
	MeshVersion = 1

	// MeshExt is the file extension used by Model.Export.
	MeshExt = ".mesh"

	maxNameLen = 1 << 16
	readChunk  = 4096
)

var (
	ErrInvalidMeshMagic       = errors.New("invalid mesh magic")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh version")
	ErrTruncatedMeshData      = errors.New("truncated mesh data")
)

// MeshRecord is the persisted form of a Mesh, decoded without touching the GPU.
type MeshRecord struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// EncodedSize is the number of bytes WriteMeshRecord produces for r.
func (r *MeshRecord) EncodedSize() int {
	return len(MeshMagic) + 2 +
		4 + len(r.Name) +
		4 + len(r.Vertices)*VertexSize +
		4 + len(r.Indices)*4
}

// WriteMeshRecord writes one record to w.
func WriteMeshRecord(w io.Writer, rec *MeshRecord) error {
	if len(rec.Name) > maxNameLen {
		return fmt.Errorf("mesh name too long: %d bytes", len(rec.Name))
	}

	bw := bufio.NewWriter(w)
	header := struct {
		Magic   [4]byte
		Version uint16
		NameLen uint32
	}{Version: MeshVersion, NameLen: uint32(len(rec.Name))}
	copy(header.Magic[:], MeshMagic)

	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return err
	}
	if _, err := bw.WriteString(rec.Name); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(rec.Vertices))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, rec.Vertices); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(rec.Indices))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, rec.Indices); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadMeshRecord reads one record from r. It returns io.EOF when r is empty
// and ErrTruncatedMeshData when a record ends early. Index validity is checked.
func ReadMeshRecord(r io.Reader) (*MeshRecord, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, truncated(err)
	}
	if string(magic[:]) != MeshMagic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMeshMagic, magic[:])
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, truncated(err)
	}
	if version != MeshVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMeshVersion, version)
	}

	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, truncated(err)
	}
	if nameLen > maxNameLen {
		return nil, fmt.Errorf("%w: name length %d", ErrTruncatedMeshData, nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, truncated(err)
	}

	vertices, err := readSlice[Vertex](r)
	if err != nil {
		return nil, err
	}
	indices, err := readSlice[uint32](r)
	if err != nil {
		return nil, err
	}
	if err := ValidateIndices(len(vertices), indices); err != nil {
		return nil, err
	}

	return &MeshRecord{Name: string(name), Vertices: vertices, Indices: indices}, nil
}

// readSlice reads a uint32 count followed by count elements. Elements are read
// in chunks so a corrupt count cannot force a huge allocation up front.
func readSlice[T Vertex | uint32](r io.Reader) ([]T, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, truncated(err)
	}

	out := make([]T, 0, min(int(count), readChunk))
	for remaining := int(count); remaining > 0; {
		n := min(remaining, readChunk)
		chunk := make([]T, n)
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, truncated(err)
		}
		out = append(out, chunk...)
		remaining -= n
	}
	return out, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncatedMeshData, err)
	}
	return err
}

// Record returns the persisted form of m. The slices are shared.
func (m *Mesh) Record() *MeshRecord {
	return &MeshRecord{Name: m.name, Vertices: m.vertices, Indices: m.indices}
}

// Save writes the mesh name, vertices and indices to w.
func (m *Mesh) Save(w io.Writer) error {
	return WriteMeshRecord(w, m.Record())
}

// Load reads a record from r into m, replacing its data and GPU buffers in
// place. The material is kept. On error m is left unchanged.
func (m *Mesh) Load(r io.Reader) error {
	rec, err := ReadMeshRecord(r)
	if err != nil {
		return err
	}
	return m.Rebuild(rec.Name, rec.Vertices, rec.Indices)
}

// ReadMesh reads a record from r and uploads it as a new Mesh without material.
func ReadMesh(r io.Reader, dev gfx.Device) (*Mesh, error) {
	rec, err := ReadMeshRecord(r)
	if err != nil {
		return nil, err
	}
	return NewMesh(dev, rec.Name, rec.Vertices, rec.Indices)
}

// Export writes every mesh of m to its own file in dir, named
// <index>_<mesh name>.mesh, and returns the paths written.
func (m *Model) Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, 0, len(m.meshes))
	for i, mesh := range m.meshes {
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s%s", i, fileSafe(mesh.Name()), MeshExt))
		if err := saveFile(path, mesh); err != nil {
			return paths, fmt.Errorf("export %s: %w", mesh.Name(), err)
		}
		paths = append(paths, path)
	}

	logger.Info("model exported", zap.String("dir", dir), zap.Int("meshes", len(paths)))
	return paths, nil
}

func saveFile(path string, mesh *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fileSafe replaces characters that are awkward in file names.
func fileSafe(name string) string {
	if name == "" {
		return "mesh"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}

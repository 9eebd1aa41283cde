package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// defaultObjectName names faces that appear before any o or g line.
const defaultObjectName = "defaultobject"

// ReadOBJ reads a Wavefront OBJ file and the MTL libraries it references.
// The root node is named after the file and has one child per object or group.
// Each object yields one mesh per material run; polygons are kept as n-gons.
func ReadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	dec := newOBJDecoder(filepath.Dir(path))
	if err := dec.parse(f); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return dec.build(filepath.Base(path))
}

// objRef is one v/vt/vn triple, zero-based. Missing parts are -1.
type objRef struct {
	v, vt, vn int
}

type objRun struct {
	material string
	faces    [][]objRef
}

type objObject struct {
	name string
	runs []*objRun
}

type objDecoder struct {
	dir string

	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2

	objects   []*objObject
	current   *objObject
	material  string
	materials map[string]*Material
	matOrder  []string
	warnings  []string

	line int
}

func newOBJDecoder(dir string) *objDecoder {
	return &objDecoder{
		dir:       dir,
		materials: make(map[string]*Material),
	}
}

func (d *objDecoder) parse(r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	d.line = 0
	for s.Scan() {
		d.line++
		if err := d.parseLine(s.Text()); err != nil {
			return fmt.Errorf("line %d: %w", d.line, err)
		}
	}
	return s.Err()
}

func (d *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.positions = append(d.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.normals = append(d.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 1)
		if err != nil {
			return err
		}
		uv := mgl32.Vec2{v[0]}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		d.uvs = append(d.uvs, uv)
	case "f":
		return d.parseFace(fields[1:])
	case "o", "g":
		name := defaultObjectName
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		d.startObject(name)
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("usemtl without a name")
		}
		d.material = fields[1]
	case "mtllib":
		for _, lib := range fields[1:] {
			if err := d.loadMTL(filepath.Join(d.dir, lib)); err != nil {
				// A missing library only loses textures
				d.warn(fmt.Sprintf("mtllib %s: %v", lib, err))
			}
		}
	case "s", "l", "p":
		// Smoothing groups, lines and points carry nothing we keep
	default:
		d.warn("unsupported statement " + fields[0])
	}
	return nil
}

func (d *objDecoder) warn(msg string) {
	d.warnings = append(d.warnings, fmt.Sprintf("line %d: %s", d.line, msg))
}

func (d *objDecoder) startObject(name string) {
	d.current = &objObject{name: name}
	d.objects = append(d.objects, d.current)
}

func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face with %d vertices", len(fields))
	}
	if d.current == nil {
		d.startObject(defaultObjectName)
	}

	face := make([]objRef, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		ref := objRef{v: -1, vt: -1, vn: -1}
		var err error
		if ref.v, err = objIndex(parts[0], len(d.positions)); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if ref.vt, err = objIndex(parts[1], len(d.uvs)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if ref.vn, err = objIndex(parts[2], len(d.normals)); err != nil {
				return err
			}
		}
		face[i] = ref
	}

	runs := d.current.runs
	if len(runs) == 0 || runs[len(runs)-1].material != d.material {
		d.current.runs = append(runs, &objRun{material: d.material})
	}
	run := d.current.runs[len(d.current.runs)-1]
	run.faces = append(run.faces, face)
	return nil
}

// objIndex converts a one-based or negative (relative) index to zero-based.
func objIndex(s string, count int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("bad index %q", s)
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += count
	default:
		return -1, fmt.Errorf("index 0 is not valid")
	}
	if v < 0 || v >= count {
		return -1, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return v, nil
}

func parseFloats(fields []string, atLeast int) ([]float32, error) {
	if len(fields) < atLeast {
		return nil, fmt.Errorf("expected at least %d values, got %d", atLeast, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// loadMTL reads material definitions. Only texture maps are kept.
func (d *objDecoder) loadMTL(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var cur *Material
	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				continue
			}
			cur = NewMaterial(fields[1])
			if _, dup := d.materials[cur.Name]; !dup {
				d.matOrder = append(d.matOrder, cur.Name)
			}
			d.materials[cur.Name] = cur
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}

		tex := mapFileName(fields[1:])
		if tex == "" {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "map_kd":
			cur.AddTexture(TextureDiffuse, tex)
		case "map_ks":
			cur.AddTexture(TextureSpecular, tex)
		case "map_bump", "bump", "norm":
			cur.AddTexture(TextureNormals, tex)
		case "map_ke":
			cur.AddTexture(TextureEmissive, tex)
		}
	}
	return s.Err()
}

// mapOptionArgs is the fixed argument count of each texture map option.
// -o, -s and -t take one to three numbers and are handled separately.
var mapOptionArgs = map[string]int{
	"-blendu": 1, "-blendv": 1, "-cc": 1, "-clamp": 1, "-imfchan": 1,
	"-texres": 1, "-bm": 1, "-boost": 1, "-type": 1,
	"-mm": 2,
}

// mapFileName skips the leading options of a map statement and returns the
// rest as the file name, which may contain spaces.
func mapFileName(args []string) string {
	i := 0
	for i < len(args) {
		opt := strings.ToLower(args[i])
		if n, ok := mapOptionArgs[opt]; ok {
			i += 1 + n
			continue
		}
		if opt == "-o" || opt == "-s" || opt == "-t" {
			i++
			for k := 0; k < 3 && i < len(args); k++ {
				if _, err := strconv.ParseFloat(args[i], 32); err != nil {
					break
				}
				i++
			}
			continue
		}
		break
	}
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}

// build turns the parsed statements into a scene.
func (d *objDecoder) build(fileName string) (*Scene, error) {
	scene := &Scene{
		Root:     &Node{Name: fileName},
		Warnings: d.warnings,
	}

	matIndex := make(map[string]int, len(d.matOrder))
	for _, name := range d.matOrder {
		matIndex[name] = len(scene.Materials)
		scene.Materials = append(scene.Materials, d.materials[name])
	}
	defaultMat := -1
	resolve := func(name string) int {
		if i, ok := matIndex[name]; ok {
			return i
		}
		if name != "" {
			scene.Warn("unknown material " + name)
		}
		if defaultMat < 0 {
			defaultMat = len(scene.Materials)
			scene.Materials = append(scene.Materials, NewMaterial(defaultMaterialName))
		}
		return defaultMat
	}

	for _, obj := range d.objects {
		node := &Node{Name: obj.name}
		for i, run := range obj.runs {
			if len(run.faces) == 0 {
				continue
			}
			name := obj.name
			if len(obj.runs) > 1 {
				name = fmt.Sprintf("%s_%d", obj.name, i)
			}
			mesh := d.buildMesh(name, run)
			mesh.MaterialIndex = resolve(run.material)
			node.Meshes = append(node.Meshes, len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, mesh)
		}
		scene.Root.Children = append(scene.Root.Children, node)
	}

	if len(scene.Meshes) == 0 {
		scene.MarkIncomplete("file contains no faces")
	}
	return scene, nil
}

// buildMesh de-indexes the v/vt/vn triples of one run into per-vertex arrays.
// UVs are kept when any corner has one; normals only when every corner has one.
func (d *objDecoder) buildMesh(name string, run *objRun) *Mesh {
	hasUV, allNormals := false, true
	for _, f := range run.faces {
		for _, r := range f {
			hasUV = hasUV || r.vt >= 0
			allNormals = allNormals && r.vn >= 0
		}
	}

	mesh := &Mesh{Name: name}
	seen := make(map[objRef]uint32)
	for _, f := range run.faces {
		face := make(Face, len(f))
		for i, r := range f {
			idx, ok := seen[r]
			if !ok {
				idx = uint32(len(mesh.Positions))
				seen[r] = idx
				mesh.Positions = append(mesh.Positions, d.positions[r.v])
				if hasUV {
					var uv mgl32.Vec2
					if r.vt >= 0 {
						uv = d.uvs[r.vt]
					}
					mesh.TexCoords = append(mesh.TexCoords, uv)
				}
				if allNormals {
					mesh.Normals = append(mesh.Normals, d.normals[r.vn])
				}
			}
			face[i] = idx
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	return mesh
}

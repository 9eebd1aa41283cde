// meshinfo is a CLI utility for inspecting serialized .mesh files.
// It decodes records on the CPU and needs no graphics context.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/meshport/internal/engine/model"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshinfo - serialized mesh utility

Usage:
  meshinfo <command> [options]

Commands:
  info <file.mesh>...          Show name, counts and bounds of every record
  dump [-n N] <file.mesh>      Print vertices and triangles (first N of each)
  check <file.mesh>...         Validate files, exit non-zero on the first bad one

Examples:
  meshinfo info export/000_Crate.mesh
  meshinfo dump -n 8 export/000_Crate.mesh
  meshinfo check export/*.mesh`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshinfo info <file.mesh>...")
		os.Exit(1)
	}

	failed := false
	for _, path := range args {
		if err := describeFile(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N vertices and N triangles (0 = all)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshinfo dump [-n N] <file.mesh>")
		os.Exit(1)
	}

	records, err := readFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, rec := range records {
		dump(os.Stdout, rec, *limit)
	}
}

func cmdCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshinfo check <file.mesh>...")
		os.Exit(1)
	}

	for _, path := range args {
		records, err := readFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("ok   %s (%d records)\n", path, len(records))
	}
}

// readFile decodes every record in path. A file must hold at least one.
func readFile(path string) ([]*model.MeshRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRecords(f)
}

func readRecords(r io.Reader) ([]*model.MeshRecord, error) {
	var records []*model.MeshRecord
	for {
		rec, err := model.ReadMeshRecord(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("no mesh records")
	}
	return records, nil
}

func describeFile(w io.Writer, path string) error {
	records, err := readFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:      %s\n", path)
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		describe(w, rec)
	}
	return nil
}

func describe(w io.Writer, rec *model.MeshRecord) {
	fmt.Fprintf(w, "Mesh:      %s\n", rec.Name)
	fmt.Fprintf(w, "Vertices:  %d\n", len(rec.Vertices))
	fmt.Fprintf(w, "Triangles: %d\n", len(rec.Indices)/3)
	fmt.Fprintf(w, "Size:      %.2f KB\n", float64(rec.EncodedSize())/1024)

	b := rec.Bounds()
	if b.Empty() {
		fmt.Fprintln(w, "Bounds:    (empty)")
		return
	}
	fmt.Fprintf(w, "Bounds:    min %s max %s\n", formatVec3(b.Min), formatVec3(b.Max))
}

func dump(w io.Writer, rec *model.MeshRecord, limit int) {
	fmt.Fprintf(w, "# %s\n", rec.Name)

	n := len(rec.Vertices)
	if limit > 0 && limit < n {
		n = limit
	}
	fmt.Fprintf(w, "vertices %d\n", len(rec.Vertices))
	for i, v := range rec.Vertices[:n] {
		fmt.Fprintf(w, "  %4d pos %s uv (%.4g, %.4g) n %s\n",
			i, formatVec3(v.Position), v.TexCoords[0], v.TexCoords[1], formatVec3(v.Normal))
	}

	tris := len(rec.Indices) / 3
	n = tris
	if limit > 0 && limit < n {
		n = limit
	}
	fmt.Fprintf(w, "triangles %d\n", tris)
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "  %4d %d %d %d\n", i, rec.Indices[3*i], rec.Indices[3*i+1], rec.Indices[3*i+2])
	}
}

func formatVec3(v [3]float32) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v[0], v[1], v[2])
}

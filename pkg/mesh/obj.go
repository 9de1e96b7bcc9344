package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

// DefaultGroupName names the group that collects faces appearing before any
// "g" or "o" record.
const DefaultGroupName = "default"

// xzMagic is the stream header of an xz-compressed file.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// Issue records a skipped input line. Err always carries ErrCodeParse.
type Issue struct {
	Line int
	Err  error
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, errors.UserMessage(i.Err))
}

// File is a parsed OBJ file.
type File struct {
	// Groups in order of first appearance.
	Groups []*Group
	// Vertices is the number of vertex records in the whole file.
	Vertices int
	// Issues lists lines that were skipped as malformed.
	Issues []Issue
}

// Names returns the group names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Groups))
	for i, g := range f.Groups {
		names[i] = g.Name
	}
	return names
}

// Group returns the group with the given name.
func (f *File) Group(name string) (*Group, bool) {
	for _, g := range f.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// rawFace holds 0-based global vertex indices and the line it came from.
type rawFace struct {
	line int
	idx  []int
}

// ReadFile opens and parses an OBJ file. Files compressed with xz are
// detected by extension or stream header and decompressed transparently.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "mesh %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var r io.Reader = bytes.NewReader(data)
	if strings.HasSuffix(strings.ToLower(path), ".xz") || bytes.HasPrefix(data, xzMagic) {
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decompress %s", path)
		}
		r = zr
	}
	return Read(r)
}

// Read parses OBJ records from r.
//
// Supported records are "v x y z", "f a b c ..." (the part of each token
// before the first "/" is the 1-based vertex index) and "g name" / "o name".
// Every other record is ignored. Malformed vertex and face lines are skipped
// and reported in [File.Issues]; only I/O failures return an error.
func Read(r io.Reader) (*File, error) {
	var (
		verts   []r3.Vec
		faces   = map[string][]rawFace{}
		order   []string
		current string
		issues  []Issue
	)

	startGroup := func(name string) {
		if _, ok := faces[name]; !ok {
			faces[name] = nil
			order = append(order, name)
		}
		current = name
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				issues = append(issues, Issue{Line: lineNo, Err: err})
				continue
			}
			verts = append(verts, v)

		case "g", "o":
			name := strings.TrimSpace(line[len(fields[0]):])
			if name == "" {
				name = DefaultGroupName
			}
			startGroup(name)

		case "f":
			idx, err := parseFace(fields[1:])
			if err != nil {
				issues = append(issues, Issue{Line: lineNo, Err: err})
				continue
			}
			if current == "" {
				startGroup(DefaultGroupName)
			}
			faces[current] = append(faces[current], rawFace{line: lineNo, idx: idx})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	f := &File{Vertices: len(verts)}
	for _, name := range order {
		g, skipped := localize(name, faces[name], verts)
		f.Groups = append(f.Groups, g)
		issues = append(issues, skipped...)
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	f.Issues = issues
	return f, nil
}

func parseVertex(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, errors.New(errors.ErrCodeParse, "vertex needs 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, errors.New(errors.ErrCodeParse, "invalid coordinate %q", fields[i])
		}
		c[i] = val
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseFace(fields []string) ([]int, error) {
	if len(fields) < 3 {
		return nil, errors.New(errors.ErrCodeParse, "face needs at least 3 vertices, got %d", len(fields))
	}
	idx := make([]int, len(fields))
	for i, tok := range fields {
		head, _, _ := strings.Cut(tok, "/")
		n, err := strconv.Atoi(head)
		if err != nil {
			return nil, errors.New(errors.ErrCodeParse, "invalid face token %q", tok)
		}
		if n <= 0 {
			return nil, errors.New(errors.ErrCodeParse, "unsupported vertex reference %d", n)
		}
		idx[i] = n - 1
	}
	return idx, nil
}

// localize builds the group-local vertex array from the global indices the
// group's faces use and remaps the faces. Faces referencing vertices that
// do not exist are dropped and reported.
func localize(name string, raw []rawFace, verts []r3.Vec) (*Group, []Issue) {
	var issues []Issue
	used := map[int]struct{}{}
	kept := raw[:0:0]
	for _, rf := range raw {
		ok := true
		for _, gi := range rf.idx {
			if gi >= len(verts) {
				issues = append(issues, Issue{
					Line: rf.line,
					Err:  errors.New(errors.ErrCodeParse, "vertex reference %d out of range (%d vertices)", gi+1, len(verts)),
				})
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for _, gi := range rf.idx {
			used[gi] = struct{}{}
		}
		kept = append(kept, rf)
	}

	global := make([]int, 0, len(used))
	for gi := range used {
		global = append(global, gi)
	}
	sort.Ints(global)

	local := make(map[int]int, len(global))
	g := &Group{Name: name, Vertices: make([]r3.Vec, len(global))}
	for li, gi := range global {
		local[gi] = li
		g.Vertices[li] = verts[gi]
	}
	g.Faces = make([][]int, len(kept))
	for fi, rf := range kept {
		face := make([]int, len(rf.idx))
		for k, gi := range rf.idx {
			face[k] = local[gi]
		}
		g.Faces[fi] = face
	}
	return g, issues
}

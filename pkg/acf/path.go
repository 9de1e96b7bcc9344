package acf

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Path is a parsed property path such as "_body/3/_geo_xyz/4,0,2".
type Path struct {
	Segments []*Segment `@@ ( "/" @@ )*`
}

// Segment is either a name or a tuple of indices.
type Segment struct {
	Name  string `  @Ident`
	Index []int  `| @Int ( "," @Int )*`
}

var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-.]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[/,]`},
})

var pathParser = participle.MustBuild[Path](
	participle.Lexer(pathLexer),
)

// ParsePath parses a property path.
func ParsePath(s string) (*Path, error) {
	return pathParser.ParseString("", s)
}

func (s *Segment) String() string {
	if s.Name != "" {
		return s.Name
	}
	parts := make([]string, len(s.Index))
	for i, n := range s.Index {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (p *Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Unit returns the token naming the body in a "_body/<unit>/..." path. It is
// either a single index or a placeholder name such as the "b" of a zeroed
// template.
func (p *Path) Unit() (*Segment, bool) {
	if len(p.Segments) < 3 || p.Segments[0].Name != "_body" {
		return nil, false
	}
	s := p.Segments[1]
	if s.Name == "" && len(s.Index) != 1 {
		return nil, false
	}
	return s, true
}

// Body returns the body index of a "_body/<b>/..." path.
func (p *Path) Body() (int, bool) {
	s, ok := p.Unit()
	if !ok || s.Name != "" {
		return 0, false
	}
	return s.Index[0], true
}

// Key returns the part of a body path after the unit token, for example
// "_locked/i_count".
func (p *Path) Key() string {
	if _, ok := p.Unit(); !ok {
		return ""
	}
	return (&Path{Segments: p.Segments[2:]}).String()
}

// Geo returns the station, slot and axis of a "_body/<unit>/_geo_xyz/i,j,k"
// path. The axis must be 0, 1 or 2.
func (p *Path) Geo() (i, j, k int, ok bool) {
	if _, isBody := p.Unit(); !isBody || len(p.Segments) != 4 || p.Segments[2].Name != "_geo_xyz" {
		return 0, 0, 0, false
	}
	idx := p.Segments[3].Index
	if len(idx) != 3 || idx[2] > 2 {
		return 0, 0, 0, false
	}
	return idx[0], idx[1], idx[2], true
}

// Property is one parsed "P <path> <value>" line.
type Property struct {
	Path  *Path
	Value string
}

// ParseProperty parses a property line. Lines that are not property lines,
// or whose path does not parse, report false and are treated as opaque.
func ParseProperty(line string) (Property, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "P ")
	if !ok {
		return Property{}, false
	}
	rest = strings.TrimLeft(rest, " \t")
	end := strings.IndexAny(rest, " \t")
	if end < 0 {
		return Property{}, false
	}
	path, err := ParsePath(rest[:end])
	if err != nil {
		return Property{}, false
	}
	return Property{Path: path, Value: strings.TrimSpace(rest[end:])}, true
}

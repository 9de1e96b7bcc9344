package mesh

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

func groupAlongZ(name string, n int, length float64) *Group {
	g := &Group{Name: name}
	for i := 0; i < n; i++ {
		g.Vertices = append(g.Vertices, r3.Vec{Z: length * float64(i) / float64(max(n-1, 1))})
	}
	if n >= 3 {
		g.Faces = [][]int{{0, 1, 2}}
	}
	return g
}

func TestSelect(t *testing.T) {
	short := groupAlongZ("nacelle", 12, 2)
	long := groupAlongZ("boom", 12, 9)
	fus := groupAlongZ("fuselage", 12, 5)

	tests := []struct {
		name    string
		groups  []*Group
		want    string
		pick    string
		wantErr errors.Code
	}{
		{"explicit", []*Group{short, long, fus}, "nacelle", "nacelle", ""},
		{"preferred", []*Group{short, long, fus}, "", "fuselage", ""},
		{"largest span", []*Group{short, long}, "", "boom", ""},
		{"missing", []*Group{short}, "tail", "", errors.ErrCodeNotFound},
		{"no groups", nil, "", "", errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Select(&File{Groups: tt.groups}, tt.want)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select() error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if g.Name != tt.pick {
				t.Errorf("Select() = %q, want %q", g.Name, tt.pick)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		group *Group
		want  Kind
	}{
		{groupAlongZ("panel", 4, 1), KindWing},
		{groupAlongZ("strut", 8, 1), KindWing},
		{groupAlongZ("odd", 9, 1), KindUnknown},
		{groupAlongZ("body", 10, 1), KindBody},
		{&Group{Name: "bare", Vertices: make([]r3.Vec, 20)}, KindUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.group); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.group.Name, got, tt.want)
		}
	}
}

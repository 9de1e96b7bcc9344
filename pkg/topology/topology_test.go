package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/internal/meshtest"
	"github.com/matzehuels/obj2acf/pkg/errors"
)

func TestNewGraph(t *testing.T) {
	g, err := NewGraph(5, [][]int{{0, 1, 2, 3}, {0, 0, 1}, {2, 4}})
	require.NoError(t, err)

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, []int{1, 3}, g.Neighbors(0))
	assert.Equal(t, []int{0, 2}, g.Neighbors(1))
	assert.Equal(t, []int{1, 3, 4}, g.Neighbors(2))
	assert.Equal(t, []int{2}, g.Neighbors(4))
	assert.Equal(t, 5, g.EdgeCount())
}

func TestNewGraph_InvalidIndex(t *testing.T) {
	_, err := NewGraph(3, [][]int{{0, 1, 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestLayers(t *testing.T) {
	// 0 - 1 - 2 - 3, plus 4 hanging off 1, plus isolated 5
	g, err := NewGraph(6, [][]int{{0, 1}, {1, 2}, {2, 3}, {1, 4}})
	require.NoError(t, err)

	l := g.Layers(0)
	assert.Equal(t, []int{0, 1, 2, 3, 2, -1}, l.Distance)
	assert.Equal(t, [][]int{{0}, {1}, {2, 4}, {3}}, l.Layers)
	assert.Equal(t, []int{5}, l.Unreached)
	assert.Equal(t, -1, l.Far)
}

func TestByTopology_Body(t *testing.T) {
	body := meshtest.Body("fuselage", 3, 8, 1)

	secs, l, err := ByTopology(body.Vertices, body.Faces, DefaultLimits())
	require.NoError(t, err)
	require.Len(t, secs, 5)

	assert.Equal(t, RoleTip, secs[0].Role)
	assert.Equal(t, []int{0}, secs[0].Vertices)
	for i, s := range secs[1:4] {
		assert.Equal(t, RoleMid, s.Role)
		assert.Equal(t, i+1, s.Distance)
		assert.Len(t, s.Vertices, 8)
	}
	assert.Equal(t, RoleTail, secs[4].Role)
	assert.Equal(t, []int{len(body.Vertices) - 1}, secs[4].Vertices)
	assert.Equal(t, len(body.Vertices)-1, l.Far)
}

func TestByTopology_SingleVertex(t *testing.T) {
	secs, _, err := ByTopology([]r3.Vec{{X: 0.5, Y: 1, Z: 2}}, nil, DefaultLimits())
	require.NoError(t, err)
	require.Len(t, secs, 1)
	assert.Equal(t, RoleTip, secs[0].Role)
	assert.Equal(t, []int{0}, secs[0].Vertices)
}

func TestByTopology_Failures(t *testing.T) {
	body := meshtest.Body("b", 2, 8, 1)

	disconnected := append(append([]r3.Vec(nil), body.Vertices...), r3.Vec{X: 3, Z: 1.5})

	// extra vertex at the tail's distance but lower z
	crowded := append(append([]r3.Vec(nil), body.Vertices...), r3.Vec{X: 0.1, Z: 2.5})
	crowdedFaces := append(append([][]int(nil), body.Faces...), []int{9, 10, len(crowded) - 1})

	thin := meshtest.Body("thin", 2, 6, 1)

	tests := []struct {
		name  string
		verts []r3.Vec
		faces [][]int
		lim   Limits
		msg   string
	}{
		{"empty", nil, nil, DefaultLimits(), "no vertices"},
		{"flat", []r3.Vec{{X: 0}, {X: 1}, {X: 2}}, [][]int{{0, 1, 2}}, DefaultLimits(), "no extent"},
		{"disconnected", disconnected, body.Faces, DefaultLimits(), "not connected"},
		{"crowded tail", crowded, crowdedFaces, DefaultLimits(), "tail layer"},
		{"small ring", thin.Vertices, thin.Faces, DefaultLimits(), "expected 8..16"},
		{"large ring", body.Vertices, body.Faces, Limits{MinRing: 2, MaxRing: 4}, "expected 2..4"},
		{
			"beyond tail",
			[]r3.Vec{{Z: 0}, {Z: 5}, {Z: 1}},
			[][]int{{0, 1}, {1, 2}},
			Limits{MinRing: 1, MaxRing: 16},
			"beyond the tail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ByTopology(tt.verts, tt.faces, tt.lim)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeMalformedTopology), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestBySlices(t *testing.T) {
	var verts []r3.Vec
	// z values deliberately out of order
	for _, z := range []float64{5, 0, 9, 3, 1, 7, 2, 8, 4, 6} {
		verts = append(verts, r3.Vec{Z: z})
	}

	secs, err := BySlices(verts, 4)
	require.NoError(t, err)
	require.Len(t, secs, 4)

	assert.Equal(t, RoleTip, secs[0].Role)
	assert.Equal(t, []int{1}, secs[0].Vertices) // z=0
	assert.Equal(t, []int{4, 6, 3, 8}, secs[1].Vertices)
	assert.Equal(t, []int{0, 9, 5, 7}, secs[2].Vertices)
	assert.Equal(t, RoleTail, secs[3].Role)
	assert.Equal(t, []int{2}, secs[3].Vertices) // z=9
	for i, s := range secs {
		assert.Equal(t, i, s.Distance)
	}
}

func TestBySlices_ShortChunk(t *testing.T) {
	verts := []r3.Vec{{Z: 0}, {Z: 1}, {Z: 2}, {Z: 3}, {Z: 4}}
	secs, err := BySlices(verts, 2)
	require.NoError(t, err)
	require.Len(t, secs, 4)
	assert.Equal(t, []int{1, 2}, secs[1].Vertices)
	assert.Equal(t, []int{3}, secs[2].Vertices)
}

func TestBySlices_Errors(t *testing.T) {
	_, err := BySlices(nil, 4)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedTopology))

	_, err = BySlices([]r3.Vec{{}, {Z: 1}}, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	secs, err := BySlices([]r3.Vec{{Z: 1}}, 4)
	require.NoError(t, err)
	assert.Len(t, secs, 1)
}

func TestStations_Dispatch(t *testing.T) {
	body := meshtest.Body("b", 2, 8, 1)

	secs, err := Stations(body.Vertices, body.Faces, Options{})
	require.NoError(t, err)
	assert.Len(t, secs, 4)

	secs, err = Stations(body.Vertices, body.Faces, Options{Strategy: StrategySlices})
	require.NoError(t, err)
	// 16 interior vertices in one default-sized loop
	assert.Len(t, secs, 3)

	_, err = Stations(body.Vertices, body.Faces, Options{Strategy: "spiral"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyTopology, false},
		{"topology", StrategyTopology, false},
		{"slices", StrategySlices, false},
		{"bfs", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToDOT(t *testing.T) {
	body := meshtest.Body("b", 1, 8, 1)
	_, l, err := ByTopology(body.Vertices, body.Faces, DefaultLimits())
	require.NoError(t, err)
	g, err := NewGraph(len(body.Vertices), body.Faces)
	require.NoError(t, err)

	dot := ToDOT(g, l)
	if !strings.Contains(dot, "graph G {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	if !strings.Contains(dot, "v0 -- v1;") {
		t.Error("ToDOT() output missing nose edge")
	}
	if strings.Count(dot, "rank=same") != 3 {
		t.Errorf("ToDOT() ranks = %d, want 3", strings.Count(dot, "rank=same"))
	}
	if !strings.Contains(dot, "doublecircle") {
		t.Error("ToDOT() output missing far-end marker")
	}

	bare := ToDOT(g, nil)
	if strings.Contains(bare, "rank=same") {
		t.Error("ToDOT(nil layering) should not group ranks")
	}
}

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/obj2acf/internal/meshtest"
	"github.com/matzehuels/obj2acf/pkg/acf"
	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
	"github.com/matzehuels/obj2acf/pkg/mesh"
	"github.com/matzehuels/obj2acf/pkg/observability"
)

const baseACF = `I
1100 version
ACF
PROPERTIES_BEGIN
P acf/_name Test
P _body/0/_locked/i_count 10
P _body/0/_locked/j_count 18
P _body/0/_part_x 0.000000000
P acf/_size 3
PROPERTIES_END
`

func wing() *mesh.Group {
	return &mesh.Group{
		Name:     "wing_l",
		Vertices: []r3.Vec{{X: 1}, {X: 5}, {X: 5, Z: 1}, {X: 1, Z: 1}},
		Faces:    [][]int{{0, 1, 2, 3}},
	}
}

// fixture writes a mesh and a destination file and returns their paths.
func fixture(t *testing.T, groups ...*mesh.Group) (meshPath, acfPath string) {
	t.Helper()
	dir := t.TempDir()
	meshPath = filepath.Join(dir, "plane.obj")
	acfPath = filepath.Join(dir, "plane.acf")
	require.NoError(t, os.WriteFile(meshPath, []byte(meshtest.OBJ(groups...)), 0o644))
	require.NoError(t, os.WriteFile(acfPath, []byte(baseACF), 0o644))
	return meshPath, acfPath
}

func fuselage() *mesh.Group {
	return meshtest.Translate(meshtest.Body("fuselage", 4, 12, 0.5), r3.Vec{X: 2})
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Mesh: "a.obj", ACF: "dir/a.acf"}
	require.NoError(t, opts.ValidateAndSetDefaults())

	assert.Equal(t, DefaultStrategy, opts.Strategy)
	assert.Equal(t, DefaultOrder, opts.Order)
	assert.Equal(t, DefaultMargin, opts.Margin)
	assert.Equal(t, DefaultVertsPerLoop, opts.VertsPerLoop)
	assert.Equal(t, DefaultScale, opts.Scale)
	assert.Equal(t, filepath.Join("dir", "a_mobject_centered_body0.acf"), opts.Output)
	assert.NotNil(t, opts.Logger)

	// idempotent
	require.NoError(t, opts.ValidateAndSetDefaults())
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no mesh", Options{ACF: "a.acf"}},
		{"no acf", Options{Mesh: "a.obj"}},
		{"bad strategy", Options{Mesh: "a.obj", ACF: "a.acf", Strategy: "bfs"}},
		{"bad order", Options{Mesh: "a.obj", ACF: "a.acf", Order: "random"}},
		{"negative margin", Options{Mesh: "a.obj", ACF: "a.acf", Margin: -1}},
		{"bad body", Options{Mesh: "a.obj", ACF: "a.acf", Body: -1}},
		{"bad shape", Options{Mesh: "a.obj", ACF: "a.acf", Shape: grid.Shape{Stations: 0, Slots: 4}}},
		{"overwrite input", Options{Mesh: "a.obj", ACF: "a.acf", Output: "./a.acf"}},
		{"duplicate target", Options{Mesh: "a.obj", ACF: "a.acf", Targets: []Target{{Group: "a", Body: 1}, {Group: "b", Body: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Errorf("ValidateAndSetDefaults() expected error")
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in    string
		body  int
		multi bool
		want  string
	}{
		{"plane.acf", 0, false, "plane_mobject_centered_body0.acf"},
		{"dir/my.plane.acf", 12, false, "dir/my.plane_mobject_centered_body12.acf"},
		{"plane", 3, false, "plane_mobject_centered_body3"},
		{"plane.acf", 0, true, "plane_mobject_centered_bodies.acf"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.in, tt.body, tt.multi); got != tt.want {
			t.Errorf("OutputPath(%q, %d, %v) = %q, want %q", tt.in, tt.body, tt.multi, got, tt.want)
		}
	}
}

func TestConvert_SingleBody(t *testing.T) {
	meshPath, acfPath := fixture(t, wing(), fuselage())

	res, err := NewRunner(nil).Convert(context.Background(), Options{Mesh: meshPath, ACF: acfPath, Name: "Fuselage"})
	require.NoError(t, err)
	require.Len(t, res.Bodies, 1)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.Changed)

	b := res.Bodies[0]
	assert.Equal(t, "fuselage", b.Group)
	assert.Equal(t, 6, b.Stations)
	assert.Equal(t, grid.Shape{Stations: 10, Slots: 18}, b.Shape)
	assert.Equal(t, 14, b.RDim)
	assert.Equal(t, 6, b.SDim)
	assert.InDelta(t, 2*grid.FeetPerMeter, b.PartX, 1e-9)

	assert.Equal(t, OutputPath(acfPath, 0, false), res.Output)
	out, err := acf.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, res.Digest, out.Digest())

	lines := out.Lines()
	assert.Equal(t, "P acf/_name Test", lines[4])
	assert.Equal(t, "P _body/0/_bot_s1 0.000000000", lines[5])
	assert.Equal(t, "P acf/_size 3", lines[len(lines)-2])
	assert.Contains(t, lines, "P _body/0/_descrip Fuselage")
	assert.Contains(t, lines, "P _body/0/_part_x 6.561680000")
	assert.Equal(t, b.Lines, len(out.Extract(acf.BodyPrefix(0))))

	g, err := out.Grid(0, out.Dims(0))
	require.NoError(t, err)
	top := g.At(1, 0)
	assert.InDelta(t, 0, top.X, 1e-9)
	assert.InDelta(t, 0.5*grid.FeetPerMeter, top.Y, 1e-9)
	assert.InDelta(t, grid.FeetPerMeter, top.Z, 1e-9)
	for j := 0; j < 18; j++ {
		assert.Equal(t, r3.Vec{}, g.At(8, j), "padded station 8 slot %d", j)
	}

	// input is untouched
	data, err := os.ReadFile(acfPath)
	require.NoError(t, err)
	assert.Equal(t, baseACF, string(data))
}

func TestConvert_Idempotent(t *testing.T) {
	meshPath, acfPath := fixture(t, fuselage())
	r := NewRunner(nil)

	first, err := r.Convert(context.Background(), Options{Mesh: meshPath, ACF: acfPath})
	require.NoError(t, err)

	second, err := r.Convert(context.Background(), Options{
		Mesh:   meshPath,
		ACF:    first.Output,
		Output: filepath.Join(filepath.Dir(acfPath), "again.acf"),
	})
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Digest, second.Digest)

	a, _ := os.ReadFile(first.Output)
	b, _ := os.ReadFile(second.Output)
	assert.Equal(t, string(a), string(b))
}

func TestConvert_MultiBody(t *testing.T) {
	pod := meshtest.Translate(meshtest.Body("pod", 2, 16, 0.3), r3.Vec{X: -3})
	meshPath, acfPath := fixture(t, fuselage(), wing(), pod)

	res, err := NewRunner(nil).Convert(context.Background(), Options{
		Mesh: meshPath,
		ACF:  acfPath,
		Targets: []Target{
			{Group: "fuselage", Body: 0, Name: "Fuselage"},
			{Group: "wing_l", Body: 1},
			{Group: "tail_fin", Body: 2},
			{Group: "pod", Body: 7, Name: "Pod"},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Bodies, 2)
	assert.Equal(t, 0, res.Bodies[0].Index)
	assert.Equal(t, 7, res.Bodies[1].Index)
	assert.Equal(t, grid.DefaultShape(), res.Bodies[1].Shape)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "wing_l", res.Skipped[0].Group)
	assert.Equal(t, "tail_fin", res.Skipped[1].Group)
	assert.Equal(t, OutputPath(acfPath, 0, true), res.Output)

	out, err := acf.ReadFile(res.Output)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 0}, out.Bodies())
	assert.Equal(t, "P _body/7/_bot_s1 0.000000000", out.Line(4))
}

func TestConvert_FailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name string
		mesh *mesh.Group
		acf  string
		code errors.Code
	}{
		{"ring too small", meshtest.Body("fuselage", 3, 4, 1), baseACF, errors.ErrCodeMalformedTopology},
		{"no section", fuselage(), "I\nP acf/_name x\n", errors.ErrCodeMissingSection},
		{"group not found", meshtest.Body("hull", 3, 12, 1), baseACF, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meshPath, acfPath := fixture(t, tt.mesh)
			require.NoError(t, os.WriteFile(acfPath, []byte(tt.acf), 0o644))

			opts := Options{Mesh: meshPath, ACF: acfPath}
			if tt.code == errors.ErrCodeNotFound {
				opts.Group = "fuselage"
			}
			_, err := NewRunner(nil).Convert(context.Background(), opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Convert() error = %v, want %s", err, tt.code)
			}
			_, statErr := os.Stat(OutputPath(acfPath, 0, false))
			assert.True(t, os.IsNotExist(statErr), "output was written")
		})
	}
}

func TestConvert_SlicesFallback(t *testing.T) {
	meshPath, acfPath := fixture(t, meshtest.Body("fuselage", 3, 4, 1))

	res, err := NewRunner(nil).Convert(context.Background(), Options{
		Mesh:         meshPath,
		ACF:          acfPath,
		Strategy:     "slices",
		VertsPerLoop: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Bodies[0].Stations)
}

func TestConvert_Template(t *testing.T) {
	meshPath, acfPath := fixture(t, fuselage())

	var tmpl []string
	tmpl = append(tmpl, "P _body/0/_descrip template")
	for i := 0; i < 6; i++ {
		for j := 0; j < 18; j++ {
			for k := 0; k < 3; k++ {
				tmpl = append(tmpl, fmt.Sprintf("P _body/0/_geo_xyz/%d,%d,%d 0.000000000", i, j, k))
			}
		}
	}
	tmpl = append(tmpl, "P _body/0/_part_cd 0.075000003", "P _body/0/_part_x 0.000000000", "P _body/0/_r_dim 0")
	tmplPath := filepath.Join(filepath.Dir(acfPath), "body.txt")
	require.NoError(t, os.WriteFile(tmplPath, []byte(strings.Join(tmpl, "\n")+"\n"), 0o644))

	res, err := NewRunner(nil).Convert(context.Background(), Options{
		Mesh:     meshPath,
		ACF:      acfPath,
		Template: tmplPath,
		Body:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, grid.Shape{Stations: 6, Slots: 18}, res.Bodies[0].Shape)

	out, err := acf.ReadFile(res.Output)
	require.NoError(t, err)
	block := out.Extract(acf.BodyPrefix(2))
	require.Len(t, block, len(tmpl))
	assert.Equal(t, "P _body/2/_descrip template", block[0])
	assert.Equal(t, "P _body/2/_part_cd 0.075000003", block[len(block)-3])
	assert.Equal(t, "P _body/2/_part_x 6.561680000", block[len(block)-2])
	assert.Equal(t, "P _body/2/_r_dim 14", block[len(block)-1])
	assert.Equal(t, "P _body/2/_descrip template", out.Line(4))
}

func TestConvert_DryRun(t *testing.T) {
	meshPath, acfPath := fixture(t, fuselage())

	res, err := NewRunner(nil).Convert(context.Background(), Options{Mesh: meshPath, ACF: acfPath, DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	_, statErr := os.Stat(res.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvert_Cancelled(t *testing.T) {
	meshPath, acfPath := fixture(t, fuselage())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil).Convert(ctx, Options{Mesh: meshPath, ACF: acfPath})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (h *recordingHooks) OnStageComplete(_ context.Context, _, stage string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func TestConvert_Hooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	meshPath, acfPath := fixture(t, fuselage())
	res, err := NewRunner(nil).Convert(context.Background(), Options{Mesh: meshPath, ACF: acfPath})
	require.NoError(t, err)

	assert.Equal(t, []string{
		StageReadMesh, StageReadACF, StageSelect, StageStations,
		StageCanonicalize, StageGrid, StagePatch, StageWrite,
	}, h.stages)
	for _, s := range h.stages {
		assert.Contains(t, res.Stats.Stages, s)
	}
}

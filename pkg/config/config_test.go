package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

const tomlJob = `
mesh = "plane.obj"
acf = "plane.acf"
order = "ascending"
margin = 0.5

[limits]
max_ring = 24

[[bodies]]
mesh = "fuselage"
index = 0
name = "Fuselage"

[[bodies]]
mesh = "nacelle_l"
index = 2
`

const yamlJob = `
mesh: plane.obj
acf: plane.acf
group: pod
body: 3
strategy: slices
verts_per_loop: 24
shape: 10x12
`

func TestParse_TOML(t *testing.T) {
	job, err := Parse([]byte(tomlJob), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "plane.obj", job.Mesh)
	assert.Equal(t, "ascending", job.Order)
	require.NotNil(t, job.Margin)
	assert.Equal(t, 0.5, *job.Margin)
	assert.Equal(t, Limits{MinRing: 8, MaxRing: 24, MinHalf: 5, MaxHalf: 9}, job.Limits)
	assert.Equal(t, []Body{
		{Mesh: "fuselage", Index: 0, Name: "Fuselage"},
		{Mesh: "nacelle_l", Index: 2},
	}, job.Bodies)
	assert.Nil(t, job.Body)
}

func TestParse_YAML(t *testing.T) {
	job, err := Parse([]byte(yamlJob), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "pod", job.Group)
	require.NotNil(t, job.Body)
	assert.Equal(t, 3, *job.Body)
	assert.Equal(t, "slices", job.Strategy)
	assert.Equal(t, 24, job.VertsPerLoop)
	assert.Equal(t, "10x12", job.Shape)
	assert.Empty(t, job.Bodies)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		job  string
		code errors.Code
	}{
		{"bad strategy", `strategy = "bfs"`, errors.ErrCodeInvalidInput},
		{"bad order", `order = "random"`, errors.ErrCodeInvalidInput},
		{"bad shape", `shape = "20"`, errors.ErrCodeInvalidInput},
		{"negative margin", `margin = -1.0`, errors.ErrCodeInvalidInput},
		{"body out of range", `body = 1000`, errors.ErrCodeInvalidInput},
		{"inverted limits", "[limits]\nmin_ring = 20\nmax_ring = 10", errors.ErrCodeInvalidInput},
		{"duplicate body", "[[bodies]]\nmesh = \"a\"\nindex = 1\n[[bodies]]\nmesh = \"b\"\nindex = 1", errors.ErrCodeInvalidInput},
		{"unnamed body", "[[bodies]]\nindex = 1", errors.ErrCodeInvalidInput},
		{"malformed", `mesh = `, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.job), FormatTOML)
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlJob), 0o644))

	job, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plane.obj"), job.Mesh)
	assert.Equal(t, filepath.Join(dir, "plane.acf"), job.ACF)
	assert.Empty(t, job.Output)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("job.ini")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml": FormatTOML,
		"a.TOML": FormatTOML,
		"a.yaml": FormatYAML,
		"a.yml":  FormatYAML,
		"a.json": FormatYAML,
	} {
		got, err := DetectFormat(path)
		if err != nil || got != want {
			t.Errorf("DetectFormat(%q) = %q, %v, want %q", path, got, err, want)
		}
	}
}

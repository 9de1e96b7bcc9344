// Package config loads conversion job files.
//
// A job file describes one conversion run: the mesh, the destination file,
// stationing parameters, and optionally a mapping from mesh groups to body
// slots for multi-body runs. TOML and YAML are both accepted; the format is
// chosen by file extension.
//
// Example (TOML):
//
//	mesh = "plane.obj"
//	acf = "plane.acf"
//	strategy = "topology"
//	order = "planemaker"
//
//	[limits]
//	min_ring = 8
//	max_ring = 16
//
//	[[bodies]]
//	mesh = "fuselage"
//	index = 0
//	name = "Fuselage"
//
//	[[bodies]]
//	mesh = "nacelle_l"
//	index = 2
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
	"github.com/matzehuels/obj2acf/pkg/ring"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// Format is a job file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Job is a conversion job. YAML decoding goes through JSON, so both tag
// sets are needed.
type Job struct {
	Mesh     string `toml:"mesh" json:"mesh"`
	ACF      string `toml:"acf" json:"acf"`
	Output   string `toml:"output" json:"output,omitempty"`
	Template string `toml:"template" json:"template,omitempty"`

	// Group and Body select a single conversion when Bodies is empty.
	Group string `toml:"group" json:"group,omitempty"`
	Body  *int   `toml:"body" json:"body,omitempty"`
	Name  string `toml:"name" json:"name,omitempty"`

	Strategy     string   `toml:"strategy" json:"strategy,omitempty"`
	VertsPerLoop int      `toml:"verts_per_loop" json:"verts_per_loop,omitempty"`
	Margin       *float64 `toml:"margin" json:"margin,omitempty"`
	Order        string   `toml:"order" json:"order,omitempty"`
	Shape        string   `toml:"shape" json:"shape,omitempty"`
	Limits       Limits   `toml:"limits" json:"limits"`

	Bodies []Body `toml:"bodies" json:"bodies,omitempty"`
}

// Limits bounds ring and half-ring sizes. Zero values take the defaults.
type Limits struct {
	MinRing int `toml:"min_ring" json:"min_ring,omitempty"`
	MaxRing int `toml:"max_ring" json:"max_ring,omitempty"`
	MinHalf int `toml:"min_half" json:"min_half,omitempty"`
	MaxHalf int `toml:"max_half" json:"max_half,omitempty"`
}

// Body maps a mesh group onto a destination body slot.
type Body struct {
	Mesh  string `toml:"mesh" json:"mesh"`
	Index int    `toml:"index" json:"index"`
	Name  string `toml:"name" json:"name,omitempty"`
}

// DetectFormat returns the format implied by path's extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported job file %q (want .toml, .yaml or .yml)", path)
}

// Load reads and validates the job file at path. Relative mesh, acf, output
// and template paths are resolved against the job file's directory.
func Load(path string) (*Job, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "job %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	job, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	job.resolve(filepath.Dir(path))
	return job, nil
}

// Parse decodes and validates a job.
func Parse(data []byte, format Format) (*Job, error) {
	var job Job
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &job); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML job")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &job); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML job")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown job format %q", format)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

func (j *Job) resolve(dir string) {
	for _, p := range []*string{&j.Mesh, &j.ACF, &j.Output, &j.Template} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate fills zero limits with defaults and checks every field.
func (j *Job) Validate() error {
	if _, err := topology.ParseStrategy(j.Strategy); err != nil {
		return err
	}
	if _, err := grid.ParseOrder(j.Order); err != nil {
		return err
	}
	if j.Shape != "" {
		if _, err := grid.ParseShape(j.Shape); err != nil {
			return err
		}
	}
	if j.VertsPerLoop < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "verts_per_loop must not be negative, got %d", j.VertsPerLoop)
	}
	if j.Margin != nil && *j.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative, got %g", *j.Margin)
	}
	if j.Body != nil {
		if err := errors.ValidateBodyIndex(*j.Body); err != nil {
			return err
		}
	}
	if j.Group != "" {
		if err := errors.ValidateGroupName(j.Group); err != nil {
			return err
		}
	}

	def := topology.DefaultLimits()
	if j.Limits.MinRing == 0 {
		j.Limits.MinRing = def.MinRing
	}
	if j.Limits.MaxRing == 0 {
		j.Limits.MaxRing = def.MaxRing
	}
	if j.Limits.MinHalf == 0 {
		j.Limits.MinHalf = ring.DefaultMinHalf
	}
	if j.Limits.MaxHalf == 0 {
		j.Limits.MaxHalf = ring.DefaultMaxHalf
	}
	if j.Limits.MinRing < 1 || j.Limits.MinRing > j.Limits.MaxRing {
		return errors.New(errors.ErrCodeInvalidInput, "invalid ring limits %d..%d", j.Limits.MinRing, j.Limits.MaxRing)
	}
	if j.Limits.MinHalf < 1 || j.Limits.MinHalf > j.Limits.MaxHalf {
		return errors.New(errors.ErrCodeInvalidInput, "invalid half-ring limits %d..%d", j.Limits.MinHalf, j.Limits.MaxHalf)
	}

	seen := make(map[int]string, len(j.Bodies))
	for _, b := range j.Bodies {
		if err := errors.ValidateGroupName(b.Mesh); err != nil {
			return err
		}
		if err := errors.ValidateBodyIndex(b.Index); err != nil {
			return err
		}
		if prev, ok := seen[b.Index]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "body %d mapped twice (%s, %s)", b.Index, prev, b.Mesh)
		}
		seen[b.Index] = b.Mesh
	}
	return nil
}

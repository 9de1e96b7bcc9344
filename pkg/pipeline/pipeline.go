// Package pipeline provides the conversion pipeline for obj2acf.
//
// This package chains the mesh reader, topology builder, ring canonicalizer,
// grid mapper and config patcher into one run that the CLI (and tests) can
// drive with a single [Options] value. By centralizing this logic, every
// entry point applies the same defaults and the same failure policy.
//
// # Stages
//
// A run executes these stages in order, entirely in memory:
//
//  1. read_mesh: parse the OBJ file (malformed lines become issues)
//  2. read_acf: parse the destination file and check its section markers
//  3. per body: select, stations, canonicalize, grid, patch
//  4. write: render the patched document and replace the output atomically
//
// Nothing is written unless every earlier stage succeeded.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Convert(ctx, pipeline.Options{
//	    Mesh: "plane.obj",
//	    ACF:  "plane.acf",
//	    Body: 0,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Output)
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
	"github.com/matzehuels/obj2acf/pkg/mesh"
	"github.com/matzehuels/obj2acf/pkg/ring"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and job files
// =============================================================================

const (
	// DefaultStrategy is the stationing strategy. Topology stationing is
	// strict; slices is the explicit fallback for meshes it rejects.
	DefaultStrategy = string(topology.StrategyTopology)

	// DefaultVertsPerLoop is the chunk size of slice stationing.
	DefaultVertsPerLoop = topology.DefaultVertsPerLoop

	// DefaultMargin is added to the bounding radius, in feet.
	DefaultMargin = grid.DefaultMargin

	// DefaultOrder is the geometry emission order on both axes.
	DefaultOrder = grid.OrderPlaneMaker

	// DefaultScale converts mesh meters to feet.
	DefaultScale = grid.FeetPerMeter
)

// Stage names reported to hooks and logs.
const (
	StageReadMesh     = "read_mesh"
	StageReadACF      = "read_acf"
	StageSelect       = "select"
	StageStations     = "stations"
	StageCanonicalize = "canonicalize"
	StageGrid         = "grid"
	StagePatch        = "patch"
	StageWrite        = "write"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Target maps one mesh group onto one destination body.
type Target struct {
	// Group is the mesh group. Empty selects "fuselage" or the longest group.
	Group string `json:"group,omitempty"`
	Body  int    `json:"body"`
	// Name is written as the body description when non-empty.
	Name string `json:"name,omitempty"`
}

// Options contains all configuration for a conversion run.
type Options struct {
	// Inputs and outputs
	Mesh   string `json:"mesh"`
	ACF    string `json:"acf"`
	Output string `json:"output,omitempty"` // derived from ACF when empty
	// Template is a file holding a zero-valued block for one body. When set,
	// blocks are produced by template substitution instead of the built-in
	// layout, and the grid shape comes from the template.
	Template string `json:"template,omitempty"`

	// Single-body target, used when Targets is empty.
	Group string `json:"group,omitempty"`
	Body  int    `json:"body"`
	Name  string `json:"name,omitempty"`

	// Targets lists the bodies of a multi-body run. Groups that are missing,
	// look like wings or are too small are skipped with a warning.
	Targets []Target `json:"targets,omitempty"`

	// Stationing
	Strategy     string          `json:"strategy,omitempty"`
	VertsPerLoop int             `json:"verts_per_loop,omitempty"`
	Limits       topology.Limits `json:"limits"`
	MinHalf      int             `json:"min_half,omitempty"`
	MaxHalf      int             `json:"max_half,omitempty"`

	// Grid mapping
	Shape  grid.Shape `json:"shape"` // overrides the destination's lock table when set
	Margin float64    `json:"margin,omitempty"`
	Order  string     `json:"order,omitempty"`
	Scale  float64    `json:"scale,omitempty"`

	// DryRun builds the patched document without writing it.
	DryRun bool `json:"dry_run,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a conversion run.
type Result struct {
	// RunID identifies the run in logs and hook events.
	RunID string

	// Output is the destination path, written unless DryRun was set.
	Output string

	// Digest is the BLAKE3 digest of the patched document; Changed reports
	// whether it differs from the input document.
	Digest  string
	Changed bool

	Bodies  []BodyResult
	Skipped []Skip
	// Issues are the malformed mesh lines that were ignored.
	Issues []mesh.Issue

	Stats Stats
}

// BodyResult summarizes one converted body.
type BodyResult struct {
	Group    string
	Index    int
	Stations int // stations found in the mesh
	Shape    grid.Shape
	RDim     int
	SDim     int
	Radius   float64
	PartX    float64
	Lines    int
}

// Skip records a multi-body target that was not converted.
type Skip struct {
	Group  string
	Body   int
	Reason string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices int
	Groups   int
	Stages   map[string]time.Duration
	Total    time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks that a stationing strategy is valid.
func ValidateStrategy(s string) error {
	_, err := topology.ParseStrategy(s)
	return err
}

// ValidateOrder checks that an emission order is valid.
func ValidateOrder(o string) error {
	_, err := grid.ParseOrder(o)
	return err
}

// OutputPath derives the destination file name from the input file:
// "<base>_mobject_centered_body<b><ext>" for a single body and
// "<base>_mobject_centered_bodies<ext>" for a multi-body run.
func OutputPath(acfPath string, body int, multi bool) string {
	ext := filepath.Ext(acfPath)
	base := strings.TrimSuffix(acfPath, ext)
	if multi {
		return base + "_mobject_centered_bodies" + ext
	}
	return fmt.Sprintf("%s_mobject_centered_body%d%s", base, body, ext)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mesh == "" {
		return errors.New(errors.ErrCodeInvalidInput, "mesh file is required")
	}
	if o.ACF == "" {
		return errors.New(errors.ErrCodeInvalidInput, "acf file is required")
	}

	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}
	if err := ValidateOrder(o.Order); err != nil {
		return err
	}
	if o.VertsPerLoop == 0 {
		o.VertsPerLoop = DefaultVertsPerLoop
	}
	if o.VertsPerLoop < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "verts per loop must be positive, got %d", o.VertsPerLoop)
	}
	if o.Limits == (topology.Limits{}) {
		o.Limits = topology.DefaultLimits()
	}
	if o.MinHalf == 0 && o.MaxHalf == 0 {
		o.MinHalf, o.MaxHalf = ring.DefaultMinHalf, ring.DefaultMaxHalf
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative, got %g", o.Margin)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Shape != (grid.Shape{}) {
		if err := o.Shape.Validate(); err != nil {
			return err
		}
	}

	if err := o.validateTargets(); err != nil {
		return err
	}
	if o.Output == "" {
		o.Output = OutputPath(o.ACF, o.Body, o.Multi())
	}
	if err := errors.ValidatePath(o.Output, o.ACF); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateTargets() error {
	if !o.Multi() {
		if o.Group != "" {
			if err := errors.ValidateGroupName(o.Group); err != nil {
				return err
			}
		}
		return errors.ValidateBodyIndex(o.Body)
	}
	seen := make(map[int]bool, len(o.Targets))
	for _, t := range o.Targets {
		if err := errors.ValidateGroupName(t.Group); err != nil {
			return err
		}
		if err := errors.ValidateBodyIndex(t.Body); err != nil {
			return err
		}
		if seen[t.Body] {
			return errors.New(errors.ErrCodeInvalidInput, "body %d is targeted twice", t.Body)
		}
		seen[t.Body] = true
	}
	return nil
}

// Multi reports whether this is a multi-body run.
func (o *Options) Multi() bool { return len(o.Targets) > 0 }

// targets returns the bodies to convert.
func (o *Options) targets() []Target {
	if o.Multi() {
		return o.Targets
	}
	return []Target{{Group: o.Group, Body: o.Body, Name: o.Name}}
}

// StationOptions returns the stationing configuration.
func (o *Options) StationOptions() topology.Options {
	return topology.Options{
		Strategy:     topology.Strategy(o.Strategy),
		Limits:       o.Limits,
		VertsPerLoop: o.VertsPerLoop,
	}
}

// RingOptions returns the canonicalization configuration. Slice stationing
// produces arbitrary chunk sizes, so it is never bounded.
func (o *Options) RingOptions() ring.Options {
	opts := ring.DefaultOptions()
	opts.MinHalf, opts.MaxHalf = o.MinHalf, o.MaxHalf
	if topology.Strategy(o.Strategy) == topology.StrategySlices {
		return opts.Lenient()
	}
	return opts
}

// Emission returns the geometry emission order.
func (o *Options) Emission() grid.Emission {
	order, err := grid.ParseOrder(o.Order)
	if err != nil {
		order = grid.PlaneMaker
	}
	return grid.Emission{Stations: order, Slots: order}
}

// GridOptions returns the grid mapping configuration.
func (o *Options) GridOptions() grid.Options {
	return grid.Options{Scale: o.Scale, SnapEps: grid.DefaultSnapEps}
}

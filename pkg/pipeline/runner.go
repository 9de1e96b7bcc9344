package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/obj2acf/pkg/acf"
	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
	"github.com/matzehuels/obj2acf/pkg/mesh"
	"github.com/matzehuels/obj2acf/pkg/observability"
	"github.com/matzehuels/obj2acf/pkg/ring"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// Runner executes conversions.
//
// The Runner is stateless except for its logger - it doesn't store results.
// Multiple goroutines can safely use the same Runner with different options;
// each run is single-threaded.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// run carries the state of one conversion.
type run struct {
	id     string
	logger *log.Logger
	opts   Options
	stats  *Stats
}

// stage times fn and reports it to hooks and the log. Cancellation is
// checked before every stage.
func (r *run) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	observability.Pipeline().OnStageStart(ctx, r.id, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	observability.Pipeline().OnStageComplete(ctx, r.id, name, d, err)
	r.stats.Stages[name] += d
	r.logger.Debug("stage", "name", name, "duration", d, "ok", err == nil)
	return err
}

// Convert runs the full pipeline: it reads the mesh and destination file,
// converts every target body, and writes the patched document once at the
// end. On error nothing is written.
func (r *Runner) Convert(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	rn := &run{
		id:     id,
		logger: opts.Logger.With("run", id[:8]),
		opts:   opts,
		stats:  &Stats{Stages: make(map[string]time.Duration)},
	}
	start := time.Now()
	result := &Result{RunID: id, Output: opts.Output}

	var mf *mesh.File
	err := rn.stage(ctx, StageReadMesh, func() error {
		var err error
		mf, err = mesh.ReadFile(opts.Mesh)
		return err
	})
	if err != nil {
		return nil, err
	}
	observability.File().OnRead(ctx, "mesh", opts.Mesh, fileSize(opts.Mesh))
	result.Issues = mf.Issues
	rn.stats.Vertices, rn.stats.Groups = mf.Vertices, len(mf.Groups)
	rn.logger.Info("read mesh", "path", opts.Mesh, "groups", len(mf.Groups), "vertices", mf.Vertices)
	for _, is := range mf.Issues {
		rn.logger.Warn("skipped mesh line", "line", is.Line, "err", is.Err)
	}

	var doc *acf.Document
	var tmpl []string
	err = rn.stage(ctx, StageReadACF, func() error {
		var err error
		if doc, err = acf.ReadFile(opts.ACF); err != nil {
			return err
		}
		if _, _, err = doc.Section(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "acf %s", opts.ACF)
		}
		if opts.Template == "" {
			return nil
		}
		t, err := acf.ReadFile(opts.Template)
		if err != nil {
			return err
		}
		tmpl = append([]string{}, t.Lines()...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.File().OnRead(ctx, "acf", opts.ACF, fileSize(opts.ACF))
	original := doc

	for _, t := range opts.targets() {
		body, err := rn.convertBody(ctx, mf, doc, tmpl, t)
		if err != nil {
			if opts.Multi() && skippable(err) {
				reason := errors.UserMessage(err)
				rn.logger.Warn("skipping body", "group", t.Group, "body", t.Body, "reason", reason)
				observability.Pipeline().OnSkip(ctx, id, t.Group, reason)
				result.Skipped = append(result.Skipped, Skip{Group: t.Group, Body: t.Body, Reason: reason})
				continue
			}
			return nil, err
		}

		var block []string
		err = rn.stage(ctx, StagePatch, func() error {
			var err error
			if tmpl != nil {
				block, err = acf.Template(tmpl, body.Body)
			} else {
				block, err = body.Block(opts.Emission())
			}
			if err != nil {
				return err
			}
			doc, err = doc.Replace(acf.BodyPrefix(body.Index), block)
			return err
		})
		if err != nil {
			return nil, err
		}
		body.result.Lines = len(block)
		result.Bodies = append(result.Bodies, body.result)
		rn.logger.Info("converted body",
			"group", body.result.Group,
			"body", body.Index,
			"stations", body.result.Stations,
			"slots", body.result.Shape.Slots,
			"radius", fmt.Sprintf("%.3f", body.Radius))
	}
	if len(result.Bodies) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no body was converted")
	}

	result.Digest = doc.Digest()
	result.Changed = result.Digest != original.Digest()

	if !opts.DryRun {
		err = rn.stage(ctx, StageWrite, func() error {
			return acf.WriteFile(opts.Output, doc)
		})
		if err != nil {
			return nil, err
		}
		observability.File().OnWrite(ctx, opts.Output, len(doc.Bytes()), result.Digest)
		rn.logger.Info("wrote", "path", opts.Output, "digest", result.Digest[:12], "changed", result.Changed)
	}

	rn.stats.Total = time.Since(start)
	result.Stats = *rn.stats
	return result, nil
}

// mappedBody is a grid body plus its summary.
type mappedBody struct {
	*grid.Body
	result BodyResult
}

func (r *run) convertBody(ctx context.Context, mf *mesh.File, doc *acf.Document, tmpl []string, t Target) (*mappedBody, error) {
	var g *mesh.Group
	err := r.stage(ctx, StageSelect, func() error {
		var err error
		if g, err = mesh.Select(mf, t.Group); err != nil {
			return err
		}
		if !r.opts.Multi() {
			return nil
		}
		switch mesh.Classify(g) {
		case mesh.KindWing:
			return errors.New(errors.ErrCodeUnsupported, "group %q looks like a wing (%d vertices)", g.Name, g.Len())
		case mesh.KindUnknown:
			return errors.New(errors.ErrCodeUnsupported, "group %q is too small for a body (%d vertices)", g.Name, g.Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	centered, offset := g.RecenterX()
	r.logger.Debug("recentered", "group", g.Name, "offset", offset)

	var secs []topology.Section
	err = r.stage(ctx, StageStations, func() error {
		var err error
		secs, err = topology.Stations(centered.Vertices, centered.Faces, r.opts.StationOptions())
		return err
	})
	if err != nil {
		return nil, inGroup(err, g.Name)
	}

	shape := r.opts.Shape
	switch {
	case tmpl != nil:
		if shape, err = acf.TemplateShape(tmpl); err != nil {
			return nil, err
		}
	case shape == (grid.Shape{}):
		shape = doc.Dims(t.Body)
	}

	var stations []ring.Station
	err = r.stage(ctx, StageCanonicalize, func() error {
		var err error
		stations, err = ring.CanonicalizeAll(centered.Vertices, secs, shape.Slots, r.opts.RingOptions())
		return err
	})
	if err != nil {
		return nil, inGroup(err, g.Name)
	}
	if len(stations) > shape.Stations {
		r.logger.Warn("truncating stations", "group", g.Name, "stations", len(stations), "target", shape.Stations)
	}

	var body *grid.Body
	err = r.stage(ctx, StageGrid, func() error {
		gr, err := grid.Build(stations, shape, r.opts.GridOptions())
		if err != nil {
			return err
		}
		body = grid.NewBody(t.Body, t.Name, stations, gr, offset, r.opts.Scale, r.opts.Margin)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &mappedBody{
		Body: body,
		result: BodyResult{
			Group:    g.Name,
			Index:    t.Body,
			Stations: len(stations),
			Shape:    shape,
			RDim:     body.RDim,
			SDim:     body.SDim,
			Radius:   body.Radius,
			PartX:    body.PartX,
		},
	}, nil
}

// skippable reports whether a multi-body run may continue past err.
func skippable(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeUnsupported:
		return true
	}
	return false
}

// inGroup adds the group name to coded errors.
func inGroup(err error, group string) error {
	code := errors.GetCode(err)
	if code == "" {
		return err
	}
	return errors.Wrap(code, err, "group %q", group)
}

func fileSize(path string) int {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(fi.Size())
}

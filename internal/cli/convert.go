package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obj2acf/pkg/config"
	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
	"github.com/matzehuels/obj2acf/pkg/mesh"
	"github.com/matzehuels/obj2acf/pkg/pipeline"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

// convertFlags holds the flag values of the convert command. Flags that
// were set explicitly override the job file.
type convertFlags struct {
	config       string
	group        string
	body         int
	name         string
	output       string
	template     string
	strategy     string
	vertsPerLoop int
	margin       float64
	order        string
	shape        string
	dryRun       bool
	pick         bool
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert [mesh.obj] [aircraft.acf]",
		Short: "Map a mesh body onto an .acf body grid",
		Long: `Map a mesh body onto an .acf body grid.

The convert command reads a Wavefront OBJ file, picks a group (the one named
--group, else "fuselage", else the longest along Z), splits it into
stations, canonicalizes every cross-section ring and writes the resulting
geometry into a copy of the .acf file. Nothing is written if any step fails.

Both files may instead come from a TOML or YAML job file (--config), which
can also map several mesh groups onto several bodies at once.`,
		Example: `  obj2acf convert plane.obj plane.acf
  obj2acf convert plane.obj plane.acf --group nacelle_l --body 2 --name "Left nacelle"
  obj2acf convert --config job.toml --dry-run`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			if flags.pick {
				if opts.Group, err = interactiveGroup(opts); err != nil {
					return err
				}
			}
			return c.runConvert(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "job file (.toml, .yaml)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output .acf file (default: <acf>_mobject_centered_body<N>.acf)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "convert without writing the output")

	// Target flags
	cmd.Flags().StringVarP(&flags.group, "group", "g", "", "mesh group to convert (default: fuselage, else the longest)")
	cmd.Flags().IntVarP(&flags.body, "body", "b", 0, "destination body index")
	cmd.Flags().StringVar(&flags.name, "name", "", "body description written to _descrip")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "choose the mesh group interactively")
	cmd.Flags().StringVar(&flags.template, "template", "", "zero-valued body block to fill instead of the built-in layout")

	// Stationing flags
	cmd.Flags().StringVar(&flags.strategy, "strategy", pipeline.DefaultStrategy, "stationing strategy: topology, slices")
	cmd.Flags().IntVar(&flags.vertsPerLoop, "verts-per-loop", pipeline.DefaultVertsPerLoop, "vertices per station (slices strategy)")

	// Grid flags
	cmd.Flags().Float64Var(&flags.margin, "margin", pipeline.DefaultMargin, "feet added to the bounding radius")
	cmd.Flags().StringVar(&flags.order, "order", pipeline.DefaultOrder, "geometry line order: planemaker, ascending")
	cmd.Flags().StringVar(&flags.shape, "shape", "", "grid shape STATIONSxSLOTS (default: from the .acf lock table)")

	cmd.MarkFlagsMutuallyExclusive("pick", "group")
	_ = cmd.RegisterFlagCompletionFunc("group", completeGroups)

	return cmd
}

// options merges the job file, the positional arguments and the changed
// flags, in that order of precedence from lowest to highest.
func (f *convertFlags) options(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		job, err := config.Load(f.config)
		if err != nil {
			return opts, err
		}
		if opts, err = jobOptions(job); err != nil {
			return opts, err
		}
	}
	if len(args) > 0 {
		opts.Mesh = args[0]
	}
	if len(args) > 1 {
		opts.ACF = args[1]
	}
	if opts.Mesh == "" || opts.ACF == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "a mesh and an acf file are required (as arguments or in --config)")
	}

	set := cmd.Flags().Changed
	if set("output") {
		opts.Output = f.output
	}
	if set("group") {
		opts.Group = f.group
	}
	if set("body") {
		opts.Body = f.body
	}
	if set("name") {
		opts.Name = f.name
	}
	if set("template") {
		opts.Template = f.template
	}
	if set("strategy") || opts.Strategy == "" {
		opts.Strategy = f.strategy
	}
	if set("verts-per-loop") || opts.VertsPerLoop == 0 {
		opts.VertsPerLoop = f.vertsPerLoop
	}
	if set("margin") || opts.Margin == 0 {
		opts.Margin = f.margin
	}
	if set("order") || opts.Order == "" {
		opts.Order = f.order
	}
	if set("shape") {
		shape, err := grid.ParseShape(f.shape)
		if err != nil {
			return opts, err
		}
		opts.Shape = shape
	}
	opts.DryRun = f.dryRun
	return opts, nil
}

// jobOptions converts a validated job into pipeline options.
func jobOptions(job *config.Job) (pipeline.Options, error) {
	opts := pipeline.Options{
		Mesh:         job.Mesh,
		ACF:          job.ACF,
		Output:       job.Output,
		Template:     job.Template,
		Group:        job.Group,
		Name:         job.Name,
		Strategy:     job.Strategy,
		VertsPerLoop: job.VertsPerLoop,
		Order:        job.Order,
		Limits:       topology.Limits{MinRing: job.Limits.MinRing, MaxRing: job.Limits.MaxRing},
		MinHalf:      job.Limits.MinHalf,
		MaxHalf:      job.Limits.MaxHalf,
	}
	if job.Body != nil {
		opts.Body = *job.Body
	}
	if job.Margin != nil {
		opts.Margin = *job.Margin
	}
	if job.Shape != "" {
		shape, err := grid.ParseShape(job.Shape)
		if err != nil {
			return opts, err
		}
		opts.Shape = shape
	}
	for _, b := range job.Bodies {
		opts.Targets = append(opts.Targets, pipeline.Target{Group: b.Mesh, Body: b.Index, Name: b.Name})
	}
	return opts, nil
}

// interactiveGroup lets the user pick the group of a single-body run.
func interactiveGroup(opts pipeline.Options) (string, error) {
	if opts.Multi() {
		return "", errors.New(errors.ErrCodeInvalidInput, "--pick cannot be used with a multi-body job")
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return "", errors.New(errors.ErrCodeInvalidInput, "--pick needs an interactive terminal")
	}
	mf, err := mesh.ReadFile(opts.Mesh)
	if err != nil {
		return "", err
	}
	return pickGroup(mf)
}

// runConvert executes the pipeline and prints a summary.
func (c *CLI) runConvert(ctx context.Context, opts pipeline.Options) error {
	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, "Converting...")
	spin.Start()
	result, err := c.newRunner().Convert(ctx, opts)
	spin.Stop()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printError("Conversion failed: %s", errors.UserMessage(err))
		return err
	}
	prog.done(fmt.Sprintf("Converted %d bodies", len(result.Bodies)))

	for _, b := range result.Bodies {
		printSuccess("Body %s %s %s", StyleNumber.Render(fmt.Sprint(b.Index)), StyleDim.Render(iconArrow), b.Group)
		printStats(b.Stations, b.Lines, result.Changed)
		printKeyValue("shape", b.Shape.String())
		printKeyValue("r/s dim", fmt.Sprintf("%d / %d", b.RDim, b.SDim))
		printKeyValue("radius", fmt.Sprintf("%.3f ft", b.Radius))
		printKeyValue("part x", fmt.Sprintf("%.3f ft", b.PartX))
	}
	for _, s := range result.Skipped {
		printWarning("Skipped %s (body %d): %s", s.Group, s.Body, s.Reason)
	}
	if n := len(result.Issues); n > 0 {
		printDetail("%d malformed mesh lines ignored (use -v to list them)", n)
	}

	if opts.DryRun {
		printInfo("Dry run, nothing written (blake3 %s)", result.Digest[:12])
		return nil
	}
	printFile(result.Output)
	printNewline()
	printNextStep("Inspect a station", appName, "extract", result.Output, "--body", fmt.Sprint(result.Bodies[0].Index), "--station", "1")
	return nil
}

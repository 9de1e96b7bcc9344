package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/mesh"
	"github.com/matzehuels/obj2acf/pkg/topology"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// topologyCommand creates the topology command for debugging stationing.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		group  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "topology [mesh.obj]",
		Short: "Draw the vertex graph and station layers of a mesh group",
		Long: `Draw the vertex graph and station layers of a mesh group.

The graph is laid out left to right by breadth-first distance from the nose
vertex, so each column is one candidate station. Vertices that cannot be
reached from the nose are drawn in red. The stationing verdict is printed
alongside, which helps explain why a group was rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatDOT && format != formatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be 'dot' or 'svg')", format)
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return runTopology(ctx, args[0], group, format, output)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "mesh group (default: fuselage, else the longest)")
	_ = cmd.RegisterFlagCompletionFunc("group", completeGroups)
	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runTopology(ctx context.Context, path, group, format, output string) error {
	logger := loggerFromContext(ctx)

	mf, err := mesh.ReadFile(path)
	if err != nil {
		return err
	}
	g, err := mesh.Select(mf, group)
	if err != nil {
		return err
	}

	graph, err := topology.NewGraph(g.Len(), g.Faces)
	if err != nil {
		return err
	}
	secs, layering, stErr := topology.ByTopology(g.Vertices, g.Faces, topology.DefaultLimits())
	if layering == nil {
		layering = graph.Layers(topology.Nose(g.Vertices))
	}
	logger.Debug("layered", "group", g.Name, "vertices", graph.Len(), "edges", graph.EdgeCount(), "layers", len(layering.Layers))

	data := []byte(topology.ToDOT(graph, layering))
	if format == formatSVG {
		if data, err = topology.RenderSVG(ctx, string(data)); err != nil {
			return err
		}
	}

	if output == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	// stdout carries only the drawing.
	if stErr != nil {
		logger.Warn("topology stationing fails", "group", g.Name, "reason", errors.UserMessage(stErr))
	} else {
		logger.Info("topology stationing succeeds", "group", g.Name, "stations", len(secs))
	}
	if output != "" {
		printFile(output)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obj2acf/pkg/mesh"
)

// scanCommand creates the scan command for listing mesh groups.
func (c *CLI) scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [mesh.obj]",
		Short: "List the groups of an OBJ file",
		Long: `List the groups of an OBJ file.

Each group is shown with its vertex and face counts, its extent along Z and
whether it looks like a body, a wing panel or neither. The group convert
would pick by default is marked with an arrow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := mesh.ReadFile(args[0])
			if err != nil {
				return err
			}
			rows := scanRows(mf)
			if len(rows) == 0 {
				printWarning("No groups with faces in %s", args[0])
				return nil
			}
			printTable([]string{"", "group", "vertices", "faces", "z span", "kind"}, rows)
			printDetail("%d vertices, %d groups, %d malformed lines", mf.Vertices, len(mf.Groups), len(mf.Issues))
			for _, is := range mf.Issues {
				c.Logger.Debug("malformed line", "issue", is.String())
			}
			return nil
		},
	}
}

// scanRows builds one table row per group, marking the default selection.
func scanRows(mf *mesh.File) [][]string {
	def, _ := mesh.Select(mf, "")
	rows := make([][]string, 0, len(mf.Groups))
	for _, g := range mf.Groups {
		mark := ""
		if g == def {
			mark = iconArrow
		}
		rows = append(rows, []string{
			mark,
			g.Name,
			fmt.Sprint(g.Len()),
			fmt.Sprint(len(g.Faces)),
			fmt.Sprintf("%.3f", g.SpanZ()),
			mesh.Classify(g).String(),
		})
	}
	return rows
}

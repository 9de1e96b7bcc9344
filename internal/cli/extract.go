package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obj2acf/pkg/acf"
	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/grid"
)

// extractCommand creates the extract command for inspecting body lines.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		body     int
		station  int
		stations bool
		save     bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "extract [aircraft.acf]",
		Short: "Print a body's lines from an .acf file",
		Long: `Print a body's lines from an .acf file.

Without further flags every line of the body is printed in file order. With
--station only the geometry lines of that station are printed, and --save
writes them to <acf>_body<B>_station_<N>.txt next to the input (or to
--output). With --stations a per-station summary of the body grid is shown.`,
		Example: `  obj2acf extract plane.acf --body 0 --station 1
  obj2acf extract plane.acf --body 0 --station 1 --save
  obj2acf extract plane.acf --stations`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateBodyIndex(body); err != nil {
				return err
			}
			doc, err := acf.ReadFile(args[0])
			if err != nil {
				return err
			}

			switch {
			case stations:
				return printStations(doc, body)
			case cmd.Flags().Changed("station"):
				lines := doc.Extract(acf.StationPrefix(body, station))
				if len(lines) == 0 {
					return errors.New(errors.ErrCodeNotFound, "body %d has no lines for station %d", body, station)
				}
				if !save && output == "" {
					fmt.Println(strings.Join(lines, "\n"))
					return nil
				}
				if output == "" {
					output = stationPath(args[0], body, station)
				}
				if err := acf.WriteFile(output, acf.NewDocument(lines)); err != nil {
					return err
				}
				printSuccess("Extracted %d lines", len(lines))
				printFile(output)
				return nil
			}

			lines := doc.Extract(acf.BodyPrefix(body))
			if len(lines) == 0 {
				return errors.New(errors.ErrCodeNotFound, "body %d not found (have %v)", body, doc.Bodies())
			}
			fmt.Println(strings.Join(lines, "\n"))
			c.Logger.Debug("extracted", "body", body, "lines", len(lines))
			return nil
		},
	}

	cmd.Flags().IntVarP(&body, "body", "b", 0, "body index")
	cmd.Flags().IntVar(&station, "station", 0, "print only this station's geometry lines")
	cmd.Flags().BoolVar(&stations, "stations", false, "summarize the body grid per station")
	cmd.Flags().BoolVar(&save, "save", false, "write the station lines to a file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file for the station lines (implies --save)")
	cmd.MarkFlagsMutuallyExclusive("station", "stations")

	return cmd
}

// stationPath derives "<base>_body<b>_station_<i>.txt" from the .acf path.
func stationPath(acfPath string, body, station int) string {
	base := strings.TrimSuffix(acfPath, filepath.Ext(acfPath))
	return fmt.Sprintf("%s_body%d_station_%d.txt", base, body, station)
}

// printStations prints one row per station of body b: its Z position, how
// many slots are off the axis and the widest slot radius.
func printStations(doc *acf.Document, b int) error {
	shape := doc.Dims(b)
	g, err := doc.Grid(b, shape)
	if err != nil {
		return err
	}
	if g.Real == 0 {
		return errors.New(errors.ErrCodeNotFound, "body %d has no geometry", b)
	}
	printInfo("Body %d %s %s grid, %d stations populated", b, StyleDim.Render(iconArrow), shape, g.Real)
	printTable([]string{"station", "z", "slots", "max radius"}, stationRows(g))
	return nil
}

func stationRows(g *grid.Grid) [][]string {
	rows := make([][]string, 0, g.Real)
	for i := 0; i < g.Real; i++ {
		var off int
		var widest float64
		for j := 0; j < g.Shape.Slots; j++ {
			p := g.At(i, j)
			r := math.Hypot(p.X, p.Y)
			if r > 0 {
				off++
			}
			widest = max(widest, r)
		}
		rows = append(rows, []string{
			fmt.Sprint(i),
			grid.FormatValue(g.At(i, 0).Z),
			fmt.Sprint(off),
			grid.FormatValue(widest),
		})
	}
	return rows
}

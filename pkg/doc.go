// Package pkg provides the core libraries for obj2acf mesh conversion.
//
// # Overview
//
// obj2acf takes a body of revolution (a fuselage, nacelle or pod) exported
// as a Wavefront OBJ mesh and rewrites it as the fixed station × slot
// geometry grid that X-Plane .acf files use for bodies. The pkg directory
// is organized into three areas:
//
//  1. Geometry: [mesh], [topology], [ring], [grid]
//  2. Destination file: [acf]
//  3. Orchestration: [pipeline], [config], [observability], [errors]
//
// # Architecture
//
// The data flow of one conversion:
//
//	OBJ file
//	   ↓
//	[mesh] package (parse groups, select the body group, recenter X)
//	   ↓
//	[topology] package (vertex graph + BFS layering → stations)
//	   ↓
//	[ring] package (half-ring extraction, mirroring, canonical order)
//	   ↓
//	[grid] package (stations × slots grid in feet, property lines)
//	   ↓
//	[acf] package (replace the body's block, write atomically)
//
// # Quick Start
//
//	mf, _ := mesh.ReadFile("plane.obj")
//	g, _ := mesh.Select(mf, "")
//	g, offset := g.RecenterX()
//
//	secs, _ := topology.Stations(g.Vertices, g.Faces, topology.Options{})
//	stations, _ := ring.CanonicalizeAll(g.Vertices, secs, 18, ring.DefaultOptions())
//
//	gr, _ := grid.Build(stations, grid.DefaultShape(), grid.DefaultOptions())
//	body := grid.NewBody(0, "Fuselage", stations, gr, offset, grid.FeetPerMeter, grid.DefaultMargin)
//	block, _ := body.Block(grid.PlaneMakerEmission())
//
//	doc, _ := acf.ReadFile("plane.acf")
//	doc, _ = doc.Replace(acf.BodyPrefix(0), block)
//	_ = acf.WriteFile("plane_out.acf", doc)
//
// [pipeline.Runner] performs the same steps with validation, hooks and
// multi-body support, and is what the CLI uses.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/ring/...     # Specific package
//	go test -run Example ./... # Examples only
//
// [mesh]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/mesh
// [topology]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/topology
// [ring]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/ring
// [grid]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/grid
// [acf]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/acf
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/pipeline#Runner
// [config]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/obj2acf/pkg/errors
package pkg

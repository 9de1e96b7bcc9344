// Package topology derives ordered stations from an unordered vertex set.
//
// # Graph
//
// [NewGraph] turns polygon faces into an undirected adjacency graph stored as
// a plain index-to-neighbours table. [Graph.Layers] layers it breadth-first
// from a root vertex.
//
// # Stationing
//
// Two strategies produce the same [Section] contract:
//
//   - [ByTopology] roots the layering at the nose (minimum z) and requires the
//     tail (maximum z) to sit alone in the last layer, with every interior
//     layer inside [Limits]. Any violation is a MALFORMED_TOPOLOGY error.
//   - [BySlices] sorts along z and chunks the interior into fixed-size loops.
//     It is the fallback for meshes whose faces do not describe clean rings
//     and never rejects a layer.
//
// # Debug output
//
// [ToDOT] writes the graph with one rank per layer; [RenderSVG] renders it
// with Graphviz.
package topology

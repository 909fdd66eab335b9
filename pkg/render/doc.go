// Package render converts rendered diagrams between output formats.
//
// Diagrams are produced as SVG by subpackages such as [hierarchy]. The
// [ToPDF] and [ToPNG] functions convert that SVG using the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := hierarchy.RenderSVG(hierarchy.ToDOT(store, hierarchy.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is not installed both functions return an UNSUPPORTED
// error with installation instructions.
//
// [hierarchy]: github.com/matzehuels/cardspace/pkg/render/hierarchy
package render

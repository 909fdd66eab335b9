// Package layout computes target placements for cards and frames.
//
// Every function here is pure: it takes ids and a spec and returns
// [Transform] values. Animating objects toward those targets is the job of
// the tween package; deciding which layout applies is the engine's.
//
// # Layouts
//
// [Baseline] is the square grid shared by the four top-level modes. Cards
// are placed in store iteration order on a grid of side ceil(sqrt(n)),
// centred on the origin, all at one depth.
//
// [Children] is the drill-down grid: a row-major block starting at a fixed
// offset with a configurable column count. Missing children are reported,
// not placed.
//
// [GroupRows] is the category-grouped layout used for proportional-block
// selections: one row per category in canonical order, the category frame
// first and its members beside it.
//
// [Board] places navigation frames on a two-column board.
package layout

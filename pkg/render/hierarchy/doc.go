// Package hierarchy renders the card tree as a node-link diagram.
//
// # Overview
//
// Every entity becomes a box and every child reference an arrow from parent
// to child. Folder cards are drawn as tabs, cards with child overrides get a
// bold outline, and references to ids the store does not contain are drawn
// as dashed grey boxes so broken curation is easy to spot.
//
// # Usage
//
//	dot := hierarchy.ToDOT(store, hierarchy.Options{Root: "選挙区", Depth: 2})
//	svg, err := hierarchy.RenderSVG(dot)
//
// # Options
//
//   - Root: start from one entity instead of every top-level entity
//   - Depth: stop after this many levels below the roots (0 means no limit)
//   - Mode: fill boxes with the colour stored for this mode
//   - Detailed: add the content kind and child count to each label
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package hierarchy

// Package frame manages the navigation frames and resolves frame selections.
//
// # Frames
//
// A frame is a labelled plane keyed by a catalog token: a district
// ("shousenkyoku", "hireiku"), a category ("zimin", ...) or an alphabetic
// bucket ("a", "ka", ...). [NewRegistry] creates one frame per
// [catalog.Catalog.Frames] entry, hidden at a random point near the origin.
// Frames are never destroyed; the registry shows them on boards, moves the
// selected one aside and sends the rest back along the depth axis.
//
// # Resolution
//
// [Resolve] turns a frame key plus the currently highlighted region into the
// next set of cards to show:
//
//   - single-member district: region name → geography key → its children
//   - proportional block: the nationwide block's children, grouped by category
//   - category: the category entity's children
//   - alphabetic bucket: the union of every member glyph entity's children
//
// Anything that cannot be resolved yields a RESOLUTION_MISS error. Callers
// log it and carry on; a miss never changes the scene.
package frame

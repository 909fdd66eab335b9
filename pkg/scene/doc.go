// Package scene defines the rendering boundary and the visual object set.
//
// [Backend] is everything the engine needs from a renderer: create and
// remove objects, move and recolour them, toggle visibility, and hit-test a
// ray. [Memory] implements it without drawing anything; the server and the
// tests run the full engine against it.
//
// [Set] maps entity ids to their representations ([Reps], one handle per
// detail [Level]). Representations are created on first need, start hidden
// at a random point inside the spawn cube, and are destroyed only when the
// entity is deleted. Entities never reference their visuals; the set is a
// derived index keyed by id.
package scene

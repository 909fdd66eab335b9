// Package entity holds the canonical card records and the store that owns them.
//
// # Entities
//
// An [Entity] is one addressable card. Besides its display text it carries a
// position and a colour for every arrangement [Mode], so switching between
// layouts never loses a user's manual placement. The five slots are struct
// fields rather than map entries, which makes "every entity has every slot"
// hold by construction.
//
// Hierarchy lives in [ChildrenInfo]: an ordered list of child ids, optional
// per-child overrides (position and colour used when the parent is drilled
// into), and an optional saved camera pose.
//
// The content kind is a closed set ([ContentKind]) inferred once when an
// entity enters the store; downstream code switches over the kind instead of
// probing optional fields.
//
// # Store
//
// [Store] keeps entities in insertion order (the order drives the baseline
// grid) and serialises to a JSON object keyed by id. [Store.Import] replaces
// the whole dataset atomically: a malformed document leaves the store as it
// was. [Store.Export] produces the same document pretty-printed with a
// four-space indent.
//
// The store performs no layout or animation. After any mutation that should
// survive a restart, callers invoke [Store.Persist], which runs the hook
// installed with [WithPersist].
package entity

// Package engine is the arrangement and interaction engine.
//
// An [Engine] ties the entity store to the scene: it computes layouts,
// animates cards and frames toward them, turns pointer and key input into
// drags, drill-downs and anchor selections, and writes the results back
// into the store.
//
// # Threading
//
// The engine is single-threaded. Every method must be called from the
// goroutine that owns it; animation advances only inside [Engine.Tick].
// Hosts with concurrent inputs (the HTTP server) wrap the engine in a
// [Loop], which runs the tick and funnels every operation onto one
// goroutine.
//
// # Arrangement context
//
// [ArrangementContext] holds the active mode (one of the four top-level
// modes or the id of a drilled entity), the anchored entity, and the
// pointer session. The session moves Idle → PendingStart → Dragging → Idle;
// pointer-down on a near card drills or anchors instead and never opens a
// session.
//
// Drag commits go into the entity's slot for the active top-level mode, or,
// while drilled and anchored, into the parent's child override record.
// Drags move the card by the difference between successive unprojected
// pointer positions at the card's captured depth, so the card never jumps
// when the drag starts.
//
// # Errors
//
// Missing entities, frame misses and invariant violations are logged and
// skipped. Only malformed input (a bad colour or content kind in an edit,
// an unknown mode) is returned as an error.
package engine

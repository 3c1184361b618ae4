// Package history implements the keyframed temporal store.
//
// Every mutable fact about a package (a symbol's declaration, its
// documentation, whether a module exists, ...) is a slot. A slot's history is a
// backward-linked chain of keyframes inside a shared append-only Buffer, and a
// slot is represented only by its Head.
//
// Lookups walk the chain from the head, so a point-in-time query costs
// O(revisions of that slot), not O(total history).
//
// INVARIANTS:
//   - Walking previous links from a head visits strictly decreasing buffer
//     indices and terminates at a self-linked keyframe.
//   - Keyframes are never deleted. Retired facts stay queryable.
//   - Versions are allocated by Clock and never reused.
//
// None of the operations in this package fail. Absence is a value.
package history

// Package address provides stable integer identities and the shared path
// interning table used as the name-resolution key space.
//
// Identities are (owner, offset) pairs, never pointers, so symbols, hosts
// and members can refer to each other without reference cycles.
//
// A Route is the interned key (namespace, stem, leaf) under which composites
// are filed. Two semantically equal paths always produce the same Route.
package address

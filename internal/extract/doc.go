// Package extract turns configuration blocks into inventory entities.
//
// Every field is described by a pattern plus a fallback value, so a block
// with missing or unusual lines still yields an entity with defaults.
// A numeric field that does not fit in an int keeps its fallback and is
// reported as a diagnostic naming the field. Only a block whose extraction
// panics is left out of the inventory.
package extract

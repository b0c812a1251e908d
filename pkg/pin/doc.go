// Package pin tracks digit-by-digit PIN entry.
//
// A Tracker holds a fixed number of optional digit slots. Append fills the
// first empty slot, RemoveLast clears the last filled one, so the filled
// slots always form a contiguous prefix and entry order is preserved.
//
// Tracker is deliberately not safe for concurrent use. It is owned by a
// single verification flow, which serializes access under its own lock.
package pin

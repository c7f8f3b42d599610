// Package idprop implements the dynamic property store attached to data
// blocks and nested structs ("ID properties").
//
// A Property is a tagged union. Its Type never changes after construction:
// resizing an array keeps the element tag, and replacing a value of another
// kind means replacing the entry in its group. Groups keep insertion order.
//
// Entries carry a Ghost flag. A ghost entry exists in the store (typically
// copied from a template or a weaker layer, see MergeLayers) but was never
// explicitly assigned, so property access reports it as unset. Touch clears
// the flag.
//
// Booleans have no dedicated tag and are stored as Int entries.
package idprop

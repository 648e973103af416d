// Package craft provides the data model for a 2D mechanical structure.
//
// A [Craft] is an index-addressed graph:
//
//   - [Node]: a point mass with position history (Verlet style)
//   - [Rod]: a constraint between two nodes, referenced by index
//
// Rods point at nodes, nodes never point at rods. Removing a node is
// therefore pure index bookkeeping, done by the editor package.
//
// # Persistence
//
// Crafts round trip through JSON with node order, rod order and every
// attribute preserved:
//
//	c, err := craft.LoadFile("bridge.json")
//	if errors.Is(err, craft.ErrInvalidFormat) {
//	    // file exists but is not a valid craft
//	}
//
// # Thread Safety
//
// A Craft is NOT thread-safe. It is owned by exactly one of the editor or
// the solver at a time.
package craft

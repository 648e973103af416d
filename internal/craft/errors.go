package craft

import "errors"

// Domain errors for craft operations.
var (
	// ErrInvalidFormat indicates persisted data that does not describe a valid craft.
	ErrInvalidFormat = errors.New("craft: invalid format")

	// ErrNodeNotFound indicates a node index outside the node collection.
	ErrNodeNotFound = errors.New("craft: node not found")

	// ErrRodNotFound indicates a rod index outside the rod collection.
	ErrRodNotFound = errors.New("craft: rod not found")

	// ErrUnknownKind indicates a node or rod kind outside the declared set.
	ErrUnknownKind = errors.New("craft: unknown kind")

	// ErrSelfLoop indicates a rod whose endpoints are the same node.
	ErrSelfLoop = errors.New("craft: rod endpoints must differ")
)

package lattice

import (
	"errors"

	"github.com/jward/lattice/internal/model"
)

// Sentinel errors returned by query operations. Wrap-aware: test with
// errors.Is, the returned errors carry position or language context.
var (
	// ErrNoElement means no declaration or reference exists at the position
	// (or qualified name) a query started from.
	ErrNoElement = errors.New("no element at position")

	// ErrNoProvider means no available provider family claims the element's
	// language for the requested capability.
	ErrNoProvider = errors.New("no provider for language")

	// ErrNotTypeOrMethod means the resolved element's kind does not fit the
	// operation (a field passed to a call hierarchy, say).
	ErrNotTypeOrMethod = errors.New("element is not a type or method")

	// ErrIndexNotReady means the index has not been built or linked yet.
	// Recoverable: index, then retry.
	ErrIndexNotReady = model.ErrIndexNotReady
)

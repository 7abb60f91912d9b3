package ranking

import "errors"

var (
	// ErrInvalidMode indicates an unknown fusion mode.
	ErrInvalidMode = errors.New("invalid fusion mode")

	// ErrInvalidWeight indicates an interpolation weight outside [0,1].
	ErrInvalidWeight = errors.New("fusion weight must be between 0 and 1")

	// ErrInvalidRRFK indicates a non-positive RRF rank constant.
	ErrInvalidRRFK = errors.New("rrf rank constant must be positive")

	// ErrInvalidPoolSize indicates a non-positive pool size.
	ErrInvalidPoolSize = errors.New("pool size must be positive")

	// ErrInvalidMaxDocs indicates a non-positive document cap.
	ErrInvalidMaxDocs = errors.New("max docs must be positive")

	// ErrInvalidPolicy indicates a SelectionPolicy that cannot be applied.
	ErrInvalidPolicy = errors.New("invalid selection policy")
)

package chat

import "errors"

var (
	// ErrRetrieverRequired is returned when no retriever is provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrStoreRequired is returned when no conversation store is provided.
	ErrStoreRequired = errors.New("conversation store required")

	// ErrPipelineRequired is returned when a ranking or prompt stage is missing.
	ErrPipelineRequired = errors.New("fuser, selector and prompt builder required")
)

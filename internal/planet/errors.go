package planet

import "errors"

var (
	// ErrIndexOutOfBounds is the expected signal for "outside this chunk" or
	// "outside the planet". Position tracking uses it to detect chunk crossings.
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrNotFound means the chunk or tile is not resident.
	ErrNotFound = errors.New("not found")
	// ErrChunkProblem wraps a failed chunk index resolution.
	ErrChunkProblem = errors.New("chunk problem")
	// ErrSpriteRenderNotFound means no render handle is registered for a tile type.
	ErrSpriteRenderNotFound = errors.New("sprite render not found")
)

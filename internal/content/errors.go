package content

import "errors"

var (
	// ErrRootNotFound indicates the configured content root does not exist.
	ErrRootNotFound = errors.New("content root not found")

	// ErrWalkFailed indicates traversal of the content root failed.
	ErrWalkFailed = errors.New("content directory walk failed")

	// ErrReadFailed indicates reading a discovered document failed.
	ErrReadFailed = errors.New("content file read failed")

	// ErrFrontMatter indicates a document's front matter could not be parsed.
	ErrFrontMatter = errors.New("invalid front matter")

	// ErrRenderFailed indicates the Markdown body could not be rendered.
	ErrRenderFailed = errors.New("markdown render failed")
)

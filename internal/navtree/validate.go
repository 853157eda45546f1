package navtree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is wrapped by every ValidatePath failure.
var ErrInvalidPath = errors.New("invalid site path")

// ValidatePath checks that path is non-empty, starts and ends with "/" and
// has no empty, "." or ".." segments. "/" itself is valid.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	case path == RootPath:
		return nil
	case !strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPath, path)
	case !strings.HasSuffix(path, "/"):
		return fmt.Errorf("%w: %q must end with /", ErrInvalidPath, path)
	case strings.Contains(path, "//"):
		return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
	}
	for _, seg := range Segments(path) {
		if seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q has a relative segment", ErrInvalidPath, path)
		}
	}
	return nil
}

// Package errors provides classified error primitives used across sitebuilder.
//
// A ClassifiedError carries a category (config, content, render, ...), a
// severity, and structured context such as the failing document path. The
// CLI adapter maps categories to process exit codes so a failed build
// terminates with a diagnostic naming the document or file involved.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "load document").
//		WithContext("file", relPath).
//		Build()
package errors

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "sitebuilder.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "sitebuilder.yaml" {
			t.Errorf("expected context file=sitebuilder.yaml, got %v", file)
		}
		if got := err.Error(); got != "[config] invalid configuration file=sitebuilder.yaml" {
			t.Errorf("unexpected Error() %q", got)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("stage load_content: %w", ContentError("read failed").Build())

		if _, ok := AsClassified(err); !ok {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryContent) {
			t.Error("expected error to have content category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("unclassified errors default to internal")
		}
	})

	t.Run("WithContext returns a copy", func(t *testing.T) {
		base := RenderError("template").Build()
		derived := base.WithContext("document", "/a/")
		if _, ok := base.Context().Get("document"); ok {
			t.Error("base context must not be mutated")
		}
		if v, _ := derived.Context().GetString("document"); v != "/a/" {
			t.Errorf("expected derived context, got %q", v)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrapping", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryFileSystem, "write index.html").
			WithContext("path", "/blog/").
			Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if err.Severity() != SeverityError {
			t.Errorf("expected default severity error, got %s", err.Severity())
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"ContentError", ContentError("test"), CategoryContent, SeverityFatal},
			{"RenderError", RenderError("test"), CategoryRender, SeverityFatal},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal},
			{"NotifyError", NotifyError("test"), CategoryNotify, SeverityWarning},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	ctx2 := ErrorContext{}.Set("key2", "value2").Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	value1, _ := merged.GetString("key1")
	value2, _ := merged.GetString("key2")
	shared, _ := merged.GetString("shared")
	if value1 != "value1" || value2 != "value2" || shared != "overridden" {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if _, ok := ErrorContext(nil).Get("x"); ok {
		t.Error("nil context must report missing keys")
	}
}

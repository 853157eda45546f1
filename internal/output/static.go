package output

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TransformFunc may rewrite a static file's contents before it is written.
// It returns data unchanged for files it does not handle.
type TransformFunc func(rel string, data []byte) ([]byte, error)

// CopyDir copies every regular file below src into the output root, keeping
// relative paths. Hidden files and directories are skipped. A missing src
// copies nothing.
func (w *Writer) CopyDir(src string, transform TransformFunc) (int, error) {
	if src == "" {
		return 0, nil
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		if os.IsNotExist(err) {
			return 0, nil
		}
		if err == nil {
			return 0, fmt.Errorf("static path %s is not a directory", src)
		}
		return 0, err
	}

	copied := 0
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != src && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if transform != nil {
			if data, err = transform(rel, data); err != nil {
				return fmt.Errorf("transform %s: %w", rel, err)
			}
		}
		if err := w.WriteFile(rel, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

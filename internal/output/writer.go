// Package output writes a build's files into a staging directory and
// promotes it over the previous site once the build succeeded.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/andybalholm/brotli"
	natomic "github.com/natefinch/atomic"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

var (
	// ErrNotStarted is returned when writing before Begin.
	ErrNotStarted = errors.New("output writer not started")

	// ErrStagingMissing indicates the staging directory vanished before promotion.
	ErrStagingMissing = errors.New("staging directory missing")

	// ErrPathEscapes is returned for relative paths that leave the output root.
	ErrPathEscapes = errors.New("path escapes output directory")

	// ErrEncode is wrapped when a value cannot be encoded as JSON.
	ErrEncode = errors.New("encode json")
)

const filePerm = 0o644

// compressible extensions get a .br sibling when precompression is on.
var compressible = map[string]bool{
	".html": true,
	".json": true,
	".xml":  true,
	".css":  true,
	".js":   true,
	".svg":  true,
	".txt":  true,
}

// Writer places build output. Write methods are safe for concurrent use
// between Begin and Commit.
type Writer struct {
	dir         string
	stageDir    string
	inPlace     bool
	precompress bool
	started     bool

	files atomic.Int64
	bytes atomic.Int64
}

// NewWriter returns a writer for dir. With inPlace set files go straight into
// dir; otherwise they are staged in "<dir>_stage".
func NewWriter(dir string, inPlace, precompress bool) *Writer {
	return &Writer{dir: filepath.Clean(dir), inPlace: inPlace, precompress: precompress}
}

// Dir is the final output directory.
func (w *Writer) Dir() string { return w.dir }

// Root is the directory currently written to.
func (w *Writer) Root() string {
	if w.inPlace {
		return w.dir
	}
	return w.stageDir
}

// Files is the number of files written so far, .br siblings included.
func (w *Writer) Files() int { return int(w.files.Load()) }

// Bytes is the number of bytes written so far.
func (w *Writer) Bytes() int64 { return w.bytes.Load() }

// Begin prepares the target directory. A stale staging directory from an
// earlier crashed build is removed first.
func (w *Writer) Begin() error {
	if w.inPlace {
		if err := os.MkdirAll(w.dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		w.started = true
		return nil
	}

	stage := w.dir + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fmt.Errorf("remove stale staging directory: %w", err)
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	w.stageDir = stage
	w.started = true
	slog.Debug("Initialized staging directory", slog.String("staging", stage), logfields.Output(w.dir))
	return nil
}

// WriteFile atomically writes data to rel below the output root, creating
// parent directories.
func (w *Writer) WriteFile(rel string, data []byte) error {
	target, err := w.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := natomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	// Temp files are created 0600; published files must be world readable.
	if err := os.Chmod(target, filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", rel, err)
	}
	w.files.Add(1)
	w.bytes.Add(int64(len(data)))

	if w.precompress && compressible[strings.ToLower(filepath.Ext(rel))] {
		if err := w.writeBrotli(target, data); err != nil {
			return fmt.Errorf("precompress %s: %w", rel, err)
		}
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func (w *Writer) WriteJSON(rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrEncode, rel, err)
	}
	return w.WriteFile(rel, append(data, '\n'))
}

func (w *Writer) writeBrotli(target string, data []byte) error {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := bw.Write(data); err != nil {
		_ = bw.Close()
		return err
	}
	if err := bw.Close(); err != nil {
		return err
	}
	if err := natomic.WriteFile(target+".br", &buf); err != nil {
		return err
	}
	if err := os.Chmod(target+".br", filePerm); err != nil {
		return err
	}
	w.files.Add(1)
	w.bytes.Add(int64(buf.Len()))
	return nil
}

func (w *Writer) resolve(rel string) (string, error) {
	if !w.started {
		return "", ErrNotStarted
	}
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, rel)
	}
	return filepath.Join(w.Root(), clean), nil
}

// Commit promotes the staging directory to the output directory. The
// previous output is moved to "<dir>.prev" for the swap and removed after.
func (w *Writer) Commit() error {
	if !w.started {
		return ErrNotStarted
	}
	if w.inPlace {
		w.started = false
		return nil
	}
	if _, err := os.Stat(w.stageDir); err != nil {
		return fmt.Errorf("%w: %w", ErrStagingMissing, err)
	}

	prev := w.dir + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("remove previous backup: %w", err)
	}
	hadPrevious := false
	if _, err := os.Stat(w.dir); err == nil {
		if err := os.Rename(w.dir, prev); err != nil {
			return fmt.Errorf("backup existing output: %w", err)
		}
		hadPrevious = true
	}
	if err := os.Rename(w.stageDir, w.dir); err != nil {
		if hadPrevious {
			if rerr := os.Rename(prev, w.dir); rerr != nil {
				slog.Error("Failed to restore previous output", logfields.Path(prev), logfields.Error(rerr))
			}
		}
		return fmt.Errorf("promote staging: %w", err)
	}
	w.stageDir = ""
	w.started = false

	if hadPrevious {
		if err := os.RemoveAll(prev); err != nil {
			slog.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
		}
	}
	slog.Info("Promoted staging directory", logfields.Output(w.dir))
	return nil
}

// Abort removes the staging directory after a failed build. The previous
// output is left untouched. In-place writes are not rolled back.
func (w *Writer) Abort() {
	w.started = false
	if w.inPlace || w.stageDir == "" {
		return
	}
	dir := w.stageDir
	w.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
		return
	}
	slog.Debug("Removed staging directory after abort", slog.String("staging", dir))
}

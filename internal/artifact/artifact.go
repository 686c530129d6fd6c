// Package artifact writes and reads the generated source file.
//
// WriteFile always replaces the whole file. It writes a temporary file in
// the destination directory, syncs it and renames it over the target, so a
// failed run leaves either the previous artifact or the new one, never a
// partial file.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPath is the artifact location when none is configured.
const DefaultPath = "queryhelpers_generated.go"

// DefaultPerm is the file mode of a newly written artifact.
const DefaultPerm fs.FileMode = 0o644

// WriteError reports a failed artifact write.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte, perm fs.FileMode) error {
	if perm == 0 {
		perm = DefaultPerm
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := osReplace(tmpPath, path); err != nil {
		return &WriteError{Path: path, Op: "rename", Err: err}
	}
	committed = true

	// Best effort: the rename is already visible.
	_ = syncDir(dir)
	return nil
}

// Matches reports whether the file at path holds exactly data. A missing
// file does not match and is not an error.
func Matches(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return bytes.Equal(current, data), nil
}

//go:build windows

package artifact

import "os"

// osReplace renames over dest. os.Rename uses MoveFileEx with
// MOVEFILE_REPLACE_EXISTING on Windows.
func osReplace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir is a no-op; directories cannot be fsynced on Windows.
func syncDir(string) error { return nil }

// Package atomicfile provides write-temp-then-commit-or-discard JSON
// persistence, the single primitive behind every "atomic replace" file in
// §5/§6 (globals, per-source contexts, the time ledger, the pid file).
// Grounded in gravwell-gravwell/ingesters/utils/state.go's safefile.Create /
// fout.Commit() usage.
package atomicfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dchest/safefile"
)

// WriteJSON marshals v as indented JSON and atomically replaces path's
// contents. On any failure the temporary file is discarded and path is left
// untouched.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("atomicfile: marshaling %s: %w", path, err)
	}
	return Write(path, data, 0o644)
}

// Write atomically replaces path's contents with data.
func Write(path string, data []byte, perm os.FileMode) error {
	fout, err := safefile.Create(path, perm)
	if err != nil {
		return fmt.Errorf("atomicfile: creating temp file for %s: %w", path, err)
	}
	name := fout.Name()
	if _, err := fout.Write(data); err != nil {
		fout.File.Close()
		os.Remove(name)
		return fmt.Errorf("atomicfile: writing %s: %w", path, err)
	}
	if err := fout.Commit(); err != nil {
		fout.File.Close()
		os.Remove(name)
		return fmt.Errorf("atomicfile: committing %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file. Returns os.ErrNotExist (wrapped)
// if path does not exist, so callers can distinguish "never written" from a
// parse failure.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

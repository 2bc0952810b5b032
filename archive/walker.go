// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. The file argument is the zip.File structure for an entry under the
// requested prefix. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// LessFunc orders entry names before visiting. Nil means plain lexical order.
type LessFunc func(a, b string) bool

// Walk visits all files in the archive under the given prefix in a
// deterministic order, calling walkFn for each. The zip central directory
// gives no ordering guarantees, so entries are sorted by name first. Entries
// with path traversal components ("..") or absolute paths fail the walk to
// prevent Zip Slip attacks.
func Walk(archive, prefix string, less LessFunc, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	matched := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			matched = append(matched, f)
		}
	}

	if less == nil {
		less = func(a, b string) bool { return a < b }
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i].FileHeader.Name, matched[j].FileHeader.Name)
	})

	for _, f := range matched {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

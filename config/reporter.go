package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tfg/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{items: make(map[string]item), file: f}, nil
}

// item is a single archive member, either a path captured for later reading
// or an in-memory payload.
type item struct {
	srcPath string
	absPath string
	payload []byte
	stamp   time.Time
}

// Report accumulates information necessary to prepare full debug report.
// NOTE: presently not to be used concurrently!
type Report struct {
	items map[string]item
	file  *os.File
}

// Close finalizes debug report. Calling it on nil receiver is a no-op, it
// means no report has been requested.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves path to file or directory to be put in the final archive later.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}

	if old, exists := r.items[name]; exists && old.srcPath != path {
		// Somewhere I do not know what I am doing.
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.srcPath, path))
	}

	it := item{srcPath: path, absPath: path}
	if p, err := filepath.Abs(path); err == nil {
		it.absPath = p
	}
	r.items[name] = it
}

// StoreData saves binary data to be put in the final archive later as a file under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	if _, exists := r.items[name]; exists {
		// version the name to avoid collisions, scan dumps for the same
		// source may be stored more than once
		name = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	}
	r.items[name] = item{payload: data, stamp: time.Now()}
}

// finalize writes the archive: MANIFEST first, then every stored item in
// manifest order.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := r.manifest()
	if err := writeMember(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		if err := r.writeItem(arc, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeItem(arc *zip.Writer, name string) error {

	it := r.items[name]
	if len(it.payload) > 0 {
		return writeMember(arc, name, it.stamp, bytes.NewReader(it.payload))
	}

	info, err := os.Stat(it.absPath)
	if err != nil {
		// stored path no longer exists, nothing to archive
		return nil
	}

	switch {
	case info.Mode().IsRegular():
		f, err := os.Open(it.absPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeMember(arc, name, info.ModTime(), f)
	case info.Mode().IsDir():
		return writeTree(arc, name, it.absPath)
	}
	return nil
}

// manifest returns sorted item names along with the manifest body listing
// stamp, archive name, original and absolute path for every item.
func (r *Report) manifest() ([]string, *bytes.Buffer) {

	buf := new(bytes.Buffer)
	if len(r.items) == 0 {
		return nil, buf
	}

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)

	now := time.Now()
	for _, name := range names {
		it := r.items[name]
		if it.stamp.IsZero() {
			it.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", it.stamp.UTC().Format(time.UnixDate), name, it.srcPath, it.absPath)
	}
	return names, buf
}

func writeMember(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// writeTree archives every regular file under dir, re-rooted at name.
func writeTree(dst *zip.Writer, name, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// ignore directories, links, sockets, etc.
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		return writeMember(dst, filepath.ToSlash(filepath.Join(name, rel)), info.ModTime(), f)
	})
}

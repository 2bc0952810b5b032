package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_NilSafety(t *testing.T) {
	var r *Report

	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("Name on nil report should be empty")
	}

	// Store/StoreData on nil report are no-ops
	r.Store("name", "/some/path")
	r.StoreData("name", []byte("data"))
}

func TestReport_CloseWithNilFile(t *testing.T) {
	r := &Report{items: make(map[string]item)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_FinalizeArchive(t *testing.T) {
	tmpDir := t.TempDir()

	conf := &ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	// stored path entry
	storedFile := filepath.Join(tmpDir, "result.ts")
	if err := os.WriteFile(storedFile, []byte("export const x = 1;"), 0644); err != nil {
		t.Fatalf("Failed to create stored file: %v", err)
	}
	r.Store("result.ts", storedFile)

	// stored data entries
	r.StoreData("table.txt", []byte("table dump"))
	r.StoreData("scans/app.txt", []byte("scan dump"))

	name := r.Name()
	if name == "" {
		t.Fatal("Name() returned empty string")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// verify archive content
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open produced report: %v", err)
	}
	defer zr.Close()

	found := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open archive entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read archive entry %s: %v", f.Name, err)
		}
		found[f.Name] = string(data)
	}

	if _, ok := found["MANIFEST"]; !ok {
		t.Error("report archive is missing MANIFEST")
	}
	if found["table.txt"] != "table dump" {
		t.Errorf("table.txt = %q", found["table.txt"])
	}
	if found["scans/app.txt"] != "scan dump" {
		t.Errorf("scans/app.txt = %q", found["scans/app.txt"])
	}
	if !strings.Contains(found["result.ts"], "export const") {
		t.Errorf("result.ts = %q", found["result.ts"])
	}
	if !strings.Contains(found["MANIFEST"], "table.txt") {
		t.Errorf("MANIFEST does not list stored entries:\n%s", found["MANIFEST"])
	}
}

func TestReport_StoreDataDuplicateNames(t *testing.T) {
	r := &Report{items: make(map[string]item)}

	// scan dumps for the same source may repeat, names must be versioned
	r.StoreData("scans/app.txt", []byte("first"))
	r.StoreData("scans/app.txt", []byte("second"))

	if len(r.items) != 2 {
		t.Errorf("items = %d, want 2 (duplicate data names are versioned)", len(r.items))
	}
}

func TestReport_StoreSamePathTwice(t *testing.T) {
	r := &Report{items: make(map[string]item)}

	// storing the same path under the same name is allowed
	r.Store("result", "/some/path")
	r.Store("result", "/some/path")

	defer func() {
		if rec := recover(); rec == nil {
			t.Error("Expected panic when overwriting stored name with different path")
		}
	}()
	r.Store("result", "/other/path")
}

func TestReporterConfig_PrepareFallsBackToTemp(t *testing.T) {
	// destination in a non-creatable location falls back to a temp file
	conf := &ReporterConfig{Destination: "/nonexistent-root-dir/report.zip"}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	name := r.Name()
	if name == "" {
		t.Fatal("Name() returned empty string")
	}
	defer os.Remove(name)

	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestManifest_Empty(t *testing.T) {
	r := &Report{items: make(map[string]item)}
	names, buf := r.manifest()
	if names != nil {
		t.Errorf("names = %v, want nil", names)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer length = %d, want 0", buf.Len())
	}
}

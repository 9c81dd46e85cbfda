package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"dicommpr/internal/dicomtest"
)

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry %q: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("Failed to write zip entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// TestFromZipSelectsCandidates checks that real DICOM bytes are kept whatever
// their name, .dcm-named junk is kept for the extractor to report, and
// unrelated files are dropped.
func TestFromZipSelectsCandidates(t *testing.T) {
	slice := dicomtest.MustSliceBytes(dicomtest.Params{Instance: 1})
	data := buildZip(t, map[string][]byte{
		"series/IM0001":     slice,
		"series/IM0002.dcm": slice,
		"broken.dcm":        []byte("not really dicom"),
		"README.txt":        []byte("irrelevant"),
		"thumbnail.png":     {0x89, 'P', 'N', 'G'},
	})

	inputs, err := FromZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("FromZip failed: %v", err)
	}

	want := []string{"broken.dcm", "series/IM0001", "series/IM0002.dcm"}
	if len(inputs) != len(want) {
		t.Fatalf("Expected %d candidates, got %d", len(want), len(inputs))
	}
	for i, path := range want {
		if inputs[i].Path != path {
			t.Errorf("Candidate %d: expected %q, got %q", i, path, inputs[i].Path)
		}
	}
}

func TestFromZipRejectsGarbage(t *testing.T) {
	junk := []byte("this is not a zip archive at all")

	_, err := FromZip(bytes.NewReader(junk), int64(len(junk)))

	if err == nil {
		t.Fatal("Expected an error for a non-zip payload")
	}
}

func TestFromZipEmptyArchive(t *testing.T) {
	data := buildZip(t, nil)

	inputs, err := FromZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("FromZip failed: %v", err)
	}
	if len(inputs) != 0 {
		t.Errorf("Expected no candidates, got %d", len(inputs))
	}
}

// TestFromDir checks directory walking with nested subdirectories and
// relative result paths.
func TestFromDir(t *testing.T) {
	root := t.TempDir()
	slice := dicomtest.MustSliceBytes(dicomtest.Params{Instance: 1})

	files := map[string][]byte{
		"a.dcm":           slice,
		"nested/b.dcm":    slice,
		"nested/notes.md": []byte("skip me"),
	}
	for rel, data := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dirs: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("Failed to write %q: %v", rel, err)
		}
	}

	inputs, err := FromDir(root)
	if err != nil {
		t.Fatalf("FromDir failed: %v", err)
	}

	want := []string{"a.dcm", filepath.Join("nested", "b.dcm")}
	if len(inputs) != len(want) {
		t.Fatalf("Expected %d candidates, got %d", len(want), len(inputs))
	}
	for i, path := range want {
		if inputs[i].Path != path {
			t.Errorf("Candidate %d: expected %q, got %q", i, path, inputs[i].Path)
		}
	}
}

func TestFromDirMissingRoot(t *testing.T) {
	_, err := FromDir(filepath.Join(t.TempDir(), "does-not-exist"))

	if err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}

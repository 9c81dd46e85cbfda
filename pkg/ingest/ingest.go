// Package ingest discovers candidate DICOM files inside uploaded ZIP
// archives or local directories. Selection is content-based: an entry is a
// candidate when its bytes carry a DICOM preamble, whatever its name. Paths
// with a DICOM-looking extension are kept as candidates even when the sniff
// fails, so the extractor can report them as unreadable instead of silently
// dropping them.
package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"dicommpr/pkg/dicomslice"
)

// FromZip reads a ZIP archive and returns its candidate DICOM entries in
// path order.
func FromZip(r io.ReaderAt, size int64) ([]dicomslice.Input, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var inputs []dicomslice.Input
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip entry %q: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read zip entry %q: %w", entry.Name, err)
		}
		if candidate(entry.Name, data) {
			inputs = append(inputs, dicomslice.Input{Path: entry.Name, Data: data})
		}
	}

	sortByPath(inputs)
	return inputs, nil
}

// FromDir walks a directory tree and returns its candidate DICOM files in
// path order. Paths in the result are relative to root.
func FromDir(root string) ([]dicomslice.Input, error) {
	var inputs []dicomslice.Input
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		if candidate(rel, data) {
			inputs = append(inputs, dicomslice.Input{Path: rel, Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", root, err)
	}

	sortByPath(inputs)
	return inputs, nil
}

func candidate(path string, data []byte) bool {
	return dicomslice.LooksLikeDICOM(data) || dicomslice.LooksLikeDICOMPath(path)
}

func sortByPath(inputs []dicomslice.Input) {
	sort.Slice(inputs, func(i, j int) bool {
		return inputs[i].Path < inputs[j].Path
	})
}

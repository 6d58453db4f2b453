// Package generator writes rendered label documents to their destination.
//
// All output follows one pipeline: the engine renders documents in memory, then
// they are written as individual files or packed into a single ZIP archive.
package generator

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xob0t/PackStencil/pkg/label"
)

// Generate writes results to output. The destination is inferred from its extension:
//   - ".zip" → one archive holding every document
//   - anything else → a directory, created if needed, one file per document
//
// It returns the paths written.
func Generate(output string, results []label.Result) ([]string, error) {
	if strings.EqualFold(filepath.Ext(output), ".zip") {
		if err := writeZipFile(output, results); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}
	return WriteFiles(output, results)
}

// WriteFiles writes every document into dir under its own file name.
func WriteFiles(dir string, results []label.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(results))
	for _, r := range results {
		p := filepath.Join(dir, filepath.Base(r.FileName))
		if err := os.WriteFile(p, r.Bytes, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// GenerateToWriter writes results to w. A single document is written as is
// unless ext is ".zip"; several documents are always archived.
// This is useful for in-memory generation (e.g., WASM or HTTP responses).
func GenerateToWriter(w io.Writer, ext string, results []label.Result) error {
	if len(results) == 1 && !strings.EqualFold(ext, ".zip") {
		_, err := w.Write(results[0].Bytes)
		return err
	}
	return WriteZip(w, results)
}

// WriteZip packs every document into a ZIP archive. Duplicate names get a
// numeric suffix so no document is lost.
func WriteZip(w io.Writer, results []label.Result) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(results))
	for _, r := range results {
		name := uniqueName(seen, filepath.Base(r.FileName))
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := f.Write(r.Bytes); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func writeZipFile(output string, results []label.Result) error {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := WriteZip(f, results); err != nil {
		return err
	}
	return f.Close()
}

func uniqueName(seen map[string]int, name string) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}

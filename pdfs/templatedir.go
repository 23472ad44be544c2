package pdfs

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const FileSuffix = ".pdf"

// LoadTemplateDir inspects every *.pdf under root. Keys are paths relative to
// root without the suffix, e.g. "offer" or "2026/certificate".
func LoadTemplateDir(root string) (*TemplateStore[*Template], error) {
	store := NewTemplateStore[*Template]()
	root = filepath.Clean(root)
	err := filepath.WalkDir( // Pre-order Depth-first Traversal
		root,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// Skip Hidden Files & Hidden Directories
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), FileSuffix) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			key := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
			if _, exists := store.Get(key); exists {
				return fmt.Errorf("duplicate template key detected: %s (file=%s)", key, path)
			}
			t, err := InspectTemplate(data)
			if err != nil {
				return fmt.Errorf("template %s: %w", path, err)
			}
			t.Name = key
			store.Store(key, t)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO][TEMPLATE] Loaded %d templates from %s", store.Len(), root)
	return store, nil
}

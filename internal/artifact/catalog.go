package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalog lists and opens run directories under a results root. The
// results API is a read-only view over exactly what Store wrote.
type Catalog struct {
	root string
}

func NewCatalog(root string) *Catalog {
	return &Catalog{root: root}
}

// Runs returns the run directory names under the root, sorted. A run is
// any directory containing a summary file.
func (c *Catalog) Runs() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("read results root: %w", err)
	}

	var runs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.root, e.Name(), summaryFile)); err == nil {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// Open returns a Store over an existing run directory without creating
// anything.
func (c *Catalog) Open(name string) (*Store, error) {
	dir := filepath.Join(c.root, filepath.Base(name))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("unknown run %q", name)
	}
	return &Store{dir: dir}, nil
}

package meshio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/mitchellh/go-homedir"
)

// Load reads an STL file. The mesh is named after the file stem.
func Load(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadSTL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.PartName = Stem(path)
	return m, nil
}

// Save writes m to path as binary STL.
func Save(path string, m *kernel.Mesh) error {
	var buf bytes.Buffer
	if err := WriteSTL(&buf, m); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Loader resolves mesh references to meshes.
type Loader interface {
	Load(path string) (*kernel.Mesh, error)
}

// FileLoader loads STL files, expanding a leading ~ and resolving
// relative paths against Root.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l FileLoader) Load(path string) (*kernel.Mesh, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, path)
	}
	return Load(path)
}

var _ Loader = FileLoader{}

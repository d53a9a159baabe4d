package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// Loader turns one file format into a scored Dataset.
type Loader interface {
	CanLoad(filename string) bool
	// Load returns the dataset and any non-fatal warnings.
	Load(r io.Reader, opt Options) (*dataset.Dataset, []string, error)
}

// Options tunes loading.
type Options struct {
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// Result is a loaded dataset plus where it came from.
type Result struct {
	Source   string
	Dataset  *dataset.Dataset
	Warnings []string
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Lookup returns the loader for filename.
func Lookup(filename string) (Loader, error) {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
}

// Load reads r with the loader registered for name.
func Load(name string, r io.Reader, opt Options) (*Result, error) {
	l, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	ds, warnings, err := l.Load(r, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(name), err)
	}
	return &Result{Source: filepath.Base(name), Dataset: ds, Warnings: warnings}, nil
}

// LoadFile selects a loader based on the file extension and loads path.
func LoadFile(path string, opt Options) (*Result, error) {
	if _, err := Lookup(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()
	return Load(path, f, opt)
}

func init() {
	// Register default loaders
	Register(jsonLoader{})
	Register(csvLoader{ext: ".csv", comma: ','})
	Register(csvLoader{ext: ".tsv", comma: '\t'})
	Register(xlsxLoader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

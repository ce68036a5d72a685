// Package hepmcfile loads the golden event files used by tests and benchmarks.
package hepmcfile

import (
	"os"
	"path/filepath"
	"strings"
)

// Expect describes what a decoder should produce for a file.
type Expect struct {
	Events    int
	Errors    int
	Vertices  int
	Particles int
}

var (
	Names = []string{
		`minimal.hepmc2`,
		`pythia.hepmc2`,
		`heavyion.hepmc2`,
		`corrupt.hepmc2`,
	}
	Expected = map[string]Expect{
		`minimal.hepmc2`:  {Events: 1, Vertices: 1, Particles: 1},
		`pythia.hepmc2`:   {Events: 1, Vertices: 23, Particles: 35},
		`heavyion.hepmc2`: {Events: 3, Vertices: 3, Particles: 7},
		`corrupt.hepmc2`:  {Events: 2, Errors: 1, Vertices: 2, Particles: 2},
	}
)

// Load will load the event files from the testdata dir under root.
func Load(root string) (out FileList, err error) {
	for _, name := range Names {
		// path: /path/to/root/testdata/pythia.hepmc2
		f, err := NewFile(filepath.Join(root, `testdata`, name))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return
}

// File is a golden event file held in memory.
type File struct {
	Size   int
	Path   string
	Name   string
	Data   []byte
	Expect Expect
}

// NewFile reads the file at path.
func NewFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &File{len(data), path, name, data, Expected[name]}, nil
}

// Bytes returns a copy of the file contents.
func (f File) Bytes() []byte {
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	return out
}

// FileList is a list of files that may be filtered.
type FileList []*File

func (s FileList) String() string {
	if len(s) == 0 {
		return `FileList()`
	}
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return `FileList(` + strings.Join(names, `, `) + `)`
}

// ByName returns the files named name.
func (s FileList) ByName(name string) (out FileList) {
	for _, f := range s {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return
}

// Valid returns the files that decode without any per event errors.
func (s FileList) Valid() (out FileList) {
	for _, f := range s {
		if f.Expect.Errors == 0 {
			out = append(out, f)
		}
	}
	return
}

// ByMaxSize returns the files smaller than n bytes.
func (s FileList) ByMaxSize(n int) (out FileList) {
	for _, f := range s {
		if f.Size < n {
			out = append(out, f)
		}
	}
	return
}

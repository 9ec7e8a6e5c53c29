// Package finder enumerates module artifacts on a path: packed
// (.jmod), compressed (.jar with a root module-info.class), and
// expanded (a directory with module-info.class at its root).
//
// Grounded on file.go's acquire-then-deterministic-release lifecycle
// (New/NewBytes/Close), generalized from one mmap'd PE file to an
// io.Closer-free artifact read (a finder scan fully consumes and closes
// each archive handle before returning, since the spec only needs the
// derived descriptor/packages, not a live handle).
package finder

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/00zhengfu00/modlink/internal/descriptor"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
	"github.com/00zhengfu00/modlink/internal/moduleinfo"
)

// jmodMagic is the 4-byte prefix real jmod files carry before their zip
// body ("JM" + format version 1.0).
var jmodMagic = [4]byte{'J', 'M', 1, 0}

// Finder scans an ordered list of directories for module artifacts.
type Finder struct {
	dirs   []string
	reader moduleinfo.Reader
	log    *logrus.Entry
}

// New returns a Finder over dirs, searched in order. reader is the
// opaque descriptor-bytes collaborator; pass nil to use
// moduleinfo.Decode.
func New(dirs []string, reader moduleinfo.Reader, log *logrus.Entry) *Finder {
	if reader == nil {
		reader = moduleinfo.Decode
	}
	return &Finder{dirs: dirs, reader: reader, log: logging.Or(log, "finder")}
}

// Find lazily scans directories in order and returns the first artifact
// declaring module name. Later occurrences in subsequent directories
// are silently ignored, per spec.md §4.5.
func (f *Finder) Find(name string) (*descriptor.Artifact, bool, error) {
	for _, dir := range f.dirs {
		artifacts, err := f.scanDir(dir)
		if err != nil {
			return nil, false, err
		}
		if a, ok := artifacts[name]; ok {
			return a, true, nil
		}
	}
	return nil, false, nil
}

// All eagerly scans every directory and returns every distinct module
// name found, first-directory-wins on conflicts across directories.
func (f *Finder) All() (map[string]*descriptor.Artifact, error) {
	out := make(map[string]*descriptor.Artifact)
	for _, dir := range f.dirs {
		artifacts, err := f.scanDir(dir)
		if err != nil {
			return nil, err
		}
		for name, a := range artifacts {
			if _, exists := out[name]; !exists {
				out[name] = a
			}
		}
	}
	return out, nil
}

// scanDir enumerates a single directory's immediate children and
// classifies each into a recognized artifact shape. Two artifacts
// declaring the same module name within the same directory is a hard
// error (spec.md §4.5); across directories the caller resolves
// first-wins.
func (f *Finder) scanDir(dir string) (map[string]*descriptor.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*descriptor.Artifact{}, nil
		}
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(dir)
	}

	// Sort for deterministic scan order regardless of filesystem
	// readdir ordering.
	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	out := make(map[string]*descriptor.Artifact)
	for _, name := range names {
		e := byName[name]
		full := filepath.Join(dir, name)

		var artifact *descriptor.Artifact
		switch {
		case !e.IsDir() && strings.HasSuffix(name, ".jmod"):
			artifact, err = f.readPacked(full)
		case !e.IsDir() && strings.HasSuffix(name, ".jar"):
			artifact, err = f.readCompressed(full)
		case e.IsDir():
			artifact, err = f.readExpanded(full)
		default:
			continue // ignored shape
		}
		if err != nil {
			return nil, err
		}
		if artifact == nil {
			continue // recognized shape but no module-info (e.g. non-modular jar)
		}

		modName := artifact.Descriptor.Name
		if _, dup := out[modName]; dup {
			return nil, linkerr.New(linkerr.KindDuplicateInDirectory,
				fmt.Sprintf("module %q declared twice in %s", modName, dir)).WithModule(modName).WithPath(dir)
		}
		out[modName] = artifact
	}
	return out, nil
}

func (f *Finder) readPacked(path string) (*descriptor.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	if len(data) < 4 || [4]byte{data[0], data[1], data[2], data[3]} != jmodMagic {
		return nil, linkerr.New(linkerr.KindFormat, "missing jmod magic").WithPath(path)
	}
	zr, err := zip.NewReader(sliceReaderAt(data[4:]), int64(len(data)-4))
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(path)
	}
	return f.buildArtifact(zr, path, descriptor.KindPacked, "classes/module-info.class", "classes/")
}

func (f *Finder) readCompressed(path string) (*descriptor.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	zr, err := zip.NewReader(sliceReaderAt(data), int64(len(data)))
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(path)
	}
	if f.zipEntry(zr, "module-info.class") == nil {
		return nil, nil // not a modular jar: ignored, not an error
	}
	return f.buildArtifact(zr, path, descriptor.KindCompressed, "module-info.class", "")
}

func (f *Finder) zipEntry(zr *zip.Reader, name string) *zip.File {
	for _, file := range zr.File {
		if file.Name == name {
			return file
		}
	}
	return nil
}

func (f *Finder) buildArtifact(zr *zip.Reader, path string, kind descriptor.Kind, descPath, classPrefix string) (*descriptor.Artifact, error) {
	descFile := f.zipEntry(zr, descPath)
	if descFile == nil {
		return nil, linkerr.New(linkerr.KindFormat, "missing module-info.class").WithPath(path)
	}
	rc, err := descFile.Open()
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	data, err := readAllAndClose(rc)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}

	d, err := f.reader(data)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(path)
	}

	packages := make(map[string]struct{})
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || !strings.HasSuffix(file.Name, ".class") {
			continue
		}
		inner := strings.TrimPrefix(file.Name, classPrefix)
		if inner == "module-info.class" {
			continue // synthetic empty prefix: contributes no package
		}
		pkg := packageOf(inner)
		if pkg != "" {
			packages[pkg] = struct{}{}
		}
	}

	return &descriptor.Artifact{
		Descriptor: d,
		Packages:   packages,
		URL:        path,
		ArtifactOf: kind,
	}, nil
}

func (f *Finder) readExpanded(dir string) (*descriptor.Artifact, error) {
	descPath := filepath.Join(dir, "module-info.class")
	data, err := os.ReadFile(descPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // directory without module-info: ignored shape
		}
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(descPath)
	}

	d, err := f.reader(data)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(descPath)
	}

	packages := make(map[string]struct{})
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(p, ".class") {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "module-info.class" {
			return nil
		}
		if pkg := packageOf(rel); pkg != "" {
			packages[pkg] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(dir)
	}

	return &descriptor.Artifact{
		Descriptor: d,
		Packages:   packages,
		URL:        dir,
		ArtifactOf: descriptor.KindExpanded,
	}, nil
}

// packageOf translates a class resource's inner path into its dot
// package name, dropping the file component.
func packageOf(innerPath string) string {
	dir := filepath.ToSlash(filepath.Dir(innerPath))
	if dir == "." || dir == "" {
		return ""
	}
	return strings.ReplaceAll(dir, "/", ".")
}

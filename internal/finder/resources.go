package finder

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"

	"github.com/00zhengfu00/modlink/internal/descriptor"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// ReadResources re-opens a's backing artifact and returns every
// resource it carries, including the module descriptor itself at
// "/<module>/module-info.class", as pool entries addressed at
// "/<module>/<path>", classified by the on-disk convention §6 expects
// of a packed module's top-level directories.
func ReadResources(a *descriptor.Artifact) ([]pool.Entry, error) {
	module := a.Descriptor.Name
	switch a.ArtifactOf {
	case descriptor.KindPacked:
		return readPackedResources(a.URL, module)
	case descriptor.KindCompressed:
		return readCompressedResources(a.URL, module)
	case descriptor.KindExpanded:
		return readExpandedResources(a.URL, module)
	default:
		return nil, linkerr.New(linkerr.KindFormat, "unknown artifact shape").WithModule(module)
	}
}

// jmodSectionKind maps a jmod's top-level zip directory to a pool.Kind,
// per the real jmod layout (classes/, bin/, lib/, conf/).
func jmodSectionKind(topDir string) (pool.Kind, bool) {
	switch topDir {
	case "classes":
		return pool.KindClassOrResource, true
	case "bin":
		return pool.KindNativeCmd, true
	case "lib":
		return pool.KindNativeLib, true
	case "conf":
		return pool.KindConfig, true
	default:
		return pool.KindOther, true
	}
}

func readPackedResources(path, module string) ([]pool.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	if len(data) < 4 {
		return nil, linkerr.New(linkerr.KindFormat, "truncated jmod").WithPath(path)
	}
	zr, err := zip.NewReader(sliceReaderAt(data[4:]), int64(len(data)-4))
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(path)
	}

	var out []pool.Entry
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
		}
		if file.Name == "classes/module-info.class" {
			out = append(out, pool.Entry{Module: module, Path: "/" + module + "/module-info.class", Bytes: content, Kind: pool.KindClassOrResource})
			continue
		}
		top, inner, ok := strings.Cut(file.Name, "/")
		if !ok {
			continue
		}
		kind, _ := jmodSectionKind(top)
		out = append(out, pool.Entry{Module: module, Path: "/" + module + "/" + inner, Bytes: content, Kind: kind})
	}
	return out, nil
}

// readZipFile opens and fully reads one zip.File's content, closing the
// entry reader before returning.
func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	return readAllAndClose(rc)
}

func readCompressedResources(path, module string) ([]pool.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	zr, err := zip.NewReader(sliceReaderAt(data), int64(len(data)))
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindFormat, err).WithPath(path)
	}

	var out []pool.Entry
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		content, err := readZipFile(file)
		if err != nil {
			return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
		}
		out = append(out, pool.Entry{Module: module, Path: "/" + module + "/" + file.Name, Bytes: content, Kind: pool.KindClassOrResource})
	}
	return out, nil
}

func readExpandedResources(dir, module string) ([]pool.Entry, error) {
	var out []pool.Entry
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, pool.Entry{Module: module, Path: "/" + module + "/" + rel, Bytes: content, Kind: pool.KindClassOrResource})
		return nil
	})
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err).WithPath(dir)
	}
	return out, nil
}

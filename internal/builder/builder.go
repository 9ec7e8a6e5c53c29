package builder

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/00zhengfu00/modlink/internal/finder"
	"github.com/00zhengfu00/modlink/internal/image"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
	"github.com/00zhengfu00/modlink/internal/pipeline"
	"github.com/00zhengfu00/modlink/internal/pool"
	"github.com/00zhengfu00/modlink/internal/resolver"
)

// Options configures one Build invocation.
type Options struct {
	OutputDir   string
	Endian      binary.ByteOrder
	TargetOS    string // "windows" or any POSIX value; defaults to runtime.GOOS by the caller
	LoaderTable *LoaderTable
	Pipeline    *pipeline.Pipeline
}

// Builder drives resolver -> pool -> pipeline -> writer and the on-disk
// tree layout of spec.md §4.9.
type Builder struct {
	resolver *resolver.Resolver
	opts     Options
	log      *logrus.Entry
}

// New returns a Builder over the given finder layers.
func New(layers []resolver.ArtifactFinder, opts Options, log *logrus.Entry) *Builder {
	log = logging.Or(log, "builder")
	if opts.LoaderTable == nil {
		opts.LoaderTable = DefaultLoaderTable()
	}
	if opts.Endian == nil {
		opts.Endian = image.NativeOrder()
	}
	return &Builder{resolver: resolver.New(layers, log), opts: opts, log: log}
}

// Build resolves roots, partitions the selected modules by loader,
// drives the plugin pipeline per partition, and emits the full on-disk
// image tree under opts.OutputDir.
func (b *Builder) Build(roots []string) error {
	graph, err := b.resolver.Resolve(roots)
	if err != nil {
		return err
	}

	partitions := make(map[Loader]map[string]struct{}, len(LoaderOrder))
	for _, l := range LoaderOrder {
		partitions[l] = make(map[string]struct{})
	}
	for name := range graph.Selected {
		loader := b.opts.LoaderTable.Classify(name)
		partitions[loader][name] = struct{}{}
	}

	var nonResource []pool.Entry

	for _, loader := range LoaderOrder {
		partition := partitions[loader]
		if len(partition) == 0 {
			continue
		}

		in := pool.New()
		for name := range partition {
			entries, err := finder.ReadResources(graph.Selected[name])
			if err != nil {
				return err
			}
			for _, e := range entries {
				if err := in.Add(e); err != nil {
					return err
				}
			}
		}

		out := in
		if b.opts.Pipeline != nil {
			out, err = b.opts.Pipeline.Run(in)
			if err != nil {
				return err
			}
		}

		var classEntries []pool.Entry
		for _, e := range out.Iter() {
			if e.Kind == pool.KindClassOrResource {
				classEntries = append(classEntries, e)
			} else {
				nonResource = append(nonResource, e)
			}
		}

		infoBlob, err := buildModuleInfos(graph, partition)
		if err != nil {
			return err
		}

		w := image.New(b.opts.Endian, len(classEntries)+1)
		w.AddLocation("/"+string(loader)+"/module/names/module-infos", infoBlob, 0, true, 0)
		for _, e := range classEntries {
			stored := e.CompressorID == 0
			compressedSize := uint64(0)
			if !stored {
				compressedSize = uint64(len(e.Bytes))
			}
			w.AddLocation(e.Path, e.Bytes, compressedSize, stored, e.CompressorID)
		}

		if err := b.writeImage(loader, w); err != nil {
			return err
		}

		b.log.WithField("loader", loader).WithField("modules", len(partition)).
			WithField("resources", len(classEntries)).Info("loader partition emitted")
	}

	if err := writeNonResourceTree(b.opts.OutputDir, b.opts.TargetOS, nonResource); err != nil {
		return err
	}

	b.log.WithField("modules", len(graph.Selected)).Info("image build complete")
	return nil
}

// writeImage streams w to lib/modules/<loader>.jimage, deleting the
// partial file on any failure (spec.md §5's "partial output is deleted
// on failure").
func (b *Builder) writeImage(loader Loader, w *image.Writer) error {
	dir := filepath.Join(b.opts.OutputDir, "lib", "modules")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return linkerr.Wrap(linkerr.KindIO, err).WithPath(dir)
	}
	path := filepath.Join(dir, string(loader)+".jimage")

	f, err := os.Create(path)
	if err != nil {
		return linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}

	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return linkerr.Wrap(linkerr.KindIO, err).WithPath(path)
	}
	return nil
}

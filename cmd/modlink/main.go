// Command modlink is the CLI front end for the linker core: a single
// `link` subcommand that resolves a module graph, runs it through the
// plugin pipeline, and emits a runtime image tree. It contains no
// linking logic of its own, only flag parsing and a call into
// internal/builder, internal/pipeline and internal/release.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/00zhengfu00/modlink/internal/builder"
	"github.com/00zhengfu00/modlink/internal/finder"
	"github.com/00zhengfu00/modlink/internal/image"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
	"github.com/00zhengfu00/modlink/internal/pipeline"
	"github.com/00zhengfu00/modlink/internal/release"
	"github.com/00zhengfu00/modlink/internal/resolver"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var le *linkerr.Error
		if errors.As(err, &le) {
			return le.ExitCode()
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "modlink",
		Short:         "Link runtime modules into a distributable image",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLinkCmd())
	return root
}

func newLinkCmd() *cobra.Command {
	var (
		modulePath    []string
		addModules    []string
		output        string
		pluginsConfig string
		endian        string
		compress      bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Resolve a module graph and emit a runtime image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logging.SetLevel(logrus.DebugLevel)
			}
			if len(modulePath) == 0 {
				return errors.New("--module-path is required")
			}
			if len(addModules) == 0 {
				return errors.New("--add-modules is required")
			}
			if output == "" {
				return errors.New("--output is required")
			}

			order, err := image.ParseEndian(endian)
			if err != nil {
				return err
			}

			loaderTable := builder.DefaultLoaderTable()
			var pl *pipeline.Pipeline

			if pluginsConfig != "" {
				configBytes, err := os.ReadFile(pluginsConfig)
				if err != nil {
					return linkerr.Wrap(linkerr.KindIO, err).WithPath(pluginsConfig)
				}

				if sigBytes, err := os.ReadFile(pluginsConfig + ".p7s"); err == nil {
					if err := release.VerifyConfigSignature(configBytes, sigBytes); err != nil {
						return err
					}
				} else if !os.IsNotExist(err) {
					return linkerr.Wrap(linkerr.KindIO, err).WithPath(pluginsConfig + ".p7s")
				}

				reg := pipeline.NewRegistry()
				cfg, err := pipeline.ParseConfig(bytes.NewReader(configBytes), reg)
				if err != nil {
					return err
				}
				pl, err = pipeline.Build(cfg, reg, nil)
				if err != nil {
					return err
				}
				for module, value := range cfg.PluginConfig("loaders").Options {
					loader, ok := builder.ParseLoaderOverride(value)
					if !ok {
						return linkerr.New(linkerr.KindPluginConfig,
							fmt.Sprintf("loaders.%s: invalid loader %q", module, value))
					}
					loaderTable.Override(module, loader)
				}
			}
			if compress && pl == nil {
				reg := pipeline.NewRegistry()
				cfg, err := pipeline.ParseConfig(strings.NewReader("zip=on\n"), reg)
				if err != nil {
					return err
				}
				pl, err = pipeline.Build(cfg, reg, nil)
				if err != nil {
					return err
				}
			}

			f := finder.New(modulePath, nil, nil)
			b := builder.New([]resolver.ArtifactFinder{f}, builder.Options{
				OutputDir:   output,
				Endian:      order,
				TargetOS:    runtime.GOOS,
				LoaderTable: loaderTable,
				Pipeline:    pl,
			}, nil)

			if err := b.Build(addModules); err != nil {
				return err
			}

			return writeReleaseArtifacts(f, output, addModules)
		},
	}

	cmd.Flags().StringSliceVar(&modulePath, "module-path", nil, "comma-separated directories to search for module artifacts")
	cmd.Flags().StringSliceVar(&addModules, "add-modules", nil, "comma-separated root module names to resolve")
	cmd.Flags().StringVar(&output, "output", "", "output directory for the runtime image")
	cmd.Flags().StringVar(&pluginsConfig, "plugins-configuration", "", "path to a resource-plugin configuration file")
	cmd.Flags().StringVar(&endian, "endian", "native", "byte order for the image: little, big, or native")
	cmd.Flags().BoolVar(&compress, "compress", false, "deflate class/resource content; ignored when --plugins-configuration is given")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	return cmd
}

// writeReleaseArtifacts re-resolves the module graph (the finder keeps
// no cache, so this re-scans the module path) to emit the release and
// bom files the builder itself does not produce, since release/BOM
// emission is an external collaborator per spec.md §1.
func writeReleaseArtifacts(f resolver.ArtifactFinder, output string, roots []string) error {
	res := resolver.New([]resolver.ArtifactFinder{f}, nil)
	graph, err := res.Resolve(roots)
	if err != nil {
		return err
	}

	releasePath := filepath.Join(output, "release")
	if err := os.WriteFile(releasePath, release.BuildRelease(graph, nil), 0o644); err != nil {
		return linkerr.Wrap(linkerr.KindIO, err).WithPath(releasePath)
	}

	bomPath := filepath.Join(output, "bom")
	if err := os.WriteFile(bomPath, release.BuildBOM(graph), 0o644); err != nil {
		return linkerr.Wrap(linkerr.KindIO, err).WithPath(bomPath)
	}
	return nil
}

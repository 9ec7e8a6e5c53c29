package builder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// windowsNativeLibSuffixes lists the native_lib extensions that place a
// Windows build's artifact under bin/ instead of lib/, per spec.md §6.
var windowsNativeLibSuffixes = []string{".dll", ".diz", ".pdb", ".map"}

// nativeLibDir returns the on-disk directory ("bin" or "lib") a
// native_lib entry lands in, given the target OS and its file name.
func nativeLibDir(targetOS, name string) string {
	if targetOS != "windows" {
		return "lib"
	}
	for _, suf := range windowsNativeLibSuffixes {
		if strings.HasSuffix(name, suf) {
			return "bin"
		}
	}
	return "lib"
}

// writeNonResourceTree places native_cmd, native_lib, and config pool
// entries into the parallel on-disk tree of spec.md §6 (outside the
// lib/modules/*.jimage files), setting the executable bit on native_cmd
// entries when targetOS is not windows.
func writeNonResourceTree(root, targetOS string, entries []pool.Entry) error {
	for _, e := range entries {
		var dir string
		var perm os.FileMode = 0o644
		switch e.Kind {
		case pool.KindNativeCmd:
			dir = "bin"
			if targetOS != "windows" {
				perm = 0o755
			}
		case pool.KindNativeLib:
			dir = nativeLibDir(targetOS, filepath.Base(e.Path))
		case pool.KindConfig:
			dir = "conf"
		default:
			continue
		}

		destPath := filepath.Join(root, dir, filepath.Base(e.Path))
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return linkerr.Wrap(linkerr.KindIO, err).WithPath(destPath)
		}
		if err := os.WriteFile(destPath, e.Bytes, perm); err != nil {
			return linkerr.Wrap(linkerr.KindIO, err).WithPath(destPath)
		}
	}
	return nil
}

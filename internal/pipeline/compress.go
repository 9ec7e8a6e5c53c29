package pipeline

import (
	"bytes"

	"github.com/klauspost/compress/flate"

	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/pool"
)

// Compressor IDs recorded in each entry's attribute record and
// understood by the image reader/writer (spec.md §4.2's
// compressor_id field). 0 always means "stored" regardless of which
// compressor plugin ran.
const (
	CompressorStored  uint8 = 0
	CompressorDeflate uint8 = 1
)

// compressStage deflates every entry whose compressed form is smaller
// than its original, recording the original size so the image writer
// can mark the location accordingly (spec.md §4.8 "zip"/"default-compress").
type compressStage struct{}

func (compressStage) Apply(in *pool.Pool) (*pool.Pool, error) {
	out := pool.New()
	for _, e := range in.Iter() {
		original := e.Bytes
		var buf bytes.Buffer
		zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, linkerr.Wrap(linkerr.KindPluginRuntime, err)
		}
		if _, err := zw.Write(original); err != nil {
			return nil, linkerr.Wrap(linkerr.KindPluginRuntime, err)
		}
		if err := zw.Close(); err != nil {
			return nil, linkerr.Wrap(linkerr.KindPluginRuntime, err)
		}

		if buf.Len() < len(original) {
			e.UncompressedSize = uint64(len(original))
			e.CompressorID = CompressorDeflate
			e.Bytes = buf.Bytes()
		}
		if err := out.Add(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func newZipCompressor(PluginConfig) (Stage, error) {
	return compressStage{}, nil
}

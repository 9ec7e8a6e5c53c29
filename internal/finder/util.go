package finder

import (
	"bytes"
	"io"
)

// sliceReaderAt adapts a byte slice to io.ReaderAt for archive/zip,
// which needs random access into the (already fully read) artifact
// bytes.
func sliceReaderAt(b []byte) io.ReaderAt {
	return bytes.NewReader(b)
}

func readAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

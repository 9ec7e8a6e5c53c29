// Package image implements the on-disk binary container (spec.md §6):
// a fixed header, a perfect-hash-style redirect/offset table pair, an
// attribute blob, a string pool blob, and a content region — plus the
// reader that inverts it.
//
// Grounded on the teacher's struct-at-a-time binary.Read/Write idiom
// (dosheader.go, ntheader.go), generalized from one fixed byte order to
// a configurable one, and on file.go's mmap-based read path for the
// reader.
package image

// Magic is the fixed 4-byte signature at the start of every image file.
const Magic uint32 = 0xCAFEDADA

// BadMagic is the byte-reversed form of Magic; seeing it in the header
// means the file was written in the other endianness.
const BadMagic uint32 = 0xDADAFECA

// MajorVersion and MinorVersion are the format version this package
// writes and the maximum it accepts on read.
const (
	MajorVersion = 0
	MinorVersion = 1
)

// Location is the metadata tuple describing where one resource sits
// inside an image's content region (spec.md §3). CompressedSize == 0
// signals "stored" (no compression); the writer always sets
// CompressorID to a nonzero value when compression was actually
// applied so the two flags never disagree.
type Location struct {
	FullPath         string
	ContentOffset    uint64
	CompressedSize   uint64
	UncompressedSize uint64
	CompressorID     uint8
}

package image

import (
	"encoding/binary"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/00zhengfu00/modlink/internal/attribute"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/stringpool"
)

// Reader memory-maps a finished image file and resolves name -> Location
// lookups against its redirect/offset tables. Grounded on file.go's
// mmap.Map-based New/Close lifecycle.
type Reader struct {
	data  mmap.MMap
	f     *os.File
	order binary.ByteOrder

	locationCount int
	attrStart     int
	strStart      int
	contentStart  int
	redirect      []int32
	offsets       []uint32
}

// Open memory-maps path and parses its header and tables. The caller
// must call Close when done.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, linkerr.Wrap(linkerr.KindIO, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, linkerr.Wrap(linkerr.KindIO, err)
	}

	r := &Reader{data: data, f: f}
	if err := r.parseHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the memory mapping and the underlying file handle.
func (r *Reader) Close() error {
	var err error
	if r.data != nil {
		err = r.data.Unmap()
	}
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

const headerFixedSize = 4 + 2 + 2 + 4 + 4 + 4 // magic, major, minor, count, attrsize, strsize

func (r *Reader) parseHeader() error {
	if len(r.data) < headerFixedSize {
		return linkerr.New(linkerr.KindFormat, "image file too small for header")
	}

	order := NativeOrder()
	magic := order.Uint32(r.data[0:4])

	switch magic {
	case Magic:
		r.order = order
	case BadMagic:
		return linkerr.New(linkerr.KindWrongEndian, "image magic is byte-swapped")
	default:
		return linkerr.New(linkerr.KindFormat, fmt.Sprintf("bad magic %#x", magic))
	}

	major := r.order.Uint16(r.data[4:6])
	minor := r.order.Uint16(r.data[6:8])
	if major > MajorVersion || (major == MajorVersion && minor > MinorVersion) {
		return linkerr.New(linkerr.KindWrongVersion,
			fmt.Sprintf("image version %d.%d newer than supported %d.%d", major, minor, MajorVersion, MinorVersion))
	}

	r.locationCount = int(r.order.Uint32(r.data[8:12]))
	attrSize := int(r.order.Uint32(r.data[12:16]))
	strSize := int(r.order.Uint32(r.data[16:20]))

	tablesStart := headerFixedSize
	tablesLen := r.locationCount * 4 * 2
	if len(r.data) < tablesStart+tablesLen {
		return linkerr.New(linkerr.KindFormat, "image truncated in redirect/offset tables")
	}

	r.redirect = make([]int32, r.locationCount)
	r.offsets = make([]uint32, r.locationCount)
	off := tablesStart
	for i := 0; i < r.locationCount; i++ {
		r.redirect[i] = int32(r.order.Uint32(r.data[off : off+4]))
		off += 4
	}
	for i := 0; i < r.locationCount; i++ {
		r.offsets[i] = r.order.Uint32(r.data[off : off+4])
		off += 4
	}

	r.attrStart = off
	r.strStart = r.attrStart + attrSize
	r.contentStart = r.strStart + strSize

	if len(r.data) < r.contentStart {
		return linkerr.New(linkerr.KindFormat, "image truncated before content region")
	}
	return nil
}

// ContentRegionEnd returns the end of the content region (the total
// file size), used by invariant checks that every location's bytes fit
// inside it.
func (r *Reader) ContentRegionEnd() uint64 {
	return uint64(len(r.data))
}

func (r *Reader) attrBlob() []byte  { return r.data[r.attrStart:r.strStart] }
func (r *Reader) strBlob() []byte   { return r.data[r.strStart:r.contentStart] }
func (r *Reader) content() []byte   { return r.data[r.contentStart:] }

func (r *Reader) decodeLocation(attrOffset uint32) (Location, error) {
	rec, _, err := attribute.Decode(r.attrBlob(), int(attrOffset))
	if err != nil {
		return Location{}, linkerr.Wrap(linkerr.KindFormat, err)
	}

	strs := r.strBlob()
	module, _ := stringpool.StringAt(strs, rec.ModuleNameOffset)
	parent, _ := stringpool.StringAt(strs, rec.ParentNameOffset)
	base, _ := stringpool.StringAt(strs, rec.BaseNameOffset)
	ext := ""
	if rec.ExtensionOffset != 0 {
		ext, _ = stringpool.StringAt(strs, rec.ExtensionOffset)
	}

	loc := Location{
		FullPath:         joinName(module, parent, base, ext),
		ContentOffset:    rec.ContentOffset,
		UncompressedSize: rec.UncompressedSize,
		CompressorID:     rec.CompressorID,
	}
	if rec.HasCompressedSize {
		loc.CompressedSize = rec.CompressedSize
	}
	return loc, nil
}

func joinName(module, parent, base, ext string) string {
	inner := base
	if ext != "" {
		inner = base + "." + ext
	}
	if parent != "" {
		inner = parent + "/" + inner
	}
	if module != "" {
		return "/" + module + "/" + inner
	}
	return "/" + inner
}

// Find resolves path to its Location by recomputing the primary hash,
// following the redirect table, and (for multi-entry buckets) the
// perturbed second-level hash, per spec.md §4.4.
func (r *Reader) Find(path string) (Location, bool) {
	if r.locationCount == 0 {
		return Location{}, false
	}
	n := len(r.redirect)
	bucket := int(hashCode(path, 0)) % n
	red := r.redirect[bucket]
	if red == 0 {
		return Location{}, false
	}
	var attrOff uint32
	if red < 0 {
		attrOff = uint32(-red - 1)
	} else {
		salt := uint32(red)
		slot := int(hashCode(path, salt)) % n
		attrOff = r.offsets[slot]
	}
	loc, err := r.decodeLocation(attrOff)
	if err != nil || loc.FullPath != path {
		return Location{}, false
	}
	return loc, true
}

// ContentAt returns the raw (possibly compressed) bytes for loc.
func (r *Reader) ContentAt(loc Location) []byte {
	size := loc.UncompressedSize
	if loc.CompressedSize != 0 {
		size = loc.CompressedSize
	}
	c := r.content()
	start := loc.ContentOffset
	end := start + size
	if end > uint64(len(c)) {
		end = uint64(len(c))
	}
	return c[start:end]
}

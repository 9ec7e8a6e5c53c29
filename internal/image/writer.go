package image

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/00zhengfu00/modlink/internal/attribute"
	"github.com/00zhengfu00/modlink/internal/linkerr"
	"github.com/00zhengfu00/modlink/internal/logging"
	"github.com/00zhengfu00/modlink/internal/stringpool"
)

// maxSaltAttempts bounds the per-bucket salt search (spec.md §4.3
// "Tie-breaks"); exceeding it is a fatal, deterministic failure rather
// than an unbounded retry loop.
const maxSaltAttempts = 1_000_000

type pendingEntry struct {
	loc    Location
	bucket uint32
	attrOff uint32
}

// Writer accumulates locations and their content bytes, then emits one
// complete image file. Writer is owned exclusively by a single loader's
// emission scope (spec.md §5); it is not safe for concurrent use.
type Writer struct {
	order    binary.ByteOrder
	strings  *stringpool.Pool
	pending  []pendingEntry
	content  [][]byte
	nextOffs uint64
	log      *logrus.Entry
}

// New returns a Writer using the given byte order (native, little, or
// big, as selected by --endian). entryHint sizes internal slices and
// need not be exact.
func New(order binary.ByteOrder, entryHint int) *Writer {
	w := &Writer{
		order:   order,
		strings: stringpool.New(),
		log:     logging.For("image.writer"),
	}
	if entryHint > 0 {
		w.pending = make([]pendingEntry, 0, entryHint)
		w.content = make([][]byte, 0, entryHint)
	}
	return w
}

// AddLocation registers one resource's bytes and metadata, assigning it
// the next monotonic content offset per spec.md §3's invariant that
// offsets are strictly monotonic in insertion order. compressorID == 0
// and stored == true together mean "no compression applied".
func (w *Writer) AddLocation(path string, content []byte, compressedSize uint64, stored bool, compressorID uint8) {
	loc := Location{
		FullPath:         path,
		ContentOffset:    w.nextOffs,
		UncompressedSize: uint64(len(content)),
		CompressorID:     compressorID,
	}
	if !stored {
		loc.CompressedSize = compressedSize
	}
	w.nextOffs += uint64(len(content))

	bucket := hashCode(path, 0)
	w.pending = append(w.pending, pendingEntry{loc: loc, bucket: bucket})
	w.content = append(w.content, content)
}

// buildTables runs the perfect-hash construction of spec.md §4.3 step 2
// and returns the redirect and offsets tables plus the encoded
// attribute blob (with each entry's attribute offset already resolved).
func (w *Writer) buildTables() (redirect []int32, offsets []uint32, attrBlob []byte, err error) {
	n := len(w.pending)
	tableSize := nextPowerOfTwo(n * 4 / 3)
	if tableSize < n {
		tableSize = nextPowerOfTwo(n + 1)
	}

	// Encode every entry's attribute record up front and remember its
	// offset into the attribute blob.
	for i := range w.pending {
		module, parent, base, ext := attribute.SplitName(w.pending[i].loc.FullPath)
		rec := attribute.Record{
			ModuleNameOffset: w.strings.Intern(module),
			ParentNameOffset: w.strings.Intern(parent),
			BaseNameOffset:   w.strings.Intern(base),
			ContentOffset:    w.pending[i].loc.ContentOffset,
			UncompressedSize: w.pending[i].loc.UncompressedSize,
			CompressorID:     w.pending[i].loc.CompressorID,
		}
		if ext != "" {
			rec.ExtensionOffset = w.strings.Intern(ext)
		}
		if w.pending[i].loc.CompressedSize != 0 {
			rec.HasCompressedSize = true
			rec.CompressedSize = w.pending[i].loc.CompressedSize
		}
		w.pending[i].attrOff = uint32(len(attrBlob))
		attrBlob = append(attrBlob, attribute.Encode(rec)...)
	}

	// Group entries into buckets by primary hash, largest first: bigger
	// buckets are harder to place and should get first pick of slots.
	buckets := make(map[uint32][]int)
	for i, e := range w.pending {
		b := int(e.bucket) % tableSize
		buckets[uint32(b)] = append(buckets[uint32(b)], i)
	}

	bucketIDs := make([]uint32, 0, len(buckets))
	for b := range buckets {
		bucketIDs = append(bucketIDs, b)
	}
	sort.Slice(bucketIDs, func(i, j int) bool {
		if len(buckets[bucketIDs[i]]) != len(buckets[bucketIDs[j]]) {
			return len(buckets[bucketIDs[i]]) > len(buckets[bucketIDs[j]])
		}
		return bucketIDs[i] < bucketIDs[j]
	})

	redirect = make([]int32, tableSize)
	offsets = make([]uint32, tableSize)
	occupied := make([]bool, tableSize)

	for _, b := range bucketIDs {
		members := buckets[b]

		if len(members) == 1 {
			idx := members[0]
			redirect[b] = -(int32(w.pending[idx].attrOff) + 1)
			continue
		}

		salt, slots, err := w.findSalt(members, tableSize, occupied)
		if err != nil {
			return nil, nil, nil, err
		}
		redirect[b] = int32(salt)
		for j, idx := range members {
			slot := slots[j]
			occupied[slot] = true
			offsets[slot] = w.pending[idx].attrOff
		}
	}

	return redirect, offsets, attrBlob, nil
}

func (w *Writer) findSalt(members []int, tableSize int, occupied []bool) (uint32, []int, error) {
	for salt := uint32(1); salt <= maxSaltAttempts; salt++ {
		slots := make([]int, len(members))
		seen := make(map[int]bool, len(members))
		ok := true
		for j, idx := range members {
			slot := int(hashCode(w.pending[idx].loc.FullPath, salt)) % tableSize
			if occupied[slot] || seen[slot] {
				ok = false
				break
			}
			seen[slot] = true
			slots[j] = slot
		}
		if ok {
			return salt, slots, nil
		}
	}
	return 0, nil, linkerr.New(linkerr.KindHashCollisionExhausted,
		fmt.Sprintf("could not place %d colliding entries after %d salts", len(members), maxSaltAttempts))
}

// WriteTo serializes the full image (header, tables, attribute blob,
// string blob, content) to w, in that order, returning the total bytes
// written.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	redirect, offsets, attrBlob, err := w.buildTables()
	if err != nil {
		return 0, err
	}

	n := len(redirect)
	strBlob := w.strings.Bytes()

	var written int64
	writeU := func(v uint32) error {
		var b [4]byte
		w.order.PutUint32(b[:], v)
		nn, err := dst.Write(b[:])
		written += int64(nn)
		return err
	}
	writeU16 := func(v uint16) error {
		var b [2]byte
		w.order.PutUint16(b[:], v)
		nn, err := dst.Write(b[:])
		written += int64(nn)
		return err
	}

	if err := writeU(Magic); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}
	if err := writeU16(MajorVersion); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}
	if err := writeU16(MinorVersion); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}
	if err := writeU(uint32(n)); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}
	if err := writeU(uint32(len(attrBlob))); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}
	if err := writeU(uint32(len(strBlob))); err != nil {
		return written, linkerr.Wrap(linkerr.KindIO, err)
	}

	for _, r := range redirect {
		if err := writeU(uint32(r)); err != nil {
			return written, linkerr.Wrap(linkerr.KindIO, err)
		}
	}
	for _, o := range offsets {
		if err := writeU(o); err != nil {
			return written, linkerr.Wrap(linkerr.KindIO, err)
		}
	}

	if nn, err := dst.Write(attrBlob); err != nil {
		written += int64(nn)
		return written, linkerr.Wrap(linkerr.KindIO, err)
	} else {
		written += int64(nn)
	}
	if nn, err := dst.Write(strBlob); err != nil {
		written += int64(nn)
		return written, linkerr.Wrap(linkerr.KindIO, err)
	} else {
		written += int64(nn)
	}

	for _, c := range w.content {
		nn, err := dst.Write(c)
		written += int64(nn)
		if err != nil {
			return written, linkerr.Wrap(linkerr.KindIO, err)
		}
	}

	w.log.WithField("locations", n).Debug("wrote image")
	return written, nil
}

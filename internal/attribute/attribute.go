// Package attribute implements the per-location attribute record format:
// a tagged, variable-length encoding of a resource's split name and its
// placement/size/compression metadata within an image file.
//
// Grounded on the teacher's small tagged sub-record streams (debug.go's
// CodeView debug-directory entries, each led by its own signature/size
// pair) generalized from "one signature, one fixed payload" to "one tag
// byte packing kind + length, followed by a minimal-width numeric
// payload" as spec.md §4.2 requires.
package attribute

import (
	"errors"
	"fmt"
)

// Kind is the high 5 bits of a tag byte.
type Kind uint8

const (
	KindEnd Kind = iota
	KindModuleNameOffset
	KindParentNameOffset
	KindBaseNameOffset
	KindExtensionOffset
	KindContentOffset
	KindCompressedSize
	KindUncompressedSize
	KindCompressorID
)

// ErrTruncated is returned by Decode when the blob ends mid-record.
var ErrTruncated = errors.New("attribute: truncated record")

// ErrMissingEnd is returned by Decode when a record never reaches an END
// tag before the blob ends.
var ErrMissingEnd = errors.New("attribute: record missing END tag")

// Record is the decomposed, per-location attribute set the codec
// encodes. Name is split into (module, parent, base, extension) so that
// many locations sharing a component (e.g. all classes under the same
// module) intern it once in the string pool.
type Record struct {
	ModuleNameOffset    uint32
	ParentNameOffset    uint32
	BaseNameOffset      uint32
	ExtensionOffset     uint32
	ContentOffset       uint64
	CompressedSize      uint64
	UncompressedSize    uint64
	CompressorID        uint8
	HasCompressedSize   bool // compressed_size == 0 means "stored"; track presence separately
}

// minBytes returns the minimum number of big-endian bytes (1..8) needed
// to hold v, with a floor of 1 byte (so a zero value still emits a field
// when explicitly requested).
func minBytes(v uint64) int {
	n := 1
	for v>>(8*uint(n)) != 0 {
		n++
	}
	return n
}

func putBE(dst []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		shift := uint(8 * (n - 1 - i))
		dst[i] = byte(v >> shift)
	}
}

func getBE(src []byte) uint64 {
	var v uint64
	for _, b := range src {
		v = v<<8 | uint64(b)
	}
	return v
}

func appendField(buf []byte, kind Kind, v uint64) []byte {
	n := minBytes(v)
	tag := byte(kind)<<3 | byte(n-1)
	buf = append(buf, tag)
	payload := make([]byte, n)
	putBE(payload, v, n)
	return append(buf, payload...)
}

// Encode renders r as a tagged field stream terminated by END. The
// module, parent, base, content-offset and uncompressed-size fields are
// always emitted; ExtensionOffset and CompressorID are omitted when zero
// (decode leaves them zero), and CompressedSize is emitted only when
// HasCompressedSize is set. Decode sees every field that Encode wrote.
func Encode(r Record) []byte {
	var buf []byte
	buf = appendField(buf, KindModuleNameOffset, uint64(r.ModuleNameOffset))
	buf = appendField(buf, KindParentNameOffset, uint64(r.ParentNameOffset))
	buf = appendField(buf, KindBaseNameOffset, uint64(r.BaseNameOffset))
	if r.ExtensionOffset != 0 {
		buf = appendField(buf, KindExtensionOffset, uint64(r.ExtensionOffset))
	}
	buf = appendField(buf, KindContentOffset, r.ContentOffset)
	if r.HasCompressedSize {
		buf = appendField(buf, KindCompressedSize, r.CompressedSize)
	}
	buf = appendField(buf, KindUncompressedSize, r.UncompressedSize)
	if r.CompressorID != 0 {
		buf = appendField(buf, KindCompressorID, uint64(r.CompressorID))
	}
	buf = append(buf, byte(KindEnd)<<3)
	return buf
}

// Decode parses one record starting at start, returning the decoded
// Record and the offset immediately following its END tag.
func Decode(blob []byte, start int) (Record, int, error) {
	var r Record
	i := start
	for {
		if i >= len(blob) {
			return Record{}, 0, fmt.Errorf("%w at %d", ErrMissingEnd, start)
		}
		tag := blob[i]
		kind := Kind(tag >> 3)
		i++
		if kind == KindEnd {
			return r, i, nil
		}
		n := int(tag&0x7) + 1
		if i+n > len(blob) {
			return Record{}, 0, fmt.Errorf("%w at %d", ErrTruncated, i)
		}
		v := getBE(blob[i : i+n])
		i += n
		switch kind {
		case KindModuleNameOffset:
			r.ModuleNameOffset = uint32(v)
		case KindParentNameOffset:
			r.ParentNameOffset = uint32(v)
		case KindBaseNameOffset:
			r.BaseNameOffset = uint32(v)
		case KindExtensionOffset:
			r.ExtensionOffset = uint32(v)
		case KindContentOffset:
			r.ContentOffset = v
		case KindCompressedSize:
			r.CompressedSize = v
			r.HasCompressedSize = true
		case KindUncompressedSize:
			r.UncompressedSize = v
		case KindCompressorID:
			r.CompressorID = uint8(v)
		default:
			return Record{}, 0, fmt.Errorf("attribute: unknown tag kind %d at %d", kind, i-n-1)
		}
	}
}

// SplitName splits a full resource path into (module, parent, base,
// extension) parts for per-field interning, per spec.md §4.2.
// "/<module>/<inner>" paths split module from the remainder; the
// remainder's directory becomes parent, and the file name is split on
// the last '.' into base/extension.
func SplitName(fullPath string) (module, parent, base, extension string) {
	path := fullPath
	hadLeadingSlash := false
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
		hadLeadingSlash = true
	}

	rest := path
	if hadLeadingSlash {
		if slash := indexByte(path, '/'); slash >= 0 {
			module = path[:slash]
			rest = path[slash+1:]
		}
		// else: the bare "/module-info.class" form — no module segment.
	}

	lastSlash := lastIndexByte(rest, '/')
	if lastSlash < 0 {
		parent = ""
		base = rest
	} else {
		parent = rest[:lastSlash]
		base = rest[lastSlash+1:]
	}

	if dot := lastIndexByte(base, '.'); dot > 0 {
		extension = base[dot+1:]
		base = base[:dot]
	}
	return module, parent, base, extension
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func lastIndexByte(s string, c byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == c {
			return i
		}
	}
	return -1
}

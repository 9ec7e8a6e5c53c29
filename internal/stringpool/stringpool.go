// Package stringpool deduplicates byte-string fragments into one
// contiguous, NUL-terminated blob with offset assignment.
//
// Grounded on the teacher's COFF string table (symbol.go:
// COFFStringTable/COFFSymbol.String): a size-prefixed run of
// NUL-terminated strings addressed by byte offset, with a map from
// offset back to string for lookups. Here the pool is write-only during
// a build (the writer interns, it never looks a string up by offset
// until the reader re-parses the finished blob), so no reverse map is
// kept — just forward dedup.
package stringpool

// Pool accumulates interned strings into one blob. The zero value is
// not usable; construct with New. Offset 0 is reserved for the empty
// string.
type Pool struct {
	buf     []byte
	offsets map[string]uint32
	order   []string // insertion order, for deterministic test iteration
}

// New returns a Pool with the empty string already interned at offset 0.
func New() *Pool {
	p := &Pool{
		offsets: make(map[string]uint32),
	}
	p.buf = append(p.buf, 0) // NUL terminator for the empty string at offset 0
	p.offsets[""] = 0
	return p
}

// Intern returns the offset of s within the pool, appending s followed
// by a NUL terminator if it has not been seen before.
func (p *Pool) Intern(s string) uint32 {
	if off, ok := p.offsets[s]; ok {
		return off
	}
	off := uint32(len(p.buf))
	p.buf = append(p.buf, s...)
	p.buf = append(p.buf, 0)
	p.offsets[s] = off
	p.order = append(p.order, s)
	return off
}

// Bytes returns the pool's contiguous buffer verbatim. The returned
// slice must not be mutated by the caller.
func (p *Pool) Bytes() []byte { return p.buf }

// Len returns the current size of the pool's buffer in bytes.
func (p *Pool) Len() int { return len(p.buf) }

// Order returns strings in the order they were first interned
// (excluding the implicit empty string), for reproducible test output.
func (p *Pool) Order() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// StringAt reads a NUL-terminated string starting at off from a finished
// pool blob. Used by the reader side, which works from raw bytes rather
// than a live Pool.
func StringAt(blob []byte, off uint32) (string, bool) {
	if int(off) >= len(blob) {
		return "", false
	}
	end := off
	for int(end) < len(blob) && blob[end] != 0 {
		end++
	}
	if int(end) >= len(blob) {
		return "", false // unterminated: malformed blob
	}
	return string(blob[off:end]), true
}

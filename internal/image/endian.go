package image

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// NativeOrder detects the host's byte order, used when --endian native
// (the default) is selected.
func NativeOrder() binary.ByteOrder {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ParseEndian maps the CLI's --endian flag value to a byte order.
func ParseEndian(s string) (binary.ByteOrder, error) {
	switch s {
	case "", "native":
		return NativeOrder(), nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown endian %q, want little, big, or native", s)
	}
}

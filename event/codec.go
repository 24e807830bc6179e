package event

import "encoding/binary"

// Little-endian field extraction. Callers are responsible for bounds:
// every decoder validates the buffer length before reading fields.

func u16(b []byte, i int) uint16 {
	return binary.LittleEndian.Uint16(b[i:])
}

func u32(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i:])
}

func u64(b []byte, i int) uint64 {
	return binary.LittleEndian.Uint64(b[i:])
}

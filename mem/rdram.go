// Package mem provides the flat guest-memory window recompiled EE code
// and the kernel shim operate on.
package mem

import "encoding/binary"

// Size is the emulated PS2 main memory size (32MB).
const Size = 32 * 1024 * 1024

// RDRAM is a contiguous byte buffer mapped 1:1 to PS2 physical addresses.
// It is owned by the top-level runtime and borrowed immutably by every
// thread that holds the guest execution gate; RDRAM itself adds no
// synchronization beyond what the gate already guarantees.
type RDRAM struct {
	buf []byte
}

// New allocates a zeroed guest memory window of the given size.
func New(size int) *RDRAM {
	return &RDRAM{buf: make([]byte, size)}
}

// Wrap adapts an existing byte slice — typically the rdram parameter
// already passed across the recompiled-function ABI — into an *RDRAM
// without copying, so syscall implementations can reuse the address
// translation and guard logic here instead of re-deriving it.
func Wrap(buf []byte) *RDRAM {
	return &RDRAM{buf: buf}
}

// Bytes returns the underlying buffer. Callers must hold the execution gate.
func (r *RDRAM) Bytes() []byte {
	return r.buf
}

// translate maps a guest address to an offset into buf, or -1 if the
// address is out of range. Address 0 is always treated as unmapped.
func (r *RDRAM) translate(addr uint32) int {
	if addr == 0 {
		return -1
	}
	off := int(addr)
	if off < 0 || off >= len(r.buf) {
		return -1
	}
	return off
}

// ReadByte returns the byte at addr, or 0 if addr is unmapped.
func (r *RDRAM) ReadByte(addr uint32) byte {
	off := r.translate(addr)
	if off < 0 {
		return 0
	}
	return r.buf[off]
}

// ReadU32 reads a little-endian uint32 at addr, or 0 if addr is unmapped
// or would read past the end of the buffer.
func (r *RDRAM) ReadU32(addr uint32) uint32 {
	off := r.translate(addr)
	if off < 0 || off+4 > len(r.buf) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[off : off+4])
}

// ReadU64 reads a little-endian uint64 at addr, or 0 if addr is unmapped
// or would read past the end of the buffer.
func (r *RDRAM) ReadU64(addr uint32) uint64 {
	off := r.translate(addr)
	if off < 0 || off+8 > len(r.buf) {
		return 0
	}
	return binary.LittleEndian.Uint64(r.buf[off : off+8])
}

// WriteU32 writes a little-endian uint32 at addr. Writes to address 0 or
// any unmapped address are silent no-ops, per the guest memory contract.
func (r *RDRAM) WriteU32(addr uint32, v uint32) {
	off := r.translate(addr)
	if off < 0 || off+4 > len(r.buf) {
		return
	}
	binary.LittleEndian.PutUint32(r.buf[off:off+4], v)
}

// WriteU64 writes a little-endian uint64 at addr. Writes to address 0 or
// any unmapped address are silent no-ops.
func (r *RDRAM) WriteU64(addr uint32, v uint64) {
	off := r.translate(addr)
	if off < 0 || off+8 > len(r.buf) {
		return
	}
	binary.LittleEndian.PutUint64(r.buf[off:off+8], v)
}

// WriteBytes copies data into guest memory starting at addr. Out-of-range
// writes are truncated to what fits; an unmapped addr is a silent no-op.
func (r *RDRAM) WriteBytes(addr uint32, data []byte) int {
	off := r.translate(addr)
	if off < 0 {
		return 0
	}
	n := len(data)
	if off+n > len(r.buf) {
		n = len(r.buf) - off
	}
	if n <= 0 {
		return 0
	}
	copy(r.buf[off:off+n], data[:n])
	return n
}

// ReadCString reads a NUL-terminated byte string starting at addr,
// stopping after max bytes if no terminator is found. An unmapped addr
// reads as the empty string.
func (r *RDRAM) ReadCString(addr uint32, max int) string {
	off := r.translate(addr)
	if off < 0 {
		return ""
	}
	end := off + max
	if end > len(r.buf) {
		end = len(r.buf)
	}
	for i := off; i < end; i++ {
		if r.buf[i] == 0 {
			return string(r.buf[off:i])
		}
	}
	return string(r.buf[off:end])
}

// ReadMemory reads up to len(buf) bytes starting at addr into buf and
// returns the number of bytes actually read. The flat address-based
// form suits debugger-style tooling that inspects arbitrary windows.
func (r *RDRAM) ReadMemory(addr uint32, buf []byte) uint32 {
	off := r.translate(addr)
	if off < 0 {
		return 0
	}
	n := len(buf)
	if off+n > len(r.buf) {
		n = len(r.buf) - off
	}
	if n <= 0 {
		return 0
	}
	copy(buf[:n], r.buf[off:off+n])
	return uint32(n)
}

package kernel

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/0xjjjjjj/ps2recomp/mem"
)

// FileSystem resolves guest paths against a PathRoots table and opens
// files through an afero.Fs per host root, so tests can mount an
// in-memory filesystem instead of touching disk. The file syscalls
// (open/read/write/close/lseek) are written once against this type.
type FileSystem struct {
	roots PathRoots
	fs    map[string]afero.Fs // keyed by host root directory

	mu      sync.Mutex
	nextFD  int32
	handles map[int32]afero.File
}

// NewFileSystem builds a FileSystem over roots, using fs for every host
// root directory (pass afero.NewOsFs() for real disk access, or
// afero.NewMemMapFs() in tests).
func NewFileSystem(roots PathRoots, fs afero.Fs) *FileSystem {
	backing := make(map[string]afero.Fs, len(roots))
	for _, root := range roots {
		backing[root] = fs
	}
	return &FileSystem{
		roots:   roots,
		fs:      backing,
		nextFD:  3, // 0-2 reserved, matching stdin/stdout/stderr conventions
		handles: make(map[int32]afero.File),
	}
}

// KEIO-style negative status codes for file syscalls.
const (
	errBadPath = -1
	errBadFD   = -2
	errIO      = -3
)

// Open resolves guestPath and opens it through the backing afero.Fs,
// returning a guest-visible file descriptor or a negative status.
func (f *FileSystem) Open(guestPath string, writable bool) int32 {
	hostPath, err := ResolveGuestPath(f.roots, guestPath)
	if err != nil {
		return errBadPath
	}

	prefix, _, _ := splitPrefix(strings.ReplaceAll(guestPath, "\\", "/"))
	backing, ok := f.fs[f.roots[prefix]]
	if !ok {
		return errBadPath
	}

	var file afero.File
	if writable {
		file, err = backing.OpenFile(hostPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	} else {
		file, err = backing.Open(hostPath)
	}
	if err != nil {
		return errIO
	}

	f.mu.Lock()
	fd := f.nextFD
	f.nextFD++
	f.handles[fd] = file
	f.mu.Unlock()
	return fd
}

// Close releases a file descriptor. A no-op (KEOK) if fd is unknown.
func (f *FileSystem) Close(fd int32) int32 {
	f.mu.Lock()
	file, ok := f.handles[fd]
	delete(f.handles, fd)
	f.mu.Unlock()

	if !ok {
		return KEOK
	}
	if err := file.Close(); err != nil {
		return errIO
	}
	return KEOK
}

// Read reads up to len bytes from fd into guest memory at addr, returning
// the number of bytes read or a negative status.
func (f *FileSystem) Read(rd *mem.RDRAM, fd int32, addr uint32, length uint32) int32 {
	file := f.fileByFD(fd)
	if file == nil {
		return errBadFD
	}
	buf := make([]byte, length)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return errIO
	}
	rd.WriteBytes(addr, buf[:n])
	return int32(n)
}

// Write writes length bytes from guest memory at addr to fd, returning
// the number of bytes written or a negative status.
func (f *FileSystem) Write(rd *mem.RDRAM, fd int32, addr uint32, length uint32) int32 {
	file := f.fileByFD(fd)
	if file == nil {
		return errBadFD
	}
	buf := make([]byte, length)
	rd.ReadMemory(addr, buf)
	n, err := file.Write(buf)
	if err != nil {
		return errIO
	}
	return int32(n)
}

// Seek repositions fd per io.Seeker semantics, returning the new offset
// or a negative status.
func (f *FileSystem) Seek(fd int32, offset int64, whence int) int64 {
	file := f.fileByFD(fd)
	if file == nil {
		return errBadFD
	}
	pos, err := file.Seek(offset, whence)
	if err != nil {
		return errIO
	}
	return pos
}

func (f *FileSystem) fileByFD(fd int32) afero.File {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[fd]
}

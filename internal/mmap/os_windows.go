//go:build windows

package mmap

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// views maps the first byte of a view to its base address so osUnmap can
// release it without reconstructing the address from the slice.
var views sync.Map

func osMap(f *os.File, size int, writable bool) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}

	prot := uint32(windows.PAGE_READONLY)
	access := uint32(windows.FILE_MAP_READ)
	if writable {
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, prot, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	// The view holds its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, access, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	views.Store(&data[0], addr)

	return data, nil
}

func osUnmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	addr, ok := views.LoadAndDelete(&data[0])
	if !ok {
		return nil
	}
	return windows.UnmapViewOfFile(addr.(uintptr))
}

func osSync(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return windows.FlushViewOfFile(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows does not have a direct equivalent to madvise.
	_ = data
	_ = pattern
	return nil
}

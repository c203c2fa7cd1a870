package mapstruct

import (
	"errors"

	"github.com/hupe1980/mapstruct/blobstore"
	"github.com/hupe1980/mapstruct/intvec"
	"github.com/hupe1980/mapstruct/mapping"
	"github.com/hupe1980/mapstruct/snapshot"
)

var (
	// ErrExists is returned by Create when the file already exists.
	ErrExists = errors.New("mapstruct: file already exists")

	// ErrOutOfBounds is returned for an index at or past a vector's size.
	ErrOutOfBounds = mapping.ErrOutOfBounds
	// ErrNullPointer is returned when dereferencing a null offset pointer.
	ErrNullPointer = mapping.ErrNullPointer
	// ErrOutOfSpace is returned when the context cannot grow.
	ErrOutOfSpace = mapping.ErrOutOfSpace
	// ErrClosed is returned after Close.
	ErrClosed = mapping.ErrClosed
	// ErrCorrupt is returned when an image fails validation on Open.
	ErrCorrupt = mapping.ErrCorrupt
	// ErrWidthOverflow is returned when a value does not fit an integer vector's width.
	ErrWidthOverflow = intvec.ErrWidthOverflow
	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = blobstore.ErrNotFound
	// ErrChecksum is returned when a snapshot fails its checksum.
	ErrChecksum = snapshot.ErrChecksum
)

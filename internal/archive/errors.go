package archive

import "errors"

var (
	// ErrOutOfRange is returned when a requested read falls outside
	// the durable byte range currently on disk.
	ErrOutOfRange = errors.New("archive: position out of range")
	// ErrClosed names a closed archive. No FileArchive method returns
	// it: after Close, its methods fail with the underlying file error.
	ErrClosed = errors.New("archive: closed")
)

package archive

import (
	"os"
	"sync"
)

// ArchiveRecord is the unit persisted by an Archiver and replayed by
// an ArchiveReader: a contiguous run of bytes ending at Position in
// the leader's broadcast log.
type ArchiveRecord struct {
	Position int64
	Data     []byte
}

// Archiver is the write side: a Follower appends every fragment
// accepted from its leader, and a Leader appends every fragment
// ingested locally for replication, so either role's archive can serve
// ReadFrom once it becomes leader. Append is called once per accepted
// data fragment; it never blocks on more than a buffered write, and
// reports the new durable end position.
type Archiver interface {
	Append(data []byte) (int64, error)
	Sync() error
	Close() error
}

// ArchiveReader is the read side, used by a Leader to fill outbound
// data fragments and by Resend/SnapshotOffer handling to serve a
// lagging follower.
type ArchiveReader interface {
	ReadFrom(position int64, limit int) ([]byte, error)
	// Rehydrate is a hook for out-of-band snapshot payload transfer.
	// It is a no-op in this implementation; full snapshot transfer is
	// out of scope (see SnapshotOffer in the consensus package).
	Rehydrate(basePosition int64) error
}

// FileArchive is a segment-per-node, byte-addressed append-only file:
// position N always corresponds to byte offset N from the start of the
// file, so Resend/Ack ranges map directly onto os.File.ReadAt without
// an index.
type FileArchive struct {
	mu   sync.Mutex
	file *os.File
	size int64

	syncEvery int64
	unsynced  int64
}

// NewFileArchive opens (creating if necessary) the segment file at
// path. syncEvery is the number of unsynced bytes after which Append
// calls Sync automatically; 0 disables automatic syncing.
func NewFileArchive(path string, syncEvery int64) (*FileArchive, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileArchive{file: f, size: info.Size(), syncEvery: syncEvery}, nil
}

// Append writes data at the end of the file and returns the new
// durable end position (the file's new length).
func (a *FileArchive) Append(data []byte) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := a.file.WriteAt(data, a.size)
	if err != nil {
		return a.size, err
	}
	a.size += int64(n)
	a.unsynced += int64(n)

	if a.syncEvery > 0 && a.unsynced >= a.syncEvery {
		if err := a.file.Sync(); err != nil {
			return a.size, err
		}
		a.unsynced = 0
	}
	return a.size, nil
}

// Sync forces any unsynced bytes to stable storage.
func (a *FileArchive) Sync() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unsynced = 0
	return a.file.Sync()
}

// Close syncs and closes the underlying file.
func (a *FileArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.file.Sync()
	return a.file.Close()
}

// ReadFrom reads up to limit bytes starting at position. It returns
// ErrOutOfRange if position is beyond the durable end of the file.
func (a *FileArchive) ReadFrom(position int64, limit int) ([]byte, error) {
	a.mu.Lock()
	size := a.size
	a.mu.Unlock()

	if position < 0 || position > size {
		return nil, ErrOutOfRange
	}
	if position == size {
		return nil, nil
	}
	avail := size - position
	if int64(limit) > avail {
		limit = int(avail)
	}
	buf := make([]byte, limit)
	n, err := a.file.ReadAt(buf, position)
	if n > 0 {
		return buf[:n], nil
	}
	return nil, err
}

// Rehydrate is a no-op: the leader's own archive is always locally
// durable. Followers that need to rehydrate after a SnapshotOffer use
// a separate out-of-band transfer, not this reader.
func (a *FileArchive) Rehydrate(basePosition int64) error {
	return nil
}

package util

import "fmt"

// PageID represents a unique page identifier within one file
type PageID uint64

// InvalidPageID is never handed out by a file
const InvalidPageID PageID = 0

// FrameID indexes a slot of the buffer pool
type FrameID int

// FileID is the stable identity of a file, used as part of the page index key
type FileID uint64

func (id FileID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// PageSize represents the standard page size (4KB)
const PageSize = 4096

// Options represents buffer manager configuration options
type Options struct {
	Path      string
	NumFrames int
	LogLevel  string
	LogPath   string
}

// DefaultOptions returns default options
func DefaultOptions() Options {
	return Options{
		Path:      "bufmgr.db",
		NumFrames: 1000, // 4MB default buffer pool
		LogLevel:  "info",
	}
}

func (o Options) Validate() error {
	if o.NumFrames <= 0 {
		return fmt.Errorf("num_frames must be positive, got %d: %w", o.NumFrames, ErrInvalidConfig)
	}
	if o.Path == "" {
		return fmt.Errorf("storage path is empty: %w", ErrInvalidConfig)
	}
	return nil
}

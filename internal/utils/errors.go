package util

import "errors"

var (
	ErrInvalidPageId       = errors.New("invalid page id")
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrPageNotFound        = errors.New("page not found")
	ErrPageOutOfBounds     = errors.New("page out of bounds")
	ErrBadFileHeader       = errors.New("bad file header")
	ErrFileManagerNil      = errors.New("file manager is nil")
	ErrInvalidPoolSize     = errors.New("invalid pool size")
	ErrOutBoundOfFrame     = errors.New("frame idx out of bound")
	ErrDuplicateKey        = errors.New("duplicate page index key")
	ErrBufferPoolExhausted = errors.New("buffer pool exhausted: all frames pinned")
	ErrPageNotPinned       = errors.New("page is not pinned")
	ErrPagePinned          = errors.New("page is pinned")
	ErrCorruptBufferState  = errors.New("corrupt buffer state")
	ErrManagerClosed       = errors.New("buffer manager is closed")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

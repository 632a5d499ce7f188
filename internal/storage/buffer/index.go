package buffer

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

type pageKey struct {
	file util.FileID
	page util.PageID
}

type indexEntry struct {
	key   pageKey
	frame util.FrameID
}

// PageIndex maps (file, page) to the frame caching it.
// Chained buckets, sized ~1.2x the frame count.
type PageIndex struct {
	buckets [][]indexEntry
	count   int
}

func NewPageIndex(numFrames int) *PageIndex {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	size := int(float64(numFrames)*1.2) + 1
	return &PageIndex{buckets: make([][]indexEntry, size)}
}

func (ix *PageIndex) bucket(k pageKey) int {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(k.file))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(k.page))
	return int(xxhash.Checksum64(buf[:]) % uint64(len(ix.buckets)))
}

// Insert fails with util.ErrDuplicateKey if the key is already present
func (ix *PageIndex) Insert(fileID util.FileID, pageID util.PageID, frame util.FrameID) error {
	k := pageKey{fileID, pageID}
	b := ix.bucket(k)
	for _, e := range ix.buckets[b] {
		if e.key == k {
			return util.ErrDuplicateKey
		}
	}
	ix.buckets[b] = append(ix.buckets[b], indexEntry{key: k, frame: frame})
	ix.count++
	return nil
}

func (ix *PageIndex) Lookup(fileID util.FileID, pageID util.PageID) (util.FrameID, bool) {
	k := pageKey{fileID, pageID}
	for _, e := range ix.buckets[ix.bucket(k)] {
		if e.key == k {
			return e.frame, true
		}
	}
	return -1, false
}

// Remove reports whether an entry was removed
func (ix *PageIndex) Remove(fileID util.FileID, pageID util.PageID) bool {
	k := pageKey{fileID, pageID}
	b := ix.bucket(k)
	chain := ix.buckets[b]
	for i, e := range chain {
		if e.key == k {
			chain[i] = chain[len(chain)-1]
			ix.buckets[b] = chain[:len(chain)-1]
			ix.count--
			return true
		}
	}
	return false
}

func (ix *PageIndex) Len() int {
	return ix.count
}

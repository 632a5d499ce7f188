package buffer

import (
	stderrors "errors"
	"fmt"
	"io"
	"sync"

	"github.com/bietkhonhungvandi212/bufmgr/internal/logger"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BufferManager caches pages of any number of files in a fixed set of frames.
//
// Every public method takes one coarse lock, so a manager may be shared between
// goroutines. A *page.Page returned by ReadPage or AllocPage is a lease on the
// frame: it stays valid until the matching UnpinPage and must not be used after.
type BufferManager struct {
	mu       sync.Mutex
	table    *FrameTable
	index    *PageIndex
	pool     *BufferPool
	replacer *ClockReplacer
	stats    Stats
	log      *logrus.Entry
	closed   bool
}

func NewBufferManager(numFrames int) *BufferManager {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}

	bm := &BufferManager{
		table: NewFrameTable(numFrames),
		index: NewPageIndex(numFrames),
		pool:  NewBufferPool(numFrames),
		log:   logger.WithComponent("buffer"),
	}
	bm.replacer = NewClockReplacer(bm.table, bm.index, bm.pool, &bm.stats, bm.log)
	return bm
}

/* READ */

// ReadPage pins pageID of f, reading it from the file on a miss
func (bm *BufferManager) ReadPage(f file.File, pageID util.PageID) (*page.Page, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, util.ErrManagerClosed
	}

	if frameIdx, ok := bm.index.Lookup(f.ID(), pageID); ok {
		desc := bm.table.Desc(frameIdx)
		desc.refbit = true
		desc.pinCount++
		bm.stats.recordRequest(true)
		return bm.pool.Slot(frameIdx), nil
	}

	bm.stats.recordRequest(false)
	bm.log.WithFields(logrus.Fields{"file": f.Filename(), "page": pageID}).Debug("miss")

	frameIdx, err := bm.replacer.AllocBuf()
	if err != nil {
		return nil, err
	}

	img, err := f.ReadPage(pageID)
	if err != nil {
		return nil, errors.Wrapf(err, "[ReadPage] page %d of %s", pageID, f.Filename())
	}
	bm.stats.pageReads.Add(1)

	return bm.install(f, pageID, frameIdx, img)
}

// install maps a cleared frame to (f, pageID) holding img, pinned once
func (bm *BufferManager) install(f file.File, pageID util.PageID, frameIdx util.FrameID, img *page.Page) (*page.Page, error) {
	if err := bm.index.Insert(f.ID(), pageID, frameIdx); err != nil {
		return nil, errors.Wrapf(util.ErrCorruptBufferState, "page %d of %s mapped twice: %v", pageID, f.Filename(), err)
	}
	bm.pool.Load(frameIdx, img)
	bm.table.Desc(frameIdx).Set(f, pageID)
	return bm.pool.Slot(frameIdx), nil
}

/* UNPIN */

// UnpinPage drops one pin. An uncached page is a no-op; dirty is sticky until write-back.
func (bm *BufferManager) UnpinPage(f file.File, pageID util.PageID, dirty bool) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return util.ErrManagerClosed
	}

	frameIdx, ok := bm.index.Lookup(f.ID(), pageID)
	if !ok {
		return nil
	}

	desc := bm.table.Desc(frameIdx)
	if desc.pinCount == 0 {
		return errors.Wrapf(util.ErrPageNotPinned, "file %s page %d frame %d", f.Filename(), pageID, frameIdx)
	}

	desc.pinCount--
	if dirty {
		desc.dirty = true
	}
	return nil
}

/* ALLOCATE */

// AllocPage creates a new page in f and returns it pinned.
// If no frame can be found the new page stays allocated in the file.
func (bm *BufferManager) AllocPage(f file.File) (util.PageID, *page.Page, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return util.InvalidPageID, nil, util.ErrManagerClosed
	}

	img, err := f.AllocatePage()
	if err != nil {
		return util.InvalidPageID, nil, errors.Wrapf(err, "[AllocPage] %s", f.Filename())
	}

	frameIdx, err := bm.replacer.AllocBuf()
	if err != nil {
		bm.log.WithFields(logrus.Fields{"file": f.Filename(), "page": img.ID()}).
			Warn("page allocated in file but not cached")
		return util.InvalidPageID, nil, err
	}

	p, err := bm.install(f, img.ID(), frameIdx, img)
	if err != nil {
		return util.InvalidPageID, nil, err
	}
	return img.ID(), p, nil
}

/* DISPOSE */

// DisposePage drops the page from the cache and deletes it from f.
// A pinned page is refused with util.ErrPagePinned and nothing changes.
func (bm *BufferManager) DisposePage(f file.File, pageID util.PageID) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return util.ErrManagerClosed
	}

	if frameIdx, ok := bm.index.Lookup(f.ID(), pageID); ok {
		desc := bm.table.Desc(frameIdx)
		if desc.pinCount > 0 {
			return errors.Wrapf(util.ErrPagePinned, "dispose file %s page %d frame %d", f.Filename(), pageID, frameIdx)
		}
		desc.Clear()
		bm.index.Remove(f.ID(), pageID)
	}

	if err := f.DeletePage(pageID); err != nil {
		return errors.Wrapf(err, "[DisposePage] page %d of %s", pageID, f.Filename())
	}
	return nil
}

/* FLUSH */

// FlushFile writes back and evicts every cached page of f.
// It stops at the first pinned page with util.ErrPagePinned, leaving that page untouched.
func (bm *BufferManager) FlushFile(f file.File) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return util.ErrManagerClosed
	}

	id := f.ID()
	for i := 0; i < bm.table.Len(); i++ {
		frameIdx := util.FrameID(i)
		desc := bm.table.Desc(frameIdx)
		if !desc.owns(id) {
			continue
		}

		if !desc.valid {
			return errors.Wrapf(util.ErrCorruptBufferState, "invalid frame owned by file: %s", desc.Info())
		}
		if desc.pinCount != 0 {
			return errors.Wrapf(util.ErrPagePinned, "flush file %s page %d frame %d", f.Filename(), desc.pageID, frameIdx)
		}

		if desc.dirty {
			if err := desc.file.WritePage(bm.pool.Slot(frameIdx)); err != nil {
				return errors.Wrapf(err, "[FlushFile] page %d of %s", desc.pageID, f.Filename())
			}
			desc.dirty = false
			bm.stats.pageWrites.Add(1)
		}

		bm.index.Remove(id, desc.pageID)
		desc.Clear()
	}
	return nil
}

/* CLOSE */

// Close writes back every dirty page, pinned or not. The manager is unusable afterwards.
func (bm *BufferManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}

	var err error
	for i := 0; i < bm.table.Len(); i++ {
		frameIdx := util.FrameID(i)
		desc := bm.table.Desc(frameIdx)
		if !desc.valid || !desc.dirty {
			continue
		}
		if e := desc.file.WritePage(bm.pool.Slot(frameIdx)); e != nil {
			bm.log.WithFields(logrus.Fields{"frame": frameIdx, "page": desc.pageID}).WithError(e).Error("write back on close failed")
			err = stderrors.Join(err, fmt.Errorf("page %d of %s: %w", desc.pageID, desc.file.Filename(), e))
			continue
		}
		desc.dirty = false
		bm.stats.pageWrites.Add(1)
	}

	bm.closed = true
	return err
}

/* DIAGNOSTICS */

func (bm *BufferManager) NumFrames() int {
	return bm.table.Len()
}

// Descriptors snapshots every frame descriptor in frame order
func (bm *BufferManager) Descriptors() []FrameInfo {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	out := make([]FrameInfo, bm.table.Len())
	for i := range out {
		out[i] = bm.table.Desc(util.FrameID(i)).Info()
	}
	return out
}

func (bm *BufferManager) ValidFrames() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	n := 0
	for i := 0; i < bm.table.Len(); i++ {
		if bm.table.Desc(util.FrameID(i)).valid {
			n++
		}
	}
	return n
}

func (bm *BufferManager) PrintSelf(w io.Writer) {
	valid := 0
	for _, info := range bm.Descriptors() {
		fmt.Fprintln(w, info)
		if info.Valid {
			valid++
		}
	}
	fmt.Fprintf(w, "Total Number of Valid Frames:%d\n", valid)
}

func (bm *BufferManager) Stats() StatsSnapshot {
	return bm.stats.Snapshot()
}

// ClockHand returns the frame the clock last examined
func (bm *BufferManager) ClockHand() util.FrameID {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.replacer.Hand()
}

// Validate checks that descriptors and the page index agree
func (bm *BufferManager) Validate() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	valid := 0
	for i := 0; i < bm.table.Len(); i++ {
		frameIdx := util.FrameID(i)
		desc := bm.table.Desc(frameIdx)
		if !desc.valid {
			if desc.pinCount != 0 || desc.dirty || desc.refbit || desc.file != nil {
				return errors.Wrapf(util.ErrCorruptBufferState, "stale invalid frame: %s", desc.Info())
			}
			continue
		}
		valid++
		mapped, ok := bm.index.Lookup(desc.file.ID(), desc.pageID)
		if !ok || mapped != frameIdx {
			return errors.Wrapf(util.ErrCorruptBufferState, "frame %d not indexed (got %d, %t)", frameIdx, mapped, ok)
		}
	}
	if valid != bm.index.Len() {
		return errors.Wrapf(util.ErrCorruptBufferState, "%d valid frames but %d index entries", valid, bm.index.Len())
	}
	return nil
}

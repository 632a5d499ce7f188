package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// FrameDesc is the bookkeeping for one frame.
// An invalid descriptor has no owner, no pins, and clear dirty/ref bits.
type FrameDesc struct {
	frameNo  util.FrameID
	file     file.File
	pageID   util.PageID
	pinCount int32
	dirty    bool
	valid    bool
	refbit   bool
}

// Set marks the frame as holding pageID of f, pinned once
func (d *FrameDesc) Set(f file.File, pageID util.PageID) {
	d.file = f
	d.pageID = pageID
	d.pinCount = 1
	d.dirty = false
	d.valid = true
	d.refbit = true
}

// Clear returns the frame to the invalid state
func (d *FrameDesc) Clear() {
	d.file = nil
	d.pageID = util.InvalidPageID
	d.pinCount = 0
	d.dirty = false
	d.valid = false
	d.refbit = false
}

func (d *FrameDesc) owns(id util.FileID) bool {
	return d.file != nil && d.file.ID() == id
}

// FrameInfo is a point-in-time copy of a descriptor
type FrameInfo struct {
	Frame    util.FrameID
	File     string
	PageID   util.PageID
	PinCount int32
	Dirty    bool
	Valid    bool
	Refbit   bool
}

func (d *FrameDesc) Info() FrameInfo {
	info := FrameInfo{
		Frame:    d.frameNo,
		PageID:   d.pageID,
		PinCount: d.pinCount,
		Dirty:    d.dirty,
		Valid:    d.valid,
		Refbit:   d.refbit,
	}
	if d.file != nil {
		info.File = d.file.Filename()
	}
	return info
}

func (fi FrameInfo) String() string {
	if !fi.Valid {
		return fmt.Sprintf("FrameNo:%d valid:false", fi.Frame)
	}
	return fmt.Sprintf("FrameNo:%d file:%s pageNo:%d pinCnt:%d dirty:%t valid:%t refbit:%t",
		fi.Frame, fi.File, fi.PageID, fi.PinCount, fi.Dirty, fi.Valid, fi.Refbit)
}

// FrameTable holds one descriptor per frame
type FrameTable struct {
	descs []FrameDesc
}

func NewFrameTable(size int) *FrameTable {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	ft := &FrameTable{descs: make([]FrameDesc, size)}
	for i := range ft.descs {
		ft.descs[i].frameNo = util.FrameID(i)
		ft.descs[i].Clear()
	}
	return ft
}

func (ft *FrameTable) Desc(frameIdx util.FrameID) *FrameDesc {
	if int(frameIdx) >= len(ft.descs) || frameIdx < 0 {
		panic(fmt.Errorf("[frametable] %w: %d", util.ErrOutBoundOfFrame, frameIdx))
	}
	return &ft.descs[frameIdx]
}

func (ft *FrameTable) Len() int {
	return len(ft.descs)
}

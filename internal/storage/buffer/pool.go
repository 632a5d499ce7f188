package buffer

import (
	"fmt"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// BufferPool is the fixed arena of page slots, addressed by frame id.
// Slots are reused in place and never reallocated.
type BufferPool struct {
	frames []page.Page // Holds page.Page (4KB)
}

func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	return &BufferPool{frames: make([]page.Page, size)}
}

// Slot borrows the page held by a frame
func (bp *BufferPool) Slot(frameIdx util.FrameID) *page.Page {
	if int(frameIdx) >= len(bp.frames) || frameIdx < 0 {
		panic(fmt.Errorf("[pool] [Slot] %w: %d", util.ErrOutBoundOfFrame, frameIdx))
	}
	return &bp.frames[frameIdx]
}

// Load copies an image into a frame
func (bp *BufferPool) Load(frameIdx util.FrameID, img *page.Page) {
	*bp.Slot(frameIdx) = *img
}

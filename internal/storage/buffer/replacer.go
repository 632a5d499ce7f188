package buffer

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ClockReplacer picks reusable frames with the clock (second chance) policy.
// A set refbit buys a resident page one more sweep; pinned frames are skipped.
type ClockReplacer struct {
	table     *FrameTable
	index     *PageIndex
	pool      *BufferPool
	stats     *Stats
	log       *logrus.Entry
	clockHand util.FrameID
}

func NewClockReplacer(table *FrameTable, index *PageIndex, pool *BufferPool, stats *Stats, log *logrus.Entry) *ClockReplacer {
	return &ClockReplacer{
		table:     table,
		index:     index,
		pool:      pool,
		stats:     stats,
		log:       log,
		clockHand: util.FrameID(table.Len() - 1),
	}
}

func (c *ClockReplacer) advanceClock() {
	c.clockHand = (c.clockHand + 1) % util.FrameID(c.table.Len())
	c.stats.clockAdvances.Add(1)
}

// Hand returns the frame the clock last examined
func (c *ClockReplacer) Hand() util.FrameID {
	return c.clockHand
}

// AllocBuf returns a cleared frame, writing back and unmapping its old page if needed.
// It fails with util.ErrBufferPoolExhausted after numFrames consecutive pinned visits;
// a failed call leaves refbits and the hand as they were.
func (c *ClockReplacer) AllocBuf() (util.FrameID, error) {
	numBufs := c.table.Len()
	startHand := c.clockHand
	var cleared []util.FrameID

	rollback := func() {
		for _, f := range cleared {
			c.table.Desc(f).refbit = true
		}
		c.clockHand = startHand
	}

	for busy := 0; busy < numBufs; {
		c.advanceClock()
		frame := c.clockHand
		desc := c.table.Desc(frame)

		switch {
		case !desc.valid:
			desc.Clear()
			return frame, nil
		case desc.refbit:
			desc.refbit = false
			cleared = append(cleared, frame)
			busy = 0
		case desc.pinCount > 0:
			busy++
		default:
			if err := c.evict(frame, desc); err != nil {
				rollback()
				return -1, err
			}
			return frame, nil
		}
	}

	rollback()
	c.stats.exhaustions.Add(1)
	return -1, errors.Wrapf(util.ErrBufferPoolExhausted, "%d frames", numBufs)
}

func (c *ClockReplacer) evict(frame util.FrameID, desc *FrameDesc) error {
	log := c.log.WithFields(logrus.Fields{"frame": frame, "file": desc.file.Filename(), "page": desc.pageID})

	if desc.dirty {
		if err := desc.file.WritePage(c.pool.Slot(frame)); err != nil {
			log.WithError(err).Error("write back failed")
			return errors.Wrapf(err, "write back page %d of %s", desc.pageID, desc.file.Filename())
		}
		desc.dirty = false
		c.stats.pageWrites.Add(1)
		log.Debug("wrote back victim")
	}

	if !c.index.Remove(desc.file.ID(), desc.pageID) {
		log.Warn("victim had no index entry")
	}
	desc.Clear()
	c.stats.evictions.Add(1)
	log.Debug("evicted")
	return nil
}

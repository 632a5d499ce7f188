package buffer

import (
	"errors"
	"testing"

	"github.com/bietkhonhungvandi212/bufmgr/internal/logger"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clockFixture struct {
	table    *FrameTable
	index    *PageIndex
	pool     *BufferPool
	stats    *Stats
	replacer *ClockReplacer
	mf       *file.MemFile
}

func newClockFixture(size int) *clockFixture {
	fx := &clockFixture{
		table: NewFrameTable(size),
		index: NewPageIndex(size),
		pool:  NewBufferPool(size),
		stats: &Stats{},
		mf:    file.NewMemFile("clock"),
	}
	fx.replacer = NewClockReplacer(fx.table, fx.index, fx.pool, fx.stats, logger.WithComponent("test"))
	return fx
}

// fill maps every frame to a fresh page of the fixture file with the given pin count
func (fx *clockFixture) fill(t *testing.T, pins ...int32) []util.PageID {
	t.Helper()
	ids := make([]util.PageID, len(pins))
	for i, pin := range pins {
		img, err := fx.mf.AllocatePage()
		require.NoError(t, err)
		frame := util.FrameID(i)
		fx.pool.Load(frame, img)
		require.NoError(t, fx.index.Insert(fx.mf.ID(), img.ID(), frame))
		desc := fx.table.Desc(frame)
		desc.Set(fx.mf, img.ID())
		desc.pinCount = pin
		ids[i] = img.ID()
	}
	return ids
}

func (fx *clockFixture) infos() []FrameInfo {
	out := make([]FrameInfo, fx.table.Len())
	for i := range out {
		out[i] = fx.table.Desc(util.FrameID(i)).Info()
	}
	return out
}

func TestClockInitialHand(t *testing.T) {
	fx := newClockFixture(4)
	assert.Equal(t, util.FrameID(3), fx.replacer.Hand(), "first advance lands on frame 0")

	for i := 0; i < 4; i++ {
		frame, err := fx.replacer.AllocBuf()
		require.NoError(t, err)
		assert.Equal(t, util.FrameID(i), frame, "empty frames are taken in clock order")
	}
}

func TestClockFairness(t *testing.T) {
	fx := newClockFixture(3)
	ids := fx.fill(t, 0, 0, 0)

	frame, err := fx.replacer.AllocBuf()
	require.NoError(t, err)

	// 0,1,2 lose their refbit, then 0 is taken: no frame visited more than twice
	assert.Equal(t, util.FrameID(0), frame)
	assert.Equal(t, int64(4), fx.stats.Snapshot().ClockAdvances)
	assert.Equal(t, util.FrameID(0), fx.replacer.Hand())

	assert.Equal(t, FrameInfo{Frame: 0}, fx.table.Desc(0).Info(), "victim fully cleared")
	assert.False(t, fx.table.Desc(1).refbit)
	assert.False(t, fx.table.Desc(2).refbit)

	_, ok := fx.index.Lookup(fx.mf.ID(), ids[0])
	assert.False(t, ok, "victim unmapped")
	assert.Equal(t, 2, fx.index.Len())
	assert.Equal(t, int64(1), fx.stats.Snapshot().Evictions)
}

func TestClockExhaustion(t *testing.T) {
	fx := newClockFixture(2)
	fx.fill(t, 1, 1)

	before := fx.infos()
	hand := fx.replacer.Hand()

	frame, err := fx.replacer.AllocBuf()
	assert.ErrorIs(t, err, util.ErrBufferPoolExhausted)
	assert.Equal(t, util.FrameID(-1), frame)

	assert.Equal(t, before, fx.infos(), "refbits restored after failed sweep")
	assert.Equal(t, hand, fx.replacer.Hand(), "hand restored after failed sweep")
	assert.Equal(t, 2, fx.index.Len())
	assert.Equal(t, int64(1), fx.stats.Snapshot().Exhaustions)
}

func TestClockBusyRunResets(t *testing.T) {
	fx := newClockFixture(3)
	fx.fill(t, 1, 1, 0)
	fx.table.Desc(0).refbit = false
	fx.table.Desc(1).refbit = false

	// 0 busy, 1 busy, 2 second chance, 0 busy, 1 busy, 2 victim
	frame, err := fx.replacer.AllocBuf()
	require.NoError(t, err)
	assert.Equal(t, util.FrameID(2), frame)
	assert.Equal(t, int64(6), fx.stats.Snapshot().ClockAdvances)
}

func TestClockDirtyVictim(t *testing.T) {
	fx := newClockFixture(1)
	ids := fx.fill(t, 0)

	desc := fx.table.Desc(0)
	desc.dirty = true
	desc.refbit = false
	copy(fx.pool.Slot(0).Data[:], "dirty bytes")

	frame, err := fx.replacer.AllocBuf()
	require.NoError(t, err)
	assert.Equal(t, util.FrameID(0), frame)
	assert.Equal(t, 1, fx.mf.Writes())

	onDisk, err := fx.mf.ReadPage(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "dirty bytes", string(onDisk.Data[:11]))
	assert.Equal(t, int64(1), fx.stats.Snapshot().PageWrites)
}

type failingFile struct {
	*file.MemFile
}

var errDiskGone = errors.New("disk gone")

func (f failingFile) WritePage(*page.Page) error {
	return errDiskGone
}

func TestClockWriteBackFailure(t *testing.T) {
	fx := newClockFixture(2)
	ff := failingFile{fx.mf}
	ids := fx.fill(t, 0, 1)

	victim := fx.table.Desc(0)
	victim.file = ff
	victim.dirty = true

	before := fx.infos()
	hand := fx.replacer.Hand()

	_, err := fx.replacer.AllocBuf()
	assert.ErrorIs(t, err, errDiskGone)

	assert.Equal(t, before, fx.infos(), "victim stays valid and dirty")
	assert.Equal(t, hand, fx.replacer.Hand())
	frame, ok := fx.index.Lookup(fx.mf.ID(), ids[0])
	assert.True(t, ok)
	assert.Equal(t, util.FrameID(0), frame)
}

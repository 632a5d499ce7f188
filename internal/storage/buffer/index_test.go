package buffer

import (
	"testing"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestPageIndex(t *testing.T) {
	ix := NewPageIndex(10)
	assert.GreaterOrEqual(t, len(ix.buckets), 12, "buckets sized above the frame count")

	t.Run("InsertLookup", func(t *testing.T) {
		assert.NoError(t, ix.Insert(1, 5, 3))
		frame, ok := ix.Lookup(1, 5)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(3), frame)
	})

	t.Run("Duplicate", func(t *testing.T) {
		assert.ErrorIs(t, ix.Insert(1, 5, 4), util.ErrDuplicateKey)
		frame, _ := ix.Lookup(1, 5)
		assert.Equal(t, util.FrameID(3), frame, "first mapping kept")
	})

	t.Run("SamePageOtherFile", func(t *testing.T) {
		assert.NoError(t, ix.Insert(2, 5, 4))
		frame, ok := ix.Lookup(2, 5)
		assert.True(t, ok)
		assert.Equal(t, util.FrameID(4), frame)
	})

	t.Run("Miss", func(t *testing.T) {
		_, ok := ix.Lookup(3, 5)
		assert.False(t, ok)
		assert.False(t, ix.Remove(3, 5))
	})

	t.Run("Remove", func(t *testing.T) {
		assert.True(t, ix.Remove(1, 5))
		_, ok := ix.Lookup(1, 5)
		assert.False(t, ok)
		assert.False(t, ix.Remove(1, 5), "second remove misses")
		assert.Equal(t, 1, ix.Len())
	})
}

func TestPageIndexManyKeys(t *testing.T) {
	ix := NewPageIndex(4)
	for f := util.FileID(0); f < 5; f++ {
		for p := util.PageID(1); p <= 40; p++ {
			assert.NoError(t, ix.Insert(f, p, util.FrameID(int(f)*100+int(p))))
		}
	}
	assert.Equal(t, 200, ix.Len())

	for f := util.FileID(0); f < 5; f++ {
		for p := util.PageID(1); p <= 40; p += 2 {
			assert.True(t, ix.Remove(f, p))
		}
	}
	assert.Equal(t, 100, ix.Len())

	for f := util.FileID(0); f < 5; f++ {
		for p := util.PageID(1); p <= 40; p++ {
			frame, ok := ix.Lookup(f, p)
			if p%2 == 1 {
				assert.False(t, ok, "file %d page %d removed", f, p)
				continue
			}
			assert.True(t, ok, "file %d page %d kept", f, p)
			assert.Equal(t, util.FrameID(int(f)*100+int(p)), frame)
		}
	}
}

package file

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

var fileMagic = []byte("BUFMGR01")

/**
* FileManager reads and writes fixed-size pages of one disk file.
* Page i lives at offset i*PageSize; page 0 holds the file header.
* Deleted pages are flagged free on disk and handed out again by AllocatePage.
**/
type FileManager struct {
	File     *os.File
	Size     int64
	path     string
	id       util.FileID
	nextPage util.PageID
	free     []util.PageID
}

func NewFileManager(path string) (*FileManager, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fm := &FileManager{File: f, path: abs, id: IdentityOf(abs)}
	if err := fm.load(); err != nil {
		f.Close()
		return nil, fmt.Errorf("load file %s: %w", abs, err)
	}

	return fm, nil
}

func (fm *FileManager) load() error {
	info, err := fm.File.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if info.Size() == 0 {
		header := make([]byte, util.PageSize)
		copy(header, fileMagic)
		if _, err := fm.File.WriteAt(header, 0); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		fm.Size = util.PageSize
		fm.nextPage = 1
		return nil
	}

	if info.Size()%util.PageSize != 0 {
		return util.ErrBadFileHeader
	}

	magic := make([]byte, len(fileMagic))
	if _, err := fm.File.ReadAt(magic, 0); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(magic, fileMagic) {
		return util.ErrBadFileHeader
	}

	fm.Size = info.Size()
	fm.nextPage = util.PageID(fm.Size / util.PageSize)

	// rebuild the free list from page headers
	hdr := make([]byte, page.HEADER_SIZE)
	for id := util.PageID(1); id < fm.nextPage; id++ {
		if _, err := fm.File.ReadAt(hdr, offsetOf(id)); err != nil {
			return fmt.Errorf("read page header %d: %w", id, err)
		}
		h := page.PageHeader{Flags: binary.LittleEndian.Uint16(hdr[12:14])}
		if h.IsFree() {
			fm.free = append(fm.free, id)
		}
	}
	return nil
}

func offsetOf(pageId util.PageID) int64 {
	return int64(pageId) * int64(util.PageSize)
}

func (fm *FileManager) ID() util.FileID {
	return fm.id
}

func (fm *FileManager) Filename() string {
	return fm.path
}

// NumPages returns the number of page slots, header excluded
func (fm *FileManager) NumPages() int {
	return int(fm.nextPage) - 1
}

// FreePages returns the number of deleted slots awaiting reuse
func (fm *FileManager) FreePages() int {
	return len(fm.free)
}

/* ALLOCATE */
func (fm *FileManager) AllocatePage() (*page.Page, error) {
	if fm.File == nil {
		return nil, util.ErrFileManagerNil
	}

	var id util.PageID
	reused := len(fm.free) > 0
	if reused {
		id = fm.free[len(fm.free)-1]
	} else {
		id = fm.nextPage
	}

	p := &page.Page{Header: page.PageHeader{PageID: id}}
	if err := fm.writeAt(p); err != nil {
		return nil, fmt.Errorf("[AllocatePage] %w", err)
	}

	if reused {
		fm.free = fm.free[:len(fm.free)-1]
	} else {
		fm.nextPage++
		fm.Size = offsetOf(fm.nextPage)
	}

	out := *p
	return &out, nil
}

/* READ FILE */
func (fm *FileManager) ReadPage(pageId util.PageID) (*page.Page, error) {
	if fm.File == nil {
		return nil, util.ErrFileManagerNil
	}
	if pageId == util.InvalidPageID || pageId >= fm.nextPage {
		return nil, fmt.Errorf("read page %d: %w", pageId, util.ErrPageNotFound)
	}

	buf := make([]byte, util.PageSize)
	if _, err := fm.File.ReadAt(buf, offsetOf(pageId)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read page %d: %w", pageId, err)
	}

	p, err := page.Deserialize(buf)
	if err != nil {
		return nil, fmt.Errorf("deserialize page %d: %w", pageId, err)
	}
	if p.Header.IsFree() {
		return nil, fmt.Errorf("read page %d: %w", pageId, util.ErrPageNotFound)
	}
	if p.ID() != pageId {
		return nil, fmt.Errorf("page %d holds id %d: %w", pageId, p.ID(), util.ErrInvalidPageId)
	}

	return p, nil
}

/* WRITE FILE */
func (fm *FileManager) WritePage(p *page.Page) error {
	if fm.File == nil {
		return util.ErrFileManagerNil
	}
	if p.ID() == util.InvalidPageID {
		return util.ErrInvalidPageId
	}
	if p.ID() >= fm.nextPage {
		return fmt.Errorf("[WritePage] page %d: %w", p.ID(), util.ErrPageOutOfBounds)
	}
	if fm.isFree(p.ID()) {
		return fmt.Errorf("[WritePage] page %d: %w", p.ID(), util.ErrPageNotFound)
	}

	img := *p
	img.Header.ClearFreeFlag()
	if err := fm.writeAt(&img); err != nil {
		return fmt.Errorf("[WritePage] %w", err)
	}
	return nil
}

/* DELETE */
// DeletePage checks bounds and the free list only, so a page with a corrupt body can still be dropped
func (fm *FileManager) DeletePage(pageId util.PageID) error {
	if fm.File == nil {
		return util.ErrFileManagerNil
	}
	if pageId == util.InvalidPageID || pageId >= fm.nextPage || fm.isFree(pageId) {
		return fmt.Errorf("[DeletePage] page %d: %w", pageId, util.ErrPageNotFound)
	}

	p := &page.Page{Header: page.PageHeader{PageID: pageId}}
	p.Header.SetFreeFlag()
	if err := fm.writeAt(p); err != nil {
		return fmt.Errorf("[DeletePage] %w", err)
	}

	fm.free = append(fm.free, pageId)
	return nil
}

func (fm *FileManager) isFree(pageId util.PageID) bool {
	for _, id := range fm.free {
		if id == pageId {
			return true
		}
	}
	return false
}

func (fm *FileManager) writeAt(p *page.Page) error {
	if _, err := fm.File.WriteAt(p.Serialize(), offsetOf(p.ID())); err != nil {
		return fmt.Errorf("write page %d: %w", p.ID(), err)
	}
	return nil
}

/**
* CLOSE FUNCTION
**/
func (fm *FileManager) Close() error {
	if fm == nil || fm.File == nil {
		return nil // Idempotent
	}
	var err error
	if e := fm.File.Sync(); e != nil {
		err = errors.Join(err, fmt.Errorf("sync file: %w", e))
	}
	if e := fm.File.Close(); e != nil {
		err = errors.Join(err, fmt.Errorf("close file: %w", e))
	}
	fm.File = nil
	return err
}

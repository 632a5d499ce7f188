package file

import (
	"fmt"
	"sync"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// MemFile keeps pages in memory. Images are copied by value in and out,
// and every call is counted so callers can assert on I/O traffic.
type MemFile struct {
	name     string
	id       util.FileID
	pages    map[util.PageID]page.Page
	nextPage util.PageID

	mu      sync.Mutex
	reads   int
	writes  int
	deletes int
}

func NewMemFile(name string) *MemFile {
	return &MemFile{
		name:     name,
		id:       IdentityOf("mem:" + name),
		pages:    make(map[util.PageID]page.Page),
		nextPage: 1,
	}
}

func (mf *MemFile) ID() util.FileID {
	return mf.id
}

func (mf *MemFile) Filename() string {
	return mf.name
}

func (mf *MemFile) AllocatePage() (*page.Page, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	id := mf.nextPage
	mf.nextPage++
	p := page.Page{Header: page.PageHeader{PageID: id}}
	mf.pages[id] = p
	return &p, nil
}

func (mf *MemFile) ReadPage(pageId util.PageID) (*page.Page, error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	p, ok := mf.pages[pageId]
	if !ok {
		return nil, fmt.Errorf("read page %d of %s: %w", pageId, mf.name, util.ErrPageNotFound)
	}
	mf.reads++
	return &p, nil
}

func (mf *MemFile) WritePage(p *page.Page) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if _, ok := mf.pages[p.ID()]; !ok {
		return fmt.Errorf("write page %d of %s: %w", p.ID(), mf.name, util.ErrPageNotFound)
	}
	mf.pages[p.ID()] = *p
	mf.writes++
	return nil
}

func (mf *MemFile) DeletePage(pageId util.PageID) error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if _, ok := mf.pages[pageId]; !ok {
		return fmt.Errorf("delete page %d of %s: %w", pageId, mf.name, util.ErrPageNotFound)
	}
	delete(mf.pages, pageId)
	mf.deletes++
	return nil
}

// Has reports whether the page exists in the file
func (mf *MemFile) Has(pageId util.PageID) bool {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	_, ok := mf.pages[pageId]
	return ok
}

func (mf *MemFile) Reads() int {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return mf.reads
}

func (mf *MemFile) Writes() int {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return mf.writes
}

func (mf *MemFile) Deletes() int {
	mf.mu.Lock()
	defer mf.mu.Unlock()
	return mf.deletes
}

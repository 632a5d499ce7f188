package file

import (
	"github.com/OneOfOne/xxhash"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// File is the page store the buffer manager reads from and writes back to.
// WritePage is keyed by the id embedded in the image.
type File interface {
	ID() util.FileID
	Filename() string
	AllocatePage() (*page.Page, error)
	ReadPage(pageId util.PageID) (*page.Page, error)
	WritePage(p *page.Page) error
	DeletePage(pageId util.PageID) error
}

// IdentityOf derives a stable file identity from a name
func IdentityOf(name string) util.FileID {
	return util.FileID(xxhash.Checksum64([]byte(name)))
}

package page

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// CreateTestPage builds a page image with its checksum already stamped
func CreateTestPage(pageID util.PageID, data []byte) *Page {
	p := &Page{
		Header: PageHeader{
			PageID: pageID,
			Flags:  0,
		},
	}
	if len(data) > len(p.Data) {
		data = data[:len(p.Data)] // Truncate to fit
	}
	copy(p.Data[:], data)
	p.Header.Checksum = p.checksum()
	return p
}

package page

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

const (
	HEADER_SIZE = 16 // Size of PageHeader struct: PageID(8) + Checksum(4) + Flags(2) + padding(2)
	DATA_SIZE   = util.PageSize - HEADER_SIZE
)

const (
	// FlagFree marks an on-disk slot whose page was deleted and may be reused
	FlagFree uint16 = 1 << iota
)

// Page is block that read/write from disk
type Page struct {
	Header PageHeader
	Data   [DATA_SIZE]byte
}

type PageHeader struct {
	PageID   util.PageID // 8 bytes
	Checksum uint32      // 4 bytes
	Flags    uint16      // 2 bytes
	_        uint16      //2 bytes (padding)
}

func (h *PageHeader) SetFreeFlag()   { h.Flags |= FlagFree }
func (h *PageHeader) ClearFreeFlag() { h.Flags &^= FlagFree }
func (h *PageHeader) IsFree() bool   { return h.Flags&FlagFree != 0 }

// ID returns the page id embedded in the image
func (p *Page) ID() util.PageID {
	return p.Header.PageID
}

func (p *Page) checksum() uint32 {
	return xxhash.Checksum32(p.Data[:])
}

// Serialize packs the page into a byte slice for writing
func (p *Page) Serialize() []byte {
	buf := make([]byte, util.PageSize)
	p.Header.Checksum = p.checksum()
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	binary.LittleEndian.PutUint32(buf[8:12], p.Header.Checksum)
	binary.LittleEndian.PutUint16(buf[12:14], p.Header.Flags)

	copy(buf[HEADER_SIZE:], p.Data[:])
	return buf
}

// Deserialize unpacks from bytes, validates checksum
func Deserialize(data []byte) (*Page, error) {
	if len(data) != util.PageSize {
		return nil, util.ErrInvalidPageSize
	}

	p := &Page{}
	p.Header.PageID = util.PageID(binary.LittleEndian.Uint64(data[0:8]))
	p.Header.Checksum = binary.LittleEndian.Uint32(data[8:12])
	p.Header.Flags = binary.LittleEndian.Uint16(data[12:14])
	copy(p.Data[:], data[HEADER_SIZE:])

	if p.checksum() != p.Header.Checksum {
		return nil, util.ErrChecksumMismatch
	}
	return p, nil
}

package fast

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
)

// The address space is 20 bits (1 MiB), split in 4 KiB pages.
const (
	AddrBits     = 20
	MemorySize   = 1 << AddrBits
	AddrMask     = MemorySize - 1
	PageAddrSize = 12
	PageKeySize  = AddrBits - PageAddrSize
	PageSize     = 1 << PageAddrSize
	PageAddrMask = PageSize - 1
	MaxPageCount = 1 << PageKeySize
)

func HashPair(left, right [32]byte) [32]byte {
	return crypto.Keccak256Hash(left[:], right[:])
}

// zeroHashes[i] is the root of a subtree of 2**i empty pages.
var zeroHashes = func() [PageKeySize + 1][32]byte {
	var out [PageKeySize + 1][32]byte
	var empty Page
	out[0] = crypto.Keccak256Hash(empty[:])
	for i := 1; i <= PageKeySize; i++ {
		out[i] = HashPair(out[i-1], out[i-1])
	}
	return out
}()

// Memory is a flat, zero-initialized, byte-addressable memory of MemorySize bytes.
// Pages are only allocated once written to.
type Memory struct {
	// pageIndex -> cached page
	pages map[uint32]*CachedPage

	// two caches: we often read instructions from one page, and do memory things with another page.
	// this prevents map lookups each instruction
	lastPageKeys [2]uint32
	lastPage     [2]*CachedPage
}

func NewMemory() *Memory {
	return &Memory{
		pages:        make(map[uint32]*CachedPage),
		lastPageKeys: [2]uint32{^uint32(0), ^uint32(0)}, // default to invalid keys, to not match any pages
	}
}

func (m *Memory) PageCount() int {
	return len(m.pages)
}

// pageIndices returns the allocated page indices in ascending order.
func (m *Memory) pageIndices() []uint32 {
	out := make([]uint32, 0, len(m.pages))
	for k := range m.pages {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Memory) ForEachPage(fn func(pageIndex uint32, page *Page) error) error {
	for _, pageIndex := range m.pageIndices() {
		if err := fn(pageIndex, m.pages[pageIndex].Data); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) pageLookup(pageIndex uint32) (*CachedPage, bool) {
	// hit caches
	if pageIndex == m.lastPageKeys[0] {
		return m.lastPage[0], true
	}
	if pageIndex == m.lastPageKeys[1] {
		return m.lastPage[1], true
	}
	p, ok := m.pages[pageIndex]

	// only cache existing pages.
	if ok {
		m.lastPageKeys[1] = m.lastPageKeys[0]
		m.lastPage[1] = m.lastPage[0]
		m.lastPageKeys[0] = pageIndex
		m.lastPage[0] = p
	}

	return p, ok
}

func (m *Memory) AllocPage(pageIndex uint32) *CachedPage {
	if pageIndex >= MaxPageCount {
		panic(fmt.Errorf("page index %d outside of address space", pageIndex))
	}
	p := &CachedPage{Data: new(Page)}
	m.pages[pageIndex] = p
	// a re-allocated page replaces any cached entry
	for i := range m.lastPageKeys {
		if m.lastPageKeys[i] == pageIndex {
			m.lastPage[i] = p
		}
	}
	return p
}

// InRange reports whether the size bytes starting at addr all fall inside the address space.
func (m *Memory) InRange(addr uint32, size uint32) bool {
	return uint64(addr)+uint64(size) <= MemorySize
}

func (m *Memory) SetUnaligned(addr uint32, dat []byte) {
	if !m.InRange(addr, uint32(len(dat))) {
		panic(fmt.Errorf("cannot write %d bytes at 0x%x: out of memory range", len(dat), addr))
	}
	for len(dat) > 0 {
		pageIndex := addr >> PageAddrSize
		pageAddr := addr & PageAddrMask
		p, ok := m.pageLookup(pageIndex)
		if !ok {
			// allocate the page if we have not already.
			p = m.AllocPage(pageIndex)
		}
		p.Invalidate() // the hash of this page is stale now that the value changed
		n := copy(p.Data[pageAddr:], dat)
		dat = dat[n:]
		addr += uint32(n)
	}
}

func (m *Memory) GetUnaligned(addr uint32, dest []byte) {
	if !m.InRange(addr, uint32(len(dest))) {
		panic(fmt.Errorf("cannot read %d bytes at 0x%x: out of memory range", len(dest), addr))
	}
	for len(dest) > 0 {
		pageIndex := addr >> PageAddrSize
		pageAddr := addr & PageAddrMask
		var n int
		if p, ok := m.pageLookup(pageIndex); ok {
			n = copy(dest, p.Data[pageAddr:])
		} else {
			l := PageSize - pageAddr
			if uint32(len(dest)) < l {
				l = uint32(len(dest))
			}
			clear(dest[:l]) // unallocated memory reads as zero
			n = int(l)
		}
		dest = dest[n:]
		addr += uint32(n)
	}
}

// GetWord reads the big-endian 4 byte word at addr.
func (m *Memory) GetWord(addr uint32) uint32 {
	var out [4]byte
	m.GetUnaligned(addr, out[:])
	return binary.BigEndian.Uint32(out[:])
}

// SetWord writes v as a big-endian 4 byte word at addr.
func (m *Memory) SetWord(addr uint32, v uint32) {
	var dat [4]byte
	binary.BigEndian.PutUint32(dat[:], v)
	m.SetUnaligned(addr, dat[:])
}

// MerkleRoot is the keccak256 binary merkle root over the hashes of all MaxPageCount pages.
func (m *Memory) MerkleRoot() [32]byte {
	level := make([][32]byte, MaxPageCount)
	for i := range level {
		if p, ok := m.pages[uint32(i)]; ok {
			level[i] = p.MerkleRoot()
		} else {
			level[i] = zeroHashes[0]
		}
	}
	for len(level) > 1 {
		next := level[:len(level)/2]
		for i := range next {
			next[i] = HashPair(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

type pageEntry struct {
	Index uint32 `json:"index"`
	Data  *Page  `json:"data"`
}

func (m *Memory) MarshalJSON() ([]byte, error) {
	pages := make([]pageEntry, 0, len(m.pages))
	for _, k := range m.pageIndices() {
		pages = append(pages, pageEntry{
			Index: k,
			Data:  m.pages[k].Data,
		})
	}
	return json.Marshal(pages)
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var pages []pageEntry
	if err := json.Unmarshal(data, &pages); err != nil {
		return err
	}
	m.pages = make(map[uint32]*CachedPage)
	m.lastPageKeys = [2]uint32{^uint32(0), ^uint32(0)}
	m.lastPage = [2]*CachedPage{nil, nil}
	for i, p := range pages {
		if _, ok := m.pages[p.Index]; ok {
			return fmt.Errorf("cannot load duplicate page, entry %d, page index %d", i, p.Index)
		}
		if p.Index >= MaxPageCount {
			return fmt.Errorf("page entry %d has index %d outside of address space", i, p.Index)
		}
		if p.Data == nil {
			return fmt.Errorf("page entry %d has no data", i)
		}
		m.AllocPage(p.Index).Data = p.Data
	}
	return nil
}

var errRangeOverflow = errors.New("memory range exceeds address space")

// SetMemoryRange copies everything from r into memory, starting at addr.
func (m *Memory) SetMemoryRange(addr uint32, r io.Reader) error {
	for {
		if addr >= MemorySize {
			// only acceptable if the reader is drained
			var rest [1]byte
			if _, err := io.ReadFull(r, rest[:]); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			return errRangeOverflow
		}
		pageIndex := addr >> PageAddrSize
		pageAddr := addr & PageAddrMask
		p, ok := m.pageLookup(pageIndex)
		if !ok {
			p = m.AllocPage(pageIndex)
		}
		p.Invalidate()
		n, err := r.Read(p.Data[pageAddr:])
		addr += uint32(n)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

type memReader struct {
	m     *Memory
	addr  uint32
	count uint32
}

func (r *memReader) Read(dest []byte) (n int, err error) {
	if r.count == 0 {
		return 0, io.EOF
	}
	l := r.count
	if uint32(len(dest)) < l {
		l = uint32(len(dest))
	}
	r.m.GetUnaligned(r.addr, dest[:l])
	r.addr += l
	r.count -= l
	return int(l), nil
}

// ReadMemoryRange returns a reader over count bytes starting at addr.
// The range is clipped to the end of the address space.
func (m *Memory) ReadMemoryRange(addr uint32, count uint32) io.Reader {
	if addr >= MemorySize {
		count = 0
	} else if uint64(addr)+uint64(count) > MemorySize {
		count = MemorySize - addr
	}
	return &memReader{m: m, addr: addr, count: count}
}

// Serialize writes the memory in a simple binary format which can be read again using Deserialize
// The format is a simple concatenation of fields, with prefixed item count for repeating items and using big endian
// encoding for numbers.
//
// len(PageCount)    uint32
// For each page (ascending page index):
//
//	page index          uint32
//	page Data           [PageSize]byte
func (m *Memory) Serialize(out io.Writer) error {
	if err := binary.Write(out, binary.BigEndian, uint32(m.PageCount())); err != nil {
		return err
	}
	for _, pageIndex := range m.pageIndices() {
		if err := binary.Write(out, binary.BigEndian, pageIndex); err != nil {
			return err
		}
		if _, err := out.Write(m.pages[pageIndex].Data[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Deserialize(in io.Reader) error {
	var pageCount uint32
	if err := binary.Read(in, binary.BigEndian, &pageCount); err != nil {
		return err
	}
	if pageCount > MaxPageCount {
		return fmt.Errorf("page count %d exceeds address space", pageCount)
	}
	m.pages = make(map[uint32]*CachedPage)
	m.lastPageKeys = [2]uint32{^uint32(0), ^uint32(0)}
	m.lastPage = [2]*CachedPage{nil, nil}
	for i := uint32(0); i < pageCount; i++ {
		var pageIndex uint32
		if err := binary.Read(in, binary.BigEndian, &pageIndex); err != nil {
			return err
		}
		if pageIndex >= MaxPageCount {
			return fmt.Errorf("page index %d outside of address space", pageIndex)
		}
		if _, ok := m.pages[pageIndex]; ok {
			return fmt.Errorf("cannot load duplicate page, entry %d, page index %d", i, pageIndex)
		}
		page := m.AllocPage(pageIndex)
		if _, err := io.ReadFull(in, page.Data[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Usage() string {
	total := uint64(len(m.pages)) * PageSize
	const unit = 1024
	if total < unit {
		return fmt.Sprintf("%d B", total)
	}
	div, exp := uint64(unit), 0
	for n := total / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	// KiB, MiB
	return fmt.Sprintf("%.1f %ciB", float64(total)/float64(div), "KMGTPE"[exp])
}

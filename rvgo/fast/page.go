package fast

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

type Page [PageSize]byte

func (p *Page) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (p *Page) UnmarshalText(dat []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(dat); err != nil {
		return err
	}
	if len(b) != PageSize {
		return fmt.Errorf("expected %d bytes page, got %d", PageSize, len(b))
	}
	copy(p[:], b)
	return nil
}

// CachedPage is a page with a lazily recomputed keccak256 hash of its contents.
type CachedPage struct {
	Data *Page

	hash  [32]byte
	valid bool
}

func (p *CachedPage) Invalidate() {
	p.valid = false
}

func (p *CachedPage) MerkleRoot() [32]byte {
	if !p.valid {
		p.hash = crypto.Keccak256Hash(p.Data[:])
		p.valid = true
	}
	return p.hash
}

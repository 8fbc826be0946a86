package state

import (
	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/starchain/chain/block"
)

// Chain is the read side of the block store. Returned blocks are shared with
// the store and must not be modified.
type Chain interface {
	// Height of the tail block, or -1 before the genesis block is appended.
	Height() int64

	// GetBlockByHash returns the first block, from genesis, with the given ID.
	GetBlockByHash(blkID ids.ID) (*block.Block, bool)
	GetBlockByHeight(height uint64) (*block.Block, bool)

	// GetStarsByWalletAddress returns, in chain order, every registration
	// owned by address.
	GetStarsByWalletAddress(address string) ([]*block.Registration, error)

	// ValidateChain returns a description of every integrity defect found.
	// An empty result means the chain is valid.
	ValidateChain() ([]string, error)
}

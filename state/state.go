package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/timer/mockable"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/chain/genesis"
)

var (
	_ State = (*state)(nil)

	ErrAppend        = errors.New("block was not appended")
	ErrAlreadySealed = errors.New("block is already sealed")
	ErrEmptyChain    = errors.New("chain has no genesis block")
)

type State interface {
	Chain

	// InitializeChain appends the genesis block if the chain is empty.
	InitializeChain() error

	// Append seals blk on top of the current tail and appends it. blk must
	// not be modified afterwards.
	Append(blk *block.Block) (*block.Block, error)
}

type state struct {
	lock  sync.RWMutex
	clock *mockable.Clock

	// Invariant: height == len(blocks)-1
	// Invariant: blocks[i].Height() == i
	blocks []*block.Block
	height int64
}

// New returns a chain holding only its genesis block, sealed with clk.
func New(clk *mockable.Clock) (State, error) {
	s := &state{
		clock:  clk,
		height: -1,
	}
	return s, s.InitializeChain()
}

func (s *state) InitializeChain() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.height != -1 {
		return nil
	}
	genesisBlk, err := block.New(genesis.New())
	if err != nil {
		return fmt.Errorf("couldn't build genesis block: %w", err)
	}
	_, err = s.append(genesisBlk)
	return err
}

func (s *state) Height() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.height
}

func (s *state) Append(blk *block.Block) (*block.Block, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.append(blk)
}

// append seals blk and pushes it onto the chain.
//
// Invariant: Assumes the write lock is held.
func (s *state) append(blk *block.Block) (*block.Block, error) {
	if blk.ID() != ids.Empty {
		return nil, fmt.Errorf("%w: %s", ErrAlreadySealed, blk.ID())
	}

	blk.Hght = uint64(s.height + 1)
	blk.Time = s.clock.Unix()
	if s.height >= 0 {
		blk.PrntID = s.blocks[s.height].ID()
	}
	if err := blk.Initialize(); err != nil {
		return nil, err
	}

	s.blocks = append(s.blocks, blk)
	s.height++

	if s.blocks[s.height] != blk {
		return nil, fmt.Errorf("%w at height %d", ErrAppend, s.height)
	}
	return blk, nil
}

func (s *state) GetBlockByHash(blkID ids.ID) (*block.Block, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, blk := range s.blocks {
		if blk.ID() == blkID {
			return blk, true
		}
	}
	return nil, false
}

func (s *state) GetBlockByHeight(height uint64) (*block.Block, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if height >= uint64(len(s.blocks)) {
		return nil, false
	}
	return s.blocks[height], true
}

func (s *state) GetStarsByWalletAddress(address string) ([]*block.Registration, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stars := []*block.Registration{}
	for _, blk := range s.blocks {
		data, err := blk.Data()
		if err != nil {
			return nil, err
		}
		reg, ok := data.(*block.Registration)
		if !ok || reg.Owner != address {
			continue
		}
		stars = append(stars, reg)
	}
	return stars, nil
}

func (s *state) ValidateChain() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.height < 0 {
		return nil, ErrEmptyChain
	}

	// With only the genesis block there is no link to check.
	errs := []string{}
	for i := int64(1); i <= s.height; i++ {
		blk := s.blocks[i]
		if !blk.Validate() {
			errs = append(errs, fmt.Sprintf("content hash mismatch at height %d", i))
		}
		if blk.Parent() != s.blocks[i-1].ID() {
			errs = append(errs, fmt.Sprintf("broken previous-hash link at height %d", i))
		}
	}
	return errs, nil
}

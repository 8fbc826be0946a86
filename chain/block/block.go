package block

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/hashing"
	"github.com/MetalBlockchain/starchain/chain/genesis"
	"github.com/MetalBlockchain/starchain/chain/star"
)

var (
	ErrDecode          = errors.New("unable to decode block data")
	ErrNotRegistration = errors.New("block does not hold a star registration")
)

// Block is a single record of the chain. A block returned by New is unsealed:
// its height, time, parent and ID are assigned once by the chain that
// appends it, after which the block must not be modified.
type Block struct {
	// parent's ID. ids.Empty for the genesis block.
	PrntID ids.ID `serialize:"true" json:"previousBlockHash"`

	// This block's height. The genesis block is at height 0.
	Hght uint64 `serialize:"true" json:"height"`

	// Unix time, in seconds, at which the block was sealed.
	Time uint64 `serialize:"true" json:"time"`

	// JSON encoded payload.
	Body []byte `serialize:"true" json:"body"`

	BlockID ids.ID `json:"hash"`
	bytes   []byte
}

// Registration is the payload of every block after genesis.
type Registration struct {
	Owner string    `json:"owner"`
	Star  star.Star `json:"star"`
}

// New returns an unsealed block holding the JSON encoding of payload.
func New(payload interface{}) (*Block, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode block payload: %w", err)
	}
	return &Block{Body: body}, nil
}

// Initialize serializes the block and derives its ID from those bytes. Only
// the chain calls this, while sealing.
func (b *Block) Initialize() error {
	bytes, err := Codec.Marshal(CodecVersion, b)
	if err != nil {
		return fmt.Errorf("couldn't marshal block: %w", err)
	}
	b.initialize(bytes)
	return nil
}

func (b *Block) initialize(bytes []byte) {
	b.BlockID = ids.ID(hashing.ComputeHash256Array(bytes))
	b.bytes = bytes
}

// Validate reports whether the stored ID still matches the block's content.
func (b *Block) Validate() bool {
	bytes, err := Codec.Marshal(CodecVersion, b)
	if err != nil {
		return false
	}
	return ids.ID(hashing.ComputeHash256Array(bytes)) == b.BlockID
}

func (b *Block) ID() ids.ID {
	return b.BlockID
}

func (b *Block) Parent() ids.ID {
	return b.PrntID
}

func (b *Block) Height() uint64 {
	return b.Hght
}

func (b *Block) Timestamp() time.Time {
	return time.Unix(int64(b.Time), 0)
}

func (b *Block) Bytes() []byte {
	return b.bytes
}

// Data decodes the block payload. The genesis block always decodes to
// genesis.Data; every other block decodes to a *Registration.
func (b *Block) Data() (interface{}, error) {
	if b.Hght == 0 {
		return genesis.Data, nil
	}
	return b.Registration()
}

func (b *Block) Registration() (*Registration, error) {
	if b.Hght == 0 {
		return nil, ErrNotRegistration
	}
	reg := &Registration{}
	if err := json.Unmarshal(b.Body, reg); err != nil {
		return nil, fmt.Errorf("%w at height %d: %v", ErrDecode, b.Hght, err)
	}
	return reg, nil
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(ID=%s,Height=%d)", b.BlockID, b.Hght)
}

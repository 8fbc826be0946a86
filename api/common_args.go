package api

import (
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/starchain/chain/star"

	avajson "github.com/MetalBlockchain/metalgo/utils/json"
)

type AddressArgs struct {
	Address string `json:"address"`
}

type SubmitStarArgs struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Signature string    `json:"signature"`
	Star      star.Star `json:"star"`
}

// GetBlockByHashArgs carries the hash as submitted. A hash that isn't a valid
// block ID matches no block.
type GetBlockByHashArgs struct {
	Hash     string              `json:"hash"`
	Encoding formatting.Encoding `json:"encoding"`
}

type GetBlockByHeightArgs struct {
	Height   avajson.Uint64      `json:"height"`
	Encoding formatting.Encoding `json:"encoding"`
}

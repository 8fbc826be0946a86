package api

import (
	"encoding/json"

	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/starchain/chain/block"
)

type PingReply struct {
	Success bool `json:"success"`
}

type GetHeightReply struct {
	Height int64 `json:"height"`
}

type ChallengeReply struct {
	Message string `json:"message"`
}

type SubmitStarReply struct {
	Block *block.Block `json:"block"`
}

// GetBlockResponse carries a null block when none matched the request.
type GetBlockResponse struct {
	Block    json.RawMessage     `json:"block"`
	Encoding formatting.Encoding `json:"encoding"`
}

type GetStarsReply struct {
	Stars []*block.Registration `json:"stars"`
}

type ValidateChainReply struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

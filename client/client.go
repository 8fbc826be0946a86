package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/metalgo/utils/rpc"
	"github.com/MetalBlockchain/starchain/api"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/chain/constants"
	"github.com/MetalBlockchain/starchain/chain/star"
	"github.com/MetalBlockchain/starchain/vm"

	avajson "github.com/MetalBlockchain/metalgo/utils/json"
)

type Client interface {
	// Pings the node.
	Ping(ctx context.Context) (bool, error)
	GetHeight(ctx context.Context) (int64, error)
	// Returns the message [address] has to sign to register a star.
	RequestChallenge(ctx context.Context, address string) (string, error)
	// Registers [s] to [address] and returns the sealed block.
	SubmitStar(ctx context.Context, address, message, signature string, s star.Star) (*block.Block, error)
	// GetBlockByHash and GetBlockByHeight report false when no block matched.
	GetBlockByHash(ctx context.Context, blkID ids.ID) (*block.Block, bool, error)
	GetBlockByHeight(ctx context.Context, height uint64) (*block.Block, bool, error)
	GetStarsByWalletAddress(ctx context.Context, address string) ([]*block.Registration, error)
	// Returns the defects found in the chain, none when it is valid.
	ValidateChain(ctx context.Context) ([]string, error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(
		fmt.Sprintf("%s%s", uri, vm.Endpoint),
	)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func method(name string) string {
	return constants.ServiceName + "." + name
}

func (cli *client) Ping(ctx context.Context) (bool, error) {
	resp := new(api.PingReply)
	err := cli.req.SendRequest(ctx,
		method("ping"),
		struct{}{},
		resp,
	)
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (cli *client) GetHeight(ctx context.Context) (int64, error) {
	resp := new(api.GetHeightReply)
	err := cli.req.SendRequest(ctx,
		method("getHeight"),
		struct{}{},
		resp,
	)
	return resp.Height, err
}

func (cli *client) RequestChallenge(ctx context.Context, address string) (string, error) {
	resp := new(api.ChallengeReply)
	err := cli.req.SendRequest(ctx,
		method("requestChallenge"),
		&api.AddressArgs{Address: address},
		resp,
	)
	return resp.Message, err
}

func (cli *client) SubmitStar(ctx context.Context, address, message, signature string, s star.Star) (*block.Block, error) {
	resp := new(api.SubmitStarReply)
	err := cli.req.SendRequest(ctx,
		method("submitStar"),
		&api.SubmitStarArgs{
			Address:   address,
			Message:   message,
			Signature: signature,
			Star:      s,
		},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Block, nil
}

func (cli *client) GetBlockByHash(ctx context.Context, blkID ids.ID) (*block.Block, bool, error) {
	resp := new(api.GetBlockResponse)
	err := cli.req.SendRequest(ctx,
		method("getBlockByHash"),
		&api.GetBlockByHashArgs{
			Hash:     blkID.String(),
			Encoding: formatting.Hex,
		},
		resp,
	)
	if err != nil {
		return nil, false, err
	}
	return parseBlock(resp)
}

func (cli *client) GetBlockByHeight(ctx context.Context, height uint64) (*block.Block, bool, error) {
	resp := new(api.GetBlockResponse)
	err := cli.req.SendRequest(ctx,
		method("getBlockByHeight"),
		&api.GetBlockByHeightArgs{
			Height:   avajson.Uint64(height),
			Encoding: formatting.Hex,
		},
		resp,
	)
	if err != nil {
		return nil, false, err
	}
	return parseBlock(resp)
}

func parseBlock(resp *api.GetBlockResponse) (*block.Block, bool, error) {
	if len(resp.Block) == 0 || bytes.Equal(resp.Block, []byte("null")) {
		return nil, false, nil
	}

	if resp.Encoding == formatting.JSON {
		blk := &block.Block{}
		if err := json.Unmarshal(resp.Block, blk); err != nil {
			return nil, false, err
		}
		return blk, true, nil
	}

	var encoded string
	if err := json.Unmarshal(resp.Block, &encoded); err != nil {
		return nil, false, err
	}
	blkBytes, err := formatting.Decode(resp.Encoding, encoded)
	if err != nil {
		return nil, false, fmt.Errorf("couldn't decode block: %w", err)
	}
	blk, err := block.Parse(blkBytes)
	if err != nil {
		return nil, false, err
	}
	return blk, true, nil
}

func (cli *client) GetStarsByWalletAddress(ctx context.Context, address string) ([]*block.Registration, error) {
	resp := new(api.GetStarsReply)
	err := cli.req.SendRequest(ctx,
		method("getStarsByWalletAddress"),
		&api.AddressArgs{Address: address},
		resp,
	)
	return resp.Stars, err
}

func (cli *client) ValidateChain(ctx context.Context) ([]string, error) {
	resp := new(api.ValidateChainReply)
	err := cli.req.SendRequest(ctx,
		method("validateChain"),
		struct{}{},
		resp,
	)
	return resp.Errors, err
}

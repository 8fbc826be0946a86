package vm

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/formatting"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/starchain/api"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/chain/constants"
	"go.uber.org/zap"
)

const (
	Endpoint = "/rpc"
)

var nullBlock = json.RawMessage("null")

type Service struct {
	vm *VM
}

func (s *Service) Ping(_ *http.Request, _ *struct{}, response *api.PingReply) (err error) {
	s.vm.log.Info("API called", zap.String("service", constants.ServiceName), zap.String("method", "ping"))

	response.Success = true

	return nil
}

func (s *Service) GetHeight(_ *http.Request, _ *struct{}, reply *api.GetHeightReply) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "getHeight"),
	)

	reply.Height = s.vm.GetHeight()
	return nil
}

func (s *Service) RequestChallenge(_ *http.Request, args *api.AddressArgs, reply *api.ChallengeReply) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "requestChallenge"),
		logging.UserString("address", args.Address),
	)

	message, err := s.vm.RequestOwnershipChallenge(args.Address)
	if err != nil {
		return err
	}
	reply.Message = message
	return nil
}

func (s *Service) SubmitStar(_ *http.Request, args *api.SubmitStarArgs, reply *api.SubmitStarReply) error {
	s.vm.log.Info("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "submitStar"),
		logging.UserString("address", args.Address),
	)

	blk, err := s.vm.SubmitStar(args.Address, args.Message, args.Signature, args.Star)
	if err != nil {
		return fmt.Errorf("couldn't register star: %w", err)
	}
	reply.Block = blk
	return nil
}

func (s *Service) GetBlockByHash(_ *http.Request, args *api.GetBlockByHashArgs, reply *api.GetBlockResponse) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "getBlockByHash"),
		logging.UserString("hash", args.Hash),
	)

	reply.Encoding = args.Encoding
	blkID, err := ids.FromString(args.Hash)
	if err != nil {
		reply.Block = nullBlock
		return nil
	}
	blk, ok := s.vm.GetBlockByHash(blkID)
	if !ok {
		reply.Block = nullBlock
		return nil
	}
	return encodeBlock(blk, args.Encoding, reply)
}

func (s *Service) GetBlockByHeight(_ *http.Request, args *api.GetBlockByHeightArgs, reply *api.GetBlockResponse) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "getBlockByHeight"),
		zap.Uint64("height", uint64(args.Height)),
	)

	reply.Encoding = args.Encoding
	blk, ok := s.vm.GetBlockByHeight(uint64(args.Height))
	if !ok {
		reply.Block = nullBlock
		return nil
	}
	return encodeBlock(blk, args.Encoding, reply)
}

func encodeBlock(blk *block.Block, encoding formatting.Encoding, reply *api.GetBlockResponse) error {
	var (
		result any
		err    error
	)
	if encoding == formatting.JSON {
		result = blk
	} else {
		result, err = formatting.Encode(encoding, blk.Bytes())
		if err != nil {
			return fmt.Errorf("couldn't encode block %s as string: %w", blk.ID(), err)
		}
	}

	reply.Block, err = json.Marshal(result)
	return err
}

func (s *Service) GetStarsByWalletAddress(_ *http.Request, args *api.AddressArgs, reply *api.GetStarsReply) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "getStarsByWalletAddress"),
		logging.UserString("address", args.Address),
	)

	stars, err := s.vm.GetStarsByWalletAddress(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't look up stars: %w", err)
	}
	reply.Stars = stars
	return nil
}

func (s *Service) ValidateChain(_ *http.Request, _ *struct{}, reply *api.ValidateChainReply) error {
	s.vm.log.Debug("API called",
		zap.String("service", constants.ServiceName),
		zap.String("method", "validateChain"),
	)

	errs, err := s.vm.ValidateChain()
	if err != nil {
		return fmt.Errorf("couldn't validate chain: %w", err)
	}
	reply.Valid = len(errs) == 0
	reply.Errors = errs
	return nil
}

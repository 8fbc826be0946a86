package vm

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/json"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/metalgo/utils/timer/mockable"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/chain/challenge"
	"github.com/MetalBlockchain/starchain/chain/config"
	"github.com/MetalBlockchain/starchain/chain/constants"
	"github.com/MetalBlockchain/starchain/chain/star"
	"github.com/MetalBlockchain/starchain/sig"
	"github.com/MetalBlockchain/starchain/state"
	"github.com/MetalBlockchain/starchain/status"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	ourmetrics "github.com/MetalBlockchain/starchain/metrics"

	"github.com/gorilla/rpc/v2"
)

var (
	ErrChallengeExpired = errors.New("ownership challenge expired")
	ErrSignatureInvalid = errors.New("signature verification failed")
	ErrMissingAddress   = errors.New("missing address")
)

type VM struct {
	metrics ourmetrics.Metrics

	// Used to get time. Useful for faking time during tests.
	clock mockable.Clock

	log      logging.Logger
	config   *config.Config
	verifier sig.Verifier

	state state.State
}

func (vm *VM) Initialize(
	log logging.Logger,
	registerer prometheus.Registerer,
	configBytes []byte,
) error {
	log.Verbo("initializing starchain")

	execConfig, err := config.GetConfig(configBytes)
	if err != nil {
		return err
	}
	log.Info("using VM execution config", zap.Reflect("config", execConfig))

	// Initialize metrics as soon as possible
	vm.metrics, err = ourmetrics.New(registerer)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	params, err := sig.NetParams(execConfig.Network)
	if err != nil {
		return err
	}

	vm.log = log
	vm.config = execConfig
	vm.verifier = sig.NewBitcoinVerifier(params)

	vm.state, err = state.New(&vm.clock)
	if err != nil {
		return fmt.Errorf("failed to initialize chain: %w", err)
	}

	genesisBlk, _ := vm.state.GetBlockByHeight(0)
	vm.metrics.MarkAccepted(genesisBlk)
	log.Info("initialized chain",
		zap.Stringer("genesisID", genesisBlk.ID()),
		zap.String("network", params.Name),
	)
	return nil
}

func (vm *VM) Version() string {
	return constants.Version
}

func (vm *VM) CreateHandlers() (map[string]http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	service := &Service{
		vm: vm,
	}

	err := server.RegisterService(service, constants.ServiceName)
	return map[string]http.Handler{
		Endpoint: server,
	}, err
}

func (vm *VM) GetHeight() int64 {
	return vm.state.Height()
}

// RequestOwnershipChallenge returns the message address must sign to register
// a star. Nothing is recorded: the issue time travels inside the message.
func (vm *VM) RequestOwnershipChallenge(address string) (string, error) {
	if address == "" {
		return "", ErrMissingAddress
	}
	return challenge.New(address, vm.clock.Unix()), nil
}

// SubmitStar registers s to address once message, a challenge issued to
// address within the challenge window, is proven signed by address. The star
// is stored exactly as given.
//
// A challenge issued to another address, or stamped in the future, is
// rejected with [challenge.ErrMalformedMessage].
func (vm *VM) SubmitStar(address, message, signature string, s star.Star) (*block.Block, error) {
	blk, err := vm.submitStar(address, message, signature, s)
	if err != nil {
		vm.metrics.MarkSubmission(submissionResult(err))
		vm.log.Debug("rejected star submission",
			logging.UserString("address", address),
			zap.Error(err),
		)
		return nil, err
	}

	vm.metrics.MarkSubmission(status.Accepted)
	vm.metrics.MarkAccepted(blk)
	vm.log.Info("accepted star registration",
		zap.Stringer("blkID", blk.ID()),
		zap.Uint64("height", blk.Height()),
		logging.UserString("owner", address),
	)
	return blk, nil
}

func (vm *VM) submitStar(address, message, signature string, s star.Star) (*block.Block, error) {
	c, err := challenge.Parse(message)
	if err != nil {
		return nil, err
	}
	if c.Address != address {
		return nil, fmt.Errorf("%w: challenge was issued to another address", challenge.ErrMalformedMessage)
	}

	now := vm.clock.Unix()
	if c.Time > now {
		return nil, fmt.Errorf("%w: challenge issued in the future", challenge.ErrMalformedMessage)
	}
	if elapsed := time.Duration(now-c.Time) * time.Second; elapsed >= vm.config.ChallengeWindow() {
		return nil, fmt.Errorf("%w: issued %s ago, window is %s",
			ErrChallengeExpired,
			elapsed,
			vm.config.ChallengeWindow(),
		)
	}

	if err := vm.verifier.Verify(address, message, signature); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}

	blk, err := block.New(block.Registration{
		Owner: address,
		Star:  s,
	})
	if err != nil {
		return nil, err
	}
	return vm.state.Append(blk)
}

func submissionResult(err error) status.Status {
	switch {
	case errors.Is(err, challenge.ErrMalformedMessage):
		return status.Malformed
	case errors.Is(err, ErrChallengeExpired):
		return status.Expired
	case errors.Is(err, ErrSignatureInvalid):
		return status.InvalidSignature
	default:
		return status.Failed
	}
}

func (vm *VM) GetBlockByHash(blkID ids.ID) (*block.Block, bool) {
	return vm.state.GetBlockByHash(blkID)
}

func (vm *VM) GetBlockByHeight(height uint64) (*block.Block, bool) {
	return vm.state.GetBlockByHeight(height)
}

func (vm *VM) GetStarsByWalletAddress(address string) ([]*block.Registration, error) {
	return vm.state.GetStarsByWalletAddress(address)
}

func (vm *VM) ValidateChain() ([]string, error) {
	errs, err := vm.state.ValidateChain()
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		vm.log.Warn("chain validation found defects",
			zap.Int("numErrors", len(errs)),
			zap.Strings("errors", errs),
		)
	}
	return errs, nil
}

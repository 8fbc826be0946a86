package sig

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnknownNetwork   = errors.New("unknown network")
)

// Verifier takes an address, a message and a signature of that message and
// returns nil iff the signature was produced by the key controlling address.
type Verifier interface {
	Verify(address, message, signature string) error
}

// NetParams returns the bitcoin network parameters registered under name.
func NetParams(name string) (*chaincfg.Params, error) {
	switch name {
	case chaincfg.MainNetParams.Name:
		return &chaincfg.MainNetParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	case chaincfg.SigNetParams.Name:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

package sig

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	messageMagic = "Bitcoin Signed Message:\n"

	compactSigLen = 65

	// Header bytes of compact signatures. Segwit signers shift the legacy
	// compressed range (31-34) by 4 for P2SH-P2WPKH and by 8 for P2WPKH.
	headerP2SHP2WPKH = 35
	headerP2WPKH     = 39
	headerMax        = 42
)

var _ Verifier = (*bitcoinVerifier)(nil)

type bitcoinVerifier struct {
	params *chaincfg.Params
}

// NewBitcoinVerifier verifies Bitcoin signed messages for P2PKH, P2WPKH and
// P2SH-P2WPKH addresses of the given network.
func NewBitcoinVerifier(params *chaincfg.Params) Verifier {
	return &bitcoinVerifier{
		params: params,
	}
}

func (v *bitcoinVerifier) Verify(address, message, signature string) error {
	addr, err := btcutil.DecodeAddress(address, v.params)
	if err != nil {
		return fmt.Errorf("%w: couldn't decode address: %v", ErrInvalidSignature, err)
	}
	if !addr.IsForNet(v.params) {
		return fmt.Errorf("%w: address is not for %s", ErrInvalidSignature, v.params.Name)
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: couldn't decode signature: %v", ErrInvalidSignature, err)
	}
	if len(sig) != compactSigLen {
		return fmt.Errorf("%w: signature is %d bytes, expected %d", ErrInvalidSignature, len(sig), compactSigLen)
	}
	sig = normalizeHeader(sig)

	hash, err := MessageHash(message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	pubKey, compressed, err := ecdsa.RecoverCompact(sig, hash)
	if err != nil {
		return fmt.Errorf("%w: couldn't recover public key: %v", ErrInvalidSignature, err)
	}

	ok, err := controls(addr, pubKey, compressed, v.params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return fmt.Errorf("%w: signer does not control %s", ErrInvalidSignature, addr.EncodeAddress())
	}
	return nil
}

// normalizeHeader maps segwit header bytes back onto the compressed legacy
// range understood by ecdsa.RecoverCompact.
func normalizeHeader(sig []byte) []byte {
	header := sig[0]
	switch {
	case header >= headerP2WPKH && header <= headerMax:
		header -= 8
	case header >= headerP2SHP2WPKH && header < headerP2WPKH:
		header -= 4
	default:
		return sig
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	normalized[0] = header
	return normalized
}

// controls reports whether pubKey is the key behind addr. Segwit addresses
// are only ever derived from compressed keys.
func controls(addr btcutil.Address, pubKey *btcec.PublicKey, compressed bool, params *chaincfg.Params) (bool, error) {
	switch a := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		serialized := pubKey.SerializeUncompressed()
		if compressed {
			serialized = pubKey.SerializeCompressed()
		}
		return bytes.Equal(btcutil.Hash160(serialized), a.ScriptAddress()), nil
	case *btcutil.AddressWitnessPubKeyHash:
		if !compressed {
			return false, nil
		}
		return bytes.Equal(btcutil.Hash160(pubKey.SerializeCompressed()), a.ScriptAddress()), nil
	case *btcutil.AddressScriptHash:
		if !compressed {
			return false, nil
		}
		witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pubKey.SerializeCompressed()), params)
		if err != nil {
			return false, err
		}
		redeemScript, err := txscript.PayToAddrScript(witnessAddr)
		if err != nil {
			return false, err
		}
		return bytes.Equal(btcutil.Hash160(redeemScript), a.ScriptAddress()), nil
	default:
		return false, fmt.Errorf("unsupported address type %T", addr)
	}
}

// MessageHash is the digest Bitcoin wallets sign for a text message.
func MessageHash(message string) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarString(&buf, 0, messageMagic); err != nil {
		return nil, err
	}
	if err := wire.WriteVarString(&buf, 0, message); err != nil {
		return nil, err
	}
	return chainhash.DoubleHashB(buf.Bytes()), nil
}

// SignMessage produces the base64 compact signature a wallet would return for
// message. compressed selects the P2PKH address form the signature commits to.
func SignMessage(key *btcec.PrivateKey, message string, compressed bool) (string, error) {
	hash, err := MessageHash(message)
	if err != nil {
		return "", err
	}
	sig, err := ecdsa.SignCompact(key, hash, compressed)
	if err != nil {
		return "", fmt.Errorf("problem signing message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

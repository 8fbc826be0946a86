package vm

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/starchain/chain/block"
	"github.com/MetalBlockchain/starchain/chain/challenge"
	"github.com/MetalBlockchain/starchain/chain/config"
	"github.com/MetalBlockchain/starchain/chain/genesis"
	"github.com/MetalBlockchain/starchain/chain/star"
	"github.com/MetalBlockchain/starchain/sig"
	"github.com/MetalBlockchain/starchain/sig/sigmock"
	"github.com/MetalBlockchain/starchain/status"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	startTime = time.Unix(1_700_000_000, 0)

	testStar = star.Star(`{"ra":"6h 45m 8.9s","dec":"-16° 42' 58''","cen":"Canis Major","story":"Sirius, the brightest one"}`)
)

type account struct {
	key     *btcec.PrivateKey
	address string
}

func newAccount(t *testing.T, seed byte) account {
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{seed}, 32))
	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(key.PubKey().SerializeCompressed()),
		&chaincfg.MainNetParams,
	)
	require.NoError(t, err)
	return account{
		key:     key,
		address: addr.EncodeAddress(),
	}
}

func (a account) sign(t *testing.T, message string) string {
	signature, err := sig.SignMessage(a.key, message, true)
	require.NoError(t, err)
	return signature
}

func newTestVM(t *testing.T) *VM {
	vm := &VM{}
	vm.clock.Set(startTime)
	require.NoError(t, vm.Initialize(logging.NoLog{}, prometheus.NewRegistry(), nil))
	return vm
}

// register runs the full challenge/sign/submit workflow for a.
func register(t *testing.T, vm *VM, a account, s star.Star) *block.Block {
	message, err := vm.RequestOwnershipChallenge(a.address)
	require.NoError(t, err)
	blk, err := vm.SubmitStar(a.address, message, a.sign(t, message), s)
	require.NoError(t, err)
	return blk
}

func TestVMInit(t *testing.T) {
	vm := newTestVM(t)
	assert.Equal(t, int64(0), vm.GetHeight())

	gen, ok := vm.GetBlockByHeight(0)
	require.True(t, ok)
	assert.Equal(t, ids.Empty, gen.Parent())
	assert.Equal(t, uint64(startTime.Unix()), gen.Time)

	data, err := gen.Data()
	require.NoError(t, err)
	assert.Equal(t, genesis.Data, data)

	errs, err := vm.ValidateChain()
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestVMInitBadConfig(t *testing.T) {
	vm := &VM{}
	err := vm.Initialize(logging.NoLog{}, prometheus.NewRegistry(), []byte(`{"network":"moonnet"}`))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRequestOwnershipChallenge(t *testing.T) {
	vm := newTestVM(t)

	message, err := vm.RequestOwnershipChallenge("addrA")
	require.NoError(t, err)
	assert.Equal(t, "addrA:1700000000:starRegistry", message)
	assert.Equal(t, int64(0), vm.GetHeight())

	_, err = vm.RequestOwnershipChallenge("")
	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestSubmitStar(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x11)

	vm.clock.Set(startTime.Add(10 * time.Second))
	blk := register(t, vm, alice, testStar)

	assert.Equal(t, int64(1), vm.GetHeight())
	assert.Equal(t, uint64(1), blk.Height())
	assert.Equal(t, uint64(startTime.Unix()+10), blk.Time)
	gen, _ := vm.GetBlockByHeight(0)
	assert.Equal(t, gen.ID(), blk.Parent())
	assert.True(t, blk.Validate())

	reg, err := blk.Registration()
	require.NoError(t, err)
	assert.Equal(t, alice.address, reg.Owner)
	assert.Equal(t, testStar, reg.Star)

	got, ok := vm.GetBlockByHash(blk.ID())
	require.True(t, ok)
	assert.Same(t, blk, got)
}

func TestSubmitStarChallengeWindow(t *testing.T) {
	alice := newAccount(t, 0x12)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"immediately", 0, nil},
		{"last second", 299 * time.Second, nil},
		{"at the window", 300 * time.Second, ErrChallengeExpired},
		{"long after", time.Hour, ErrChallengeExpired},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			vm := newTestVM(t)
			message, err := vm.RequestOwnershipChallenge(alice.address)
			require.NoError(t, err)

			vm.clock.Set(startTime.Add(test.elapsed))
			_, err = vm.SubmitStar(alice.address, message, alice.sign(t, message), testStar)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				assert.Equal(t, int64(0), vm.GetHeight())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), vm.GetHeight())
		})
	}
}

func TestSubmitStarConfiguredWindow(t *testing.T) {
	vm := &VM{}
	vm.clock.Set(startTime)
	require.NoError(t, vm.Initialize(logging.NoLog{}, prometheus.NewRegistry(), []byte(`{"challenge-window-seconds":30}`)))
	alice := newAccount(t, 0x13)

	message, err := vm.RequestOwnershipChallenge(alice.address)
	require.NoError(t, err)
	vm.clock.Set(startTime.Add(30 * time.Second))
	_, err = vm.SubmitStar(alice.address, message, alice.sign(t, message), testStar)
	assert.ErrorIs(t, err, ErrChallengeExpired)
}

func TestSubmitStarInvalidSignature(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x14)
	mallory := newAccount(t, 0x15)

	message, err := vm.RequestOwnershipChallenge(alice.address)
	require.NoError(t, err)

	_, err = vm.SubmitStar(alice.address, message, mallory.sign(t, message), testStar)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.ErrorIs(t, err, sig.ErrInvalidSignature)
	assert.Equal(t, int64(0), vm.GetHeight())

	_, err = vm.SubmitStar(alice.address, message, "not a signature", testStar)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.Equal(t, int64(0), vm.GetHeight())
}

func TestSubmitStarMalformedMessage(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x16)
	bob := newAccount(t, 0x17)

	for name, message := range map[string]string{
		"empty":           "",
		"no timestamp":    alice.address + "::starRegistry",
		"word timestamp":  alice.address + ":now:starRegistry",
		"other address":   challenge.New(bob.address, uint64(startTime.Unix())),
		"future":          challenge.New(alice.address, uint64(startTime.Unix())+60),
		"missing suffix":  alice.address + ":1700000000",
		"unknown purpose": alice.address + ":1700000000:moonRegistry",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := vm.SubmitStar(alice.address, message, alice.sign(t, message), testStar)
			assert.ErrorIs(t, err, challenge.ErrMalformedMessage)
			assert.Equal(t, int64(0), vm.GetHeight())
		})
	}
}

func TestSubmitStarAnyPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vm := newTestVM(t)
	verifier := sigmock.NewMockVerifier(ctrl)
	vm.verifier = verifier

	for i, s := range []star.Star{
		star.Star(`{"story":"no coordinates"}`),
		star.Star(`{}`),
		star.Star(`"Vega"`),
		nil,
	} {
		message, err := vm.RequestOwnershipChallenge("addrA")
		require.NoError(t, err)
		verifier.EXPECT().Verify("addrA", message, "sig").Return(nil)

		blk, err := vm.SubmitStar("addrA", message, "sig", s)
		require.NoError(t, err, s.String())
		assert.Equal(t, uint64(i+1), blk.Height())
	}
}

func TestSubmitStarKeepsPayloadVerbatim(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x1b)
	submitted := star.Star(`{"ra":"1","dec":"2","story":"s","name":"Sirius","coords":{"x":1,"y":[2.5,null]}}`)

	register(t, vm, alice, submitted)

	stars, err := vm.GetStarsByWalletAddress(alice.address)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, submitted.String(), stars[0].Star.String())
}

func TestSubmitStarVerifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vm := newTestVM(t)
	verifier := sigmock.NewMockVerifier(ctrl)
	vm.verifier = verifier

	message, err := vm.RequestOwnershipChallenge("addrA")
	require.NoError(t, err)

	verifier.EXPECT().Verify("addrA", message, "good").Return(nil)
	blk, err := vm.SubmitStar("addrA", message, "good", testStar)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), blk.Height())

	errBoom := errors.New("boom")
	verifier.EXPECT().Verify("addrA", message, "bad").Return(errBoom)
	_, err = vm.SubmitStar("addrA", message, "bad", testStar)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(1), vm.GetHeight())
}

func TestGetStarsByWalletAddress(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x18)
	bob := newAccount(t, 0x19)

	first := star.Star(`{"story":"first"}`)
	second := star.Star(`{"story":"second"}`)

	register(t, vm, alice, first)
	register(t, vm, bob, testStar)
	register(t, vm, alice, second)
	assert.Equal(t, int64(3), vm.GetHeight())

	stars, err := vm.GetStarsByWalletAddress(alice.address)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, alice.address, stars[0].Owner)
	assert.Equal(t, first, stars[0].Star)
	assert.Equal(t, second, stars[1].Star)

	stars, err = vm.GetStarsByWalletAddress(bob.address)
	require.NoError(t, err)
	assert.Len(t, stars, 1)

	stars, err = vm.GetStarsByWalletAddress("nobody")
	require.NoError(t, err)
	assert.Empty(t, stars)

	errs, err := vm.ValidateChain()
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestGetBlockNotFound(t *testing.T) {
	vm := newTestVM(t)

	blk, ok := vm.GetBlockByHash(ids.GenerateTestID())
	assert.False(t, ok)
	assert.Nil(t, blk)

	blk, ok = vm.GetBlockByHeight(1)
	assert.False(t, ok)
	assert.Nil(t, blk)
}

func TestValidateChainReportsTampering(t *testing.T) {
	vm := newTestVM(t)
	alice := newAccount(t, 0x1a)
	register(t, vm, alice, testStar)
	blk := register(t, vm, alice, testStar)

	blk.Body[1] ^= 0x20
	errs, err := vm.ValidateChain()
	require.NoError(t, err)
	assert.Equal(t, []string{"content hash mismatch at height 2"}, errs)
}

func TestSubmissionResult(t *testing.T) {
	assert.Equal(t, status.Malformed, submissionResult(challenge.ErrMalformedMessage))
	assert.Equal(t, status.Expired, submissionResult(ErrChallengeExpired))
	assert.Equal(t, status.InvalidSignature, submissionResult(ErrSignatureInvalid))
	assert.Equal(t, status.Failed, submissionResult(errors.New("other")))
}

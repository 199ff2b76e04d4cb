// internal/services/wallet_service_test.go
package services_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/services/servicestest"
)

var usdc = common.HexToAddress("0x00000000000000000000000000000000000000d6")

func newWalletService() (*services.WalletService, *servicestest.Chain) {
	chain := servicestest.NewChain()
	chain.ERC20[usdc] = &blockchain.TokenInfo{
		Token:    blockchain.Token{Symbol: "USDC", Address: usdc},
		Name:     "USD Coin",
		Decimals: 6,
	}
	return services.NewWalletService(chain, servicestest.Config()), chain
}

func TestWalletInfoDefaultsToSigner(t *testing.T) {
	svc, chain := newWalletService()
	chain.Balances[servicestest.Signer] = pil.MustBaseUnits("12.5", 18)

	info, err := svc.WalletInfo(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, servicestest.Signer, info.Address)
	assert.True(t, info.IsSigner)
	assert.Equal(t, "aeneid", info.Network)
	assert.Equal(t, "12.5", info.Native.Formatted)
	assert.Equal(t, "IP", info.Native.Symbol)
	assert.Equal(t, "0.25", info.WIP.Formatted)
	assert.Equal(t, servicestest.Addresses.WIP, info.WIP.Address)
	assert.ElementsMatch(t, []string{"NativeBalance", "ERC20Balance"}, chain.CallLog())
}

func TestWalletInfoForOtherAddress(t *testing.T) {
	svc, _ := newWalletService()

	info, err := svc.WalletInfo(context.Background(), servicestest.Bob.Hex())
	require.NoError(t, err)
	assert.False(t, info.IsSigner)
	assert.Equal(t, "0", info.Native.Formatted)
}

func TestWalletInfoWithoutSignerNeedsAddress(t *testing.T) {
	svc, chain := newWalletService()
	chain.Signer = common.Address{}

	_, err := svc.WalletInfo(context.Background(), "")
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "address", verr.Field)
}

func TestWalletInfoPropagatesReadFailure(t *testing.T) {
	svc, chain := newWalletService()
	chain.Fail = errors.New("rpc down")

	_, err := svc.WalletInfo(context.Background(), "")
	assert.EqualError(t, err, "rpc down")
}

func TestTokenInfoBySymbolAndAddress(t *testing.T) {
	svc, _ := newWalletService()

	native, err := svc.TokenInfo(context.Background(), "ip", "")
	require.NoError(t, err)
	assert.True(t, native.Native)
	assert.Empty(t, native.BalanceFormatted)

	erc, err := svc.TokenInfo(context.Background(), usdc.Hex(), servicestest.Bob.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint8(6), erc.Decimals)
	assert.Equal(t, "0.000007", erc.BalanceFormatted)
}

func TestTokenInfoUnknownSymbol(t *testing.T) {
	svc, chain := newWalletService()

	_, err := svc.TokenInfo(context.Background(), "DOGE", "")
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Message, "WIP")
	assert.Empty(t, chain.CallLog())
}

func TestTransferScalesByTokenDecimals(t *testing.T) {
	svc, chain := newWalletService()
	ctx, trace := services.WithTrace(context.Background())

	res, err := svc.Transfer(ctx, &services.TransferRequest{
		To:     servicestest.Bob.Hex(),
		Amount: "1.5",
		Token:  usdc.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), chain.Transferred)
	assert.Equal(t, "1500000", res.AmountRaw)
	assert.Equal(t, "USDC", res.Token.Symbol)
	assert.Equal(t, []string{servicestest.Tx(4).TxHash.Hex()}, trace.TxHashes())
}

func TestTransferNativeByDefault(t *testing.T) {
	svc, chain := newWalletService()

	res, err := svc.Transfer(context.Background(), &services.TransferRequest{
		To:     servicestest.Bob.Hex(),
		Amount: "0.1",
	})
	require.NoError(t, err)
	assert.True(t, res.Token.Native)
	assert.Equal(t, 0, chain.Transferred.Cmp(pil.MustBaseUnits("0.1", 18)))
	assert.Equal(t, []string{"Transfer"}, chain.CallLog())
}

func TestTransferRejectsDustThatRoundsToZero(t *testing.T) {
	svc, chain := newWalletService()

	_, err := svc.Transfer(context.Background(), &services.TransferRequest{
		To:     servicestest.Bob.Hex(),
		Amount: "0.0000001",
		Token:  usdc.Hex(),
	})
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "amount", verr.Field)
	assert.NotContains(t, chain.CallLog(), "Transfer")
}

func TestTransferRequiresSigner(t *testing.T) {
	svc, chain := newWalletService()
	chain.Signer = common.Address{}

	_, err := svc.Transfer(context.Background(), &services.TransferRequest{To: servicestest.Bob.Hex(), Amount: "1"})
	assert.ErrorIs(t, err, services.ErrSignerRequired)
}

// internal/services/license_service_test.go
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

var oneWIP = pil.MustBaseUnits("1", pil.DefaultDecimals)

func newLicenseService() (*services.LicenseService, *servicestest.Chain) {
	chain := servicestest.NewChain()
	return services.NewLicenseService(chain, servicestest.Config()), chain
}

func feeTerms(fee *big.Int) pil.LicenseTerms {
	return pil.LicenseTerms{
		Transferable:       true,
		RoyaltyPolicy:      servicestest.Addresses.RoyaltyPolicyLAP,
		DefaultMintingFee:  fee,
		Expiration:         new(big.Int),
		CommercialUse:      true,
		CommercialRevShare: 5,
		Currency:           servicestest.Addresses.WIP,
	}
}

func TestPreviewDefaultsToCommercialRemix(t *testing.T) {
	svc, chain := newLicenseService()

	res, err := svc.Preview(context.Background(), map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, pil.PresetCommercialRemix, res.Preset)
	assert.True(t, res.Terms.CommercialUse)
	assert.Equal(t, uint32(5), res.RevenueSharePercent)
	assert.Equal(t, "1", res.MintingFee)
	assert.Equal(t, servicestest.Addresses.RoyaltyPolicyLAP, res.Terms.RoyaltyPolicy)
	assert.Equal(t, servicestest.Addresses.WIP, res.Terms.Currency)
	assert.Equal(t, "ipfs://default-terms", res.Terms.URI)
	assert.Contains(t, res.Summary, "5% revenue share")
	assert.Contains(t, res.Summary, "Minting fee 1 WIP per license")
	assert.Empty(t, chain.CallLog(), "preview must not touch the chain")
}

func TestPreviewKeepsCallerURI(t *testing.T) {
	svc, _ := newLicenseService()

	res, err := svc.Preview(context.Background(), map[string]interface{}{
		"preset": "non_commercial",
		"uri":    "ipfs://mine",
	})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://mine", res.Terms.URI)
	assert.Contains(t, res.Summary, "Non-commercial use only")
	assert.Contains(t, res.Summary, "Free to mint")
}

func TestPreviewRejectsOutOfRangeShare(t *testing.T) {
	svc, _ := newLicenseService()

	_, err := svc.Preview(context.Background(), map[string]interface{}{"commercial_rev_share": 150})
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "commercial_rev_share", verr.Field)
}

func TestPreviewTracesWarnings(t *testing.T) {
	svc, _ := newLicenseService()
	ctx, trace := services.WithTrace(context.Background())

	res, err := svc.Preview(ctx, map[string]interface{}{
		"preset":      "custom",
		"description": "free to remix, $5 for commercial",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Len(t, trace.Warnings(), len(res.Warnings))
}

func TestCreateRegistersTerms(t *testing.T) {
	svc, chain := newLicenseService()
	ctx, trace := services.WithTrace(context.Background())

	res, err := svc.Create(ctx, map[string]interface{}{"commercial_rev_share": 10})
	require.NoError(t, err)

	assert.Equal(t, "1", res.LicenseTermsID)
	assert.False(t, res.AlreadyRegistered)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "https://aeneid.storyscan.io/tx/"+servicestest.Tx(1).TxHash.Hex(), res.ExplorerURL)
	assert.Equal(t, uint32(10), chain.Terms["1"].CommercialRevShare)
	assert.Equal(t, []string{servicestest.Tx(1).TxHash.Hex()}, trace.TxHashes())
}

func TestCreateReusesRegisteredTerms(t *testing.T) {
	svc, chain := newLicenseService()
	chain.ExistingID = big.NewInt(7)

	res, err := svc.Create(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, res.AlreadyRegistered)
	assert.Equal(t, "7", res.LicenseTermsID)
	assert.Nil(t, res.Transaction)
	assert.Empty(t, res.ExplorerURL)
}

func TestCreateRequiresSigner(t *testing.T) {
	svc, chain := newLicenseService()
	chain.Signer = common.Address{}

	_, err := svc.Create(context.Background(), map[string]interface{}{})
	assert.ErrorIs(t, err, services.ErrSignerRequired)
	assert.Empty(t, chain.CallLog())
}

func TestGetLicenseTerms(t *testing.T) {
	svc, chain := newLicenseService()
	id := chain.AddTerms(feeTerms(oneWIP))

	view, err := svc.Get(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "1", view.LicenseTermsID)
	assert.Equal(t, "1", view.MintingFee)

	_, err = svc.Get(context.Background(), "99")
	assert.ErrorIs(t, err, blockchain.ErrLicenseTermsNotFound)

	_, err = svc.Get(context.Background(), "0")
	var verr *pil.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestAttachLicenseTerms(t *testing.T) {
	svc, _ := newLicenseService()

	res, err := svc.Attach(context.Background(), &services.AttachLicenseTermsRequest{
		IPID:           servicestest.IPID.Hex(),
		LicenseTermsID: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "3", res.LicenseTermsID)
	assert.Equal(t, servicestest.Tx(2).TxHash, res.Transaction.TxHash)

	_, err = svc.Attach(context.Background(), &services.AttachLicenseTermsRequest{IPID: "nope", LicenseTermsID: "3"})
	assert.Error(t, err)
}

func TestQuoteAddsSlippageBuffer(t *testing.T) {
	svc, chain := newLicenseService()
	id := chain.AddTerms(feeTerms(oneWIP))

	q, err := svc.Quote(context.Background(), &services.QuoteLicenseMintRequest{
		LicenseTermsID: id.String(),
		Quantity:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", q.TotalFee)
	assert.Equal(t, "3.3", q.MaxFee)
	assert.Equal(t, "1", q.PerTokenFee)
	assert.False(t, q.Quote.CallerSupplied)
	assert.Equal(t, servicestest.Addresses.WIP, q.Currency)
}

func TestQuoteUsesCallerCeiling(t *testing.T) {
	svc, chain := newLicenseService()
	id := chain.AddTerms(feeTerms(oneWIP))

	q, err := svc.Quote(context.Background(), &services.QuoteLicenseMintRequest{
		LicenseTermsID: id.String(),
		Quantity:       3,
		MaxMintingFee:  "2",
	})
	require.NoError(t, err)
	assert.True(t, q.Quote.CallerSupplied)
	assert.Equal(t, "2", q.MaxFee)
	assert.Equal(t, "3", q.TotalFee)
}

func TestQuoteRejectsZeroQuantityBeforeReading(t *testing.T) {
	svc, chain := newLicenseService()

	_, err := svc.Quote(context.Background(), &services.QuoteLicenseMintRequest{LicenseTermsID: "1", Quantity: 0})
	var qerr *pil.InvalidQuantityError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, int64(0), qerr.Quantity)
	assert.Empty(t, chain.CallLog())
}

func TestMintFundsThenMints(t *testing.T) {
	svc, chain := newLicenseService()
	id := chain.AddTerms(feeTerms(oneWIP))
	chain.Funding = &blockchain.FeeFunding{WrapTx: servicestest.Tx(10), ApproveTx: servicestest.Tx(11)}
	ctx, trace := services.WithTrace(context.Background())

	res, err := svc.Mint(ctx, &services.MintLicenseTokensRequest{
		LicensorIPID:   servicestest.IPID.Hex(),
		LicenseTermsID: id.String(),
		Quantity:       2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"LicenseTerms", "PrepareMintingFee", "MintLicenseTokens"}, chain.CallLog())
	assert.Equal(t, []string{"40", "41"}, res.LicenseTokenIDs)
	assert.Equal(t, servicestest.Signer, res.Receiver)

	total := new(big.Int).Mul(oneWIP, big.NewInt(2))
	ceiling := pil.MustBaseUnits("2.2", pil.DefaultDecimals)
	assert.Equal(t, servicestest.Addresses.WIP, chain.FeeCurrency)
	assert.Equal(t, 0, chain.FeeTotal.Cmp(total))
	assert.Equal(t, 0, chain.FeeCeiling.Cmp(ceiling))
	assert.Equal(t, 0, chain.MintReq.MaxMintingFee.Cmp(ceiling))
	assert.Equal(t, uint32(100), chain.MintReq.MaxRevenueShare)

	assert.Len(t, res.MintTxHashes(), 3)
	assert.Equal(t, res.MintTxHashes(), trace.TxHashes())
}

func TestMintHonoursRevenueShareLimit(t *testing.T) {
	svc, chain := newLicenseService()
	id := chain.AddTerms(feeTerms(new(big.Int)))
	limit := int64(10)

	_, err := svc.Mint(context.Background(), &services.MintLicenseTokensRequest{
		LicensorIPID:    servicestest.IPID.Hex(),
		LicenseTermsID:  id.String(),
		Quantity:        1,
		Receiver:        servicestest.Bob.Hex(),
		MaxRevenueShare: &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(10), chain.MintReq.MaxRevenueShare)
	assert.Equal(t, servicestest.Bob, chain.MintReq.Receiver)
}

func TestMintRejectsZeroQuantity(t *testing.T) {
	svc, chain := newLicenseService()
	chain.AddTerms(feeTerms(oneWIP))

	_, err := svc.Mint(context.Background(), &services.MintLicenseTokensRequest{
		LicensorIPID:   servicestest.IPID.Hex(),
		LicenseTermsID: "1",
		Quantity:       0,
	})
	var qerr *pil.InvalidQuantityError
	assert.True(t, errors.As(err, &qerr))
	assert.NotContains(t, chain.CallLog(), "MintLicenseTokens")
}

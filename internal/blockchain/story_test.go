// internal/blockchain/story_test.go
package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/story-mcp/internal/pil"
)

var testAddresses = Addresses{
	WIP:                   common.HexToAddress("0x1514000000000000000000000000000000000000"),
	RoyaltyPolicyLAP:      common.HexToAddress("0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E"),
	RoyaltyModule:         common.HexToAddress("0xD2f60c40fEbccf6311f8B47c4f2Ec6b040400086"),
	LicensingModule:       common.HexToAddress("0x04fbd8a2e56dd85CFD5500A4A4DfA955B9f1dE6f"),
	PILicenseTemplate:     common.HexToAddress("0x2E896b0b2Fdb7457499B56AAaA4AE55BCB4Cd316"),
	IPAssetRegistry:       common.HexToAddress("0x77319B4031e6eF1250907aa00018B8B1c67a244b"),
	RegistrationWorkflows: common.HexToAddress("0xbe39E1C756e921BD25DF86e7AAa31106d1eb0424"),
	CoreMetadataModule:    common.HexToAddress("0x6E81a25C99C6e8430aeC7353325EB138aFE5DC16"),
}

func sampleTerms() pil.LicenseTerms {
	return pil.LicenseTerms{
		Transferable:           true,
		RoyaltyPolicy:          testAddresses.RoyaltyPolicyLAP,
		DefaultMintingFee:      big.NewInt(1_000_000_000_000_000_000),
		Expiration:             big.NewInt(0),
		CommercialUse:          true,
		CommercialAttribution:  true,
		CommercialRevShare:     5,
		CommercialRevCeiling:   big.NewInt(0),
		DerivativesAllowed:     true,
		DerivativesAttribution: true,
		DerivativesReciprocal:  true,
		DerivativeRevCeiling:   big.NewInt(0),
		Currency:               testAddresses.WIP,
		URI:                    "ipfs://terms",
	}
}

func TestTupleEncodesRevShare(t *testing.T) {
	tuple := toTuple(sampleTerms())
	assert.Equal(t, uint32(5_000_000), tuple.CommercialRevShare)
	assert.Equal(t, "ipfs://terms", tuple.Uri)
	assert.NotNil(t, tuple.CommercializerCheckerData)

	full := sampleTerms()
	full.CommercialRevShare = 100
	assert.Equal(t, uint32(100_000_000), toTuple(full).CommercialRevShare)

	back := fromTuple(toTuple(sampleTerms()))
	assert.Equal(t, sampleTerms(), back)
}

func TestTupleFillsNilIntegers(t *testing.T) {
	tuple := toTuple(pil.LicenseTerms{})
	assert.Equal(t, 0, tuple.DefaultMintingFee.Sign())
	assert.Equal(t, 0, tuple.Expiration.Sign())

	_, err := PILTemplateABI.Pack("registerLicenseTerms", tuple)
	require.NoError(t, err)
}

func TestRegisterLicenseTermsReusesExistingID(t *testing.T) {
	fc := newFakeClient()
	fc.returns["getLicenseTermsId"] = []interface{}{big.NewInt(7)}
	story := NewStory(fc, testAddresses, nil)

	reg, err := story.RegisterLicenseTerms(context.Background(), sampleTerms())
	require.NoError(t, err)

	assert.True(t, reg.AlreadyRegistered)
	assert.Equal(t, "7", reg.LicenseTermsID.String())
	assert.Nil(t, reg.Tx)
	assert.Equal(t, []string{"read:getLicenseTermsId"}, fc.stepsSnapshot())
}

func TestRegisterLicenseTermsOrdersSimulateWriteWait(t *testing.T) {
	fc := newFakeClient()
	fc.returns["getLicenseTermsId"] = []interface{}{big.NewInt(0)}
	fc.returns["registerLicenseTerms"] = []interface{}{big.NewInt(12)}
	story := NewStory(fc, testAddresses, nil)

	reg, err := story.RegisterLicenseTerms(context.Background(), sampleTerms())
	require.NoError(t, err)

	assert.False(t, reg.AlreadyRegistered)
	assert.Equal(t, "12", reg.LicenseTermsID.String())
	require.NotNil(t, reg.Tx)
	assert.Equal(t, uint64(42), reg.Tx.BlockNumber)
	assert.Equal(t, []string{
		"read:getLicenseTermsId",
		"simulate:registerLicenseTerms",
		"write:registerLicenseTerms",
		"wait",
	}, fc.stepsSnapshot())
}

func TestRegisterLicenseTermsStopsWhenSimulationFails(t *testing.T) {
	fc := newFakeClient()
	fc.returns["getLicenseTermsId"] = []interface{}{big.NewInt(0)}
	fc.failOn = "simulate:registerLicenseTerms"
	story := NewStory(fc, testAddresses, nil)

	_, err := story.RegisterLicenseTerms(context.Background(), sampleTerms())
	require.Error(t, err)
	assert.NotContains(t, fc.stepsSnapshot(), "write:registerLicenseTerms")
}

func TestLicenseTermsDecodesTemplateOutput(t *testing.T) {
	encoded, err := PILTemplateABI.Methods["getLicenseTerms"].Outputs.Pack(toTuple(sampleTerms()))
	require.NoError(t, err)
	decoded, err := PILTemplateABI.Unpack("getLicenseTerms", encoded)
	require.NoError(t, err)

	fc := newFakeClient()
	fc.returns["exists"] = []interface{}{true}
	fc.returns["getLicenseTerms"] = decoded
	story := NewStory(fc, testAddresses, nil)

	terms, err := story.LicenseTerms(context.Background(), big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, sampleTerms(), *terms)
}

func TestLicenseTermsNotFound(t *testing.T) {
	fc := newFakeClient()
	fc.returns["exists"] = []interface{}{false}
	story := NewStory(fc, testAddresses, nil)

	_, err := story.LicenseTerms(context.Background(), big.NewInt(999))
	assert.True(t, errors.Is(err, ErrLicenseTermsNotFound))
}

func TestMintLicenseTokensReturnsConsecutiveIDs(t *testing.T) {
	fc := newFakeClient()
	fc.returns["mintLicenseTokens"] = []interface{}{big.NewInt(100)}
	story := NewStory(fc, testAddresses, nil)

	res, err := story.MintLicenseTokens(context.Background(), MintLicenseTokensRequest{
		LicensorIPID:    common.HexToAddress("0x0000000000000000000000000000000000000001"),
		LicenseTermsID:  big.NewInt(3),
		Quantity:        3,
		Receiver:        fc.account,
		MaxMintingFee:   big.NewInt(3300),
		MaxRevenueShare: 100,
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.LicenseTokenIDs))
	for _, id := range res.LicenseTokenIDs {
		ids = append(ids, id.String())
	}
	assert.Equal(t, []string{"100", "101", "102"}, ids)

	last := fc.calls[len(fc.calls)-1]
	assert.Equal(t, uint32(100_000_000), last.Args[7])
}

func TestMintLicenseTokensRejectsZeroQuantity(t *testing.T) {
	story := NewStory(newFakeClient(), testAddresses, nil)
	_, err := story.MintLicenseTokens(context.Background(), MintLicenseTokensRequest{Quantity: 0})
	var qerr *pil.InvalidQuantityError
	assert.True(t, errors.As(err, &qerr))
}

func TestPrepareMintingFeeWrapsAndApproves(t *testing.T) {
	fc := newFakeClient()
	fc.returns["balanceOf"] = []interface{}{big.NewInt(1000)}
	fc.returns["allowance"] = []interface{}{big.NewInt(0)}
	fc.returns["approve"] = []interface{}{true}
	story := NewStory(fc, testAddresses, nil)

	funding, err := story.PrepareMintingFee(context.Background(), testAddresses.WIP, big.NewInt(3000), big.NewInt(3300))
	require.NoError(t, err)

	assert.Equal(t, "2000", funding.Wrapped.String())
	assert.Equal(t, "3300", funding.Approved.String())
	assert.Equal(t, []string{
		"read:balanceOf",
		"simulate:deposit", "write:deposit", "wait",
		"read:allowance",
		"simulate:approve", "write:approve", "wait",
	}, fc.stepsSnapshot())
}

func TestPrepareMintingFeeApprovesAtLeastTotal(t *testing.T) {
	fc := newFakeClient()
	fc.returns["balanceOf"] = []interface{}{big.NewInt(5000)}
	fc.returns["allowance"] = []interface{}{big.NewInt(0)}
	fc.returns["approve"] = []interface{}{true}
	story := NewStory(fc, testAddresses, nil)

	funding, err := story.PrepareMintingFee(context.Background(), testAddresses.WIP, big.NewInt(3000), big.NewInt(2500))
	require.NoError(t, err)
	assert.Nil(t, funding.Wrapped)
	assert.Equal(t, "3000", funding.Approved.String())
}

func TestPrepareMintingFeeSkipsWhenFree(t *testing.T) {
	fc := newFakeClient()
	story := NewStory(fc, testAddresses, nil)

	funding, err := story.PrepareMintingFee(context.Background(), testAddresses.WIP, big.NewInt(0), big.NewInt(0))
	require.NoError(t, err)
	assert.Nil(t, funding.ApproveTx)
	assert.Empty(t, fc.stepsSnapshot())
}

func TestPrepareMintingFeeSkipsSufficientAllowance(t *testing.T) {
	fc := newFakeClient()
	fc.returns["balanceOf"] = []interface{}{big.NewInt(5000)}
	fc.returns["allowance"] = []interface{}{big.NewInt(10000)}
	story := NewStory(fc, testAddresses, nil)

	funding, err := story.PrepareMintingFee(context.Background(), testAddresses.WIP, big.NewInt(3000), big.NewInt(3300))
	require.NoError(t, err)
	assert.Nil(t, funding.ApproveTx)
	assert.Equal(t, []string{"read:balanceOf", "read:allowance"}, fc.stepsSnapshot())
}

func TestTokenInfoReadsConcurrently(t *testing.T) {
	fc := newFakeClient()
	fc.returns["name"] = []interface{}{"Wrapped IP"}
	fc.returns["symbol"] = []interface{}{"WIP"}
	fc.returns["decimals"] = []interface{}{uint8(18)}
	fc.returns["balanceOf"] = []interface{}{big.NewInt(77)}
	story := NewStory(fc, testAddresses, nil)

	holder := fc.account
	info, err := story.TokenInfo(context.Background(), Token{Address: testAddresses.WIP}, &holder)
	require.NoError(t, err)

	assert.Equal(t, "Wrapped IP", info.Name)
	assert.Equal(t, "WIP", info.Symbol)
	assert.Equal(t, uint8(18), info.Decimals)
	assert.Equal(t, "77", info.Balance.String())
	assert.ElementsMatch(t, []string{"read:name", "read:symbol", "read:decimals", "read:balanceOf"}, fc.stepsSnapshot())
}

func TestTokenInfoNative(t *testing.T) {
	fc := newFakeClient()
	fc.native = big.NewInt(9)
	story := NewStory(fc, testAddresses, nil)

	holder := fc.account
	info, err := story.TokenInfo(context.Background(), Token{Symbol: NativeSymbol, Native: true}, &holder)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), info.Decimals)
	assert.Equal(t, "9", info.Balance.String())
	assert.Empty(t, fc.stepsSnapshot())
}

func TestMintAndRegisterIP(t *testing.T) {
	ipID := common.HexToAddress("0x00000000000000000000000000000000000000f0")
	fc := newFakeClient()
	fc.returns["mintAndRegisterIp"] = []interface{}{ipID, big.NewInt(5)}
	story := NewStory(fc, testAddresses, nil)

	spg := common.HexToAddress("0x00000000000000000000000000000000000000c0")
	reg, err := story.MintAndRegisterIP(context.Background(), spg, fc.account, IPMetadata{
		IPMetadataURI:   "ipfs://ip",
		IPMetadataHash:  common.HexToHash("0x01"),
		NFTMetadataURI:  "ipfs://nft",
		NFTMetadataHash: common.HexToHash("0x02"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, ipID, reg.IPID)
	assert.Equal(t, "5", reg.TokenID.String())
	assert.Equal(t, spg, reg.TokenContract)
}

func TestRegisterNFTSetsMetadata(t *testing.T) {
	ipID := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	fc := newFakeClient()
	fc.returns["register"] = []interface{}{ipID}
	story := NewStory(fc, testAddresses, nil)

	reg, err := story.RegisterNFT(context.Background(), common.HexToAddress("0x00000000000000000000000000000000000000c1"), big.NewInt(8), IPMetadata{IPMetadataURI: "ipfs://ip"})
	require.NoError(t, err)
	assert.Equal(t, ipID, reg.IPID)
	require.NotNil(t, reg.MetadataTx)
	assert.Contains(t, fc.stepsSnapshot(), "write:setAll")
}

func TestCreateCollectionDefaultsOwner(t *testing.T) {
	spg := common.HexToAddress("0x00000000000000000000000000000000000000c2")
	fc := newFakeClient()
	fc.returns["createCollection"] = []interface{}{spg}
	story := NewStory(fc, testAddresses, nil)

	res, err := story.CreateCollection(context.Background(), CollectionParams{Name: "Art", Symbol: "ART", MaxSupply: 100, MintOpen: true})
	require.NoError(t, err)
	assert.Equal(t, spg, res.SPGNFTContract)

	params := fc.calls[0].Args[0].(spgNftInitParams)
	assert.Equal(t, fc.account, params.Owner)
	assert.Equal(t, fc.account, params.MintFeeRecipient)
}

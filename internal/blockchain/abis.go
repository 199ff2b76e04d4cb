// internal/blockchain/abis.go
package blockchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Only the fragments this server calls are declared.

const pilTermsComponents = `[
	{"name":"transferable","type":"bool"},
	{"name":"royaltyPolicy","type":"address"},
	{"name":"defaultMintingFee","type":"uint256"},
	{"name":"expiration","type":"uint256"},
	{"name":"commercialUse","type":"bool"},
	{"name":"commercialAttribution","type":"bool"},
	{"name":"commercializerChecker","type":"address"},
	{"name":"commercializerCheckerData","type":"bytes"},
	{"name":"commercialRevShare","type":"uint32"},
	{"name":"commercialRevCeiling","type":"uint256"},
	{"name":"derivativesAllowed","type":"bool"},
	{"name":"derivativesAttribution","type":"bool"},
	{"name":"derivativesApproval","type":"bool"},
	{"name":"derivativesReciprocal","type":"bool"},
	{"name":"derivativeRevCeiling","type":"uint256"},
	{"name":"currency","type":"address"},
	{"name":"uri","type":"string"}
]`

const pilTemplateABIJSON = `[
	{"type":"function","name":"registerLicenseTerms","stateMutability":"nonpayable",
	 "inputs":[{"name":"terms","type":"tuple","components":` + pilTermsComponents + `}],
	 "outputs":[{"name":"id","type":"uint256"}]},
	{"type":"function","name":"getLicenseTermsId","stateMutability":"view",
	 "inputs":[{"name":"terms","type":"tuple","components":` + pilTermsComponents + `}],
	 "outputs":[{"name":"selectedLicenseTermsId","type":"uint256"}]},
	{"type":"function","name":"getLicenseTerms","stateMutability":"view",
	 "inputs":[{"name":"selectedLicenseTermsId","type":"uint256"}],
	 "outputs":[{"name":"terms","type":"tuple","components":` + pilTermsComponents + `}]},
	{"type":"function","name":"exists","stateMutability":"view",
	 "inputs":[{"name":"licenseTermsId","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

const licensingModuleABIJSON = `[
	{"type":"function","name":"attachLicenseTerms","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"ipId","type":"address"},
		{"name":"licenseTemplate","type":"address"},
		{"name":"licenseTermsId","type":"uint256"}],
	 "outputs":[]},
	{"type":"function","name":"mintLicenseTokens","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"licensorIpId","type":"address"},
		{"name":"licenseTemplate","type":"address"},
		{"name":"licenseTermsId","type":"uint256"},
		{"name":"amount","type":"uint256"},
		{"name":"receiver","type":"address"},
		{"name":"royaltyContext","type":"bytes"},
		{"name":"maxMintingFee","type":"uint256"},
		{"name":"maxRevenueShare","type":"uint32"}],
	 "outputs":[{"name":"startLicenseTokenId","type":"uint256"}]}
]`

const ipAssetRegistryABIJSON = `[
	{"type":"function","name":"register","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"chainid","type":"uint256"},
		{"name":"tokenContract","type":"address"},
		{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"id","type":"address"}]},
	{"type":"function","name":"ipId","stateMutability":"view",
	 "inputs":[
		{"name":"chainId","type":"uint256"},
		{"name":"tokenContract","type":"address"},
		{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isRegistered","stateMutability":"view",
	 "inputs":[{"name":"id","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

const registrationWorkflowsABIJSON = `[
	{"type":"function","name":"mintAndRegisterIp","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"spgNftContract","type":"address"},
		{"name":"recipient","type":"address"},
		{"name":"ipMetadata","type":"tuple","components":[
			{"name":"ipMetadataURI","type":"string"},
			{"name":"ipMetadataHash","type":"bytes32"},
			{"name":"nftMetadataURI","type":"string"},
			{"name":"nftMetadataHash","type":"bytes32"}]},
		{"name":"allowDuplicates","type":"bool"}],
	 "outputs":[{"name":"ipId","type":"address"},{"name":"tokenId","type":"uint256"}]},
	{"type":"function","name":"createCollection","stateMutability":"nonpayable",
	 "inputs":[{"name":"spgNftInitParams","type":"tuple","components":[
		{"name":"name","type":"string"},
		{"name":"symbol","type":"string"},
		{"name":"baseURI","type":"string"},
		{"name":"contractURI","type":"string"},
		{"name":"maxSupply","type":"uint32"},
		{"name":"mintFee","type":"uint256"},
		{"name":"mintFeeToken","type":"address"},
		{"name":"mintFeeRecipient","type":"address"},
		{"name":"owner","type":"address"},
		{"name":"mintOpen","type":"bool"},
		{"name":"isPublicMinting","type":"bool"}]}],
	 "outputs":[{"name":"spgNftContract","type":"address"}]}
]`

const coreMetadataModuleABIJSON = `[
	{"type":"function","name":"setAll","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"ipId","type":"address"},
		{"name":"metadataURI","type":"string"},
		{"name":"metadataHash","type":"bytes32"},
		{"name":"nftMetadataHash","type":"bytes32"}],
	 "outputs":[]}
]`

const erc20ABIJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]}
]`

var (
	PILTemplateABI           = mustParseABI(pilTemplateABIJSON)
	LicensingModuleABI       = mustParseABI(licensingModuleABIJSON)
	IPAssetRegistryABI       = mustParseABI(ipAssetRegistryABIJSON)
	RegistrationWorkflowsABI = mustParseABI(registrationWorkflowsABIJSON)
	CoreMetadataModuleABI    = mustParseABI(coreMetadataModuleABIJSON)
	ERC20ABI                 = mustParseABI(erc20ABIJSON)
)

func mustParseABI(def string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid ABI definition: " + err.Error())
	}
	return &parsed
}

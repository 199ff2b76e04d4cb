// internal/services/gateway.go
package services

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/pil"
)

// ChainGateway is the Story contract surface the services depend on.
// *blockchain.Story implements it.
type ChainGateway interface {
	Account() common.Address
	Addresses() blockchain.Addresses
	Tokens() blockchain.TokenShortcuts

	RegisterLicenseTerms(ctx context.Context, terms pil.LicenseTerms) (*blockchain.TermsRegistration, error)
	LicenseTerms(ctx context.Context, id *big.Int) (*pil.LicenseTerms, error)
	AttachLicenseTerms(ctx context.Context, ipID common.Address, termsID *big.Int) (*blockchain.TxResult, error)
	MintLicenseTokens(ctx context.Context, req blockchain.MintLicenseTokensRequest) (*blockchain.MintLicenseTokensResult, error)
	PrepareMintingFee(ctx context.Context, currency common.Address, total, ceiling *big.Int) (*blockchain.FeeFunding, error)

	TokenInfo(ctx context.Context, token blockchain.Token, holder *common.Address) (*blockchain.TokenInfo, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error)
	Transfer(ctx context.Context, token blockchain.Token, to common.Address, amount *big.Int) (*blockchain.TxResult, error)

	IPAccountID(ctx context.Context, tokenContract common.Address, tokenID *big.Int) (common.Address, error)
	IPAsset(ctx context.Context, ipID common.Address) (*blockchain.IPAsset, error)
	RegisterNFT(ctx context.Context, tokenContract common.Address, tokenID *big.Int, metadata blockchain.IPMetadata) (*blockchain.IPRegistration, error)
	MintAndRegisterIP(ctx context.Context, spgNFT, recipient common.Address, metadata blockchain.IPMetadata, allowDuplicates bool) (*blockchain.IPRegistration, error)
	CreateCollection(ctx context.Context, p blockchain.CollectionParams) (*blockchain.CollectionResult, error)
}

var ErrSignerRequired = errors.New("a signing wallet is required for this operation")

func requireSigner(chain ChainGateway) error {
	if chain.Account() == (common.Address{}) {
		return ErrSignerRequired
	}
	return nil
}

// TxHashes collects transaction hashes from results for audit records.
func TxHashes(txs ...*blockchain.TxResult) []string {
	hashes := make([]string, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			hashes = append(hashes, tx.TxHash.Hex())
		}
	}
	return hashes
}

// internal/blockchain/ipasset.go
package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// IPMetadata points at the IPA and NFT metadata documents and their sha256
// digests.
type IPMetadata struct {
	IPMetadataURI   string
	IPMetadataHash  common.Hash
	NFTMetadataURI  string
	NFTMetadataHash common.Hash
}

func (m IPMetadata) empty() bool {
	return m.IPMetadataURI == "" && m.NFTMetadataURI == ""
}

type ipMetadataTuple struct {
	IpMetadataURI   string
	IpMetadataHash  [32]byte
	NftMetadataURI  string
	NftMetadataHash [32]byte
}

type spgNftInitParams struct {
	Name             string
	Symbol           string
	BaseURI          string
	ContractURI      string
	MaxSupply        uint32
	MintFee          *big.Int
	MintFeeToken     common.Address
	MintFeeRecipient common.Address
	Owner            common.Address
	MintOpen         bool
	IsPublicMinting  bool
}

type IPRegistration struct {
	IPID          common.Address `json:"ip_id"`
	TokenContract common.Address `json:"token_contract"`
	TokenID       *big.Int       `json:"token_id"`
	Tx            TxResult       `json:"transaction"`
	MetadataTx    *TxResult      `json:"metadata_transaction,omitempty"`
}

// IPAsset is the registry's view of an IP account.
type IPAsset struct {
	IPID       common.Address `json:"ip_id"`
	Registered bool           `json:"registered"`
}

// IPAccountID derives the deterministic IP id for an NFT.
func (s *Story) IPAccountID(ctx context.Context, tokenContract common.Address, tokenID *big.Int) (common.Address, error) {
	out, err := s.client.ReadContract(ctx, Call{
		Contract: s.ipAssetRegistry(),
		Method:   "ipId",
		Args:     []interface{}{s.client.ChainID(), tokenContract, tokenID},
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to derive ip id: %w", err)
	}
	return addressOut(out, 0)
}

func (s *Story) IPAsset(ctx context.Context, ipID common.Address) (*IPAsset, error) {
	out, err := s.client.ReadContract(ctx, Call{
		Contract: s.ipAssetRegistry(),
		Method:   "isRegistered",
		Args:     []interface{}{ipID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up ip asset %s: %w", ipID.Hex(), err)
	}
	registered, err := boolOut(out, 0)
	if err != nil {
		return nil, err
	}
	return &IPAsset{IPID: ipID, Registered: registered}, nil
}

// RegisterNFT registers an existing NFT as an IP asset and, when metadata is
// given, sets it on the new IP account.
func (s *Story) RegisterNFT(ctx context.Context, tokenContract common.Address, tokenID *big.Int, metadata IPMetadata) (*IPRegistration, error) {
	out, tx, err := s.execute(ctx, Call{
		Contract: s.ipAssetRegistry(),
		Method:   "register",
		Args:     []interface{}{s.client.ChainID(), tokenContract, tokenID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register ip asset: %w", err)
	}
	ipID, err := addressOut(out, 0)
	if err != nil {
		return nil, err
	}

	reg := &IPRegistration{
		IPID:          ipID,
		TokenContract: tokenContract,
		TokenID:       new(big.Int).Set(tokenID),
		Tx:            *tx,
	}

	if !metadata.empty() {
		_, mtx, err := s.execute(ctx, Call{
			Contract: s.coreMetadataModule(),
			Method:   "setAll",
			Args:     []interface{}{ipID, metadata.IPMetadataURI, [32]byte(metadata.IPMetadataHash), [32]byte(metadata.NFTMetadataHash)},
		})
		if err != nil {
			return reg, fmt.Errorf("ip asset %s registered but setting metadata failed: %w", ipID.Hex(), err)
		}
		reg.MetadataTx = mtx
	}

	return reg, nil
}

// MintAndRegisterIP mints an NFT from an SPG collection and registers it in
// one transaction.
func (s *Story) MintAndRegisterIP(ctx context.Context, spgNFT, recipient common.Address, metadata IPMetadata, allowDuplicates bool) (*IPRegistration, error) {
	out, tx, err := s.execute(ctx, Call{
		Contract: s.registrationWorkflows(),
		Method:   "mintAndRegisterIp",
		Args: []interface{}{
			spgNFT,
			recipient,
			ipMetadataTuple{
				IpMetadataURI:   metadata.IPMetadataURI,
				IpMetadataHash:  metadata.IPMetadataHash,
				NftMetadataURI:  metadata.NFTMetadataURI,
				NftMetadataHash: metadata.NFTMetadataHash,
			},
			allowDuplicates,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint and register ip: %w", err)
	}

	ipID, err := addressOut(out, 0)
	if err != nil {
		return nil, err
	}
	tokenID, err := bigOut(out, 1)
	if err != nil {
		return nil, err
	}

	return &IPRegistration{
		IPID:          ipID,
		TokenContract: spgNFT,
		TokenID:       tokenID,
		Tx:            *tx,
	}, nil
}

type CollectionParams struct {
	Name             string
	Symbol           string
	BaseURI          string
	ContractURI      string
	MaxSupply        uint32
	MintFee          *big.Int
	MintFeeToken     common.Address
	MintFeeRecipient common.Address
	Owner            common.Address
	MintOpen         bool
	IsPublicMinting  bool
}

type CollectionResult struct {
	SPGNFTContract common.Address `json:"spg_nft_contract"`
	Tx             TxResult       `json:"transaction"`
}

// CreateCollection deploys an SPG NFT collection.
func (s *Story) CreateCollection(ctx context.Context, p CollectionParams) (*CollectionResult, error) {
	owner := p.Owner
	if owner == (common.Address{}) {
		owner = s.client.Account()
	}
	recipient := p.MintFeeRecipient
	if recipient == (common.Address{}) {
		recipient = owner
	}

	out, tx, err := s.execute(ctx, Call{
		Contract: s.registrationWorkflows(),
		Method:   "createCollection",
		Args: []interface{}{spgNftInitParams{
			Name:             p.Name,
			Symbol:           p.Symbol,
			BaseURI:          p.BaseURI,
			ContractURI:      p.ContractURI,
			MaxSupply:        p.MaxSupply,
			MintFee:          orZero(p.MintFee),
			MintFeeToken:     p.MintFeeToken,
			MintFeeRecipient: recipient,
			Owner:            owner,
			MintOpen:         p.MintOpen,
			IsPublicMinting:  p.IsPublicMinting,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	addr, err := addressOut(out, 0)
	if err != nil {
		return nil, err
	}
	return &CollectionResult{SPGNFTContract: addr, Tx: *tx}, nil
}

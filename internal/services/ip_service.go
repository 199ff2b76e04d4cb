// internal/services/ip_service.go
package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/utils"
)

type IPService struct {
	chain          ChainGateway
	storageService *StorageService
	cfg            config.StoryConfig
}

// RegisterIPAssetRequest registers an existing NFT when NFTContract and
// TokenID are both set, otherwise mints through an SPG collection.
type RegisterIPAssetRequest struct {
	NFTContract     string             `json:"nft_contract,omitempty" validate:"omitempty,eth_address"`
	TokenID         string             `json:"token_id,omitempty" validate:"omitempty,numeric"`
	SPGNFTContract  string             `json:"spg_nft_contract,omitempty" validate:"omitempty,eth_address"`
	Recipient       string             `json:"recipient,omitempty" validate:"omitempty,eth_address"`
	Metadata        *IPMetadataRequest `json:"metadata,omitempty"`
	IPMetadataURI   string             `json:"ip_metadata_uri,omitempty" validate:"max=512"`
	IPMetadataHash  string             `json:"ip_metadata_hash,omitempty"`
	NFTMetadataURI  string             `json:"nft_metadata_uri,omitempty" validate:"max=512"`
	NFTMetadataHash string             `json:"nft_metadata_hash,omitempty"`
	AllowDuplicates bool               `json:"allow_duplicates,omitempty"`
}

type RegisterIPAssetResult struct {
	blockchain.IPRegistration
	Mode        string                `json:"mode"`
	Metadata    *MetadataUploadResult `json:"metadata,omitempty"`
	ExplorerURL string                `json:"explorer_url,omitempty"`
}

type GetIPAssetRequest struct {
	IPID        string `json:"ip_id,omitempty" validate:"omitempty,eth_address"`
	NFTContract string `json:"nft_contract,omitempty" validate:"omitempty,eth_address"`
	TokenID     string `json:"token_id,omitempty" validate:"omitempty,numeric"`
}

type IPAssetResult struct {
	blockchain.IPAsset
	NFTContract string `json:"nft_contract,omitempty"`
	TokenID     string `json:"token_id,omitempty"`
}

type CreateCollectionRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Symbol           string `json:"symbol" validate:"required,max=20"`
	BaseURI          string `json:"base_uri,omitempty"`
	ContractURI      string `json:"contract_uri,omitempty"`
	MaxSupply        uint32 `json:"max_supply,omitempty"`
	MintFee          string `json:"mint_fee,omitempty" validate:"omitempty,decimal_amount"`
	MintFeeToken     string `json:"mint_fee_token,omitempty" validate:"omitempty,eth_address_or_symbol"`
	MintFeeRecipient string `json:"mint_fee_recipient,omitempty" validate:"omitempty,eth_address"`
	Owner            string `json:"owner,omitempty" validate:"omitempty,eth_address"`
	MintOpen         *bool  `json:"mint_open,omitempty"`
	IsPublicMinting  bool   `json:"is_public_minting,omitempty"`
}

type CreateCollectionResult struct {
	blockchain.CollectionResult
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

const (
	RegistrationModeExistingNFT     = "existing_nft"
	RegistrationModeMintAndRegister = "mint_and_register"
)

// collections without a supply cap use the contract maximum
const unlimitedSupply = ^uint32(0)

func NewIPService(chain ChainGateway, storageService *StorageService, cfg *config.Config) *IPService {
	return &IPService{
		chain:          chain,
		storageService: storageService,
		cfg:            cfg.Story,
	}
}

func (s *IPService) Register(ctx context.Context, req *RegisterIPAssetRequest) (*RegisterIPAssetResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if (req.NFTContract == "") != (req.TokenID == "") {
		return nil, invalidField("token_id", "nft_contract and token_id must be given together")
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}

	metadata, err := s.explicitMetadata(req)
	if err != nil {
		return nil, err
	}

	var uploaded *MetadataUploadResult
	if req.Metadata != nil {
		if s.storageService == nil {
			return nil, invalidField("metadata", "metadata upload is not available")
		}
		if uploaded, err = s.storageService.UploadIPMetadata(ctx, req.Metadata); err != nil {
			return nil, err
		}
		metadata = blockchain.IPMetadata{
			IPMetadataURI:   uploaded.IPMetadataURI,
			IPMetadataHash:  common.HexToHash(uploaded.IPMetadataHash),
			NFTMetadataURI:  uploaded.NFTMetadataURI,
			NFTMetadataHash: common.HexToHash(uploaded.NFTMetadataHash),
		}
	}

	var (
		reg  *blockchain.IPRegistration
		mode string
	)
	if req.NFTContract != "" {
		mode = RegistrationModeExistingNFT
		reg, err = s.registerExisting(ctx, req, metadata)
	} else {
		mode = RegistrationModeMintAndRegister
		reg, err = s.mintAndRegister(ctx, req, metadata)
	}
	if err != nil {
		return nil, err
	}
	traceTx(ctx, &reg.Tx, reg.MetadataTx)

	logrus.WithFields(logrus.Fields{
		"ip_id":          reg.IPID.Hex(),
		"token_contract": reg.TokenContract.Hex(),
		"token_id":       reg.TokenID.String(),
		"mode":           mode,
		"tx_hash":        reg.Tx.TxHash.Hex(),
	}).Info("IP asset registered")

	return &RegisterIPAssetResult{
		IPRegistration: *reg,
		Mode:           mode,
		Metadata:       uploaded,
		ExplorerURL:    explorerTxURL(s.cfg.ExplorerURL, &reg.Tx),
	}, nil
}

func (s *IPService) registerExisting(ctx context.Context, req *RegisterIPAssetRequest, metadata blockchain.IPMetadata) (*blockchain.IPRegistration, error) {
	nft, err := parseAddress("nft_contract", req.NFTContract)
	if err != nil {
		return nil, err
	}
	tokenID, err := parseTokenID("token_id", req.TokenID)
	if err != nil {
		return nil, err
	}
	return s.chain.RegisterNFT(ctx, nft, tokenID, metadata)
}

func (s *IPService) mintAndRegister(ctx context.Context, req *RegisterIPAssetRequest, metadata blockchain.IPMetadata) (*blockchain.IPRegistration, error) {
	spg := req.SPGNFTContract
	if spg == "" {
		spg = s.cfg.DefaultSPGNFTContract
	}
	if spg == "" {
		return nil, invalidField("spg_nft_contract", "required when no default SPG collection is configured")
	}
	spgNFT, err := parseAddress("spg_nft_contract", spg)
	if err != nil {
		return nil, err
	}
	recipient, err := parseOptionalAddress("recipient", req.Recipient, s.chain.Account())
	if err != nil {
		return nil, err
	}
	return s.chain.MintAndRegisterIP(ctx, spgNFT, recipient, metadata, req.AllowDuplicates)
}

func (s *IPService) explicitMetadata(req *RegisterIPAssetRequest) (blockchain.IPMetadata, error) {
	var m blockchain.IPMetadata
	if req.Metadata != nil && (req.IPMetadataURI != "" || req.NFTMetadataURI != "") {
		return m, invalidField("metadata", "give either metadata to upload or metadata URIs, not both")
	}

	ipHash, err := parseHash("ip_metadata_hash", req.IPMetadataHash)
	if err != nil {
		return m, err
	}
	nftHash, err := parseHash("nft_metadata_hash", req.NFTMetadataHash)
	if err != nil {
		return m, err
	}

	m.IPMetadataURI = req.IPMetadataURI
	m.IPMetadataHash = ipHash
	m.NFTMetadataURI = req.NFTMetadataURI
	m.NFTMetadataHash = nftHash
	return m, nil
}

// Get looks an IP asset up by ipId or by the NFT that backs it.
func (s *IPService) Get(ctx context.Context, req *GetIPAssetRequest) (*IPAssetResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	res := &IPAssetResult{}
	var ipID common.Address
	switch {
	case req.IPID != "":
		addr, err := parseAddress("ip_id", req.IPID)
		if err != nil {
			return nil, err
		}
		ipID = addr
	case req.NFTContract != "" && req.TokenID != "":
		nft, err := parseAddress("nft_contract", req.NFTContract)
		if err != nil {
			return nil, err
		}
		tokenID, err := parseTokenID("token_id", req.TokenID)
		if err != nil {
			return nil, err
		}
		if ipID, err = s.chain.IPAccountID(ctx, nft, tokenID); err != nil {
			return nil, err
		}
		res.NFTContract = nft.Hex()
		res.TokenID = tokenID.String()
	default:
		return nil, invalidField("ip_id", "give ip_id, or nft_contract and token_id")
	}

	asset, err := s.chain.IPAsset(ctx, ipID)
	if err != nil {
		return nil, err
	}
	res.IPAsset = *asset
	return res, nil
}

func (s *IPService) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CreateCollectionResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}

	p := blockchain.CollectionParams{
		Name:            req.Name,
		Symbol:          req.Symbol,
		BaseURI:         req.BaseURI,
		ContractURI:     req.ContractURI,
		MaxSupply:       req.MaxSupply,
		MintFee:         new(big.Int),
		MintOpen:        true,
		IsPublicMinting: req.IsPublicMinting,
	}
	if p.MaxSupply == 0 {
		p.MaxSupply = unlimitedSupply
	}
	if req.MintOpen != nil {
		p.MintOpen = *req.MintOpen
	}

	if req.MintFee != "" {
		if req.MintFeeToken == "" {
			return nil, invalidField("mint_fee_token", "required when mint_fee is set")
		}
		tok, err := resolveToken(s.chain.Tokens(), "mint_fee_token", req.MintFeeToken)
		if err != nil {
			return nil, err
		}
		if tok.Native {
			return nil, invalidField("mint_fee_token", "mint fees must be paid in an ERC-20 token such as WIP")
		}
		amount, err := pil.ParseAmount("mint_fee", req.MintFee)
		if err != nil {
			return nil, err
		}
		info, err := s.chain.TokenInfo(ctx, tok, nil)
		if err != nil {
			return nil, err
		}
		if p.MintFee, err = pil.ToBaseUnits(amount, int32(info.Decimals)); err != nil {
			return nil, err
		}
		p.MintFeeToken = tok.Address
	}

	var err error
	if p.MintFeeRecipient, err = parseOptionalAddress("mint_fee_recipient", req.MintFeeRecipient, common.Address{}); err != nil {
		return nil, err
	}
	if p.Owner, err = parseOptionalAddress("owner", req.Owner, common.Address{}); err != nil {
		return nil, err
	}

	col, err := s.chain.CreateCollection(ctx, p)
	if err != nil {
		return nil, err
	}
	traceTx(ctx, &col.Tx)

	logrus.WithFields(logrus.Fields{
		"spg_nft_contract": col.SPGNFTContract.Hex(),
		"name":             req.Name,
		"symbol":           req.Symbol,
		"tx_hash":          col.Tx.TxHash.Hex(),
	}).Info("SPG NFT collection created")

	return &CreateCollectionResult{
		CollectionResult: *col,
		Name:             req.Name,
		Symbol:           req.Symbol,
		ExplorerURL:      explorerTxURL(s.cfg.ExplorerURL, &col.Tx),
	}, nil
}

// internal/services/license_service.go
package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/utils"
)

type LicenseService struct {
	chain   ChainGateway
	builder *pil.Builder
	cfg     config.StoryConfig
}

// LicenseTermsView is a registered or built terms record with display
// values alongside the raw fields.
type LicenseTermsView struct {
	LicenseTermsID      string           `json:"license_terms_id,omitempty"`
	Terms               pil.LicenseTerms `json:"terms"`
	MintingFee          string           `json:"minting_fee"`
	RevenueSharePercent uint32           `json:"revenue_share_percent"`
	Summary             []string         `json:"summary"`
}

type PreviewLicenseTermsResult struct {
	LicenseTermsView
	Preset   pil.Preset                     `json:"preset"`
	Warnings []pil.AmbiguousOverrideWarning `json:"warnings,omitempty"`
}

type CreateLicenseTermsResult struct {
	PreviewLicenseTermsResult
	AlreadyRegistered bool                 `json:"already_registered"`
	Transaction       *blockchain.TxResult `json:"transaction,omitempty"`
	ExplorerURL       string               `json:"explorer_url,omitempty"`
}

type AttachLicenseTermsRequest struct {
	IPID           string `json:"ip_id" validate:"required,eth_address"`
	LicenseTermsID string `json:"license_terms_id" validate:"required,numeric"`
}

type AttachLicenseTermsResult struct {
	IPID           string              `json:"ip_id"`
	LicenseTermsID string              `json:"license_terms_id"`
	Transaction    blockchain.TxResult `json:"transaction"`
	ExplorerURL    string              `json:"explorer_url,omitempty"`
}

type QuoteLicenseMintRequest struct {
	LicenseTermsID string `json:"license_terms_id" validate:"required,numeric"`
	Quantity       int64  `json:"quantity"`
	// MaxMintingFee is a decimal token amount; empty means total plus 10%.
	MaxMintingFee string `json:"max_minting_fee,omitempty" validate:"omitempty,decimal_amount"`
}

type QuoteLicenseMintResult struct {
	LicenseTermsID string         `json:"license_terms_id"`
	Currency       common.Address `json:"currency"`
	Quote          pil.FeeQuote   `json:"quote"`
	PerTokenFee    string         `json:"per_token_fee_formatted"`
	TotalFee       string         `json:"total_fee_formatted"`
	MaxFee         string         `json:"max_fee_formatted"`
}

type MintLicenseTokensRequest struct {
	LicensorIPID    string `json:"licensor_ip_id" validate:"required,eth_address"`
	LicenseTermsID  string `json:"license_terms_id" validate:"required,numeric"`
	Quantity        int64  `json:"quantity"`
	Receiver        string `json:"receiver,omitempty" validate:"omitempty,eth_address"`
	MaxMintingFee   string `json:"max_minting_fee,omitempty" validate:"omitempty,decimal_amount"`
	MaxRevenueShare *int64 `json:"max_revenue_share,omitempty" validate:"omitempty,min=0,max=100"`
}

type MintLicenseTokensResult struct {
	LicensorIPID    string                 `json:"licensor_ip_id"`
	LicenseTermsID  string                 `json:"license_terms_id"`
	Receiver        common.Address         `json:"receiver"`
	LicenseTokenIDs []string               `json:"license_token_ids"`
	Fee             QuoteLicenseMintResult `json:"fee"`
	Funding         *blockchain.FeeFunding `json:"funding,omitempty"`
	Transaction     blockchain.TxResult    `json:"transaction"`
	ExplorerURL     string                 `json:"explorer_url,omitempty"`
}

func NewLicenseService(chain ChainGateway, cfg *config.Config) *LicenseService {
	addrs := chain.Addresses()
	return &LicenseService{
		chain:   chain,
		builder: pil.NewBuilder(addrs.RoyaltyPolicyLAP, addrs.WIP),
		cfg:     cfg.Story,
	}
}

// Preview builds terms from raw tool arguments without touching the chain.
func (s *LicenseService) Preview(ctx context.Context, raw map[string]interface{}) (*PreviewLicenseTermsResult, error) {
	preset, params, err := pil.ParseParams(raw)
	if err != nil {
		return nil, err
	}
	if params.URI == "" {
		params.URI = s.cfg.DefaultLicenseTermsURI
	}

	built, err := s.builder.Build(preset, params)
	if err != nil {
		return nil, err
	}

	traceWarnings(ctx, built.Warnings)

	return &PreviewLicenseTermsResult{
		LicenseTermsView: s.view(nil, built.Terms),
		Preset:           built.Preset,
		Warnings:         built.Warnings,
	}, nil
}

// Create builds terms and registers them, reusing the id of identical
// terms that are already registered.
func (s *LicenseService) Create(ctx context.Context, raw map[string]interface{}) (*CreateLicenseTermsResult, error) {
	preview, err := s.Preview(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}

	reg, err := s.chain.RegisterLicenseTerms(ctx, preview.Terms)
	if err != nil {
		return nil, err
	}

	preview.LicenseTermsID = reg.LicenseTermsID.String()
	traceTx(ctx, reg.Tx)

	logrus.WithFields(logrus.Fields{
		"license_terms_id":   preview.LicenseTermsID,
		"preset":             preview.Preset,
		"already_registered": reg.AlreadyRegistered,
		"warnings":           len(preview.Warnings),
	}).Info("License terms registered")

	return &CreateLicenseTermsResult{
		PreviewLicenseTermsResult: *preview,
		AlreadyRegistered:         reg.AlreadyRegistered,
		Transaction:               reg.Tx,
		ExplorerURL:               explorerTxURL(s.cfg.ExplorerURL, reg.Tx),
	}, nil
}

func (s *LicenseService) Get(ctx context.Context, id interface{}) (*LicenseTermsView, error) {
	termsID, err := parseID("license_terms_id", id)
	if err != nil {
		return nil, err
	}

	terms, err := s.chain.LicenseTerms(ctx, termsID)
	if err != nil {
		return nil, err
	}

	view := s.view(termsID, *terms)
	return &view, nil
}

func (s *LicenseService) Attach(ctx context.Context, req *AttachLicenseTermsRequest) (*AttachLicenseTermsResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	ipID, err := parseAddress("ip_id", req.IPID)
	if err != nil {
		return nil, err
	}
	termsID, err := parseID("license_terms_id", req.LicenseTermsID)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}

	tx, err := s.chain.AttachLicenseTerms(ctx, ipID, termsID)
	if err != nil {
		return nil, err
	}
	traceTx(ctx, tx)

	return &AttachLicenseTermsResult{
		IPID:           ipID.Hex(),
		LicenseTermsID: termsID.String(),
		Transaction:    *tx,
		ExplorerURL:    explorerTxURL(s.cfg.ExplorerURL, tx),
	}, nil
}

// Quote reads the per-token fee of the terms and prices the mint.
func (s *LicenseService) Quote(ctx context.Context, req *QuoteLicenseMintRequest) (*QuoteLicenseMintResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	return s.quote(ctx, req.LicenseTermsID, req.Quantity, req.MaxMintingFee)
}

func (s *LicenseService) quote(ctx context.Context, rawTermsID string, quantity int64, rawMaxFee string) (*QuoteLicenseMintResult, error) {
	if quantity < 1 {
		return nil, &pil.InvalidQuantityError{Quantity: quantity}
	}
	termsID, err := parseID("license_terms_id", rawTermsID)
	if err != nil {
		return nil, err
	}

	var maxFee *big.Int
	if rawMaxFee != "" {
		amount, err := pil.ParseAmount("max_minting_fee", rawMaxFee)
		if err != nil {
			return nil, err
		}
		if maxFee, err = pil.ToBaseUnits(amount, pil.DefaultDecimals); err != nil {
			return nil, err
		}
	}

	terms, err := s.chain.LicenseTerms(ctx, termsID)
	if err != nil {
		return nil, err
	}

	quote, err := pil.Quote(terms.DefaultMintingFee, quantity, maxFee)
	if err != nil {
		return nil, err
	}

	return &QuoteLicenseMintResult{
		LicenseTermsID: termsID.String(),
		Currency:       terms.Currency,
		Quote:          *quote,
		PerTokenFee:    pil.FromBaseUnits(quote.PerTokenFee, pil.DefaultDecimals),
		TotalFee:       pil.FromBaseUnits(quote.Total, pil.DefaultDecimals),
		MaxFee:         pil.FromBaseUnits(quote.Ceiling, pil.DefaultDecimals),
	}, nil
}

// Mint quotes the fee, funds and approves it, then mints. Each write waits
// for its receipt before the next one starts.
func (s *LicenseService) Mint(ctx context.Context, req *MintLicenseTokensRequest) (*MintLicenseTokensResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	licensor, err := parseAddress("licensor_ip_id", req.LicensorIPID)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}
	receiver, err := parseOptionalAddress("receiver", req.Receiver, s.chain.Account())
	if err != nil {
		return nil, err
	}

	maxRevShare := s.cfg.DefaultMaxRevenueShare
	if req.MaxRevenueShare != nil {
		maxRevShare = *req.MaxRevenueShare
	}
	if maxRevShare < 0 || maxRevShare > 100 {
		return nil, invalidField("max_revenue_share", "must be between 0 and 100, got %d", maxRevShare)
	}

	fee, err := s.quote(ctx, req.LicenseTermsID, req.Quantity, req.MaxMintingFee)
	if err != nil {
		return nil, err
	}

	funding, err := s.chain.PrepareMintingFee(ctx, fee.Currency, fee.Quote.Total, fee.Quote.Ceiling)
	if err != nil {
		return nil, err
	}
	if funding != nil {
		traceTx(ctx, funding.WrapTx, funding.ApproveTx)
	}

	termsID, _ := new(big.Int).SetString(fee.LicenseTermsID, 10)
	minted, err := s.chain.MintLicenseTokens(ctx, blockchain.MintLicenseTokensRequest{
		LicensorIPID:    licensor,
		LicenseTermsID:  termsID,
		Quantity:        req.Quantity,
		Receiver:        receiver,
		MaxMintingFee:   fee.Quote.Ceiling,
		MaxRevenueShare: uint32(maxRevShare),
	})
	if err != nil {
		return nil, err
	}

	traceTx(ctx, &minted.Tx)

	ids := make([]string, len(minted.LicenseTokenIDs))
	for i, id := range minted.LicenseTokenIDs {
		ids[i] = id.String()
	}

	logrus.WithFields(logrus.Fields{
		"licensor_ip_id":   licensor.Hex(),
		"license_terms_id": fee.LicenseTermsID,
		"quantity":         req.Quantity,
		"total_fee":        fee.Quote.Total.String(),
		"tx_hash":          minted.Tx.TxHash.Hex(),
	}).Info("License tokens minted")

	return &MintLicenseTokensResult{
		LicensorIPID:    licensor.Hex(),
		LicenseTermsID:  fee.LicenseTermsID,
		Receiver:        receiver,
		LicenseTokenIDs: ids,
		Fee:             *fee,
		Funding:         funding,
		Transaction:     minted.Tx,
		ExplorerURL:     explorerTxURL(s.cfg.ExplorerURL, &minted.Tx),
	}, nil
}

// MintTxHashes lists every transaction a mint produced.
func (r *MintLicenseTokensResult) MintTxHashes() []string {
	var txs []*blockchain.TxResult
	if r.Funding != nil {
		txs = append(txs, r.Funding.WrapTx, r.Funding.ApproveTx)
	}
	txs = append(txs, &r.Transaction)
	return TxHashes(txs...)
}

func (s *LicenseService) view(id *big.Int, terms pil.LicenseTerms) LicenseTermsView {
	v := LicenseTermsView{
		Terms:               terms,
		MintingFee:          pil.FromBaseUnits(terms.DefaultMintingFee, pil.DefaultDecimals),
		RevenueSharePercent: terms.CommercialRevShare,
		Summary:             summarizeTerms(terms, s.chain.Addresses()),
	}
	if id != nil {
		v.LicenseTermsID = id.String()
	}
	return v
}

func summarizeTerms(t pil.LicenseTerms, addrs blockchain.Addresses) []string {
	var lines []string

	if t.CommercialUse {
		line := "Commercial use allowed"
		if t.CommercialAttribution {
			line += " with attribution"
		}
		lines = append(lines, line)
	} else {
		lines = append(lines, "Non-commercial use only")
	}
	if t.CommercialRevShare > 0 {
		lines = append(lines, fmt.Sprintf("%d%% revenue share", t.CommercialRevShare))
	}

	if t.DerivativesAllowed {
		line := "Derivatives allowed"
		if t.DerivativesApproval {
			line += ", licensor approval required"
		}
		if t.DerivativesReciprocal {
			line += ", derivatives must use the same terms"
		}
		lines = append(lines, line)
	} else {
		lines = append(lines, "No derivatives")
	}

	fee := pil.FromBaseUnits(t.DefaultMintingFee, pil.DefaultDecimals)
	if t.DefaultMintingFee == nil || t.DefaultMintingFee.Sign() == 0 {
		lines = append(lines, "Free to mint")
	} else if t.Currency == addrs.WIP {
		lines = append(lines, fmt.Sprintf("Minting fee %s WIP per license", fee))
	} else {
		lines = append(lines, fmt.Sprintf("Minting fee %s (token %s) per license", fee, t.Currency.Hex()))
	}

	if t.Expiration != nil && t.Expiration.Sign() > 0 {
		lines = append(lines, fmt.Sprintf("Expires at unix time %s", t.Expiration.String()))
	}
	if !t.Transferable {
		lines = append(lines, "License tokens are not transferable")
	}
	return lines
}

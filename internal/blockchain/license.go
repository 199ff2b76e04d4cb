// internal/blockchain/license.go
package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/pil"
)

// revShareScale converts a whole percent to the template's encoding, where
// 100% is 100_000_000.
const revShareScale = 1_000_000

var ErrLicenseTermsNotFound = errors.New("license terms not found")

// pilTermsTuple mirrors the PILTerms struct of the license template. Field
// names follow the ABI component names.
type pilTermsTuple struct {
	Transferable              bool
	RoyaltyPolicy             common.Address
	DefaultMintingFee         *big.Int
	Expiration                *big.Int
	CommercialUse             bool
	CommercialAttribution     bool
	CommercializerChecker     common.Address
	CommercializerCheckerData []byte
	CommercialRevShare        uint32
	CommercialRevCeiling      *big.Int
	DerivativesAllowed        bool
	DerivativesAttribution    bool
	DerivativesApproval       bool
	DerivativesReciprocal     bool
	DerivativeRevCeiling      *big.Int
	Currency                  common.Address
	Uri                       string
}

func toTuple(t pil.LicenseTerms) pilTermsTuple {
	return pilTermsTuple{
		Transferable:              t.Transferable,
		RoyaltyPolicy:             t.RoyaltyPolicy,
		DefaultMintingFee:         orZero(t.DefaultMintingFee),
		Expiration:                orZero(t.Expiration),
		CommercialUse:             t.CommercialUse,
		CommercialAttribution:     t.CommercialAttribution,
		CommercializerCheckerData: []byte{},
		CommercialRevShare:        t.CommercialRevShare * revShareScale,
		CommercialRevCeiling:      orZero(t.CommercialRevCeiling),
		DerivativesAllowed:        t.DerivativesAllowed,
		DerivativesAttribution:    t.DerivativesAttribution,
		DerivativesApproval:       t.DerivativesApproval,
		DerivativesReciprocal:     t.DerivativesReciprocal,
		DerivativeRevCeiling:      orZero(t.DerivativeRevCeiling),
		Currency:                  t.Currency,
		Uri:                       t.URI,
	}
}

func fromTuple(t pilTermsTuple) pil.LicenseTerms {
	return pil.LicenseTerms{
		Transferable:           t.Transferable,
		RoyaltyPolicy:          t.RoyaltyPolicy,
		DefaultMintingFee:      orZero(t.DefaultMintingFee),
		Expiration:             orZero(t.Expiration),
		CommercialUse:          t.CommercialUse,
		CommercialAttribution:  t.CommercialAttribution,
		CommercialRevShare:     t.CommercialRevShare / revShareScale,
		CommercialRevCeiling:   orZero(t.CommercialRevCeiling),
		DerivativesAllowed:     t.DerivativesAllowed,
		DerivativesAttribution: t.DerivativesAttribution,
		DerivativesApproval:    t.DerivativesApproval,
		DerivativesReciprocal:  t.DerivativesReciprocal,
		DerivativeRevCeiling:   orZero(t.DerivativeRevCeiling),
		Currency:               t.Currency,
		URI:                    t.Uri,
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// TermsRegistration is the outcome of registering license terms. Tx is nil
// when identical terms were already registered.
type TermsRegistration struct {
	LicenseTermsID    *big.Int  `json:"license_terms_id"`
	AlreadyRegistered bool      `json:"already_registered"`
	Tx                *TxResult `json:"transaction,omitempty"`
}

// RegisterLicenseTerms registers terms with the PIL template, reusing the
// existing id when the template already knows identical terms.
func (s *Story) RegisterLicenseTerms(ctx context.Context, terms pil.LicenseTerms) (*TermsRegistration, error) {
	tuple := toTuple(terms)

	out, err := s.client.ReadContract(ctx, Call{
		Contract: s.pilTemplate(),
		Method:   "getLicenseTermsId",
		Args:     []interface{}{tuple},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up license terms: %w", err)
	}
	existing, err := bigOut(out, 0)
	if err != nil {
		return nil, err
	}
	if existing.Sign() > 0 {
		logrus.WithField("license_terms_id", existing.String()).Info("License terms already registered")
		return &TermsRegistration{LicenseTermsID: existing, AlreadyRegistered: true}, nil
	}

	out, tx, err := s.execute(ctx, Call{
		Contract: s.pilTemplate(),
		Method:   "registerLicenseTerms",
		Args:     []interface{}{tuple},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register license terms: %w", err)
	}
	id, err := bigOut(out, 0)
	if err != nil {
		return nil, err
	}

	return &TermsRegistration{LicenseTermsID: id, Tx: tx}, nil
}

// LicenseTerms reads registered terms by id.
func (s *Story) LicenseTerms(ctx context.Context, id *big.Int) (*pil.LicenseTerms, error) {
	out, err := s.client.ReadContract(ctx, Call{
		Contract: s.pilTemplate(),
		Method:   "exists",
		Args:     []interface{}{id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check license terms %s: %w", id, err)
	}
	exists, err := boolOut(out, 0)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrLicenseTermsNotFound, id)
	}

	out, err = s.client.ReadContract(ctx, Call{
		Contract: s.pilTemplate(),
		Method:   "getLicenseTerms",
		Args:     []interface{}{id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read license terms %s: %w", id, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLicenseTermsNotFound, id)
	}

	tuple, ok := abi.ConvertType(out[0], new(pilTermsTuple)).(*pilTermsTuple)
	if !ok {
		return nil, fmt.Errorf("unexpected license terms encoding %T", out[0])
	}
	terms := fromTuple(*tuple)
	return &terms, nil
}

// AttachLicenseTerms attaches registered terms to an IP asset.
func (s *Story) AttachLicenseTerms(ctx context.Context, ipID common.Address, termsID *big.Int) (*TxResult, error) {
	_, tx, err := s.execute(ctx, Call{
		Contract: s.licensingModule(),
		Method:   "attachLicenseTerms",
		Args:     []interface{}{ipID, s.addresses.PILicenseTemplate, termsID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach license terms %s to %s: %w", termsID, ipID.Hex(), err)
	}
	return tx, nil
}

type MintLicenseTokensRequest struct {
	LicensorIPID    common.Address
	LicenseTermsID  *big.Int
	Quantity        int64
	Receiver        common.Address
	MaxMintingFee   *big.Int
	MaxRevenueShare uint32
}

type MintLicenseTokensResult struct {
	LicenseTokenIDs []*big.Int `json:"license_token_ids"`
	Tx              TxResult   `json:"transaction"`
}

// MintLicenseTokens mints Quantity tokens; ids are consecutive from the
// start id the module returns.
func (s *Story) MintLicenseTokens(ctx context.Context, req MintLicenseTokensRequest) (*MintLicenseTokensResult, error) {
	if req.Quantity < 1 {
		return nil, &pil.InvalidQuantityError{Quantity: req.Quantity}
	}

	out, tx, err := s.execute(ctx, Call{
		Contract: s.licensingModule(),
		Method:   "mintLicenseTokens",
		Args: []interface{}{
			req.LicensorIPID,
			s.addresses.PILicenseTemplate,
			req.LicenseTermsID,
			big.NewInt(req.Quantity),
			req.Receiver,
			[]byte{},
			orZero(req.MaxMintingFee),
			req.MaxRevenueShare * revShareScale,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint license tokens: %w", err)
	}
	start, err := bigOut(out, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]*big.Int, req.Quantity)
	for i := range ids {
		ids[i] = new(big.Int).Add(start, big.NewInt(int64(i)))
	}

	return &MintLicenseTokensResult{LicenseTokenIDs: ids, Tx: *tx}, nil
}

// FeeFunding reports what was done to let the royalty module collect a
// minting fee.
type FeeFunding struct {
	Wrapped   *big.Int  `json:"wrapped,omitempty"`
	WrapTx    *TxResult `json:"wrap_transaction,omitempty"`
	Approved  *big.Int  `json:"approved,omitempty"`
	ApproveTx *TxResult `json:"approve_transaction,omitempty"`
}

// PrepareMintingFee makes sure the signer can pay total and that the royalty
// module may pull up to ceiling. A WIP shortfall is covered by wrapping
// native IP.
func (s *Story) PrepareMintingFee(ctx context.Context, currency common.Address, total, ceiling *big.Int) (*FeeFunding, error) {
	funding := &FeeFunding{}
	if currency == (common.Address{}) || total == nil || total.Sign() == 0 {
		return funding, nil
	}

	payer := s.client.Account()

	if currency == s.addresses.WIP {
		balance, err := s.ERC20Balance(ctx, currency, payer)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(total) < 0 {
			shortfall := new(big.Int).Sub(total, balance)
			_, tx, err := s.execute(ctx, Call{
				Contract: erc20(currency),
				Method:   "deposit",
				Value:    shortfall,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to wrap IP: %w", err)
			}
			funding.Wrapped = shortfall
			funding.WrapTx = tx
		}
	}

	out, err := s.client.ReadContract(ctx, Call{
		Contract: erc20(currency),
		Method:   "allowance",
		Args:     []interface{}{payer, s.addresses.RoyaltyModule},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}
	allowance, err := bigOut(out, 0)
	if err != nil {
		return nil, err
	}

	approve := ceiling
	if approve == nil || approve.Cmp(total) < 0 {
		approve = total
	}
	if allowance.Cmp(approve) < 0 {
		_, tx, err := s.execute(ctx, Call{
			Contract: erc20(currency),
			Method:   "approve",
			Args:     []interface{}{s.addresses.RoyaltyModule, approve},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to approve royalty module: %w", err)
		}
		funding.Approved = new(big.Int).Set(approve)
		funding.ApproveTx = tx
	}

	return funding, nil
}

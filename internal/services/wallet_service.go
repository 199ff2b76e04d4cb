// internal/services/wallet_service.go
package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/utils"
)

type WalletService struct {
	chain ChainGateway
	cfg   config.StoryConfig
}

type Balance struct {
	Symbol    string         `json:"symbol"`
	Address   common.Address `json:"address,omitempty"`
	Raw       string         `json:"raw"`
	Formatted string         `json:"formatted"`
}

type WalletInfo struct {
	Address  common.Address `json:"address"`
	Network  string         `json:"network"`
	IsSigner bool           `json:"is_signer"`
	Native   Balance        `json:"native"`
	WIP      Balance        `json:"wip"`
}

type TokenInfoResult struct {
	blockchain.TokenInfo
	BalanceFormatted string `json:"balance_formatted,omitempty"`
}

type TransferRequest struct {
	To     string `json:"to" validate:"required,eth_address"`
	Amount string `json:"amount" validate:"required,decimal_amount"`
	Token  string `json:"token,omitempty" validate:"omitempty,eth_address_or_symbol"`
}

type TransferResult struct {
	From        common.Address      `json:"from"`
	To          common.Address      `json:"to"`
	Token       blockchain.Token    `json:"token"`
	Amount      string              `json:"amount"`
	AmountRaw   string              `json:"amount_raw"`
	Transaction blockchain.TxResult `json:"transaction"`
	ExplorerURL string              `json:"explorer_url,omitempty"`
}

func NewWalletService(chain ChainGateway, cfg *config.Config) *WalletService {
	return &WalletService{chain: chain, cfg: cfg.Story}
}

// HasSigner reports whether write tools can sign transactions.
func (s *WalletService) HasSigner() bool {
	return s.chain.Account() != (common.Address{})
}

// WalletInfo returns native IP and WIP balances. An empty address means the
// configured signer.
func (s *WalletService) WalletInfo(ctx context.Context, address string) (*WalletInfo, error) {
	account, err := parseOptionalAddress("address", address, s.chain.Account())
	if err != nil {
		return nil, err
	}
	if account == (common.Address{}) {
		return nil, invalidField("address", "required when no signing wallet is configured")
	}

	wip := s.chain.Addresses().WIP
	var native, wrapped *big.Int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		native, err = s.chain.NativeBalance(gctx, account)
		return err
	})
	g.Go(func() error {
		var err error
		wrapped, err = s.chain.ERC20Balance(gctx, wip, account)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &WalletInfo{
		Address:  account,
		Network:  s.cfg.Network,
		IsSigner: account == s.chain.Account(),
		Native:   balance(blockchain.NativeSymbol, common.Address{}, native, blockchain.NativeDecimals),
		WIP:      balance("WIP", wip, wrapped, pil.DefaultDecimals),
	}, nil
}

func (s *WalletService) TokenInfo(ctx context.Context, token, holder string) (*TokenInfoResult, error) {
	tok, err := resolveToken(s.chain.Tokens(), "token", token)
	if err != nil {
		return nil, err
	}

	var holderAddr *common.Address
	if holder != "" {
		addr, err := parseAddress("holder", holder)
		if err != nil {
			return nil, err
		}
		holderAddr = &addr
	}

	info, err := s.chain.TokenInfo(ctx, tok, holderAddr)
	if err != nil {
		return nil, err
	}

	res := &TokenInfoResult{TokenInfo: *info}
	if info.Balance != nil {
		res.BalanceFormatted = pil.FromBaseUnits(info.Balance, int32(info.Decimals))
	}
	return res, nil
}

// Transfer sends a decimal amount of native IP or an ERC-20 token. The
// token's decimals are read before scaling.
func (s *WalletService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		return nil, err
	}
	symbol := req.Token
	if symbol == "" {
		symbol = blockchain.NativeSymbol
	}
	tok, err := resolveToken(s.chain.Tokens(), "token", symbol)
	if err != nil {
		return nil, err
	}
	if err := requireSigner(s.chain); err != nil {
		return nil, err
	}

	decimals := int32(blockchain.NativeDecimals)
	if !tok.Native {
		info, err := s.chain.TokenInfo(ctx, tok, nil)
		if err != nil {
			return nil, err
		}
		decimals = int32(info.Decimals)
		if tok.Symbol == "" {
			tok.Symbol = info.Symbol
		}
	}

	amount, err := pil.ParseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	raw, err := pil.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}
	if raw.Sign() == 0 {
		return nil, invalidField("amount", "must be greater than zero")
	}

	tx, err := s.chain.Transfer(ctx, tok, to, raw)
	if err != nil {
		return nil, err
	}
	traceTx(ctx, tx)

	logrus.WithFields(logrus.Fields{
		"to":      to.Hex(),
		"token":   tok.Symbol,
		"amount":  amount.String(),
		"tx_hash": tx.TxHash.Hex(),
	}).Info("Transfer confirmed")

	return &TransferResult{
		From:        s.chain.Account(),
		To:          to,
		Token:       tok,
		Amount:      amount.String(),
		AmountRaw:   raw.String(),
		Transaction: *tx,
		ExplorerURL: explorerTxURL(s.cfg.ExplorerURL, tx),
	}, nil
}

func balance(symbol string, addr common.Address, raw *big.Int, decimals int32) Balance {
	if raw == nil {
		raw = new(big.Int)
	}
	return Balance{
		Symbol:    symbol,
		Address:   addr,
		Raw:       raw.String(),
		Formatted: pil.FromBaseUnits(raw, decimals),
	}
}

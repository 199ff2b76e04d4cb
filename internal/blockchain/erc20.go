// internal/blockchain/erc20.go
package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/story-mcp/internal/metrics"
)

// NativeDecimals is the precision of the gas token.
const NativeDecimals = 18

type TokenInfo struct {
	Token
	Name     string   `json:"name"`
	Decimals uint8    `json:"decimals"`
	Balance  *big.Int `json:"balance,omitempty"`
	Holder   string   `json:"holder,omitempty"`
}

// TokenInfo reads name, symbol, decimals and optionally a holder balance.
// The reads are independent and issued concurrently.
func (s *Story) TokenInfo(ctx context.Context, token Token, holder *common.Address) (*TokenInfo, error) {
	info := &TokenInfo{Token: token}

	if token.Native {
		info.Name = "IP"
		info.Decimals = NativeDecimals
		if holder != nil {
			balance, err := s.client.BalanceAt(ctx, *holder)
			if err != nil {
				return nil, err
			}
			info.Balance = balance
			info.Holder = holder.Hex()
		}
		return info, nil
	}

	contract := erc20(token.Address)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := s.client.ReadContract(gctx, Call{Contract: contract, Method: "name"})
		if err != nil {
			return err
		}
		info.Name, err = stringOut(out)
		return err
	})
	g.Go(func() error {
		out, err := s.client.ReadContract(gctx, Call{Contract: contract, Method: "symbol"})
		if err != nil {
			return err
		}
		info.Symbol, err = stringOut(out)
		return err
	})
	g.Go(func() error {
		out, err := s.client.ReadContract(gctx, Call{Contract: contract, Method: "decimals"})
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return fmt.Errorf("missing decimals")
		}
		d, ok := out[0].(uint8)
		if !ok {
			return fmt.Errorf("decimals is %T, not uint8", out[0])
		}
		info.Decimals = d
		return nil
	})
	if holder != nil {
		g.Go(func() error {
			balance, err := s.ERC20Balance(gctx, token.Address, *holder)
			if err != nil {
				return err
			}
			info.Balance = balance
			info.Holder = holder.Hex()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read token %s: %w", token.Address.Hex(), err)
	}
	return info, nil
}

func (s *Story) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return s.client.BalanceAt(ctx, account)
}

func (s *Story) ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	out, err := s.client.ReadContract(ctx, Call{
		Contract: erc20(token),
		Method:   "balanceOf",
		Args:     []interface{}{account},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read balance of %s: %w", account.Hex(), err)
	}
	return bigOut(out, 0)
}

// Transfer sends amount base units of token to recipient. Native transfers
// are plain value transfers.
func (s *Story) Transfer(ctx context.Context, token Token, to common.Address, amount *big.Int) (*TxResult, error) {
	if token.Native {
		hash, err := s.client.SendValue(ctx, to, amount)
		if err != nil {
			metrics.ObserveChainTransaction("sendValue", err)
			return nil, fmt.Errorf("failed to send IP: %w", err)
		}
		tx, err := s.wait(ctx, hash)
		metrics.ObserveChainTransaction("sendValue", err)
		return tx, err
	}

	_, tx, err := s.execute(ctx, Call{
		Contract: erc20(token.Address),
		Method:   "transfer",
		Args:     []interface{}{to, amount},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to transfer %s: %w", token.Address.Hex(), err)
	}
	return tx, nil
}

func stringOut(out []interface{}) (string, error) {
	if len(out) == 0 {
		return "", fmt.Errorf("missing return value")
	}
	v, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("return value is %T, not string", out[0])
	}
	return v, nil
}

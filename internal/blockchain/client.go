// internal/blockchain/client.go
package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/config"
)

var (
	ErrNoSigner          = errors.New("no wallet private key configured; write operations are disabled")
	ErrTransactionFailed = errors.New("transaction reverted")
)

// Contract is a deployed contract and the ABI used to talk to it.
type Contract struct {
	Address common.Address
	ABI     *abi.ABI
}

// Call describes one contract method invocation.
type Call struct {
	Contract Contract
	Method   string
	Args     []interface{}
	Value    *big.Int
}

func (c Call) String() string {
	return fmt.Sprintf("%s.%s", c.Contract.Address.Hex(), c.Method)
}

// Client is the RPC boundary every chain operation goes through.
type Client interface {
	Account() common.Address
	ChainID() *big.Int
	ReadContract(ctx context.Context, call Call) ([]interface{}, error)
	SimulateContract(ctx context.Context, call Call) ([]interface{}, error)
	WriteContract(ctx context.Context, call Call) (common.Hash, error)
	WaitForTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	SendValue(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
}

// EthClient implements Client over a JSON-RPC endpoint with a single local
// signer. Transaction submission is serialized so nonces are assigned in
// order.
type EthClient struct {
	rpc          *ethclient.Client
	chainID      *big.Int
	key          *ecdsa.PrivateKey
	account      common.Address
	pollInterval time.Duration
	timeout      time.Duration

	sendMu sync.Mutex
}

func NewEthClient(ctx context.Context, cfg config.StoryConfig) (*EthClient, error) {
	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCURL, err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = rpc.ChainID(ctx); err != nil {
			rpc.Close()
			return nil, fmt.Errorf("failed to read chain id: %w", err)
		}
	}

	c := &EthClient{
		rpc:          rpc,
		chainID:      chainID,
		pollInterval: cfg.ReceiptPollInterval,
		timeout:      cfg.ReceiptTimeout,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			rpc.Close()
			return nil, fmt.Errorf("invalid wallet private key: %w", err)
		}
		c.key = key
		c.account = crypto.PubkeyToAddress(key.PublicKey)
	}

	if c.pollInterval <= 0 {
		c.pollInterval = time.Second
	}

	logrus.WithFields(logrus.Fields{
		"rpc":      cfg.RPCURL,
		"chain_id": chainID.String(),
		"account":  c.account.Hex(),
	}).Info("Connected to Story RPC")

	return c, nil
}

func (c *EthClient) Close() {
	c.rpc.Close()
}

func (c *EthClient) Account() common.Address {
	return c.account
}

func (c *EthClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *EthClient) ReadContract(ctx context.Context, call Call) ([]interface{}, error) {
	return c.call(ctx, call, common.Address{})
}

// SimulateContract runs the call as the signer without sending it, which
// yields the return values a subsequent write would produce.
func (c *EthClient) SimulateContract(ctx context.Context, call Call) ([]interface{}, error) {
	if c.key == nil {
		return nil, ErrNoSigner
	}
	return c.call(ctx, call, c.account)
}

func (c *EthClient) call(ctx context.Context, call Call, from common.Address) ([]interface{}, error) {
	data, err := call.Contract.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", call, err)
	}

	msg := ethereum.CallMsg{
		From:  from,
		To:    &call.Contract.Address,
		Data:  data,
		Value: call.Value,
	}

	out, err := c.rpc.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call, err)
	}

	values, err := call.Contract.ABI.Unpack(call.Method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", call, err)
	}
	return values, nil
}

func (c *EthClient) WriteContract(ctx context.Context, call Call) (common.Hash, error) {
	data, err := call.Contract.ABI.Pack(call.Method, call.Args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode %s: %w", call, err)
	}
	hash, err := c.send(ctx, call.Contract.Address, call.Value, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s: %w", call, err)
	}
	return hash, nil
}

func (c *EthClient) SendValue(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.send(ctx, to, amount, nil)
}

func (c *EthClient) send(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, ErrNoSigner
	}
	if value == nil {
		value = new(big.Int)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.rpc.PendingNonceAt(ctx, c.account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := c.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas tip: %w", err)
	}

	head, err := c.rpc.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gas, err := c.rpc.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.account,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.rpc.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"tx_hash": signed.Hash().Hex(),
		"to":      to.Hex(),
		"nonce":   nonce,
		"gas":     gas,
	}).Debug("Transaction sent")

	return signed.Hash(), nil
}

// WaitForTransactionReceipt polls until the transaction is mined, the
// configured timeout passes or ctx is cancelled. A reverted transaction is
// returned together with ErrTransactionFailed.
func (c *EthClient) WaitForTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.rpc.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w: %s", ErrTransactionFailed, hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *EthClient) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.rpc.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", account.Hex(), err)
	}
	return balance, nil
}

// internal/blockchain/story.go
package blockchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/metrics"
)

// Addresses holds the protocol contracts of one Story network.
type Addresses struct {
	WIP                   common.Address
	RoyaltyPolicyLAP      common.Address
	RoyaltyModule         common.Address
	LicensingModule       common.Address
	PILicenseTemplate     common.Address
	IPAssetRegistry       common.Address
	RegistrationWorkflows common.Address
	CoreMetadataModule    common.Address
}

func AddressesFromConfig(cfg config.StoryConfig) Addresses {
	return Addresses{
		WIP:                   common.HexToAddress(cfg.WIPToken),
		RoyaltyPolicyLAP:      common.HexToAddress(cfg.RoyaltyPolicyLAP),
		RoyaltyModule:         common.HexToAddress(cfg.RoyaltyModule),
		LicensingModule:       common.HexToAddress(cfg.LicensingModule),
		PILicenseTemplate:     common.HexToAddress(cfg.PILicenseTemplate),
		IPAssetRegistry:       common.HexToAddress(cfg.IPAssetRegistry),
		RegistrationWorkflows: common.HexToAddress(cfg.RegistrationWorkflows),
		CoreMetadataModule:    common.HexToAddress(cfg.CoreMetadataModule),
	}
}

// TxResult summarizes a mined transaction.
type TxResult struct {
	TxHash      common.Hash `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`
	GasUsed     uint64      `json:"gas_used"`
}

func txResult(receipt *types.Receipt) TxResult {
	r := TxResult{TxHash: receipt.TxHash, GasUsed: receipt.GasUsed}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return r
}

// Story wraps the protocol contracts behind typed operations. All chain
// access goes through the Client.
type Story struct {
	client    Client
	addresses Addresses
	tokens    TokenShortcuts
}

func NewStory(client Client, addresses Addresses, tokens TokenShortcuts) *Story {
	if tokens == nil {
		tokens = DefaultTokenShortcuts(addresses.WIP)
	}
	return &Story{
		client:    client,
		addresses: addresses,
		tokens:    tokens,
	}
}

func (s *Story) Addresses() Addresses {
	return s.addresses
}

func (s *Story) Tokens() TokenShortcuts {
	return s.tokens
}

func (s *Story) Account() common.Address {
	return s.client.Account()
}

func (s *Story) ChainID() *big.Int {
	return s.client.ChainID()
}

func (s *Story) pilTemplate() Contract {
	return Contract{Address: s.addresses.PILicenseTemplate, ABI: PILTemplateABI}
}

func (s *Story) licensingModule() Contract {
	return Contract{Address: s.addresses.LicensingModule, ABI: LicensingModuleABI}
}

func (s *Story) ipAssetRegistry() Contract {
	return Contract{Address: s.addresses.IPAssetRegistry, ABI: IPAssetRegistryABI}
}

func (s *Story) registrationWorkflows() Contract {
	return Contract{Address: s.addresses.RegistrationWorkflows, ABI: RegistrationWorkflowsABI}
}

func (s *Story) coreMetadataModule() Contract {
	return Contract{Address: s.addresses.CoreMetadataModule, ABI: CoreMetadataModuleABI}
}

func erc20(addr common.Address) Contract {
	return Contract{Address: addr, ABI: ERC20ABI}
}

// execute runs simulate, write and wait in that order. The simulated return
// values are handed back with the receipt.
func (s *Story) execute(ctx context.Context, call Call) ([]interface{}, *TxResult, error) {
	out, err := s.client.SimulateContract(ctx, call)
	if err != nil {
		return nil, nil, fmt.Errorf("simulation failed: %w", err)
	}

	hash, err := s.client.WriteContract(ctx, call)
	if err != nil {
		metrics.ObserveChainTransaction(call.Method, err)
		return nil, nil, err
	}

	res, err := s.wait(ctx, hash)
	metrics.ObserveChainTransaction(call.Method, err)
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"call":    call.String(),
		"tx_hash": res.TxHash.Hex(),
		"block":   res.BlockNumber,
	}).Info("Contract call confirmed")

	return out, res, nil
}

func (s *Story) wait(ctx context.Context, hash common.Hash) (*TxResult, error) {
	receipt, err := s.client.WaitForTransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	res := txResult(receipt)
	return &res, nil
}

func bigOut(out []interface{}, i int) (*big.Int, error) {
	if len(out) <= i {
		return nil, fmt.Errorf("missing return value %d", i)
	}
	v, ok := out[i].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("return value %d is %T, not uint256", i, out[i])
	}
	return v, nil
}

func addressOut(out []interface{}, i int) (common.Address, error) {
	if len(out) <= i {
		return common.Address{}, fmt.Errorf("missing return value %d", i)
	}
	v, ok := out[i].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("return value %d is %T, not address", i, out[i])
	}
	return v, nil
}

func boolOut(out []interface{}, i int) (bool, error) {
	if len(out) <= i {
		return false, fmt.Errorf("missing return value %d", i)
	}
	v, ok := out[i].(bool)
	if !ok {
		return false, fmt.Errorf("return value %d is %T, not bool", i, out[i])
	}
	return v, nil
}

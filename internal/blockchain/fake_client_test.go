// internal/blockchain/fake_client_test.go
package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeClient encodes every call with the real ABI and answers from canned
// return values keyed by method name.
type fakeClient struct {
	mu      sync.Mutex
	account common.Address
	chainID *big.Int
	returns map[string][]interface{}
	native  *big.Int
	steps   []string
	calls   []Call
	failOn  string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		account: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		chainID: big.NewInt(1315),
		returns: map[string][]interface{}{},
		native:  big.NewInt(0),
	}
}

func (f *fakeClient) record(step string, call Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, step+":"+call.Method)
	f.calls = append(f.calls, call)
	if f.failOn == step+":"+call.Method {
		return fmt.Errorf("boom")
	}
	if _, err := call.Contract.ABI.Pack(call.Method, call.Args...); err != nil {
		return err
	}
	return nil
}

func (f *fakeClient) Account() common.Address { return f.account }

func (f *fakeClient) ChainID() *big.Int { return new(big.Int).Set(f.chainID) }

func (f *fakeClient) ReadContract(_ context.Context, call Call) ([]interface{}, error) {
	if err := f.record("read", call); err != nil {
		return nil, err
	}
	return f.answer(call.Method)
}

func (f *fakeClient) SimulateContract(_ context.Context, call Call) ([]interface{}, error) {
	if err := f.record("simulate", call); err != nil {
		return nil, err
	}
	return f.answer(call.Method)
}

func (f *fakeClient) WriteContract(_ context.Context, call Call) (common.Hash, error) {
	if err := f.record("write", call); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash([]byte(call.Method)), nil
}

func (f *fakeClient) WaitForTransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	f.steps = append(f.steps, "wait")
	f.mu.Unlock()
	return &types.Receipt{
		TxHash:      hash,
		BlockNumber: big.NewInt(42),
		GasUsed:     21000,
		Status:      types.ReceiptStatusSuccessful,
	}, nil
}

func (f *fakeClient) BalanceAt(_ context.Context, _ common.Address) (*big.Int, error) {
	return new(big.Int).Set(f.native), nil
}

func (f *fakeClient) SendValue(_ context.Context, to common.Address, _ *big.Int) (common.Hash, error) {
	f.mu.Lock()
	f.steps = append(f.steps, "send:"+to.Hex())
	f.mu.Unlock()
	return common.HexToHash("0x01"), nil
}

func (f *fakeClient) answer(method string) ([]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.returns[method]
	if !ok {
		return []interface{}{}, nil
	}
	return out, nil
}

func (f *fakeClient) stepsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.steps...)
}

// internal/services/servicestest/fakes.go

// Package servicestest provides in-memory stand-ins for the chain gateway,
// the IPFS pinner and the pin recorder.
package servicestest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/pil"
)

var (
	Signer = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	Bob    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	IPID   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	SPGNFT = common.HexToAddress("0x00000000000000000000000000000000000000c1")

	Addresses = blockchain.Addresses{
		WIP:              common.HexToAddress("0x1514000000000000000000000000000000000000"),
		RoyaltyPolicyLAP: common.HexToAddress("0xBe54FB168b3c982b7AaE60dB6CF75Bd8447b390E"),
		RoyaltyModule:    common.HexToAddress("0xD2f60c40fEbccf6311f8B47c4f2Ec6b040400086"),
	}
)

// Tx returns a receipt summary whose hash and block are derived from n.
func Tx(n byte) *blockchain.TxResult {
	return &blockchain.TxResult{TxHash: common.BytesToHash([]byte{n}), BlockNumber: uint64(n)}
}

// Config is a minimal configuration for service tests.
func Config() *config.Config {
	return &config.Config{
		Story: config.StoryConfig{
			Network:                "aeneid",
			ExplorerURL:            "https://aeneid.storyscan.io/",
			DefaultMaxRevenueShare: 100,
			DefaultLicenseTermsURI: "ipfs://default-terms",
			DefaultSPGNFTContract:  SPGNFT.Hex(),
		},
		JWT: config.JWTConfig{AccessTokenTTL: 1},
	}
}

// Chain records gateway calls in order and answers from its fields.
type Chain struct {
	mu sync.Mutex

	Signer common.Address
	Calls  []string
	Fail   error

	Terms       map[string]*pil.LicenseTerms
	ExistingID  *big.Int
	Funding     *blockchain.FeeFunding
	MintReq     *blockchain.MintLicenseTokensRequest
	FeeCurrency common.Address
	FeeTotal    *big.Int
	FeeCeiling  *big.Int

	Balances    map[common.Address]*big.Int
	ERC20       map[common.Address]*blockchain.TokenInfo
	Transferred *big.Int

	RegisteredMetadata blockchain.IPMetadata
	MintRecipient      common.Address
	Collection         *blockchain.CollectionParams
	IPAccounts         map[string]common.Address
}

func NewChain() *Chain {
	return &Chain{
		Signer:   Signer,
		Terms:    map[string]*pil.LicenseTerms{},
		Balances: map[common.Address]*big.Int{},
		ERC20: map[common.Address]*blockchain.TokenInfo{
			Addresses.WIP: {
				Token:    blockchain.Token{Symbol: "WIP", Address: Addresses.WIP},
				Name:     "Wrapped IP",
				Decimals: 18,
			},
		},
		IPAccounts: map[string]common.Address{},
	}
}

func (f *Chain) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return f.Fail
}

// CallLog returns a copy of the recorded calls.
func (f *Chain) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// AddTerms stores terms under the next id and returns it.
func (f *Chain) AddTerms(terms pil.LicenseTerms) *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := big.NewInt(int64(len(f.Terms) + 1))
	f.Terms[id.String()] = &terms
	return id
}

// MapIPAccount makes IPAccountID resolve the NFT to id.
func (f *Chain) MapIPAccount(tokenContract common.Address, tokenID int64, id common.Address) {
	f.IPAccounts[fmt.Sprintf("%s/%d", tokenContract.Hex(), tokenID)] = id
}

func (f *Chain) Account() common.Address         { return f.Signer }
func (f *Chain) Addresses() blockchain.Addresses { return Addresses }
func (f *Chain) Tokens() blockchain.TokenShortcuts {
	return blockchain.DefaultTokenShortcuts(Addresses.WIP)
}

func (f *Chain) RegisterLicenseTerms(_ context.Context, terms pil.LicenseTerms) (*blockchain.TermsRegistration, error) {
	if err := f.record("RegisterLicenseTerms"); err != nil {
		return nil, err
	}
	if f.ExistingID != nil {
		return &blockchain.TermsRegistration{LicenseTermsID: f.ExistingID, AlreadyRegistered: true}, nil
	}
	return &blockchain.TermsRegistration{LicenseTermsID: f.AddTerms(terms), Tx: Tx(1)}, nil
}

func (f *Chain) LicenseTerms(_ context.Context, id *big.Int) (*pil.LicenseTerms, error) {
	if err := f.record("LicenseTerms"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Terms[id.String()]
	if !ok {
		return nil, blockchain.ErrLicenseTermsNotFound
	}
	return t, nil
}

func (f *Chain) AttachLicenseTerms(_ context.Context, _ common.Address, _ *big.Int) (*blockchain.TxResult, error) {
	if err := f.record("AttachLicenseTerms"); err != nil {
		return nil, err
	}
	return Tx(2), nil
}

func (f *Chain) MintLicenseTokens(_ context.Context, req blockchain.MintLicenseTokensRequest) (*blockchain.MintLicenseTokensResult, error) {
	if err := f.record("MintLicenseTokens"); err != nil {
		return nil, err
	}
	f.MintReq = &req
	ids := make([]*big.Int, req.Quantity)
	for i := range ids {
		ids[i] = big.NewInt(40 + int64(i))
	}
	return &blockchain.MintLicenseTokensResult{LicenseTokenIDs: ids, Tx: *Tx(3)}, nil
}

func (f *Chain) PrepareMintingFee(_ context.Context, currency common.Address, total, ceiling *big.Int) (*blockchain.FeeFunding, error) {
	if err := f.record("PrepareMintingFee"); err != nil {
		return nil, err
	}
	f.FeeCurrency, f.FeeTotal, f.FeeCeiling = currency, total, ceiling
	if f.Funding != nil {
		return f.Funding, nil
	}
	return &blockchain.FeeFunding{}, nil
}

func (f *Chain) TokenInfo(_ context.Context, token blockchain.Token, holder *common.Address) (*blockchain.TokenInfo, error) {
	if err := f.record("TokenInfo"); err != nil {
		return nil, err
	}
	if token.Native {
		info := &blockchain.TokenInfo{Token: token, Name: "IP", Decimals: blockchain.NativeDecimals}
		if holder != nil {
			info.Balance = f.Balances[*holder]
			info.Holder = holder.Hex()
		}
		return info, nil
	}
	info, ok := f.ERC20[token.Address]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	out := *info
	if holder != nil {
		out.Balance = big.NewInt(7)
		out.Holder = holder.Hex()
	}
	return &out, nil
}

func (f *Chain) NativeBalance(_ context.Context, account common.Address) (*big.Int, error) {
	if err := f.record("NativeBalance"); err != nil {
		return nil, err
	}
	return f.Balances[account], nil
}

// ERC20Balance always reports 0.25 tokens.
func (f *Chain) ERC20Balance(_ context.Context, _ common.Address, _ common.Address) (*big.Int, error) {
	if err := f.record("ERC20Balance"); err != nil {
		return nil, err
	}
	return big.NewInt(250_000_000_000_000_000), nil
}

func (f *Chain) Transfer(_ context.Context, _ blockchain.Token, _ common.Address, amount *big.Int) (*blockchain.TxResult, error) {
	if err := f.record("Transfer"); err != nil {
		return nil, err
	}
	f.Transferred = amount
	return Tx(4), nil
}

func (f *Chain) IPAccountID(_ context.Context, tokenContract common.Address, tokenID *big.Int) (common.Address, error) {
	if err := f.record("IPAccountID"); err != nil {
		return common.Address{}, err
	}
	return f.IPAccounts[tokenContract.Hex()+"/"+tokenID.String()], nil
}

// IPAsset reports IPID as the only registered asset.
func (f *Chain) IPAsset(_ context.Context, id common.Address) (*blockchain.IPAsset, error) {
	if err := f.record("IPAsset"); err != nil {
		return nil, err
	}
	return &blockchain.IPAsset{IPID: id, Registered: id == IPID}, nil
}

func (f *Chain) RegisterNFT(_ context.Context, tokenContract common.Address, tokenID *big.Int, metadata blockchain.IPMetadata) (*blockchain.IPRegistration, error) {
	if err := f.record("RegisterNFT"); err != nil {
		return nil, err
	}
	f.RegisteredMetadata = metadata
	return &blockchain.IPRegistration{IPID: IPID, TokenContract: tokenContract, TokenID: tokenID, Tx: *Tx(5), MetadataTx: Tx(6)}, nil
}

func (f *Chain) MintAndRegisterIP(_ context.Context, spg, recipient common.Address, metadata blockchain.IPMetadata, _ bool) (*blockchain.IPRegistration, error) {
	if err := f.record("MintAndRegisterIP"); err != nil {
		return nil, err
	}
	f.RegisteredMetadata = metadata
	f.MintRecipient = recipient
	return &blockchain.IPRegistration{IPID: IPID, TokenContract: spg, TokenID: big.NewInt(12), Tx: *Tx(7)}, nil
}

func (f *Chain) CreateCollection(_ context.Context, p blockchain.CollectionParams) (*blockchain.CollectionResult, error) {
	if err := f.record("CreateCollection"); err != nil {
		return nil, err
	}
	f.Collection = &p
	return &blockchain.CollectionResult{SPGNFTContract: SPGNFT, Tx: *Tx(8)}, nil
}

// Pinner hands out sequential CIDs: bafya, bafyb, ...
type Pinner struct {
	mu     sync.Mutex
	Pinned map[string]json.RawMessage
	Names  []string
	Fail   error
}

func NewPinner() *Pinner {
	return &Pinner{Pinned: map[string]json.RawMessage{}}
}

func (p *Pinner) Configured() bool { return true }

func (p *Pinner) PinJSON(_ context.Context, name string, content json.RawMessage) (*ipfs.PinResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail != nil {
		return nil, p.Fail
	}
	cid := "bafy" + string(rune('a'+len(p.Names)))
	p.Pinned[name] = content
	p.Names = append(p.Names, name)
	return &ipfs.PinResult{CID: cid, Size: int64(len(content))}, nil
}

func (p *Pinner) PinFile(_ context.Context, name string, data io.Reader) (*ipfs.PinResult, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	return p.PinJSON(context.Background(), name, content)
}

func (p *Pinner) GatewayURL(cid string) string {
	return "https://gateway.test/ipfs/" + cid
}

// Recorder keeps pins and tool invocations in memory.
type Recorder struct {
	mu          sync.Mutex
	Pins        []*models.MetadataPin
	Invocations []*models.ToolInvocation
}

func (r *Recorder) Record(_ context.Context, inv *models.ToolInvocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invocations = append(r.Invocations, inv)
}

// Last returns the most recent invocation, or nil.
func (r *Recorder) Last() *models.ToolInvocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Invocations) == 0 {
		return nil
	}
	return r.Invocations[len(r.Invocations)-1]
}

func (r *Recorder) RecordPin(_ context.Context, pin *models.MetadataPin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pins = append(r.Pins, pin)
}

// Package testutil provides an in-memory chain for exercising deployers and
// flows without a node.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// SentTx is a transaction recorded by Chain.
type SentTx struct {
	Hash     common.Hash
	Raw      []byte // set for raw broadcasts
	From     common.Address
	To       *common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
}

// Chain is a programmable usecase.ChainClient.
//
// Effects registered with OnSend run when a transaction is broadcast and may
// place code or move balances, which is how tests simulate factories.
type Chain struct {
	mu sync.Mutex

	ID       *big.Int
	Signer   common.Address
	GasLimit uint64
	GasPrice *big.Int
	Gas      uint64 // EstimateGas result

	code     map[common.Address][]byte
	balances map[common.Address]*big.Int
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*types.Receipt
	sent     []SentTx
	calls    int

	// OnSend is invoked for every broadcast before its receipt is created.
	// Returning false marks the receipt as reverted.
	OnSend func(c *Chain, tx SentTx) bool
	// Err, when set, is returned by every operation.
	Err error
}

// NewChain returns an empty chain with a funded signer.
func NewChain() *Chain {
	return &Chain{
		ID:       big.NewInt(31337),
		Signer:   common.HexToAddress("0x5ec0000000000000000000000000000000000001"),
		GasLimit: 30_000_000,
		GasPrice: big.NewInt(1_000_000_000),
		Gas:      100_000,
		code:     make(map[common.Address][]byte),
		balances: make(map[common.Address]*big.Int),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetCode places code at address.
func (c *Chain) SetCode(address common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[address] = code
}

// SetBalance sets the balance of address.
func (c *Chain) SetBalance(address common.Address, balance *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[address] = new(big.Int).Set(balance)
}

// Balance returns the balance of address.
func (c *Chain) Balance(address common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceLocked(address)
}

// Code returns the code at address.
func (c *Chain) Code(address common.Address) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code[address]
}

// Sent returns every broadcast transaction in order.
func (c *Chain) Sent() []SentTx {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentTx(nil), c.sent...)
}

// Calls returns how many ChainClient operations were made.
func (c *Chain) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *Chain) enter() error {
	c.calls++
	return c.Err
}

func (c *Chain) balanceLocked(address common.Address) *big.Int {
	if b, ok := c.balances[address]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (c *Chain) ChainID(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.ID), nil
}

func (c *Chain) SignerAddress() common.Address {
	return c.Signer
}

func (c *Chain) HasCode(_ context.Context, address common.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return false, err
	}
	return len(c.code[address]) > 0, nil
}

func (c *Chain) BlockGasLimit(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return 0, err
	}
	return c.GasLimit, nil
}

func (c *Chain) BalanceAt(_ context.Context, address common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return nil, err
	}
	return c.balanceLocked(address), nil
}

func (c *Chain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return 0, err
	}
	return c.Gas, nil
}

func (c *Chain) SuggestGasPrice(context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.GasPrice), nil
}

func (c *Chain) PendingNonce(_ context.Context, address common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return 0, err
	}
	return c.nonces[address], nil
}

func (c *Chain) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	c.mu.Lock()
	if err := c.enter(); err != nil {
		c.mu.Unlock()
		return common.Hash{}, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		c.mu.Unlock()
		return common.Hash{}, fmt.Errorf("malformed raw transaction: %w", err)
	}
	from, err := types.Sender(types.HomesteadSigner{}, tx)
	if err != nil {
		c.mu.Unlock()
		return common.Hash{}, err
	}
	c.mu.Unlock()

	return c.record(SentTx{
		Hash:     tx.Hash(),
		Raw:      raw,
		From:     from,
		To:       tx.To(),
		Data:     tx.Data(),
		Value:    tx.Value(),
		GasLimit: tx.Gas(),
		GasPrice: tx.GasPrice(),
		Nonce:    tx.Nonce(),
	}), nil
}

func (c *Chain) SendTransaction(_ context.Context, req models.TxRequest) (common.Hash, error) {
	c.mu.Lock()
	if err := c.enter(); err != nil {
		c.mu.Unlock()
		return common.Hash{}, err
	}
	nonce := c.nonces[c.Signer]
	c.mu.Unlock()

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	gasPrice := req.GasPrice
	if gasPrice == nil {
		gasPrice = c.GasPrice
	}
	hash := crypto.Keccak256Hash(c.Signer.Bytes(), new(big.Int).SetUint64(nonce).Bytes(), req.Data)
	return c.record(SentTx{
		Hash:     hash,
		From:     c.Signer,
		To:       req.To,
		Data:     req.Data,
		Value:    value,
		GasLimit: req.GasLimit,
		GasPrice: gasPrice,
		Nonce:    nonce,
	}), nil
}

// record applies a transaction: nonce bump, value transfer, contract creation
// with the init code as code, effects, receipt.
func (c *Chain) record(tx SentTx) common.Hash {
	c.mu.Lock()
	c.sent = append(c.sent, tx)
	c.nonces[tx.From] = tx.Nonce + 1
	if tx.Value != nil && tx.Value.Sign() > 0 {
		from := c.balanceLocked(tx.From)
		c.balances[tx.From] = from.Sub(from, tx.Value)
		if tx.To != nil {
			to := c.balanceLocked(*tx.To)
			c.balances[*tx.To] = to.Add(to, tx.Value)
		}
	}
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash}
	if tx.To == nil {
		receipt.ContractAddress = crypto.CreateAddress(tx.From, tx.Nonce)
		c.code[receipt.ContractAddress] = tx.Data
	}
	onSend := c.OnSend
	c.mu.Unlock()

	if onSend != nil && !onSend(c, tx) {
		receipt.Status = types.ReceiptStatusFailed
	}

	c.mu.Lock()
	c.receipts[tx.Hash] = receipt
	c.mu.Unlock()
	return tx.Hash
}

func (c *Chain) WaitForReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(); err != nil {
		return nil, err
	}
	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("unknown transaction %s", hash.Hex())
	}
	return receipt, nil
}

var _ usecase.ChainClient = (*Chain)(nil)

package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	defaultCallTimeout         = 5 * time.Second
	defaultReceiptPollInterval = time.Second
)

// Backend is the subset of ethclient.Client used by Client. The simulated
// backend satisfies it too.
type Backend interface {
	bind.ContractBackend
	ethereum.ChainIDReader
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Config configures the chain client
type Config struct {
	RPCURL              string
	ChainID             uint64 // 0 accepts whatever the node reports
	PrivateKey          *ecdsa.PrivateKey
	CallTimeout         time.Duration
	ReceiptPollInterval time.Duration
}

// Client implements usecase.ChainClient on top of an RPC backend and a local key
type Client struct {
	backend      Backend
	chainID      *big.Int
	key          *ecdsa.PrivateKey
	signer       common.Address
	callTimeout  time.Duration
	pollInterval time.Duration
	log          *slog.Logger

	// serialises nonce assignment between concurrent senders
	sendMu sync.Mutex
}

// Dial connects to the RPC endpoint and checks the chain ID
func Dial(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, chainErr("failed to connect to RPC", err)
	}
	return NewClient(ctx, client, cfg, log)
}

// NewClient wraps an existing backend
func NewClient(ctx context.Context, backend Backend, cfg Config, log *slog.Logger) (*Client, error) {
	networkChainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, chainErr("failed to get chain ID", err)
	}

	// If chainID was 0, use the network's chain ID
	if cfg.ChainID != 0 && networkChainID.Uint64() != cfg.ChainID {
		return nil, fmt.Errorf("%w: chain ID mismatch: expected %d, got %d", domain.ErrConfiguration, cfg.ChainID, networkChainID.Uint64())
	}

	c := &Client{
		backend:      backend,
		chainID:      networkChainID,
		key:          cfg.PrivateKey,
		callTimeout:  cfg.CallTimeout,
		pollInterval: cfg.ReceiptPollInterval,
		log:          log.With("component", "chain", "chainId", networkChainID.Uint64()),
	}
	if c.callTimeout == 0 {
		c.callTimeout = defaultCallTimeout
	}
	if c.pollInterval == 0 {
		c.pollInterval = defaultReceiptPollInterval
	}
	if cfg.PrivateKey != nil {
		c.signer = crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey)
	}
	return c, nil
}

// Backend exposes the underlying RPC backend, e.g. for binding deployed contracts
func (c *Client) Backend() Backend {
	return c.backend
}

// ChainID returns the connected chain's ID
func (c *Client) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

// SignerAddress returns the address transactions are sent from
func (c *Client) SignerAddress() common.Address {
	return c.signer
}

// HasCode reports whether code is deployed at address
func (c *Client) HasCode(ctx context.Context, address common.Address) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	code, err := c.backend.CodeAt(ctx, address, nil)
	if err != nil {
		return false, chainErr(fmt.Sprintf("failed to check code at %s", address.Hex()), err)
	}
	return len(code) > 0, nil
}

// BlockGasLimit returns the gas limit of the latest block
func (c *Client) BlockGasLimit(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, chainErr("failed to get latest block", err)
	}
	return header.GasLimit, nil
}

// BalanceAt returns the latest balance of address
func (c *Client) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	balance, err := c.backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, chainErr(fmt.Sprintf("failed to get balance of %s", address.Hex()), err)
	}
	return balance, nil
}

// EstimateGas estimates the gas of call, sending from the signer when no sender is set
func (c *Client) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if call.From == (common.Address{}) {
		call.From = c.signer
	}
	gas, err := c.backend.EstimateGas(ctx, call)
	if err != nil {
		return 0, chainErr("failed to estimate gas", err)
	}
	return gas, nil
}

// SuggestGasPrice returns the node's gas price suggestion
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	price, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, chainErr("failed to get gas price", err)
	}
	return price, nil
}

// PendingNonce returns the next nonce of address
func (c *Client) PendingNonce(ctx context.Context, address common.Address) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	nonce, err := c.backend.PendingNonceAt(ctx, address)
	if err != nil {
		return 0, chainErr(fmt.Sprintf("failed to get nonce of %s", address.Hex()), err)
	}
	return nonce, nil
}

// SendRawTransaction broadcasts an already signed transaction
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, fmt.Errorf("%w: malformed raw transaction: %v", domain.ErrInvalidArgument, err)
	}
	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, chainErr("failed to send raw transaction", err)
	}
	c.log.Debug("sent raw transaction", "tx", tx.Hash().Hex())
	return tx.Hash(), nil
}

// SendTransaction signs req with the configured key and broadcasts it
func (c *Client) SendTransaction(ctx context.Context, req models.TxRequest) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, fmt.Errorf("%w: no private key configured", domain.ErrConfiguration)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.PendingNonce(ctx, c.signer)
	if err != nil {
		return common.Hash{}, err
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.SuggestGasPrice(ctx); err != nil {
			return common.Hash{}, err
		}
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit, err = c.EstimateGas(ctx, ethereum.CallMsg{
			From:  c.signer,
			To:    req.To,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			return common.Hash{}, err
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       req.To,
		Value:    value,
		Data:     req.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, chainErr("failed to send transaction", err)
	}
	c.log.Debug("sent transaction", "tx", signed.Hash().Hex(), "nonce", nonce, "gas", gasLimit)
	return signed.Hash(), nil
}

// WaitForReceipt polls for the receipt of hash until it is mined or ctx is done
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, chainErr(fmt.Sprintf("failed to get receipt of %s", hash.Hex()), err)
		}

		c.log.Debug("waiting for receipt", "tx", hash.Hex())
		select {
		case <-ctx.Done():
			return nil, chainErr(fmt.Sprintf("gave up waiting for %s", hash.Hex()), ctx.Err())
		case <-ticker.C:
		}
	}
}

func chainErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrChainCommunication, op, err)
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*Client)(nil)

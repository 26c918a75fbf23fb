package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract is a compiled contract together with its constructor arguments.
type Contract struct {
	Name     string
	Path     string // source file, e.g. src/Counter.sol
	ABI      *abi.ABI
	Bytecode []byte
	Args     []any
	Artifact *Artifact // nil when built in code
}

// Identifier returns the path:name form used by explorers
func (c *Contract) Identifier() string {
	if c.Path == "" {
		return c.Name
	}
	return fmt.Sprintf("%s:%s", c.Path, c.Name)
}

// WithArgs returns a copy of the contract bound to the given constructor arguments
func (c *Contract) WithArgs(args ...any) *Contract {
	cp := *c
	cp.Args = args
	return &cp
}

// ConstructorArgs ABI-encodes the constructor arguments.
func (c *Contract) ConstructorArgs() ([]byte, error) {
	if len(c.Args) == 0 {
		return nil, nil
	}
	if c.ABI == nil {
		return nil, fmt.Errorf("%w: %s has constructor arguments but no ABI", domain.ErrInvalidArgument, c.Name)
	}
	encoded, err := c.ABI.Pack("", c.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode constructor arguments for %s: %v", domain.ErrInvalidArgument, c.Name, err)
	}
	return encoded, nil
}

// InitCode returns the creation bytecode followed by the encoded constructor arguments.
func (c *Contract) InitCode() ([]byte, error) {
	if len(c.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: no bytecode for %s", domain.ErrInvalidArgument, c.Name)
	}
	args, err := c.ConstructorArgs()
	if err != nil {
		return nil, err
	}
	initCode := make([]byte, 0, len(c.Bytecode)+len(args))
	initCode = append(initCode, c.Bytecode...)
	return append(initCode, args...), nil
}

// MatchesBytecode reports whether the contract's creation code equals expected.
func (c *Contract) MatchesBytecode(expected []byte) bool {
	return bytes.Equal(c.Bytecode, expected)
}

// DeployedContract is the handle returned by a deployer.
type DeployedContract struct {
	Name     string
	Address  common.Address
	TxHash   common.Hash // zero when the deployment was skipped
	Skipped  bool
	Strategy StrategyKind
	ABI      *abi.ABI
}

// Bind returns a bound contract for invoking the deployed contract.
func (d *DeployedContract) Bind(backend bind.ContractBackend) (*bind.BoundContract, error) {
	if d.ABI == nil {
		return nil, fmt.Errorf("%w: no ABI for %s", domain.ErrInvalidArgument, d.Name)
	}
	return bind.NewBoundContract(d.Address, *d.ABI, backend, backend, backend), nil
}

// TxParams are caller overrides applied to every transaction a deployer sends.
// Zero values mean "let the deployer decide".
type TxParams struct {
	GasLimit uint64
	GasPrice *big.Int
	Value    *big.Int
}

// Request builds a transaction request carrying these params.
func (p TxParams) Request(to *common.Address, data []byte) TxRequest {
	return TxRequest{
		To:       to,
		Data:     data,
		Value:    p.Value,
		GasLimit: p.GasLimit,
		GasPrice: p.GasPrice,
	}
}

// TxRequest is a transaction to be signed and sent by the chain client.
type TxRequest struct {
	To       *common.Address // nil for contract creation
	Data     []byte
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
}

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap"`
	LinkReferences map[string]any `json:"linkReferences"`
}

// Bytes decodes the hex object.
func (b BytecodeObject) Bytes() ([]byte, error) {
	if b.Object == "" || b.Object == "0x" {
		return nil, nil
	}
	return hexutil.Decode(b.Object)
}

// Artifact represents a Foundry compilation artifact
type Artifact struct {
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	Metadata         ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
		EVMVersion        string            `json:"evmVersion"`
		ViaIR             bool              `json:"viaIR"`
		Optimizer         Optimizer         `json:"optimizer"`
		Remappings        []string          `json:"remappings"`
		Libraries         map[string]string `json:"libraries"`
		Metadata          map[string]any    `json:"metadata"`
	} `json:"settings"`
	Sources map[string]struct {
		License string `json:"license"`
	} `json:"sources"`
}

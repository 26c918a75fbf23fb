// Package create2 computes contract addresses the way the EVM assigns them.
package create2

import (
	"fmt"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ZeroSalt is the salt used by the singleton factory.
var ZeroSalt [32]byte

// DeriveAddress computes keccak256(0xff ++ deployer ++ salt ++ keccak256(initCode))[12:].
// The deployer must be exactly 20 bytes and the salt exactly 32 bytes.
func DeriveAddress(deployer, salt, initCode []byte) (common.Address, error) {
	if len(deployer) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: deployer must be %d bytes, got %d", domain.ErrInvalidArgument, common.AddressLength, len(deployer))
	}
	if len(salt) != common.HashLength {
		return common.Address{}, fmt.Errorf("%w: salt must be %d bytes, got %d", domain.ErrInvalidArgument, common.HashLength, len(salt))
	}
	return ComputeWithHash(common.BytesToAddress(deployer), common.BytesToHash(salt), crypto.Keccak256Hash(initCode)), nil
}

// Compute is the typed form of DeriveAddress.
func Compute(deployer common.Address, salt [32]byte, initCode []byte) common.Address {
	return ComputeWithHash(deployer, salt, crypto.Keccak256Hash(initCode))
}

// ComputeWithHash derives the address from an already hashed init code.
func ComputeWithHash(deployer common.Address, salt [32]byte, codeHash common.Hash) common.Address {
	return crypto.CreateAddress2(deployer, salt, codeHash.Bytes())
}

// CreateAddress computes the address of a contract created by sender at nonce.
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(sender, nonce)
}

// SaltFromInstance encodes an instance number as a big-endian uint256.
// A nil instance is treated as zero.
func SaltFromInstance(instance *big.Int) ([32]byte, error) {
	if instance == nil {
		return ZeroSalt, nil
	}
	if instance.Sign() < 0 {
		return ZeroSalt, fmt.Errorf("%w: instance must not be negative, got %s", domain.ErrInvalidArgument, instance)
	}
	v, overflow := uint256.FromBig(instance)
	if overflow {
		return ZeroSalt, fmt.Errorf("%w: instance %s does not fit in uint256", domain.ErrInvalidArgument, instance)
	}
	return v.Bytes32(), nil
}

// IsZeroInstance reports whether instance is nil or zero.
func IsZeroInstance(instance *big.Int) bool {
	return instance == nil || instance.Sign() == 0
}

package domain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed addresses, salts or instances
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration is returned for missing or inconsistent settings
	ErrConfiguration = errors.New("configuration error")

	// ErrChainCommunication wraps every failure reported by the chain client
	ErrChainCommunication = errors.New("chain communication error")

	// ErrDeploymentFailed is returned when a confirmed transaction left no code behind
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")

	// ErrUnsupportedOperation is returned when a strategy cannot honour a request
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInsufficientFunds is returned when a transfer would not cover its own fee
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrGasPriceTooHigh is returned when the bootstrap gas price ceiling blocks a broadcast
	ErrGasPriceTooHigh = errors.New("gas price too high")

	// ErrBytecodeMismatch is returned when compiled bytecode differs from the expected bytecode
	ErrBytecodeMismatch = errors.New("bytecode mismatch")
)

// DeploymentFailedError carries what is needed to investigate a deployment
// that was mined but did not produce code at the expected address.
type DeploymentFailedError struct {
	Name    string
	Address common.Address
	TxHash  common.Hash
	Reason  string
}

func (e *DeploymentFailedError) Error() string {
	msg := fmt.Sprintf("failed to deploy %s at %s in %s", e.Name, e.Address.Hex(), e.TxHash.Hex())
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *DeploymentFailedError) Unwrap() error {
	return ErrDeploymentFailed
}

// VerificationFailedError preserves the backend's terminal status verbatim.
type VerificationFailedError struct {
	Backend string
	Status  string
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("%s: Verification failed with %s", e.Backend, e.Status)
}

func (e *VerificationFailedError) Unwrap() error {
	return ErrVerificationFailed
}

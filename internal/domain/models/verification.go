package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// VerificationStatus represents the state of a verification job on a backend
type VerificationStatus string

const (
	VerificationStatusPending         VerificationStatus = "pending"
	VerificationStatusVerified        VerificationStatus = "verified"
	VerificationStatusAlreadyVerified VerificationStatus = "already_verified"
	VerificationStatusFailed          VerificationStatus = "failed"
)

// Terminal reports whether polling can stop.
func (s VerificationStatus) Terminal() bool {
	return s != VerificationStatusPending
}

// Succeeded reports whether the status counts as a successful verification.
func (s VerificationStatus) Succeeded() bool {
	return s == VerificationStatusVerified || s == VerificationStatusAlreadyVerified
}

// SourceFile is a single entry of the compiler input source map
type SourceFile struct {
	Content string `json:"content"`
}

// OptimizerDetails mirrors solc's optimizer.details
type OptimizerDetails struct {
	Yul *bool `json:"yul,omitempty"`
}

// Optimizer mirrors solc's optimizer settings
type Optimizer struct {
	Enabled bool              `json:"enabled"`
	Runs    int               `json:"runs"`
	Details *OptimizerDetails `json:"details,omitempty"`
}

// CompilerSettings is the settings object of a solc standard JSON input
type CompilerSettings struct {
	EVMVersion      string                         `json:"evmVersion,omitempty"`
	ViaIR           bool                           `json:"viaIR,omitempty"`
	Optimizer       Optimizer                      `json:"optimizer"`
	OutputSelection map[string]map[string][]string `json:"outputSelection,omitempty"`
	Libraries       map[string]map[string]string   `json:"libraries,omitempty"`
	Remappings      []string                       `json:"remappings,omitempty"`
	Metadata        map[string]any                 `json:"metadata,omitempty"`
}

// CompilerInput is a solc standard JSON input
type CompilerInput struct {
	Language string                `json:"language"`
	Sources  map[string]SourceFile `json:"sources"`
	Settings CompilerSettings      `json:"settings"`
}

// VerificationRequest is what callers hand to the contract verifier. Version
// may be short (v0.8.18) or long (v0.8.18+commit.87f61d96).
type VerificationRequest struct {
	ContractToVerify string // path:Name
	Version          string
	Sources          map[string]SourceFile
	Settings         CompilerSettings
	ConstructorArgs  string // hex, with or without 0x
	LicenseType      string
	WaitForSuccess   bool
}

// VerificationJob is a request resolved for submission to a single backend.
type VerificationJob struct {
	ContractToVerify string
	CompilerVersion  string // long form
	CompilerInput    CompilerInput
	ConstructorArgs  string
	LicenseType      string
	WaitForSuccess   bool
}

// ShortVersion strips the commit suffix from the compiler version.
func (j *VerificationJob) ShortVersion() string {
	short, _, _ := strings.Cut(j.CompilerVersion, "+")
	return short
}

// ContractName returns the bare contract name from path:Name.
func (j *VerificationJob) ContractName() string {
	parts := strings.Split(j.ContractToVerify, ":")
	return strings.Replace(parts[len(parts)-1], ".sol", "", 1)
}

// VerifierResult records the outcome of one backend.
type VerifierResult struct {
	Backend string
	Status  VerificationStatus
	Reason  string
}

// VerificationReport aggregates the outcome of every configured backend.
type VerificationReport struct {
	Address common.Address
	Results []VerifierResult
}

// Succeeded reports whether every backend succeeded.
func (r *VerificationReport) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Status.Succeeded() {
			return false
		}
	}
	return len(r.Results) > 0
}

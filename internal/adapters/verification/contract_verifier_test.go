package verification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/testutil"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend is a configurable ExplorerVerifier
type mockBackend struct {
	name   string
	verify func(job *models.VerificationJob) (models.VerificationStatus, error)
	jobs   []*models.VerificationJob
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Verify(_ context.Context, _ common.Address, job *models.VerificationJob) (models.VerificationStatus, error) {
	m.jobs = append(m.jobs, job)
	return m.verify(job)
}

type staticVersions map[string]string

func (s staticVersions) LongVersion(_ context.Context, version string) (string, error) {
	if long, ok := s[version]; ok {
		return long, nil
	}
	return version, nil
}

func testRequest() *models.VerificationRequest {
	return &models.VerificationRequest{
		ContractToVerify: "src/Counter.sol:Counter",
		Version:          "v0.8.18",
		Sources:          map[string]models.SourceFile{"src/Counter.sol": {Content: "contract Counter {}"}},
		Settings:         models.CompilerSettings{EVMVersion: "paris", Remappings: []string{"a/=b/"}},
		WaitForSuccess:   true,
	}
}

func TestContractVerifier_RunsEveryBackend(t *testing.T) {
	tenderly := &mockBackend{name: "tenderly", verify: func(*models.VerificationJob) (models.VerificationStatus, error) {
		return models.VerificationStatusFailed, fmt.Errorf("%w: boom", domain.ErrVerificationFailed)
	}}
	etherscan := &mockBackend{name: "etherscan", verify: func(*models.VerificationJob) (models.VerificationStatus, error) {
		return models.VerificationStatusVerified, nil
	}}

	v := NewContractVerifier(staticVersions{"v0.8.18": "v0.8.18+commit.87f61d96"}, []usecase.ExplorerVerifier{tenderly, etherscan}, testutil.DiscardLogger())
	report, err := v.VerifyContract(context.Background(), target, testRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	assert.Contains(t, err.Error(), "tenderly")
	require.NotNil(t, report)
	assert.False(t, report.Succeeded())
	require.Len(t, report.Results, 2)
	assert.Equal(t, models.VerificationStatusFailed, report.Results[0].Status)
	assert.Equal(t, models.VerificationStatusVerified, report.Results[1].Status)

	require.Len(t, etherscan.jobs, 1)
	job := etherscan.jobs[0]
	assert.Equal(t, "v0.8.18+commit.87f61d96", job.CompilerVersion)
	assert.Equal(t, "v0.8.18", job.ShortVersion())
	assert.Equal(t, "Solidity", job.CompilerInput.Language)
	assert.Equal(t, "paris", job.CompilerInput.Settings.EVMVersion)
	assert.Equal(t, []string{"abi", "evm.bytecode", "evm.deployedBytecode", "evm.methodIdentifiers", "metadata"}, job.CompilerInput.Settings.OutputSelection["*"]["*"])
	assert.Equal(t, []string{"ast"}, job.CompilerInput.Settings.OutputSelection["*"][""])
	assert.True(t, job.WaitForSuccess)
}

func TestContractVerifier_AllSucceed(t *testing.T) {
	ok := &mockBackend{name: "etherscan", verify: func(*models.VerificationJob) (models.VerificationStatus, error) {
		return models.VerificationStatusAlreadyVerified, nil
	}}
	v := NewContractVerifier(staticVersions{}, []usecase.ExplorerVerifier{ok}, testutil.DiscardLogger())

	report, err := v.VerifyContract(context.Background(), target, testRequest())
	require.NoError(t, err)
	assert.True(t, report.Succeeded())
	assert.Equal(t, []string{"etherscan"}, v.Backends())
}

func TestContractVerifier_NoBackends(t *testing.T) {
	v := NewContractVerifier(staticVersions{}, nil, testutil.DiscardLogger())
	_, err := v.VerifyContract(context.Background(), target, testRequest())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestContractVerifier_VersionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	called := false
	backend := &mockBackend{name: "etherscan", verify: func(*models.VerificationJob) (models.VerificationStatus, error) {
		called = true
		return models.VerificationStatusVerified, nil
	}}
	v := NewContractVerifier(NewSolcVersions(server.URL), []usecase.ExplorerVerifier{backend}, testutil.DiscardLogger())

	_, err := v.VerifyContract(context.Background(), target, testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to determine solidity compiler version")
	assert.False(t, called)
}

func TestSolcVersions_LongVersion(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"releases":{"0.8.18":"soljson-v0.8.18+commit.87f61d96.js","0.7.6":"soljson-v0.7.6+commit.7338295f.js"}}`))
	}))
	defer server.Close()

	versions := NewSolcVersions(server.URL)
	ctx := context.Background()

	long, err := versions.LongVersion(ctx, "v0.8.18")
	require.NoError(t, err)
	assert.Equal(t, "v0.8.18+commit.87f61d96", long)

	long, err = versions.LongVersion(ctx, "0.7.6")
	require.NoError(t, err)
	assert.Equal(t, "v0.7.6+commit.7338295f", long)

	long, err = versions.LongVersion(ctx, "v0.8.20+commit.a1b79de6")
	require.NoError(t, err)
	assert.Equal(t, "v0.8.20+commit.a1b79de6", long)

	_, err = versions.LongVersion(ctx, "v0.9.99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int32(1), fetches.Load())
}

func TestValidateBytecode(t *testing.T) {
	contract := &models.Contract{Name: "Counter", Bytecode: []byte{0x60, 0x80}}

	assert.NoError(t, ValidateBytecode(contract, []byte{0x60, 0x80}))

	err := ValidateBytecode(contract, []byte{0x60})
	assert.True(t, errors.Is(err, domain.ErrBytecodeMismatch))
}

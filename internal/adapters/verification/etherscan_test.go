package verification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var target = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func testJob(wait bool) *models.VerificationJob {
	return &models.VerificationJob{
		ContractToVerify: "src/Counter.sol:Counter",
		CompilerVersion:  "v0.8.18+commit.87f61d96",
		CompilerInput: models.CompilerInput{
			Language: "Solidity",
			Sources:  map[string]models.SourceFile{"src/Counter.sol": {Content: "contract Counter {}"}},
			Settings: models.CompilerSettings{Optimizer: models.Optimizer{Enabled: true, Runs: 200}},
		},
		ConstructorArgs: "0xabcd",
		LicenseType:     "MIT",
		WaitForSuccess:  wait,
	}
}

// countingSleep records sleeps without waiting.
type countingSleep struct {
	calls     int
	durations []time.Duration
}

func (c *countingSleep) sleep(_ context.Context, d time.Duration) error {
	c.calls++
	c.durations = append(c.durations, d)
	return nil
}

type fakeEtherscan struct {
	sourceCode    string
	submitStatus  string
	submitResult  string
	statuses      []string
	submitHTTP    int
	polls         int
	submitted     map[string]string
	submitRequest int
}

func (f *fakeEtherscan) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.URL.Query().Get("chainid"))
		assert.Equal(t, "test-key", r.FormValue("apikey"))

		w.Header().Set("Content-Type", "application/json")
		switch r.FormValue("action") {
		case "getsourcecode":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "1", "message": "OK",
				"result": []map[string]string{{"SourceCode": f.sourceCode}},
			})
		case "verifysourcecode":
			f.submitRequest++
			if f.submitHTTP != 0 {
				w.WriteHeader(f.submitHTTP)
				return
			}
			f.submitted = map[string]string{}
			for k := range r.PostForm {
				f.submitted[k] = r.PostForm.Get(k)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"status": f.submitStatus, "message": "OK", "result": f.submitResult})
		case "checkverifystatus":
			assert.Equal(t, "guid-1", r.FormValue("guid"))
			status := f.statuses[f.polls]
			f.polls++
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "1", "message": "OK", "result": status})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestEtherscan(t *testing.T, fake *fakeEtherscan) (*EtherscanVerifier, *countingSleep) {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	sleeper := &countingSleep{}
	v := NewEtherscanVerifier(EtherscanConfig{
		APIKey:  "test-key",
		URL:     server.URL,
		ChainID: 1,
		Limiter: rate.NewLimiter(rate.Inf, 1),
		Poller:  Poller{Sleep: sleeper.sleep},
	}, testutil.DiscardLogger())
	return v, sleeper
}

func TestEtherscanVerifier_PollsUntilPass(t *testing.T) {
	fake := &fakeEtherscan{
		submitStatus: "1",
		submitResult: "guid-1",
		statuses:     []string{"Pending in queue", "Pending in queue", "Pass - Verified"},
	}
	v, sleeper := newTestEtherscan(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, status)
	assert.Equal(t, 3, fake.polls)
	assert.Equal(t, 3, sleeper.calls)
	for _, d := range sleeper.durations {
		assert.Equal(t, 5*time.Second, d)
	}

	assert.Equal(t, "verifysourcecode", fake.submitted["action"])
	assert.Equal(t, "solidity-standard-json-input", fake.submitted["codeformat"])
	assert.Equal(t, "src/Counter.sol:Counter", fake.submitted["contractname"])
	assert.Equal(t, "v0.8.18+commit.87f61d96", fake.submitted["compilerversion"])
	assert.Equal(t, "abcd", fake.submitted["constructorArguements"])
	assert.Equal(t, target.Hex(), fake.submitted["contractaddress"])

	var input models.CompilerInput
	require.NoError(t, json.Unmarshal([]byte(fake.submitted["sourceCode"]), &input))
	assert.Equal(t, "Solidity", input.Language)
	assert.Contains(t, input.Sources, "src/Counter.sol")
}

func TestEtherscanVerifier_TerminalFailure(t *testing.T) {
	fake := &fakeEtherscan{
		submitStatus: "1",
		submitResult: "guid-1",
		statuses:     []string{"Pending in queue", "Fail - Unable to verify"},
	}
	v, _ := newTestEtherscan(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.Error(t, err)
	assert.Equal(t, models.VerificationStatusFailed, status)
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	assert.Contains(t, err.Error(), "Verification failed with Fail - Unable to verify")

	var failed *domain.VerificationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "etherscan", failed.Backend)
	assert.Equal(t, 2, fake.polls)
}

func TestEtherscanVerifier_AlreadyVerified(t *testing.T) {
	t.Run("source published", func(t *testing.T) {
		fake := &fakeEtherscan{sourceCode: "contract Counter {}"}
		v, sleeper := newTestEtherscan(t, fake)

		status, err := v.Verify(context.Background(), target, testJob(true))
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusAlreadyVerified, status)
		assert.Zero(t, fake.submitRequest)
		assert.Zero(t, sleeper.calls)
	})

	t.Run("rejected as verified", func(t *testing.T) {
		fake := &fakeEtherscan{submitStatus: "0", submitResult: "Contract source code already verified"}
		v, _ := newTestEtherscan(t, fake)

		status, err := v.Verify(context.Background(), target, testJob(true))
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusAlreadyVerified, status)
		assert.Zero(t, fake.polls)
	})

	t.Run("status already verified", func(t *testing.T) {
		fake := &fakeEtherscan{submitStatus: "1", submitResult: "guid-1", statuses: []string{"Already Verified"}}
		v, _ := newTestEtherscan(t, fake)

		status, err := v.Verify(context.Background(), target, testJob(true))
		require.NoError(t, err)
		assert.Equal(t, models.VerificationStatusVerified, status)
	})
}

func TestEtherscanVerifier_NoWait(t *testing.T) {
	fake := &fakeEtherscan{submitStatus: "1", submitResult: "guid-1"}
	v, sleeper := newTestEtherscan(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(false))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, status)
	assert.Zero(t, fake.polls)
	assert.Zero(t, sleeper.calls)
}

func TestEtherscanVerifier_Rejected(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		fake := &fakeEtherscan{submitHTTP: http.StatusBadGateway}
		v, _ := newTestEtherscan(t, fake)

		_, err := v.Verify(context.Background(), target, testJob(true))
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Equal(t, 1, fake.submitRequest)
	})

	t.Run("status 0", func(t *testing.T) {
		fake := &fakeEtherscan{submitStatus: "0", submitResult: "Invalid constructor arguments"}
		v, _ := newTestEtherscan(t, fake)

		_, err := v.Verify(context.Background(), target, testJob(true))
		require.ErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Contains(t, err.Error(), "Invalid constructor arguments")
	})
}

func TestPoller_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := NewPoller(time.Hour).Poll(ctx, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestEtherscanAPIURLForChain(t *testing.T) {
	assert.Equal(t, "https://api.etherscan.io/v2/api?chainid=137", EtherscanAPIURLForChain(137))
}

func TestEtherscanVerifier_ChainIDInBaseURL(t *testing.T) {
	var chainIDs [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chainIDs = append(chainIDs, r.URL.Query()["chainid"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "1", "message": "OK",
			"result": []map[string]string{{"SourceCode": "contract Counter {}"}},
		})
	}))
	t.Cleanup(server.Close)

	v := NewEtherscanVerifier(EtherscanConfig{
		APIKey:  "test-key",
		URL:     server.URL + "?chainid=5",
		ChainID: 1,
		Limiter: rate.NewLimiter(rate.Inf, 1),
	}, testutil.DiscardLogger())

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusAlreadyVerified, status)
	require.Len(t, chainIDs, 1)
	assert.Equal(t, []string{"5"}, chainIDs[0])
}

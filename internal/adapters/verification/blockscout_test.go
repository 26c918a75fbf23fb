package verification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlockscout struct {
	verified  bool
	messages  []string
	submits   int
	fields    map[string]string
	inputJSON []byte
}

func (f *fakeBlockscout) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		base := "/api/v2/smart-contracts/" + target.Hex()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			_ = json.NewEncoder(w).Encode(map[string]any{"is_verified": f.verified})
		case r.Method == http.MethodPost && r.URL.Path == base+"/verification/via/standard-input":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f.fields = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				f.fields[k] = v[0]
			}
			file, header, err := r.FormFile("files[0]")
			require.NoError(t, err)
			assert.Equal(t, "compiler_input.json", header.Filename)
			f.inputJSON, _ = io.ReadAll(file)

			message := f.messages[f.submits]
			f.submits++
			_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestBlockscout(t *testing.T, fake *fakeBlockscout) (*BlockscoutVerifier, *countingSleep) {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	sleeper := &countingSleep{}
	return NewBlockscoutVerifier(server.URL+"/", Poller{Sleep: sleeper.sleep}, testutil.DiscardLogger()), sleeper
}

func TestBlockscoutVerifier_ResubmitsUntilVerified(t *testing.T) {
	fake := &fakeBlockscout{messages: []string{blockscoutStarted, blockscoutStarted, blockscoutAlreadyVerified}}
	v, sleeper := newTestBlockscout(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, status)
	assert.Equal(t, 3, fake.submits)
	assert.Equal(t, 2, sleeper.calls)

	assert.Equal(t, "v0.8.18+commit.87f61d96", fake.fields["compiler_version"])
	assert.Equal(t, "mit", fake.fields["license_type"])
	assert.Equal(t, "Counter", fake.fields["contract_name"])
	assert.Equal(t, "false", fake.fields["autodetect_constructor_args"])
	assert.Equal(t, "0xabcd", fake.fields["constructor_args"])

	var input models.CompilerInput
	require.NoError(t, json.Unmarshal(fake.inputJSON, &input))
	assert.Equal(t, 200, input.Settings.Optimizer.Runs)
}

func TestBlockscoutVerifier_NoWait(t *testing.T) {
	fake := &fakeBlockscout{messages: []string{blockscoutStarted}}
	v, sleeper := newTestBlockscout(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(false))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, status)
	assert.Equal(t, 1, fake.submits)
	assert.Zero(t, sleeper.calls)
}

func TestBlockscoutVerifier_AlreadyVerified(t *testing.T) {
	fake := &fakeBlockscout{verified: true}
	v, _ := newTestBlockscout(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusAlreadyVerified, status)
	assert.Zero(t, fake.submits)
}

func TestBlockscoutVerifier_Failure(t *testing.T) {
	fake := &fakeBlockscout{messages: []string{"Compilation failed"}}
	v, _ := newTestBlockscout(t, fake)

	status, err := v.Verify(context.Background(), target, testJob(true))
	assert.Equal(t, models.VerificationStatusFailed, status)
	require.ErrorIs(t, err, domain.ErrVerificationFailed)

	var failed *domain.VerificationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Compilation failed", failed.Status)
	assert.True(t, strings.HasPrefix(err.Error(), "blockscout"))
}

func TestBlockscoutLicense(t *testing.T) {
	tests := map[string]string{
		"None":         "none",
		"Unlicense":    "unlicense",
		"MIT":          "mit",
		"GNU GPLv2":    "gnu_gpl_v2",
		"GNU GPLv3":    "gnu_gpl_v3",
		"GNU LGPLv2.1": "gnu_lgpl_v2_1",
		"GNU LGPLv3":   "gnu_lgpl_v3",
		"BSD-2-Clause": "bsd_2_clause",
		"BSD-3-Clause": "bsd_3_clause",
		"MPL-2.0":      "mpl_2_0",
		"OSL-3.0":      "osl_3_0",
		"Apache-2.0":   "apache_2_0",
		"GNU AGPLv3":   "gnu_agpl_v3",
		"BSL 1.1":      "bsl_1_1",
		"WTFPL":        "WTFPL",
		"":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BlockscoutLicense(in), in)
	}
}

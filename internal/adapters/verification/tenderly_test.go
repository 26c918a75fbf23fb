package verification

import (
	"context"
	"encoding/json"
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

func TestTenderlyVerifier_AddsThenVerifies(t *testing.T) {
	var paths []string
	var added tenderlyAddContract
	var verified tenderlyVerify

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Access-Key"))
		paths = append(paths, r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/address"):
			require.NoError(t, json.NewDecoder(r.Body).Decode(&added))
		case strings.HasSuffix(r.URL.Path, "/contracts"):
			require.NoError(t, json.NewDecoder(r.Body).Decode(&verified))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	v := NewTenderlyVerifier(TenderlyConfig{Account: "acc", Project: "proj", AccessKey: "secret", ChainID: 5, URL: server.URL}, testutil.DiscardLogger())

	status, err := v.Verify(context.Background(), target, testJob(true))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, status)

	assert.Equal(t, []string{"/account/acc/project/proj/address", "/account/acc/project/proj/contracts"}, paths)
	assert.Equal(t, strings.ToLower(target.Hex()), added.Address)
	assert.Equal(t, "src/Counter.sol:Counter", added.DisplayName)
	assert.Equal(t, "5", added.NetworkID)

	require.Len(t, verified.Contracts, 1)
	assert.Equal(t, "public", verified.Config.Mode)
	assert.Equal(t, "0.8.18", verified.Contracts[0].Compiler.Version)
	assert.Equal(t, strings.ToLower(target.Hex()), verified.Contracts[0].Networks["5"].Address)
}

func TestTenderlyVerifier_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	v := NewTenderlyVerifier(TenderlyConfig{Account: "acc", Project: "proj", URL: server.URL}, testutil.DiscardLogger())
	status, err := v.Verify(context.Background(), target, testJob(true))
	assert.Equal(t, models.VerificationStatusFailed, status)
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)
}

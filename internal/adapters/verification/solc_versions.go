package verification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/go-resty/resty/v2"
)

// SolcListURL lists every released solc build
const SolcListURL = "https://solc-bin.ethereum.org/bin/list.json"

// SolcVersions resolves short compiler versions (v0.8.18) to long ones
// (v0.8.18+commit.87f61d96). The release list is fetched once.
type SolcVersions struct {
	client *resty.Client
	url    string

	mu       sync.Mutex
	releases map[string]string
}

// NewSolcVersions creates a resolver reading the list at url, SolcListURL when empty.
func NewSolcVersions(url string) *SolcVersions {
	if url == "" {
		url = SolcListURL
	}
	return &SolcVersions{
		client: resty.New().SetTimeout(30 * time.Second),
		url:    url,
	}
}

// LongVersion returns the long form of version. Long versions are returned as is.
func (s *SolcVersions) LongVersion(ctx context.Context, version string) (string, error) {
	short := "v" + strings.TrimPrefix(version, "v")
	if strings.Contains(short, "+") {
		return short, nil
	}

	releases, err := s.load(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to determine solidity compiler version: %w", err)
	}

	build, ok := releases[strings.TrimPrefix(short, "v")]
	if !ok || build == "" {
		return "", fmt.Errorf("%w: unable to find full solidity compiler version %s", domain.ErrNotFound, short)
	}
	return strings.TrimSuffix(strings.TrimPrefix(build, "soljson-"), ".js"), nil
}

func (s *SolcVersions) load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.releases != nil {
		return s.releases, nil
	}

	var list struct {
		Releases map[string]string `json:"releases"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&list).
		ForceContentType("application/json").
		Get(s.url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unable to get solidity compiler versions: HTTP %d", resp.StatusCode())
	}
	s.releases = list.Releases
	return s.releases, nil
}

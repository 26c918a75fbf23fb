package models

import (
	"fmt"
	"strings"

	"github.com/0xsequence/solidity-deployer/internal/domain"
)

// StrategyKind identifies one of the deployment strategies.
type StrategyKind string

const (
	StrategySingleton StrategyKind = "singleton"
	StrategyUniversal StrategyKind = "universal"
	StrategyTest      StrategyKind = "test"
	StrategyEOA       StrategyKind = "eoa"
)

// AllStrategies lists every strategy kind in display order.
var AllStrategies = []StrategyKind{StrategyUniversal, StrategySingleton, StrategyTest, StrategyEOA}

// ParseStrategyKind parses a strategy name, accepting "forged" as an alias for test.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "universal":
		return StrategyUniversal, nil
	case "singleton":
		return StrategySingleton, nil
	case "test", "forged":
		return StrategyTest, nil
	case "eoa":
		return StrategyEOA, nil
	default:
		return "", fmt.Errorf("%w: unknown deployment strategy %q", domain.ErrInvalidArgument, s)
	}
}

// Deterministic reports whether the strategy yields the same address on every chain.
func (k StrategyKind) Deterministic() bool {
	return k != StrategyEOA
}

//go:build wireinject
// +build wireinject

package app

import (
	"github.com/0xsequence/solidity-deployer/internal/adapters"
	"github.com/0xsequence/solidity-deployer/internal/config"
	"github.com/0xsequence/solidity-deployer/internal/logging"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,
		adapters.AllAdapters,
		NewApp,
	)
	return nil, nil
}

package cli

import (
	"math/big"
	"strings"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constructorABI = `[{"type":"constructor","inputs":[
	{"name":"owner","type":"address"},
	{"name":"supply","type":"uint256"},
	{"name":"decimals","type":"uint8"},
	{"name":"offset","type":"int64"},
	{"name":"paused","type":"bool"},
	{"name":"name","type":"string"},
	{"name":"data","type":"bytes"},
	{"name":"salt","type":"bytes32"}
]}]`

func mustABI(t *testing.T, def string) *abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)
	return &parsed
}

func TestParseConstructorArgs(t *testing.T) {
	contractABI := mustABI(t, constructorABI)

	values, err := parseConstructorArgs(contractABI, []string{
		"0x1111111111111111111111111111111111111111",
		"0x10",
		"18",
		"-5",
		"true",
		"Token",
		"0xdead",
		"0x01",
	})
	require.NoError(t, err)
	require.Len(t, values, 8)

	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), values[0])
	assert.Equal(t, big.NewInt(16), values[1])
	assert.Equal(t, uint8(18), values[2])
	assert.Equal(t, int64(-5), values[3])
	assert.Equal(t, true, values[4])
	assert.Equal(t, "Token", values[5])
	assert.Equal(t, []byte{0xde, 0xad}, values[6])
	var salt [32]byte
	salt[0] = 0x01
	assert.Equal(t, salt, values[7])

	// the values must be accepted by the encoder
	contract := (&models.Contract{Name: "Token", ABI: contractABI, Bytecode: []byte{0xfe}}).WithArgs(values...)
	_, err = contract.InitCode()
	require.NoError(t, err)
}

func TestParseConstructorArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		abi  string
		args []string
	}{
		{
			name: "wrong arity",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"address"}]}]`,
			args: nil,
		},
		{
			name: "bad address",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"address"}]}]`,
			args: []string{"0x1234"},
		},
		{
			name: "negative uint",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"uint256"}]}]`,
			args: []string{"-1"},
		},
		{
			name: "overflow",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"uint8"}]}]`,
			args: []string{"256"},
		},
		{
			name: "too many bytes",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"bytes2"}]}]`,
			args: []string{"0x010203"},
		},
		{
			name: "unsupported type",
			abi:  `[{"type":"constructor","inputs":[{"name":"a","type":"uint256[]"}]}]`,
			args: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConstructorArgs(mustABI(t, tt.abi), tt.args)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestParseConstructorArgs_NoConstructor(t *testing.T) {
	values, err := parseConstructorArgs(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParseInstance(t *testing.T) {
	inst, err := parseInstance("")
	require.NoError(t, err)
	assert.Nil(t, inst)

	inst, err = parseInstance("0x2a")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), inst)

	inst, err = parseInstance("7")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), inst)

	_, err = parseInstance("seven")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTxFlags(t *testing.T) {
	params, err := txFlags{gasLimit: 500_000, gasPrice: "2gwei"}.params()
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), params.GasLimit)
	assert.Equal(t, big.NewInt(2_000_000_000), params.GasPrice)
	assert.Nil(t, params.Value)

	_, err = txFlags{gasPrice: "lots"}.params()
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestParseConstructorArgs_SignedRange(t *testing.T) {
	contractABI := mustABI(t, `[{"type":"constructor","inputs":[{"name":"a","type":"int8"}]}]`)

	values, err := parseConstructorArgs(contractABI, []string{"-128"})
	require.NoError(t, err)
	assert.Equal(t, int8(-128), values[0])

	_, err = parseConstructorArgs(contractABI, []string{"128"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

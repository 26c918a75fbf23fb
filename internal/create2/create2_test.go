package create2

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAddress_Golden(t *testing.T) {
	deployer := bytes.Repeat([]byte{0xaa}, 20)
	salt := make([]byte, 32)

	addr, err := DeriveAddress(deployer, salt, []byte{0xfe})
	require.NoError(t, err)
	assert.Equal(t, "0xA60678E0AB87372f8380903C248b0E078bD8F0E5", addr.Hex())
}

func TestDeriveAddress_Deterministic(t *testing.T) {
	deployer := bytes.Repeat([]byte{0x11}, 20)
	salt := bytes.Repeat([]byte{0x22}, 32)
	initCode := []byte{0x60, 0x80, 0x60, 0x40}

	first, err := DeriveAddress(deployer, salt, initCode)
	require.NoError(t, err)
	second, err := DeriveAddress(deployer, salt, initCode)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first, Compute(common.BytesToAddress(deployer), [32]byte(salt), initCode))
}

func TestDeriveAddress_Sensitivity(t *testing.T) {
	deployer := bytes.Repeat([]byte{0x11}, 20)
	salt := bytes.Repeat([]byte{0x22}, 32)
	initCode := []byte{0x60, 0x80, 0x60, 0x40}

	base, err := DeriveAddress(deployer, salt, initCode)
	require.NoError(t, err)

	flip := func(b []byte, i int) []byte {
		out := bytes.Clone(b)
		out[i] ^= 0x01
		return out
	}

	tests := []struct {
		name     string
		deployer []byte
		salt     []byte
		initCode []byte
	}{
		{"deployer first byte", flip(deployer, 0), salt, initCode},
		{"deployer last byte", flip(deployer, 19), salt, initCode},
		{"salt first byte", deployer, flip(salt, 0), initCode},
		{"salt last byte", deployer, flip(salt, 31), initCode},
		{"init code byte", deployer, salt, flip(initCode, 2)},
		{"init code extended", deployer, salt, append(bytes.Clone(initCode), 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := DeriveAddress(tt.deployer, tt.salt, tt.initCode)
			require.NoError(t, err)
			assert.NotEqual(t, base, addr)
		})
	}
}

func TestDeriveAddress_InvalidLengths(t *testing.T) {
	tests := []struct {
		name     string
		deployer []byte
		salt     []byte
	}{
		{"short deployer", make([]byte, 19), make([]byte, 32)},
		{"long deployer", make([]byte, 21), make([]byte, 32)},
		{"short salt", make([]byte, 20), make([]byte, 31)},
		{"long salt", make([]byte, 20), make([]byte, 33)},
		{"empty salt", make([]byte, 20), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveAddress(tt.deployer, tt.salt, []byte{0xfe})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestCreateAddress_WellKnownFactories(t *testing.T) {
	// The singleton factory and universal deployer v1 are nonce 0 creations of their bootstrap accounts.
	assert.Equal(t,
		common.HexToAddress("0xce0042B868300000d44A59004Da54A005ffdcf9f"),
		CreateAddress(common.HexToAddress("0xBb6e024b9cFFACB947A71991E386681B1Cd1477D"), 0),
	)
	assert.Equal(t,
		common.HexToAddress("0x1b926fbb24a9f78dcdd3272f2d86f5d0660e59c0"),
		CreateAddress(common.HexToAddress("0x9c5a87452d4FAC0cbd53BDCA580b20A45526B3AB"), 0),
	)
}

func TestSaltFromInstance(t *testing.T) {
	tests := []struct {
		name     string
		instance *big.Int
		want     [32]byte
		wantErr  bool
	}{
		{name: "nil", instance: nil, want: ZeroSalt},
		{name: "zero", instance: big.NewInt(0), want: ZeroSalt},
		{name: "one", instance: big.NewInt(1), want: common.BigToHash(big.NewInt(1))},
		{name: "large", instance: new(big.Int).Lsh(big.NewInt(1), 200), want: common.BigToHash(new(big.Int).Lsh(big.NewInt(1), 200))},
		{name: "negative", instance: big.NewInt(-1), wantErr: true},
		{name: "overflow", instance: new(big.Int).Lsh(big.NewInt(1), 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salt, err := SaltFromInstance(tt.instance)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, salt)
		})
	}
}

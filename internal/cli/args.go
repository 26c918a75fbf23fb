package cli

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/0xsequence/solidity-deployer/internal/adapters/fs"
	"github.com/0xsequence/solidity-deployer/internal/app"
	"github.com/0xsequence/solidity-deployer/internal/config"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// loadContract loads ref and binds args to its constructor. An ambiguous
// name is resolved by asking the user.
func loadContract(a *app.App, ref string, args []string) (*models.Contract, error) {
	contract, err := a.Artifacts.LoadContract(ref)
	var ambiguous *fs.AmbiguousArtifactError
	if errors.As(err, &ambiguous) {
		choice, selErr := a.Selector.SelectOption("Select contract", ambiguous.Candidates)
		if selErr != nil {
			return nil, err
		}
		contract, err = a.Artifacts.LoadContract(choice)
	}
	if err != nil {
		return nil, err
	}

	values, err := parseConstructorArgs(contract.ABI, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", contract.Name, err)
	}
	return contract.WithArgs(values...), nil
}

// parseConstructorArgs converts command line strings into the Go values the
// ABI encoder expects for each constructor input.
func parseConstructorArgs(contractABI *abi.ABI, args []string) ([]any, error) {
	var inputs abi.Arguments
	if contractABI != nil {
		inputs = contractABI.Constructor.Inputs
	}
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: constructor takes %d arguments, got %d", domain.ErrInvalidArgument, len(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, input := range inputs {
		v, err := parseArg(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d (%s %s): %v", domain.ErrInvalidArgument, i, input.Type.String(), input.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseArg(typ abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) > typ.Size {
			return nil, fmt.Errorf("%d bytes do not fit in bytes%d", len(b), typ.Size)
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return sizedInt(typ, n)
	default:
		return nil, fmt.Errorf("unsupported type")
	}
}

// sizedInt returns n as the Go integer type go-ethereum packs typ from.
func sizedInt(typ abi.Type, n *big.Int) (any, error) {
	if typ.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for %s", typ.String())
	}
	if !fitsInt(typ, n) {
		return nil, fmt.Errorf("value out of range for %s", typ.String())
	}
	if typ.Size > 64 {
		return n, nil
	}
	v := reflect.New(typ.GetType()).Elem()
	if typ.T == abi.UintTy {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}

func fitsInt(typ abi.Type, n *big.Int) bool {
	if typ.T == abi.UintTy {
		return n.BitLen() <= typ.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	return n.Cmp(limit) < 0 && n.Cmp(new(big.Int).Neg(limit)) >= 0
}

// parseInstance parses a decimal or 0x instance number. Empty means none.
func parseInstance(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: invalid instance %q", domain.ErrInvalidArgument, s)
	}
	return n, nil
}

// txFlags are the transaction overrides shared by sending commands
type txFlags struct {
	gasLimit uint64
	gasPrice string
	value    string
}

func (f txFlags) params() (models.TxParams, error) {
	gasPrice, err := config.ParseWei(f.gasPrice)
	if err != nil {
		return models.TxParams{}, err
	}
	value, err := config.ParseWei(f.value)
	if err != nil {
		return models.TxParams{}, err
	}
	return models.TxParams{GasLimit: f.gasLimit, GasPrice: gasPrice, Value: value}, nil
}

// confirmNetwork asks before sending transactions to a non-local network.
func confirmNetwork(a *app.App, action string) error {
	network := a.Config.Network
	if network == nil || network.IsLocal() {
		return nil
	}
	ok, err := a.Selector.Confirm(fmt.Sprintf("%s on %s (chain %d)", action, network.Name, network.ChainID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cancelled")
	}
	return nil
}

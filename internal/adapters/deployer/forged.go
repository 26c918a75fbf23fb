package deployer

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/create2"
	"github.com/0xsequence/solidity-deployer/internal/domain"
	"github.com/0xsequence/solidity-deployer/internal/domain/bindings"
	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"golang.org/x/sync/errgroup"
)

const (
	forgedGasLimit   uint64 = 247_000
	maxKeyAttempts          = 16
	forgedGasPriceGw        = 100
)

var secp256k1HalfN = new(big.Int).Rsh(crypto.S256().Params().N, 1)

// ForgedDeployment is a UniversalDeployer2 creation transaction carrying a
// random signature. Whoever the signature recovers to has never signed
// anything else, so the transaction is its nonce 0 and the factory lands at
// CREATE(Sender, 0) on any chain where Sender is funded.
type ForgedDeployment struct {
	Sender  common.Address
	Factory common.Address
	RawTx   []byte
	R, S    *big.Int
	V       byte // 27 or 28
}

// DeriveBootstrapSender builds a forged deployment from randomness read from
// r. The same bytes always produce the same deployment.
func DeriveBootstrapSender(r io.Reader) (*ForgedDeployment, error) {
	if r == nil {
		r = rand.Reader
	}

	key, err := readKey(r)
	if err != nil {
		return nil, err
	}
	digest := make([]byte, 32)
	if _, err := io.ReadFull(r, digest); err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}

	rr := new(big.Int).SetBytes(sig[:32])
	s, v := normalizeSignature(new(big.Int).SetBytes(sig[32:64]), sig[64]+27)

	raw := make([]byte, 65)
	rr.FillBytes(raw[:32])
	s.FillBytes(raw[32:64])
	raw[64] = v - 27

	tx, err := types.NewTx(&types.LegacyTx{
		Nonce:    0,
		GasPrice: new(big.Int).Mul(big.NewInt(forgedGasPriceGw), big.NewInt(params.GWei)),
		Gas:      forgedGasLimit,
		Value:    new(big.Int),
		Data:     UniversalDeployerV2Code,
	}).WithSignature(types.HomesteadSigner{}, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to attach signature: %w", err)
	}
	sender, err := types.Sender(types.HomesteadSigner{}, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover forged sender: %w", err)
	}
	encoded, err := tx.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return &ForgedDeployment{
		Sender:  sender,
		Factory: create2.CreateAddress(sender, 0),
		RawTx:   encoded,
		R:       rr,
		S:       s,
		V:       v,
	}, nil
}

func readKey(r io.Reader) (*ecdsa.PrivateKey, error) {
	buf := make([]byte, 32)
	for i := 0; i < maxKeyAttempts; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
		if key, err := crypto.ToECDSA(buf); err == nil {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: no valid key after %d attempts", domain.ErrInvalidArgument, maxKeyAttempts)
}

// normalizeSignature moves s into the lower half of the curve order,
// flipping the recovery id to match.
func normalizeSignature(s *big.Int, v byte) (*big.Int, byte) {
	if s.Cmp(secp256k1HalfN) <= 0 {
		return s, v
	}
	s = new(big.Int).Sub(crypto.S256().Params().N, s)
	if v == 27 {
		return s, 28
	}
	return s, 27
}

// ForgedDeployer is meant for local and test chains. It uses the canonical
// UniversalDeployer2 when present and otherwise deploys its own copy with a
// forged transaction, so no pre-signed transaction has to be replayable.
type ForgedDeployer struct {
	factoryDeployer
	forged    *ForgedDeployment
	universal common.Address
	singleton common.Address
	binding   *bindings.UniversalDeployer2
}

// NewSeedReader returns an endless byte stream derived from seed:
// keccak256(seed ‖ counter) for counter = 0, 1, ...
func NewSeedReader(seed string) io.Reader {
	return &seedReader{seed: []byte(seed)}
}

type seedReader struct {
	seed    []byte
	counter uint64
	buf     []byte
}

func (r *seedReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			r.buf = crypto.Keccak256(r.seed, new(big.Int).SetUint64(r.counter).FillBytes(make([]byte, 8)))
			r.counter++
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

// NewForgedDeployer creates a forged deployer, drawing its signature from
// cfg.Rand, from cfg.ForgeSeed when Rand is nil, or from crypto/rand.
func NewForgedDeployer(chain usecase.ChainClient, cfg Config, log *slog.Logger) (*ForgedDeployer, error) {
	cfg = cfg.withDefaults()
	if cfg.Rand == nil && cfg.ForgeSeed != "" {
		cfg.Rand = NewSeedReader(cfg.ForgeSeed)
	}
	forged, err := DeriveBootstrapSender(cfg.Rand)
	if err != nil {
		return nil, err
	}
	return &ForgedDeployer{
		factoryDeployer: newFactoryDeployer(models.StrategyTest, chain, cfg, log),
		forged:          forged,
		universal:       cfg.UniversalFactory,
		singleton:       cfg.SingletonFactory,
		binding:         bindings.NewUniversalDeployer2(),
	}, nil
}

// Forged returns the forged deployment backing this deployer.
func (d *ForgedDeployer) Forged() *ForgedDeployment {
	return d.forged
}

// factoryAddress picks the canonical v2 factory when it has code, otherwise
// the forged one.
func (d *ForgedDeployer) factoryAddress(ctx context.Context) (common.Address, bool, error) {
	var singletonDeployed, universalDeployed bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		singletonDeployed, err = d.chain.HasCode(gctx, d.singleton)
		return err
	})
	g.Go(func() (err error) {
		universalDeployed, err = d.chain.HasCode(gctx, d.universal)
		return err
	})
	if err := g.Wait(); err != nil {
		return common.Address{}, false, err
	}

	if universalDeployed {
		if singletonDeployed {
			d.log.Debug("singleton and universal factories both deployed, using universal")
		}
		return d.universal, true, nil
	}
	return d.forged.Factory, false, nil
}

// AddressOf returns the CREATE2 address under whichever factory is in use.
func (d *ForgedDeployer) AddressOf(ctx context.Context, contract *models.Contract, instance *big.Int) (common.Address, error) {
	factory, _, err := d.factoryAddress(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return universalAddress(factory, contract, instance)
}

// Bootstrap deploys the forged factory unless a factory is already usable.
func (d *ForgedDeployer) Bootstrap(ctx context.Context, params models.TxParams) (common.Address, error) {
	factory, canonical, err := d.factoryAddress(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if canonical {
		d.log.Info("using canonical universal deployer", "address", factory.Hex())
		return factory, nil
	}
	return factory, d.deployForged(ctx, params)
}

func (d *ForgedDeployer) deployForged(ctx context.Context, params models.TxParams) error {
	return d.boot.deployPresigned(ctx, presignedDeployment{
		name:    "UniversalDeployer2",
		eoa:     d.forged.Sender,
		rawTx:   d.forged.RawTx,
		target:  d.forged.Factory,
		funding: d.boot.cfg.funding(ForgedDeploymentCost),
	}, bootstrapParams(params))
}

// Deploy deploys contract through the resolved factory unless it is already
// deployed. The forged factory is only bootstrapped when something is sent.
func (d *ForgedDeployer) Deploy(ctx context.Context, name string, contract *models.Contract, instance *big.Int, params models.TxParams) (*models.DeployedContract, error) {
	factory, canonical, err := d.factoryAddress(ctx)
	if err != nil {
		return nil, err
	}
	address, err := universalAddress(factory, contract, instance)
	if err != nil {
		return nil, err
	}
	if handle, err := d.existing(ctx, name, contract, address); err != nil || handle != nil {
		return handle, err
	}

	if !canonical {
		if err := d.deployForged(ctx, params); err != nil {
			return nil, err
		}
	}

	initCode, err := contract.InitCode()
	if err != nil {
		return nil, err
	}
	data, err := d.binding.TryPackDeploy(initCode, instanceOrZero(instance))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if params, err = d.estimate(ctx, factory, data, params); err != nil {
		return nil, err
	}
	return d.deployThrough(ctx, name, contract, factory, address, data, params)
}

var (
	_ usecase.Deployer           = (*ForgedDeployer)(nil)
	_ usecase.FactoryProvisioner = (*ForgedDeployer)(nil)
)

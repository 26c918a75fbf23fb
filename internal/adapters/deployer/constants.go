package deployer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// Well-known deterministic deployment infrastructure. These values are shared
// by every chain and must never change.
var (
	// ERC-2470 singleton factory and the keyless account that deploys it
	SingletonFactoryAddress = common.HexToAddress("0xce0042B868300000d44A59004Da54A005ffdcf9f")
	SingletonBootstrapEOA   = common.HexToAddress("0xBb6e024b9cFFACB947A71991E386681B1Cd1477D")
	SingletonFunding        = big.NewInt(24_700_000_000_000_000) // 0.0247 ether
	SingletonDeploymentTx   = common.FromHex("0xf9016c8085174876e8008303c4d88080b90154608060405234801561001057600080fd5b50610134806100206000396000f3fe6080604052348015600f57600080fd5b506004361060285760003560e01c80634af63f0214602d575b600080fd5b60cf60048036036040811015604157600080fd5b810190602081018135640100000000811115605b57600080fd5b820183602082011115606c57600080fd5b80359060200191846001830284011164010000000083111715608d57600080fd5b91908080601f016020809104026020016040519081016040528093929190818152602001838380828437600092019190915250929550509135925060eb915050565b604080516001600160a01b039092168252519081900360200190f35b6000818351602085016000f5939250505056fea26469706673582212206b44f8a82cb6b156bfcc3dc6aadd6df4eefd204bc928a4397fd15dacf6d5320564736f6c634300060200331b83247000822470")

	// Universal deployer v1 and the keyless account that deploys it
	UniversalDeployerV1Address = common.HexToAddress("0x1b926fbb24a9f78dcdd3272f2d86f5d0660e59c0")
	UniversalBootstrapEOA      = common.HexToAddress("0x9c5a87452d4FAC0cbd53BDCA580b20A45526B3AB")
	UniversalFunding           = new(big.Int).Mul(big.NewInt(300), big.NewInt(1e14)) // 0.03 ether
	UniversalDeploymentTx      = common.FromHex("0xf9010880852416b84e01830222e08080b8b66080604052348015600f57600080fd5b50609980601d6000396000f3fe60a06020601f369081018290049091028201604052608081815260009260609284918190838280828437600092018290525084519495509392505060208401905034f5604080516001600160a01b0383168152905191935081900360200190a0505000fea26469706673582212205a310755225e3c740b2f013fb6343f4c205e7141fcdf15947f5f0e0e818727fb64736f6c634300060a00331ca01820182018201820182018201820182018201820182018201820182018201820a01820182018201820182018201820182018201820182018201820182018201820")

	// Universal deployer v2, created by sending its creation code to v1
	UniversalDeployerV2Address = common.HexToAddress("0x8a5bc19e22d6ad55a2c763b93a75d09f321fe764")
	UniversalDeployerV2Code    = common.FromHex("0x608060405234801561001057600080fd5b5061013d806100206000396000f3fe60806040526004361061001e5760003560e01c80639c4ae2d014610023575b600080fd5b6100cb6004803603604081101561003957600080fd5b81019060208101813564010000000081111561005457600080fd5b82018360208201111561006657600080fd5b8035906020019184600183028401116401000000008311171561008857600080fd5b91908080601f01602080910402602001604051908101604052809392919081815260200183838082843760009201919091525092955050913592506100cd915050565b005b60008183516020850134f56040805173ffffffffffffffffffffffffffffffffffffffff83168152905191925081900360200190a050505056fea264697066735822122033609f614f03931b92d88c309d698449bb77efcd517328d341fa4f923c5d8c7964736f6c63430007060033")

	// Gas price above which a pre-signed bootstrap transaction is likely to fail
	MaxBootstrapGasPrice = big.NewInt(100 * params.GWei)

	// Funding for a forged bootstrap account
	ForgedDeploymentCost = big.NewInt(24_700_000_000_000_000) // 0.0247 ether
)

const (
	// gas limit for sending the v2 creation code through v1
	universalV2GasLimit uint64 = 200_000

	// percentage of the block gas limit used when a deployment can't be estimated
	blockGasLimitPercent = 40
)

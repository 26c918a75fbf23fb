package render

import (
	"fmt"
	"io"
	"math/big"

	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/fatih/color"
)

// DeployRenderer prints deployment outcomes
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// RenderDeployResult prints what a deploy-and-verify run achieved.
func (r *DeployRenderer) RenderDeployResult(result *usecase.DeployAndVerifyResult) error {
	if result == nil || result.Deployed == nil {
		return nil
	}
	d := result.Deployed

	if d.Skipped {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s already deployed", d.Name)))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s", d.Name)))
	}
	fmt.Fprintf(r.out, "  Address:  %s\n", color.New(color.Bold).Sprint(d.Address.Hex()))
	fmt.Fprintf(r.out, "  Strategy: %s\n", title(string(d.Strategy)))
	if d.TxHash != (common.Hash{}) {
		fmt.Fprintf(r.out, "  Tx:       %s\n", d.TxHash.Hex())
	}
	if result.Dust != nil {
		fmt.Fprintf(r.out, "  Dust:     %s ETH\n", FormatEther(result.Dust))
	}

	if result.Verification != nil {
		fmt.Fprintln(r.out)
		return NewVerifyRenderer(r.out).RenderReport(result.Verification)
	}
	return nil
}

// RenderAddress prints a single labelled address, e.g. a bootstrapped factory.
func (r *DeployRenderer) RenderAddress(label string, address common.Address) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s: %s", label, address.Hex())))
	return nil
}

// RenderRecovered prints the result of a funds recovery.
func (r *DeployRenderer) RenderRecovered(to common.Address, dust *big.Int) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Recovered funds to %s", to.Hex())))
	fmt.Fprintf(r.out, "  Remaining: %s ETH\n", FormatEther(dust))
	return nil
}

// RenderGuards prints the guard addresses in manifest order.
func (r *DeployRenderer) RenderGuards(imageHashes []common.Hash, guards []common.Address) error {
	t := newTable()
	t.SetOutputMirror(r.out)
	t.AppendHeader([]any{"Image Hash", "Guard"})
	for i, guard := range guards {
		t.AppendRow([]any{imageHashes[i].Hex(), guard.Hex()})
	}
	t.Render()
	return nil
}

// FormatEther renders wei as a decimal ether amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return new(big.Rat).SetFrac(wei, big.NewInt(params.Ether)).FloatString(6)
}

package render

import (
	"io"

	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

// Prediction is the address a contract gets under one strategy. Address is
// nil when it cannot be known, with Note explaining why.
type Prediction struct {
	Strategy models.StrategyKind
	Address  *common.Address
	Deployed bool
	Note     string
}

// PredictRenderer renders address predictions
type PredictRenderer struct {
	out io.Writer
}

// NewPredictRenderer creates a new predict renderer
func NewPredictRenderer(out io.Writer) *PredictRenderer {
	return &PredictRenderer{out: out}
}

// RenderPredictions prints a table of predicted addresses for contract.
func (r *PredictRenderer) RenderPredictions(contract string, predictions []Prediction) error {
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "%s\n", contract)

	t := newTable()
	t.SetOutputMirror(r.out)
	t.AppendHeader([]any{"Strategy", "Address", "Status"})
	for _, p := range predictions {
		address := lo.TernaryF(p.Address != nil,
			func() string { return p.Address.Hex() },
			func() string { return "-" })
		status := p.Note
		if status == "" {
			status = lo.Ternary(p.Deployed, color.GreenString("deployed"), "not deployed")
		}
		t.AppendRow([]any{title(string(p.Strategy)), address, status})
	}
	t.Render()
	return nil
}

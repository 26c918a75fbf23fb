package render

import (
	"fmt"
	"io"

	"github.com/0xsequence/solidity-deployer/internal/domain/models"
	"github.com/fatih/color"
)

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// RenderReport prints one line per verification backend.
func (r *VerifyRenderer) RenderReport(report *models.VerificationReport) error {
	if report == nil {
		return nil
	}
	color.New(color.FgCyan, color.Bold).Fprintf(r.out, "Verification of %s:\n", report.Address.Hex())
	for _, res := range report.Results {
		line := fmt.Sprintf("%s: %s", title(res.Backend), title(string(res.Status)))
		if res.Reason != "" {
			line += " (" + res.Reason + ")"
		}
		fmt.Fprintf(r.out, "  %s %s\n", statusIcon(res.Status), statusColor(res.Status).Sprint(line))
	}
	return nil
}

func statusIcon(status models.VerificationStatus) string {
	switch status {
	case models.VerificationStatusVerified, models.VerificationStatusAlreadyVerified:
		return "✔︎"
	case models.VerificationStatusPending:
		return "⏳"
	default:
		return "✗"
	}
}

func statusColor(status models.VerificationStatus) *color.Color {
	switch status {
	case models.VerificationStatusVerified, models.VerificationStatusAlreadyVerified:
		return color.New(color.FgGreen)
	case models.VerificationStatusPending:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

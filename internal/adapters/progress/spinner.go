package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// SpinnerProgress shows a spinner while a deployment or verification is in
// flight. Without a terminal it prints each message on its own line.
type SpinnerProgress struct {
	out         io.Writer
	interactive bool
	spinner     *spinner.Spinner
	startTime   time.Time
}

// NewSpinnerProgress creates a new spinner progress reporter
func NewSpinnerProgress(out io.Writer, interactive bool) *SpinnerProgress {
	return &SpinnerProgress{
		out:         out,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// ProvideProgressSink picks the sink for the runtime configuration. Debug
// runs already log every stage, so they get no spinner.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.Debug {
		return NewNopSink()
	}
	return NewSpinnerProgress(os.Stderr, !cfg.NonInteractive)
}

// OnProgress handles progress events
func (p *SpinnerProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if !p.interactive {
		if event.Message != "" {
			fmt.Fprintln(p.out, event.Message)
		}
		return
	}

	if event.Spinner {
		if p.spinner == nil {
			p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			p.spinner.Writer = p.out
			_ = p.spinner.Color("cyan", "bold")
		}
		p.spinner.Suffix = " " + event.Message
		if !p.spinner.Active() {
			p.spinner.Start()
		}
		return
	}

	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
	if event.Stage == "completed" {
		color.New(color.FgGreen).Fprintf(p.out, "Done in %s\n", time.Since(p.startTime).Round(time.Millisecond))
	}
}

// Info prints an info message
func (p *SpinnerProgress) Info(message string) {
	p.pause(func() { color.New(color.FgCyan).Fprintln(p.out, message) })
}

// Error prints an error message
func (p *SpinnerProgress) Error(message string) {
	p.pause(func() { color.New(color.FgRed).Fprintln(p.out, message) })
}

// pause stops the spinner around print
func (p *SpinnerProgress) pause(print func()) {
	wasActive := p.spinner != nil && p.spinner.Active()
	if wasActive {
		p.spinner.Stop()
	}
	print()
	if wasActive {
		p.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerProgress)(nil)

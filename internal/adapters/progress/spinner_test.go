package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/0xsequence/solidity-deployer/internal/domain/config"
	"github.com/0xsequence/solidity-deployer/internal/usecase"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestSpinnerProgress_NonInteractive(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := NewSpinnerProgress(&buf, false)

	p.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "deploy", Message: "Deploying Counter", Spinner: true})
	p.OnProgress(context.Background(), usecase.ProgressEvent{Stage: "deploy"})
	p.Info("deployed")
	p.Error("verification failed")

	assert.Equal(t, "Deploying Counter\ndeployed\nverification failed\n", buf.String())
}

func TestProvideProgressSink(t *testing.T) {
	assert.IsType(t, &NopSink{}, ProvideProgressSink(&config.RuntimeConfig{Debug: true}))
	assert.IsType(t, &SpinnerProgress{}, ProvideProgressSink(&config.RuntimeConfig{NonInteractive: true}))
}

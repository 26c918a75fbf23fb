package progress

import (
	"context"

	"github.com/0xsequence/solidity-deployer/internal/usecase"
)

// NopSink is a no-op implementation of ProgressSink
type NopSink struct{}

// NewNopSink creates a new no-op progress sink
func NewNopSink() usecase.ProgressSink {
	return &NopSink{}
}

func (n *NopSink) OnProgress(context.Context, usecase.ProgressEvent) {}

func (n *NopSink) Info(string) {}

func (n *NopSink) Error(string) {}

var _ usecase.ProgressSink = (*NopSink)(nil)

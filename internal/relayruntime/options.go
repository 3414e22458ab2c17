package relayruntime

import (
	"strings"
	"time"
)

type RunOptions struct {
	OperatorChatID int64
	CommandReply   string
	PollTimeout    time.Duration
	EventTimeout   time.Duration
	MaxConcurrency int
	// RegisterCommands publishes the /help and /start menu at startup.
	RegisterCommands bool
}

func normalizeRunOptions(opts RunOptions) RunOptions {
	opts.CommandReply = strings.TrimSpace(opts.CommandReply)
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = 30 * time.Second
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	return opts
}

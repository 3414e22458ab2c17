package relayruntime

import (
	"testing"
	"time"
)

func TestNormalizeRunOptionsDefaults(t *testing.T) {
	got := normalizeRunOptions(RunOptions{CommandReply: " hi "})
	if got.PollTimeout != 30*time.Second {
		t.Fatalf("poll timeout = %v, want 30s", got.PollTimeout)
	}
	if got.EventTimeout != 30*time.Second {
		t.Fatalf("event timeout = %v, want 30s", got.EventTimeout)
	}
	if got.MaxConcurrency != 8 {
		t.Fatalf("max concurrency = %d, want 8", got.MaxConcurrency)
	}
	if got.CommandReply != "hi" {
		t.Fatalf("command reply not trimmed: %#v", got)
	}
}

func TestNormalizeRunOptionsKeepsValues(t *testing.T) {
	got := normalizeRunOptions(RunOptions{
		OperatorChatID: -100,
		PollTimeout:    45 * time.Second,
		EventTimeout:   5 * time.Second,
		MaxConcurrency: 2,
	})
	if got.OperatorChatID != -100 || got.PollTimeout != 45*time.Second || got.EventTimeout != 5*time.Second || got.MaxConcurrency != 2 {
		t.Fatalf("resolved options mismatch: %#v", got)
	}
}
